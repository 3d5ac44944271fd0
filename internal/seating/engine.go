package seating

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
)

// PlanStore is the persistence surface the engine drives. Every table
// mutation is a read of the full plan followed by ReplaceTables.
type PlanStore interface {
	GetOrCreate(ctx context.Context, slug string, defaults domain.PlanDefaults) (*domain.SeatingPlan, error)
	UpdateDetails(ctx context.Context, slug string, details domain.PlanDetails) (*domain.SeatingPlan, error)
	ReplaceTables(ctx context.Context, slug string, tables []domain.Table) (*domain.SeatingPlan, error)
}

// GuestDirectory is read-only from the engine's perspective: party sizes are
// looked up during assignment, never mutated.
type GuestDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.Guest, error)
	List(ctx context.Context) ([]domain.Guest, error)
}

type Engine struct {
	store    PlanStore
	guests   GuestDirectory
	defaults domain.PlanDefaults
	logger   observability.Logger
}

func NewEngine(store PlanStore, guests GuestDirectory, defaults domain.PlanDefaults, logger observability.Logger) *Engine {
	return &Engine{store: store, guests: guests, defaults: defaults, logger: logger}
}

// Plan returns the plan for slug, lazily creating it on first access.
func (e *Engine) Plan(ctx context.Context, slug string) (*domain.SeatingPlan, error) {
	return e.store.GetOrCreate(ctx, slug, e.defaults)
}

func (e *Engine) UpdateDetails(ctx context.Context, slug, name string, width, height float64) (*domain.SeatingPlan, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := e.Plan(ctx, slug); err != nil {
		return nil, err
	}
	width = math.Max(width, domain.MinPlanDimension)
	height = math.Max(height, domain.MinPlanDimension)
	observability.SeatingMutations.WithLabelValues("update_details").Inc()
	return e.store.UpdateDetails(ctx, slug, domain.PlanDetails{Name: &name, Width: &width, Height: &height})
}

// TableSpec carries optional table attributes; unset fields fall back to
// defaults derived from the plan.
type TableSpec struct {
	Label    string
	Type     domain.TableType
	Capacity *int
	X        *float64
	Y        *float64
}

// AddTable appends a new table with a fresh id. Geometry is clamped into the
// plan bounds and capacity into [1,30]. Tables may overlap visually; no
// collision checks are done.
func (e *Engine) AddTable(ctx context.Context, slug string, spec TableSpec) (*domain.SeatingPlan, error) {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}

	label := spec.Label
	if label == "" {
		label = fmt.Sprintf("Table %d", len(plan.Tables)+1)
	}
	capacity := 8
	if spec.Capacity != nil {
		capacity = *spec.Capacity
	}
	x := plan.Width / 2
	if spec.X != nil {
		x = *spec.X
	}
	y := plan.Height / 2
	if spec.Y != nil {
		y = *spec.Y
	}

	table := domain.Table{
		ID:       uuid.NewString(),
		Label:    label,
		Type:     domain.SanitizeTableType(string(spec.Type)),
		X:        domain.Clamp(x, 0, plan.Width),
		Y:        domain.Clamp(y, 0, plan.Height),
		Rotation: 0,
		Capacity: domain.ClampCapacity(capacity),
		GuestIDs: []string{},
	}

	observability.SeatingMutations.WithLabelValues("add_table").Inc()
	return e.store.ReplaceTables(ctx, slug, append(plan.Tables, table))
}

type TableUpdate struct {
	Label    *string
	Type     *domain.TableType
	Capacity *int
	X        *float64
	Y        *float64
	Rotation *float64
}

// UpdateTable merges the supplied fields over the existing table and
// re-clamps geometry and capacity. Shrinking capacity below the current
// occupancy is allowed; the over-capacity state is surfaced by the stats
// read-model, not corrected here.
func (e *Engine) UpdateTable(ctx context.Context, slug, tableID string, update TableUpdate) (*domain.SeatingPlan, error) {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}

	idx := findTable(plan.Tables, tableID)
	if idx < 0 {
		return nil, domain.ErrUnknownTable
	}

	tables := cloneTables(plan.Tables)
	table := &tables[idx]
	if update.Label != nil && *update.Label != "" {
		table.Label = *update.Label
	}
	if update.Type != nil {
		table.Type = domain.SanitizeTableType(string(*update.Type))
	}
	if update.Capacity != nil {
		table.Capacity = domain.ClampCapacity(*update.Capacity)
	}
	if update.X != nil {
		table.X = domain.Clamp(*update.X, 0, plan.Width)
	}
	if update.Y != nil {
		table.Y = domain.Clamp(*update.Y, 0, plan.Height)
	}
	if update.Rotation != nil {
		table.Rotation = domain.Clamp(*update.Rotation, -180, 180)
	}

	observability.SeatingMutations.WithLabelValues("update_table").Inc()
	return e.store.ReplaceTables(ctx, slug, tables)
}

// RemoveTable deletes the table; its seated guests simply become unassigned.
func (e *Engine) RemoveTable(ctx context.Context, slug, tableID string) (*domain.SeatingPlan, error) {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}

	idx := findTable(plan.Tables, tableID)
	if idx < 0 {
		return nil, domain.ErrUnknownTable
	}

	tables := make([]domain.Table, 0, len(plan.Tables)-1)
	for _, t := range plan.Tables {
		if t.ID != tableID {
			tables = append(tables, t)
		}
	}

	observability.SeatingMutations.WithLabelValues("remove_table").Inc()
	return e.store.ReplaceTables(ctx, slug, tables)
}

// AssignGuest seats a guest at a table. The guest is first stripped from
// every table in the plan, so a stale caller view cannot double-seat them and
// a guest moving tables does not count against their old table's capacity.
func (e *Engine) AssignGuest(ctx context.Context, slug, tableID, guestID string) (*domain.SeatingPlan, error) {
	guest, err := e.guests.FindByID(ctx, guestID)
	if err != nil {
		if domainNotFound(err) {
			return nil, domain.ErrUnknownGuest
		}
		return nil, err
	}

	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}
	guests, err := e.guests.List(ctx)
	if err != nil {
		return nil, err
	}

	tables := cloneTables(plan.Tables)
	for i := range tables {
		tables[i].GuestIDs = removeID(tables[i].GuestIDs, guestID)
	}

	idx := findTable(tables, tableID)
	if idx < 0 {
		return nil, domain.ErrUnknownTable
	}

	partySizes := make(map[string]int, len(guests))
	for _, g := range guests {
		partySizes[g.ID] = g.PartySize
	}

	occupied := 0
	for _, id := range tables[idx].GuestIDs {
		occupied += partySizes[id]
	}
	if occupied+guest.PartySize > tables[idx].Capacity {
		observability.CapacityRejections.Inc()
		return nil, domain.ErrTableCapacityExceeded
	}

	tables[idx].GuestIDs = append(tables[idx].GuestIDs, guestID)

	observability.SeatingMutations.WithLabelValues("assign_guest").Inc()
	return e.store.ReplaceTables(ctx, slug, tables)
}

// UnassignGuest removes the guest from the named table only. Removing a
// guest who is not seated there is a no-op, not an error.
func (e *Engine) UnassignGuest(ctx context.Context, slug, tableID, guestID string) (*domain.SeatingPlan, error) {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}

	tables := cloneTables(plan.Tables)
	for i := range tables {
		if tables[i].ID == tableID {
			tables[i].GuestIDs = removeID(tables[i].GuestIDs, guestID)
		}
	}

	observability.SeatingMutations.WithLabelValues("unassign_guest").Inc()
	return e.store.ReplaceTables(ctx, slug, tables)
}

// MoveTable persists a drag-commit position, clamped to the plan bounds and
// rounded to whole units. An unknown table is a silent no-op: the table may
// have been deleted by another session while the drag was in flight, and the
// background commit must not surface a hard error for that.
func (e *Engine) MoveTable(ctx context.Context, slug, tableID string, x, y float64) (*domain.SeatingPlan, error) {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return nil, err
	}

	idx := findTable(plan.Tables, tableID)
	if idx < 0 {
		return plan, nil
	}

	tables := cloneTables(plan.Tables)
	tables[idx].X = math.Round(domain.Clamp(x, 0, plan.Width))
	tables[idx].Y = math.Round(domain.Clamp(y, 0, plan.Height))

	observability.SeatingMutations.WithLabelValues("move_table").Inc()
	return e.store.ReplaceTables(ctx, slug, tables)
}

// DetachGuest strips a guest id from every table, used when the guest record
// is deleted so the plan does not keep orphaned references. Skips the write
// when the guest was not seated anywhere.
func (e *Engine) DetachGuest(ctx context.Context, slug, guestID string) error {
	plan, err := e.Plan(ctx, slug)
	if err != nil {
		return err
	}

	changed := false
	tables := cloneTables(plan.Tables)
	for i := range tables {
		next := removeID(tables[i].GuestIDs, guestID)
		if len(next) != len(tables[i].GuestIDs) {
			changed = true
		}
		tables[i].GuestIDs = next
	}
	if !changed {
		return nil
	}

	observability.SeatingMutations.WithLabelValues("detach_guest").Inc()
	_, err = e.store.ReplaceTables(ctx, slug, tables)
	return err
}

func findTable(tables []domain.Table, id string) int {
	for i, t := range tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTables(tables []domain.Table) []domain.Table {
	out := make([]domain.Table, len(tables))
	for i, t := range tables {
		out[i] = t
		out[i].GuestIDs = append([]string(nil), t.GuestIDs...)
	}
	return out
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func domainNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnknownGuest)
}
