package seating_test

import (
	"context"
	"testing"

	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanStore struct {
	plans map[string]*domain.SeatingPlan
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[string]*domain.SeatingPlan)}
}

func copyPlan(p *domain.SeatingPlan) *domain.SeatingPlan {
	out := *p
	out.Tables = make([]domain.Table, len(p.Tables))
	for i, t := range p.Tables {
		out.Tables[i] = t
		out.Tables[i].GuestIDs = append([]string(nil), t.GuestIDs...)
	}
	return &out
}

func (s *fakePlanStore) GetOrCreate(_ context.Context, slug string, defaults domain.PlanDefaults) (*domain.SeatingPlan, error) {
	if p, ok := s.plans[slug]; ok {
		return copyPlan(p), nil
	}
	p := &domain.SeatingPlan{
		Slug:   slug,
		Name:   defaults.Name,
		Width:  defaults.Width,
		Height: defaults.Height,
		Tables: []domain.Table{},
	}
	s.plans[slug] = p
	return copyPlan(p), nil
}

func (s *fakePlanStore) UpdateDetails(_ context.Context, slug string, details domain.PlanDetails) (*domain.SeatingPlan, error) {
	p, ok := s.plans[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if details.Name != nil {
		p.Name = *details.Name
	}
	if details.Width != nil {
		p.Width = *details.Width
	}
	if details.Height != nil {
		p.Height = *details.Height
	}
	return copyPlan(p), nil
}

func (s *fakePlanStore) ReplaceTables(_ context.Context, slug string, tables []domain.Table) (*domain.SeatingPlan, error) {
	p, ok := s.plans[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Tables = tables
	return copyPlan(p), nil
}

type fakeDirectory struct {
	guests map[string]domain.Guest
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (*domain.Guest, error) {
	g, ok := d.guests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (d *fakeDirectory) List(_ context.Context) ([]domain.Guest, error) {
	out := make([]domain.Guest, 0, len(d.guests))
	for _, g := range d.guests {
		out = append(out, g)
	}
	return out, nil
}

const slug = "main-hall"

func newEngine(t *testing.T, guests map[string]domain.Guest) (*seating.Engine, *fakePlanStore) {
	t.Helper()
	store := newFakePlanStore()
	dir := &fakeDirectory{guests: guests}
	eng := seating.NewEngine(store, dir, domain.PlanDefaults{Name: "Main hall", Width: 1000, Height: 800}, observability.NewLogger())
	return eng, store
}

func guest(id string, partySize int) domain.Guest {
	return domain.Guest{ID: id, FirstName: "G" + id, PartySize: partySize, Language: domain.LanguageRU}
}

func addTable(t *testing.T, eng *seating.Engine, capacity int) string {
	t.Helper()
	plan, err := eng.AddTable(context.Background(), slug, seating.TableSpec{Capacity: &capacity})
	require.NoError(t, err)
	return plan.Tables[len(plan.Tables)-1].ID
}

func findTable(t *testing.T, plan *domain.SeatingPlan, id string) domain.Table {
	t.Helper()
	for _, table := range plan.Tables {
		if table.ID == id {
			return table
		}
	}
	t.Fatalf("table %s not in plan", id)
	return domain.Table{}
}

func TestAddTableDefaults(t *testing.T) {
	eng, _ := newEngine(t, nil)

	plan, err := eng.AddTable(context.Background(), slug, seating.TableSpec{})
	require.NoError(t, err)
	require.Len(t, plan.Tables, 1)

	table := plan.Tables[0]
	assert.Equal(t, "Table 1", table.Label)
	assert.Equal(t, domain.TableRound, table.Type)
	assert.Equal(t, 8, table.Capacity)
	assert.Equal(t, 500.0, table.X)
	assert.Equal(t, 400.0, table.Y)
	assert.Empty(t, table.GuestIDs)

	plan, err = eng.AddTable(context.Background(), slug, seating.TableSpec{})
	require.NoError(t, err)
	assert.Equal(t, "Table 2", plan.Tables[1].Label)
}

func TestAddTableClampsGeometryAndCapacity(t *testing.T) {
	eng, _ := newEngine(t, nil)

	x := -50.0
	y := 5000.0
	capacity := 99
	plan, err := eng.AddTable(context.Background(), slug, seating.TableSpec{X: &x, Y: &y, Capacity: &capacity})
	require.NoError(t, err)

	table := plan.Tables[0]
	assert.Equal(t, 0.0, table.X)
	assert.Equal(t, 800.0, table.Y)
	assert.Equal(t, 30, table.Capacity)

	x = 5000.0
	capacity = 0
	plan, err = eng.AddTable(context.Background(), slug, seating.TableSpec{X: &x, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, plan.Tables[1].X)
	assert.Equal(t, 1, plan.Tables[1].Capacity)
}

func TestAssignGuestRespectsCapacity(t *testing.T) {
	guests := map[string]domain.Guest{
		"g": guest("g", 1),
		"h": guest("h", 4),
	}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)

	plan, err := eng.AssignGuest(context.Background(), slug, tableA, "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, findTable(t, plan, tableA).GuestIDs)

	// Table is full; a one-seat guest must be rejected and the state must
	// be unchanged.
	_, err = eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.ErrorIs(t, err, domain.ErrTableCapacityExceeded)

	plan, err = eng.Plan(context.Background(), slug)
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, findTable(t, plan, tableA).GuestIDs)
}

func TestAssignGuestMovesBetweenTables(t *testing.T) {
	guests := map[string]domain.Guest{"g": guest("g", 3)}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)
	tableB := addTable(t, eng, 4)

	plan, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)
	stats := seating.ComputeStats(plan, []domain.Guest{guests["g"]})
	assert.Equal(t, 3, stats.Tables[0].OccupiedSeats)

	plan, err = eng.AssignGuest(context.Background(), slug, tableB, "g")
	require.NoError(t, err)
	assert.Empty(t, findTable(t, plan, tableA).GuestIDs)
	assert.Equal(t, []string{"g"}, findTable(t, plan, tableB).GuestIDs)

	stats = seating.ComputeStats(plan, []domain.Guest{guests["g"]})
	assert.Equal(t, 0, stats.Tables[0].OccupiedSeats)
	assert.Equal(t, 3, stats.Tables[1].OccupiedSeats)
}

func TestAssignGuestMoveDoesNotDoubleCountOldTable(t *testing.T) {
	// A guest already seated at the target table re-assigns there: the
	// removal step must run before the capacity check so their own party
	// size is not counted twice.
	guests := map[string]domain.Guest{"g": guest("g", 4)}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)

	plan, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, findTable(t, plan, tableA).GuestIDs)
}

func TestAssignGuestUnknownGuest(t *testing.T) {
	eng, _ := newEngine(t, nil)
	tableA := addTable(t, eng, 4)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownGuest)
}

func TestAssignGuestUnknownTable(t *testing.T) {
	guests := map[string]domain.Guest{"g": guest("g", 1)}
	eng, _ := newEngine(t, guests)

	_, err := eng.AssignGuest(context.Background(), slug, "missing", "g")
	assert.ErrorIs(t, err, domain.ErrUnknownTable)
}

func TestSingleMembershipAcrossOperations(t *testing.T) {
	guests := map[string]domain.Guest{
		"g": guest("g", 1),
		"h": guest("h", 1),
	}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)
	tableB := addTable(t, eng, 4)
	tableC := addTable(t, eng, 4)

	for _, target := range []string{tableA, tableB, tableC, tableA} {
		_, err := eng.AssignGuest(context.Background(), slug, target, "g")
		require.NoError(t, err)
		_, err = eng.AssignGuest(context.Background(), slug, target, "h")
		require.NoError(t, err)

		plan, err := eng.Plan(context.Background(), slug)
		require.NoError(t, err)
		seen := map[string]int{}
		for _, table := range plan.Tables {
			for _, id := range table.GuestIDs {
				seen[id]++
			}
		}
		assert.Equal(t, 1, seen["g"])
		assert.Equal(t, 1, seen["h"])
	}
}

func TestUnassignGuestIsTargetedAndIdempotent(t *testing.T) {
	guests := map[string]domain.Guest{"g": guest("g", 1)}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)
	tableB := addTable(t, eng, 4)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)

	// Unassigning from a table the guest is not at leaves them seated.
	plan, err := eng.UnassignGuest(context.Background(), slug, tableB, "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, findTable(t, plan, tableA).GuestIDs)

	plan, err = eng.UnassignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)
	assert.Empty(t, findTable(t, plan, tableA).GuestIDs)

	// Repeating is a no-op, not an error.
	_, err = eng.UnassignGuest(context.Background(), slug, tableA, "g")
	assert.NoError(t, err)
}

func TestRemoveTableUnassignsSeatedGuests(t *testing.T) {
	guests := map[string]domain.Guest{
		"g": guest("g", 2),
		"h": guest("h", 1),
	}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 4)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)
	_, err = eng.AssignGuest(context.Background(), slug, tableA, "h")
	require.NoError(t, err)

	plan, err := eng.RemoveTable(context.Background(), slug, tableA)
	require.NoError(t, err)
	assert.Empty(t, plan.Tables)

	stats := seating.ComputeStats(plan, []domain.Guest{guests["g"], guests["h"]})
	assert.Len(t, stats.UnassignedGuests, 2)
	assert.Equal(t, 0, stats.AssignedSeatCount)
	assert.Equal(t, 3, stats.UnassignedSeatCount)

	_, err = eng.RemoveTable(context.Background(), slug, tableA)
	assert.ErrorIs(t, err, domain.ErrUnknownTable)
}

func TestMoveTableClampsRoundsAndIsIdempotent(t *testing.T) {
	eng, _ := newEngine(t, nil)
	tableA := addTable(t, eng, 4)

	plan, err := eng.MoveTable(context.Background(), slug, tableA, 1500.7, -20.0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, findTable(t, plan, tableA).X)
	assert.Equal(t, 0.0, findTable(t, plan, tableA).Y)

	plan, err = eng.MoveTable(context.Background(), slug, tableA, 333.4, 200.6)
	require.NoError(t, err)
	assert.Equal(t, 333.0, findTable(t, plan, tableA).X)
	assert.Equal(t, 201.0, findTable(t, plan, tableA).Y)

	again, err := eng.MoveTable(context.Background(), slug, tableA, 333.4, 200.6)
	require.NoError(t, err)
	assert.Equal(t, findTable(t, plan, tableA).X, findTable(t, again, tableA).X)
	assert.Equal(t, findTable(t, plan, tableA).Y, findTable(t, again, tableA).Y)
}

func TestMoveTableUnknownIsSilentNoop(t *testing.T) {
	eng, _ := newEngine(t, nil)
	addTable(t, eng, 4)

	plan, err := eng.MoveTable(context.Background(), slug, "missing", 10, 10)
	require.NoError(t, err)
	require.Len(t, plan.Tables, 1)
}

func TestUpdateTableMergesAndReclamps(t *testing.T) {
	eng, _ := newEngine(t, nil)
	tableA := addTable(t, eng, 4)

	label := "Head table"
	rect := domain.TableRect
	rotation := 270.0
	x := -5.0
	plan, err := eng.UpdateTable(context.Background(), slug, tableA, seating.TableUpdate{
		Label:    &label,
		Type:     &rect,
		Rotation: &rotation,
		X:        &x,
	})
	require.NoError(t, err)

	table := findTable(t, plan, tableA)
	assert.Equal(t, "Head table", table.Label)
	assert.Equal(t, domain.TableRect, table.Type)
	assert.Equal(t, 180.0, table.Rotation)
	assert.Equal(t, 0.0, table.X)
	assert.Equal(t, 4, table.Capacity)

	_, err = eng.UpdateTable(context.Background(), slug, "missing", seating.TableUpdate{Label: &label})
	assert.ErrorIs(t, err, domain.ErrUnknownTable)
}

func TestUpdateTableAllowsCapacityShrinkBelowOccupancy(t *testing.T) {
	guests := map[string]domain.Guest{"g": guest("g", 4)}
	eng, _ := newEngine(t, guests)
	tableA := addTable(t, eng, 6)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)

	capacity := 2
	plan, err := eng.UpdateTable(context.Background(), slug, tableA, seating.TableUpdate{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 2, findTable(t, plan, tableA).Capacity)
	assert.Equal(t, []string{"g"}, findTable(t, plan, tableA).GuestIDs)

	stats := seating.ComputeStats(plan, []domain.Guest{guests["g"]})
	assert.Equal(t, 0, stats.Tables[0].RemainingSeats)
	assert.True(t, stats.Tables[0].OverCapacity)
}

func TestDetachGuestStripsEveryTable(t *testing.T) {
	guests := map[string]domain.Guest{"g": guest("g", 1)}
	eng, store := newEngine(t, guests)
	tableA := addTable(t, eng, 4)

	_, err := eng.AssignGuest(context.Background(), slug, tableA, "g")
	require.NoError(t, err)

	require.NoError(t, eng.DetachGuest(context.Background(), slug, "g"))
	plan := store.plans[slug]
	assert.Empty(t, plan.Tables[0].GuestIDs)

	// Detaching an unseated guest writes nothing.
	require.NoError(t, eng.DetachGuest(context.Background(), slug, "g"))
}

func TestUpdateDetailsValidatesAndClamps(t *testing.T) {
	eng, _ := newEngine(t, nil)

	_, err := eng.UpdateDetails(context.Background(), slug, "", 1000, 800)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	plan, err := eng.UpdateDetails(context.Background(), slug, "Garden", 50, 900)
	require.NoError(t, err)
	assert.Equal(t, "Garden", plan.Name)
	assert.Equal(t, 200.0, plan.Width)
	assert.Equal(t, 900.0, plan.Height)
}
