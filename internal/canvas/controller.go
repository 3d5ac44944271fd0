package canvas

import (
	"context"
	"math"
	"sync"

	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
)

// Committer persists a final drag position. The engine's MoveTable satisfies
// this; it is lenient about tables that vanished mid-drag.
type Committer interface {
	MoveTable(ctx context.Context, slug, tableID string, x, y float64) (*domain.SeatingPlan, error)
}

// Rect is the canvas bounding box in screen pixels.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

type Phase int

const (
	Idle Phase = iota
	Dragging
	Committing
)

type gesture struct {
	tableID string
	offsetX float64
	offsetY float64
	lastX   float64
	lastY   float64
}

// Controller runs the per-canvas drag state machine. Pointer coordinates come
// in screen space; candidates are mapped into plan space through the viewport,
// clamped to the plan bounds and rounded. Only the dragged table gets an
// optimistic position override; everything else renders from the last
// authoritative plan. Commits happen on pointer-up (or pointer-cancel, which
// is treated identically so a drag's result is never silently lost), and the
// override is cleared unconditionally once the commit returns, reverting to
// authoritative state on failure.
type Controller struct {
	mu         sync.Mutex
	slug       string
	planWidth  float64
	planHeight float64
	viewport   Rect
	tables     []domain.Table
	active     *gesture
	overrides  map[string][2]float64
	committing int

	committer Committer
	logger    observability.Logger
}

func NewController(slug string, committer Committer, logger observability.Logger) *Controller {
	return &Controller{
		slug:      slug,
		overrides: make(map[string][2]float64),
		committer: committer,
		logger:    logger,
	}
}

// SetPlan refreshes the authoritative snapshot after a server response.
func (c *Controller) SetPlan(plan *domain.SeatingPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.planWidth = plan.Width
	c.planHeight = plan.Height
	c.tables = append([]domain.Table(nil), plan.Tables...)
}

func (c *Controller) SetViewport(r Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = r
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return Dragging
	}
	if c.committing > 0 {
		return Committing
	}
	return Idle
}

// PointerDown starts a drag over the given table. The offset between the
// pointer and the table's rendered center is captured so the table does not
// jump to the pointer. Returns false if the drag could not start (unknown
// table, degenerate geometry, or another drag already active).
func (c *Controller) PointerDown(tableID string, px, py float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil || c.planWidth <= 0 || c.planHeight <= 0 || c.viewport.Width <= 0 || c.viewport.Height <= 0 {
		return false
	}

	var table *domain.Table
	for i := range c.tables {
		if c.tables[i].ID == tableID {
			table = &c.tables[i]
			break
		}
	}
	if table == nil {
		return false
	}

	centerX := c.viewport.Left + (table.X/c.planWidth)*c.viewport.Width
	centerY := c.viewport.Top + (table.Y/c.planHeight)*c.viewport.Height

	c.active = &gesture{
		tableID: tableID,
		offsetX: px - centerX,
		offsetY: py - centerY,
		lastX:   table.X,
		lastY:   table.Y,
	}
	c.overrides[tableID] = [2]float64{table.X, table.Y}
	return true
}

// PointerMove recomputes the candidate plan-space position. No I/O happens
// here; drag handling must stay responsive.
func (c *Controller) PointerMove(px, py float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.viewport.Width <= 0 || c.viewport.Height <= 0 {
		return
	}

	x := domain.Clamp(((px-c.viewport.Left-c.active.offsetX)/c.viewport.Width)*c.planWidth, 0, c.planWidth)
	y := domain.Clamp(((py-c.viewport.Top-c.active.offsetY)/c.viewport.Height)*c.planHeight, 0, c.planHeight)

	c.active.lastX = math.Round(x)
	c.active.lastY = math.Round(y)
	c.overrides[c.active.tableID] = [2]float64{c.active.lastX, c.active.lastY}
}

// PointerUp commits the last candidate position. The gesture ends
// immediately, so a new drag on a different table may begin while the commit
// round-trips; the optimistic override survives until the commit returns and
// is then dropped whatever the outcome.
func (c *Controller) PointerUp(ctx context.Context) error {
	c.mu.Lock()
	g := c.active
	c.active = nil
	if g == nil {
		c.mu.Unlock()
		return nil
	}
	c.committing++
	c.mu.Unlock()

	_, err := c.committer.MoveTable(ctx, c.slug, g.tableID, g.lastX, g.lastY)

	c.mu.Lock()
	c.committing--
	delete(c.overrides, g.tableID)
	c.mu.Unlock()

	if err != nil {
		c.logger.WithField("table_id", g.tableID).Error("failed to persist table position", err)
		return err
	}
	return nil
}

// PointerCancel is handled identically to PointerUp: the last known candidate
// is still persisted rather than discarded.
func (c *Controller) PointerCancel(ctx context.Context) error {
	return c.PointerUp(ctx)
}

// DisplayTables returns the tables to render: the authoritative snapshot with
// any optimistic position overrides applied.
func (c *Controller) DisplayTables() []domain.Table {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := append([]domain.Table(nil), c.tables...)
	for i := range out {
		if pos, ok := c.overrides[out[i].ID]; ok {
			out[i].X = pos[0]
			out[i].Y = pos[1]
		}
	}
	return out
}
