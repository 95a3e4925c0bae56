package engine

import (
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// FixedDeploy places a roster hero at a position the player cannot change.
type FixedDeploy struct {
	Hero     string
	Position types.Vec2D
}

// Deployer tracks the player's choice of heroes for the selectable
// positions of a stage. Slot numbers are 1-based; 0 means none.
type Deployer struct {
	fixed    []FixedDeploy
	slots    []types.Vec2D
	assigned []*unit.Hero
}

// NewDeployer creates a deployer for the given positions.
func NewDeployer(fixed []FixedDeploy, selectable []types.Vec2D) *Deployer {
	return &Deployer{
		fixed:    fixed,
		slots:    selectable,
		assigned: make([]*unit.Hero, len(selectable)),
	}
}

// Fixed returns the unselectable placements.
func (d *Deployer) Fixed() []FixedDeploy { return d.fixed }

// Slots returns the selectable positions in slot order.
func (d *Deployer) Slots() []types.Vec2D { return d.slots }

// IsFixed reports whether h is already placed by the stage.
func (d *Deployer) IsFixed(h *unit.Hero) bool {
	for _, f := range d.fixed {
		if f.Hero == h.ID() {
			return true
		}
	}
	return false
}

// Assign puts h in the first free slot and returns its number. A hero that
// is already assigned keeps its slot. It returns 0 when every slot is
// taken or the hero is fixed.
func (d *Deployer) Assign(h *unit.Hero) int {
	if d.IsFixed(h) {
		return 0
	}
	if n := d.Find(h); n != 0 {
		return n
	}
	for i, a := range d.assigned {
		if a == nil {
			d.assigned[i] = h
			return i + 1
		}
	}
	return 0
}

// Unassign frees the slot held by h and returns its number, or 0.
func (d *Deployer) Unassign(h *unit.Hero) int {
	n := d.Find(h)
	if n != 0 {
		d.assigned[n-1] = nil
	}
	return n
}

// Find returns the slot held by h, or 0.
func (d *Deployer) Find(h *unit.Hero) int {
	for i, a := range d.assigned {
		if a == h {
			return i + 1
		}
	}
	return 0
}

// Each visits assigned heroes with their positions in slot order.
func (d *Deployer) Each(fn func(h *unit.Hero, pos types.Vec2D)) {
	for i, a := range d.assigned {
		if a != nil {
			fn(a, d.slots[i])
		}
	}
}
