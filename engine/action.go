package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Move relocates a unit. Moving onto the current cell is a no-op.
type Move struct {
	cmd
	Unit unit.ID
	Dest types.Vec2D
}

func (c *Move) Op() Op         { return OpMove }
func (c *Move) String() string { return fmt.Sprintf("move(#%d -> %v)", c.Unit, c.Dest) }

func (c *Move) Execute(g *Game) Seq {
	u := g.units.Get(c.Unit)
	if u.IsDead() || u.Position() == c.Dest {
		return nil
	}
	from := u.Position()
	g.board.MoveUnit(from, c.Dest)
	u.SetPosition(c.Dest)
	g.log.Info("move", unitField(u), zap.Stringer("from", from), zap.Stringer("to", c.Dest))
	g.emit(c.Unit, types.EventMoved, map[string]any{"from": from, "to": c.Dest})
	return nil
}

// EndAction spends a unit's action for the turn and fires its
// action_done effects.
type EndAction struct {
	cmd
	Unit unit.ID
}

func (c *EndAction) Op() Op         { return OpEndAction }
func (c *EndAction) String() string { return fmt.Sprintf("end_action(#%d)", c.Unit) }

func (c *EndAction) Execute(g *Game) Seq {
	u := g.units.Get(c.Unit)
	if u.IsDead() {
		return nil
	}
	u.EndAction()
	g.raise(u, effects.OnActionDone, nil)
	return nil
}

// ActionMode is the decomposition policy of an Action.
type ActionMode int

const (
	// ActionImmediate runs the move inside the action's own step and
	// queues the act. Used for player input, where the move is already
	// shown.
	ActionImmediate ActionMode = iota
	// ActionDecompose queues the move and the act as separate steps.
	ActionDecompose
	// ActionNone would run both synchronously. It is not supported.
	ActionNone
)

func (m ActionMode) String() string {
	switch m {
	case ActionImmediate:
		return "immediate"
	case ActionDecompose:
		return "decompose"
	case ActionNone:
		return "none"
	}
	return "invalid"
}

// Action is a unit's whole turn: an optional move followed by an optional
// act. It always expands into a flat sequence ending in EndAction.
type Action struct {
	cmd
	Move *Move
	Act  Act
	Mode ActionMode
}

func (c *Action) Op() Op { return OpAction }

func (c *Action) String() string {
	return fmt.Sprintf("action(%s move=%v act=%v)", c.Mode, c.Move, c.Act)
}

// Doer returns the unit performing the action.
func (c *Action) Doer() unit.ID {
	if c.Act != nil {
		return c.Act.Actor()
	}
	require(c.Move != nil, "Action.Doer", "action has neither move nor act")
	return c.Move.Unit
}

func (c *Action) Execute(g *Game) Seq {
	doer := c.Doer()
	var out Seq

	switch c.Mode {
	case ActionImmediate:
		if c.Move != nil {
			follow := c.Move.Execute(g)
			require(len(follow) == 0, "Action.Execute", "immediate move produced %d follow-ups", len(follow))
		}
		if c.Act != nil {
			out = append(out, c.Act)
		}
	case ActionDecompose:
		g.log.Debug("decomposing action", zap.Uint32("unit", uint32(doer)))
		if c.Move != nil {
			out = append(out, c.Move)
		}
		if c.Act != nil {
			out = append(out, c.Act)
		}
	default:
		require(false, "Action.Execute", "unsupported decomposition mode %s", c.Mode)
	}

	return append(out, &EndAction{Unit: doer})
}
