package engine

import (
	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// DefaultForces is the turn order used when a stage does not set one.
var DefaultForces = []types.Force{types.ForceOwn, types.ForceAlly, types.ForceEnemy}

// Turn tracks which force is in control. The counter starts at 1 and
// increments each time the cycle wraps to the first force.
type Turn struct {
	forces  []types.Force
	idx     int
	current int
	limit   int
}

// NewTurn creates a turn tracker. An empty cycle means DefaultForces.
func NewTurn(forces []types.Force, limit int) Turn {
	if len(forces) == 0 {
		forces = DefaultForces
	}
	return Turn{forces: append([]types.Force(nil), forces...), current: 1, limit: limit}
}

func (t *Turn) Force() types.Force    { return t.forces[t.idx] }
func (t *Turn) Current() int          { return t.current }
func (t *Turn) Limit() int            { return t.limit }
func (t *Turn) Forces() []types.Force { return t.forces }

// Next hands control to the next force and reports whether the cycle
// wrapped, which advances the turn counter.
func (t *Turn) Next() bool {
	t.idx++
	if t.idx < len(t.forces) {
		return false
	}
	t.idx = 0
	t.current++
	return true
}

// EndForceTurn finishes the active force's turn: its units become
// available again, control passes on, and every unit of the new force
// ticks its modifiers and fires turn_begin effects. It reports whether the
// player is now in control.
func (g *Game) EndForceTurn() bool {
	ending := g.turn.Force()
	g.units.ForEach(func(u *unit.Unit) {
		if u.Force() == ending {
			u.ResetAction()
		}
	})
	g.emitGlobal(types.EventTurnEnd, map[string]any{"force": ending.String()})

	wrapped := g.turn.Next()
	next := g.turn.Force()
	g.log.Debug("force turn ended",
		zap.Stringer("from", ending), zap.Stringer("to", next),
		zap.Int("turn", g.turn.Current()), zap.Bool("wrapped", wrapped))

	g.units.ForEach(func(u *unit.Unit) {
		if u.Force() == next {
			u.NextTurn()
			g.raise(u, effects.OnTurnBegin, nil)
		}
	})
	return g.IsUserTurn()
}
