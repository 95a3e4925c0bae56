package engine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/types"
)

const (
	evBegin = "begin"
	evWin   = "win"
	evLose  = "lose"
)

// newStatusMachine builds the battle status machine. Decided states have
// no outgoing transitions, so a result never reverts.
func newStatusMachine(log *zap.Logger) *fsm.FSM {
	return fsm.NewFSM(
		types.StatusDeploying.String(),
		fsm.Events{
			{Name: evBegin, Src: []string{types.StatusDeploying.String()}, Dst: types.StatusUndecided.String()},
			{Name: evWin, Src: []string{types.StatusUndecided.String()}, Dst: types.StatusVictory.String()},
			{Name: evLose, Src: []string{types.StatusUndecided.String()}, Dst: types.StatusDefeat.String()},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debug("status changed", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
		},
	)
}

// Status returns the battle status.
func (g *Game) Status() types.Status {
	s, ok := types.ParseStatus(g.status.Current())
	require(ok, "Game.Status", "unknown status state %q", g.status.Current())
	return s
}

func (g *Game) transition(event string) {
	err := g.status.Event(context.Background(), event)
	require(err == nil, "Game.transition", "status event %q from %s: %v", event, g.status.Current(), err)
}

// CheckStatus asks the stage script for the battle result. It only runs
// while the battle is undecided and reports whether it is now decided.
func (g *Game) CheckStatus() (bool, error) {
	if g.Status() != types.StatusUndecided {
		return false, nil
	}
	res, err := g.script.EndCondition()
	if err != nil {
		return false, err
	}
	switch res {
	case types.StatusUndecided:
		return false, nil
	case types.StatusVictory:
		g.transition(evWin)
		g.queue.Append(&GameVictory{})
	case types.StatusDefeat:
		g.transition(evLose)
		g.queue.Append(&GameEnd{Victory: false})
	default:
		return false, fmt.Errorf("end_condition returned %s", res)
	}
	g.log.Info("battle decided", zap.Stringer("status", res))
	return true, nil
}

// GameVictory runs the stage's victory hook and then ends the game.
type GameVictory struct{ cmd }

func (c *GameVictory) Op() Op         { return OpGameVictory }
func (c *GameVictory) String() string { return "game_victory" }

func (c *GameVictory) Execute(g *Game) Seq {
	g.emitGlobal(types.EventVictory, nil)
	if err := g.script.Call("on_victory"); err != nil {
		g.fail(err)
	}
	g.queue.Append(&GameEnd{Victory: true})
	return nil
}

// GameEnd closes the battle.
type GameEnd struct {
	cmd
	Victory bool
}

func (c *GameEnd) Op() Op         { return OpGameEnd }
func (c *GameEnd) String() string { return fmt.Sprintf("game_end(victory=%t)", c.Victory) }

func (c *GameEnd) Execute(g *Game) Seq {
	g.ended = true
	g.emitGlobal(types.EventGameEnd, map[string]any{"victory": c.Victory})
	return nil
}
