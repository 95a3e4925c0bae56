package engine

import (
	"testing"

	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/stat"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

func TestTurn_CounterAdvancesOnWrap(t *testing.T) {
	turn := NewTurn([]types.Force{types.ForceOwn, types.ForceEnemy}, 5)

	steps := []struct {
		force   types.Force
		current int
	}{
		{types.ForceOwn, 1},
		{types.ForceEnemy, 1},
		{types.ForceOwn, 2},
		{types.ForceEnemy, 2},
		{types.ForceOwn, 3},
	}
	for i, s := range steps {
		if i > 0 {
			turn.Next()
		}
		if turn.Force() != s.force || turn.Current() != s.current {
			t.Fatalf("step %d: %s turn %d, want %s turn %d", i, turn.Force(), turn.Current(), s.force, s.current)
		}
	}
	if turn.Limit() != 5 {
		t.Errorf("Limit = %d", turn.Limit())
	}
}

func TestTurn_DefaultForces(t *testing.T) {
	turn := NewTurn(nil, 3)
	if len(turn.Forces()) != 3 || turn.Forces()[2] != types.ForceEnemy {
		t.Fatalf("forces = %v, want own, ally, enemy", turn.Forces())
	}
}

func TestEndForceTurn_ResetsAndTicks(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)
	foe := spawn(t, g, "foe", types.ForceEnemy, 5, 5)

	g.units.Get(hero).EndAction()
	f := g.units.Get(foe)
	f.AddModifier(stat.Modifier{ID: "curse", Stat: types.StatAtk, Addend: -10, TurnsLeft: 0})

	if g.EndForceTurn() {
		t.Fatal("control should pass to the enemy")
	}
	if g.units.Get(hero).IsDone() {
		t.Error("own unit should be available again")
	}
	if f.Modifiers().Len() != 0 {
		t.Error("expired modifier should be dropped when the enemy turn begins")
	}
	if g.TurnCurrent() != 1 {
		t.Errorf("turn = %d, want 1", g.TurnCurrent())
	}

	got := eventTypes(g.events)
	if len(got) != 2 || got[0] != types.EventTurnEnd || got[1] != types.EventTurnBegin {
		t.Errorf("events = %v, want turn_end then the foe's turn_begin", got)
	}

	if !g.EndForceTurn() {
		t.Fatal("control should return to the player")
	}
	if g.TurnCurrent() != 2 {
		t.Errorf("turn = %d, want 2", g.TurnCurrent())
	}
}

func TestEndForceTurn_RestoreEffectQueued(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)
	u := g.units.Get(hero)
	u.Hero().PutOn(&unit.Equipment{
		ID: "pouch", Name: "Herb Pouch", Slot: unit.SlotAid,
		Effects: []effects.Effect{{On: effects.OnTurnBegin, Kind: effects.KindRestoreHp, Ratio: 10, Adder: 5}},
	})
	u.DoDamage(50)

	g.EndForceTurn() // to the enemy
	if g.HasPendingCmd() {
		t.Fatalf("no restore expected on the enemy's turn, pending %v", g.NextCmd())
	}
	g.EndForceTurn() // back to the player

	r, ok := g.NextCmd().(*RestoreHp)
	if !ok || r.Unit != hero {
		t.Fatalf("expected queued restore for the hero, got %v", g.NextCmd())
	}
	drainQueue(t, g)
	if hp := u.CurrentHpMp().Hp; hp != 65 {
		t.Errorf("hp = %d, want 65", hp)
	}
}

func TestEndTurnCommand(t *testing.T) {
	g := newBattle(t, neverRoll)
	if err := g.PushEndTurn(); err != nil {
		t.Fatalf("PushEndTurn: %v", err)
	}
	res, err := g.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Cmd.Op() != OpEndTurn || g.Force() != types.ForceEnemy {
		t.Errorf("after %s the %s force is in control", res.Cmd, g.Force())
	}
	if !g.IsAITurn() {
		t.Error("enemy turn should be an AI turn")
	}
}

func TestDrain_AllyForceIsAIControlled(t *testing.T) {
	g := newBattle(t, neverRoll, withForces(types.ForceOwn, types.ForceAlly, types.ForceEnemy))
	spawn(t, g, "hero", types.ForceOwn, 0, 0)
	ally := spawn(t, g, "hero", types.ForceAlly, 5, 5)

	if err := g.PushEndTurn(); err != nil {
		t.Fatalf("PushEndTurn: %v", err)
	}
	var acted []unit.ID
	err := g.Drain(func(r StepResult) {
		if e, ok := r.Cmd.(*EndAction); ok {
			acted = append(acted, e.Unit)
		}
	})
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(acted) != 1 || acted[0] != ally {
		t.Errorf("units that acted = %v, want only the ally", acted)
	}
	if g.TurnCurrent() != 2 || !g.IsUserTurn() {
		t.Errorf("after drain: %s turn %d", g.Force(), g.TurnCurrent())
	}
}
