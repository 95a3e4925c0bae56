package engine

import (
	"testing"

	"github.com/kangjianbin/mengde/types"
)

func TestAction_ImmediateMovesInStep(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)
	dest := types.Vec2D{X: 2, Y: 1}

	a := &Action{Move: &Move{Unit: hero, Dest: dest}, Act: &Stay{Unit: hero}, Mode: ActionImmediate}
	out := a.Execute(g)

	if pos := g.units.Get(hero).Position(); pos != dest {
		t.Fatalf("position = %v, want %v", pos, dest)
	}
	if len(out) != 2 {
		t.Fatalf("follow-ups = %v, want stay and end_action", out)
	}
	if out[0].Op() != OpStay || out[1].Op() != OpEndAction {
		t.Errorf("follow-ups = %v", out)
	}
	if !g.Board().Cell(dest).IsUnitPlaced() || g.Board().Cell(types.Vec2D{}).IsUnitPlaced() {
		t.Error("board occupancy was not moved with the unit")
	}
}

func TestAction_DecomposeQueuesSteps(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)
	foe := spawn(t, g, "foe", types.ForceEnemy, 3, 0)

	a := &Action{
		Move: &Move{Unit: hero, Dest: types.Vec2D{X: 2}},
		Act:  NewBasicAttack(hero, foe, AttackActive),
		Mode: ActionDecompose,
	}
	out := a.Execute(g)

	if pos := g.units.Get(hero).Position(); pos != (types.Vec2D{}) {
		t.Fatalf("decompose must not move in its own step, at %v", pos)
	}
	want := []Op{OpMove, OpBasicAttack, OpEndAction}
	if len(out) != len(want) {
		t.Fatalf("follow-ups = %v", out)
	}
	for i, op := range want {
		if out[i].Op() != op {
			t.Errorf("follow-up %d = %s, want %s", i, out[i].Op(), op)
		}
	}
}

func TestAction_NoneModeIsContractViolation(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)

	a := &Action{Move: &Move{Unit: hero, Dest: types.Vec2D{X: 1}}, Mode: ActionNone}
	expectContract(t, func() { a.Execute(g) })
}

func TestAction_MoveOnlyEndsAction(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)

	if err := g.PushAction(&Action{Move: &Move{Unit: hero, Dest: types.Vec2D{Y: 3}}}); err != nil {
		t.Fatalf("PushAction: %v", err)
	}
	results := drainQueue(t, g)

	u := g.units.Get(hero)
	if u.Position() != (types.Vec2D{Y: 3}) || !u.IsDone() {
		t.Errorf("unit at %v done=%t", u.Position(), u.IsDone())
	}
	last := results[len(results)-1]
	if last.Cmd.Op() != OpEndAction {
		t.Errorf("last step = %s, want end_action", last.Cmd)
	}
	if got := eventTypes(last.Events); len(got) != 1 || got[0] != types.EventActionDone {
		t.Errorf("end_action events = %v", got)
	}
}

func TestAction_FullExchangeThroughQueue(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)
	foe := spawn(t, g, "foe", types.ForceEnemy, 3, 0)

	err := g.PushAction(&Action{
		Move: &Move{Unit: hero, Dest: types.Vec2D{X: 2}},
		Act:  NewBasicAttack(hero, foe, AttackActive),
	})
	if err != nil {
		t.Fatalf("PushAction: %v", err)
	}

	var ops []Op
	for _, r := range drainQueue(t, g) {
		ops = append(ops, r.Cmd.Op())
	}
	// attack hits, the foe counters and misses, then the action ends.
	want := []Op{OpAction, OpBasicAttack, OpHit, OpBasicAttack, OpMiss, OpEndAction}
	if len(ops) != len(want) {
		t.Fatalf("steps = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("steps = %v, want %v", ops, want)
		}
	}
	if hp := g.units.Get(foe).CurrentHpMp().Hp; hp != 60 {
		t.Errorf("foe hp = %d, want 60", hp)
	}
}

func TestMove_SameCellIsNoop(t *testing.T) {
	g := newBattle(t, neverRoll)
	hero := spawn(t, g, "hero", types.ForceOwn, 1, 1)

	if out := (&Move{Unit: hero, Dest: types.Vec2D{X: 1, Y: 1}}).Execute(g); out != nil {
		t.Errorf("follow-ups = %v", out)
	}
	if len(g.events) != 0 {
		t.Errorf("events = %v", eventTypes(g.events))
	}
}
