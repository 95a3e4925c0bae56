package engine

import (
	"errors"
	"testing"

	"github.com/kangjianbin/mengde/types"
)

func TestStatus_DeployThenBegin(t *testing.T) {
	g, err := New(Config{Rules: testRules(), Map: mustMap(openField), TurnLimit: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Status() != types.StatusDeploying {
		t.Fatalf("status = %s, want deploying", g.Status())
	}
	if err := g.PushEndTurn(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("PushEndTurn before start = %v, want ErrNotStarted", err)
	}
	if err := g.SubmitDeploy(); err != nil {
		t.Fatalf("SubmitDeploy: %v", err)
	}
	if g.Status() != types.StatusUndecided {
		t.Fatalf("status = %s, want undecided", g.Status())
	}
	if err := g.SubmitDeploy(); !errors.Is(err, ErrNotDeploying) {
		t.Errorf("second SubmitDeploy = %v, want ErrNotDeploying", err)
	}
}

func TestStatus_VictoryFlow(t *testing.T) {
	script := &stubScript{}
	g := newBattle(t, neverRoll, withScript(script))
	spawn(t, g, "hero", types.ForceOwn, 0, 0)
	g.PushCmd(&Speak{Unit: 0, Words: "Forward!"})

	script.result = types.StatusVictory
	res, err := g.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Status != types.StatusVictory {
		t.Fatalf("status = %s, want victory", res.Status)
	}
	if _, ok := g.NextCmd().(*GameVictory); !ok {
		t.Fatalf("next = %v, want game_victory", g.NextCmd())
	}

	// Once decided the predicate is not consulted again.
	script.result = types.StatusDefeat
	results := drainQueue(t, g)

	if len(results) != 2 || results[1].Cmd.Op() != OpGameEnd {
		t.Fatalf("steps = %v", results)
	}
	if end := results[1].Cmd.(*GameEnd); !end.Victory {
		t.Error("game should end in victory")
	}
	if g.Status() != types.StatusVictory || !g.Ended() {
		t.Errorf("status %s ended=%t", g.Status(), g.Ended())
	}
	if want := []string{"on_begin", "on_victory"}; len(script.calls) != 2 || script.calls[1] != want[1] {
		t.Errorf("hooks = %v, want %v", script.calls, want)
	}
	if err := g.PushEndTurn(); !errors.Is(err, ErrBattleDecided) {
		t.Errorf("PushEndTurn after victory = %v", err)
	}
}

func TestStatus_DefeatSkipsVictoryHook(t *testing.T) {
	script := &stubScript{result: types.StatusDefeat}
	g := newBattle(t, neverRoll, withScript(script))
	if err := g.PushEndTurn(); err != nil {
		t.Fatalf("PushEndTurn: %v", err)
	}
	results := drainQueue(t, g)

	last := results[len(results)-1]
	end, ok := last.Cmd.(*GameEnd)
	if !ok || end.Victory {
		t.Fatalf("last step = %v, want game_end(defeat)", last.Cmd)
	}
	for _, h := range script.calls {
		if h == "on_victory" {
			t.Error("on_victory must not run on defeat")
		}
	}
}

func TestStatus_ScriptErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	g := newBattle(t, neverRoll, withScript(&stubScript{err: boom}))
	if err := g.PushEndTurn(); err != nil {
		t.Fatalf("PushEndTurn: %v", err)
	}
	_, err := g.Step()
	if !errors.Is(err, boom) {
		t.Fatalf("Step error = %v, want boom", err)
	}
	if g.Status() != types.StatusUndecided {
		t.Errorf("status = %s, a script failure is not a result", g.Status())
	}
}

func TestStatus_UnknownCode(t *testing.T) {
	g := newBattle(t, neverRoll, withScript(&stubScript{result: types.StatusDeploying}))
	if _, err := g.CheckStatus(); err == nil {
		t.Fatal("expected an error for a non-terminal code")
	}
}

func TestStatus_ResumeAfterScriptError(t *testing.T) {
	boom := errors.New("transient")
	script := &stubScript{}
	g := newBattle(t, neverRoll, withScript(script))
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)

	// Nothing to resume yet, so the predicate is not even asked.
	script.err = boom
	if err := g.Resume(nil); err != nil {
		t.Fatalf("Resume without a stall = %v", err)
	}

	g.PushCmd(&Speak{Unit: hero, Words: "Hold the line."})
	g.PushCmd(&Speak{Unit: hero, Words: "Now, charge!"})
	if err := g.Drain(nil); !errors.Is(err, boom) {
		t.Fatalf("Drain = %v, want the script error", err)
	}
	if !g.Stalled() || !g.HasPendingCmd() {
		t.Fatalf("stalled %t, pending %t", g.Stalled(), g.HasPendingCmd())
	}
	if err := g.PushEndTurn(); !errors.Is(err, ErrBusy) {
		t.Errorf("PushEndTurn while stalled = %v, want ErrBusy", err)
	}

	script.err = nil
	steps := 0
	if err := g.Resume(func(StepResult) { steps++ }); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if steps != 1 || g.Stalled() || g.HasPendingCmd() {
		t.Fatalf("steps %d, stalled %t, pending %t", steps, g.Stalled(), g.HasPendingCmd())
	}
	if err := g.PushEndTurn(); err != nil {
		t.Errorf("PushEndTurn after Resume: %v", err)
	}
}

func TestStatus_ResumeRunsSkippedCheck(t *testing.T) {
	script := &stubScript{err: errors.New("transient")}
	g := newBattle(t, neverRoll, withScript(script))
	hero := spawn(t, g, "hero", types.ForceOwn, 0, 0)

	g.PushCmd(&Speak{Unit: hero, Words: "The last rebel falls."})
	if err := g.Drain(nil); err == nil {
		t.Fatal("expected the script error")
	}
	if g.HasPendingCmd() || !g.Stalled() {
		t.Fatalf("pending %t, stalled %t", g.HasPendingCmd(), g.Stalled())
	}

	script.err = nil
	script.result = types.StatusVictory
	if err := g.Resume(nil); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if g.Status() != types.StatusVictory || !g.Ended() {
		t.Errorf("status %s ended=%t, want a finished victory", g.Status(), g.Ended())
	}
}
