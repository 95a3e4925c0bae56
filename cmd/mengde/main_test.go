package main

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/kangjianbin/mengde/engine/play"
	"github.com/kangjianbin/mengde/types"
)

func TestSetup_SampleStage(t *testing.T) {
	g, stage, err := setup("../../data/ruleset.yaml", "../../data/stage1.lua", 7, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer stage.Close()

	if g.Status() != types.StatusDeploying {
		t.Errorf("status = %s, want deploying", g.Status())
	}
	if g.RosterHero("huangzhong") == nil {
		t.Error("on_deploy should appoint Huang Zhong")
	}

	s := play.New(g)
	for _, hero := range []string{"guanyu", "zhangfei", "zhugeliang", "huangzhong"} {
		if r := s.Exec("deploy " + hero); r.Rejected {
			t.Fatalf("deploy %s: %v", hero, r.Output)
		}
	}
	if r := s.Exec("start"); r.Rejected {
		t.Fatalf("start: %v", r.Output)
	}
	if n := g.CountAlive(types.ForceOwn); n != 5 {
		t.Errorf("own units = %d, want 5", n)
	}
	if n := g.CountAlive(types.ForceEnemy); n != 6 {
		t.Errorf("enemy units = %d, want 6", n)
	}
}

func TestSetup_MissingFiles(t *testing.T) {
	if _, _, err := setup("nope.yaml", "../../data/stage1.lua", 1, zaptest.NewLogger(t)); err == nil {
		t.Error("expected an error for a missing ruleset")
	}
	if _, _, err := setup("../../data/ruleset.yaml", "nope.lua", 1, zaptest.NewLogger(t)); err == nil {
		t.Error("expected an error for a missing stage")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(""); err != nil {
		t.Errorf("default logger: %v", err)
	}
	if _, err := newLogger("debug"); err != nil {
		t.Errorf("debug logger: %v", err)
	}
	if _, err := newLogger("chatty"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
