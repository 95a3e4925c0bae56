package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/kangjianbin/mengde/engine/board"
	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/gamedata"
	"github.com/kangjianbin/mengde/types"
)

// constDice always rolls the same face, capped to the die size. Face 0
// passes every non-zero chance; face 99 passes only certainties.
type constDice int

func (d constDice) Intn(n int) int {
	if int(d) >= n {
		return n - 1
	}
	return int(d)
}

const (
	alwaysRoll = constDice(0)
	neverRoll  = constDice(99)
)

var adjacent = []types.Vec2D{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// testRules builds a ruleset in which a level 10 hero's stats equal its
// template stats and its maximum hp is 100.
func testRules() *gamedata.Ruleset {
	flat := types.Attribute{1, 1, 1, 1, 1}
	melee := &unit.Class{ID: "melee", Move: 3, AttackRange: adjacent, Grades: flat, HpIncr: 10, MpIncr: 2}
	archer := &unit.Class{
		ID: "archer", Move: 3, Grades: flat, HpIncr: 10, MpIncr: 2,
		AttackRange: []types.Vec2D{{X: -2}, {X: 2}, {Y: -2}, {Y: 2}},
	}
	mage := &unit.Class{ID: "mage", Move: 3, AttackRange: adjacent, Grades: flat, HpIncr: 10, MpIncr: 2,
		Magics: []string{"fire", "heal", "weaken"}}

	hero := func(id string, c *unit.Class, atk, def, dex, itl, mor int) *unit.HeroTemplate {
		return &unit.HeroTemplate{ID: id, Name: id, Class: c, Stat: types.Attribute{atk, def, dex, itl, mor}}
	}
	return &gamedata.Ruleset{
		Terrains: map[string]*board.Terrain{
			".": {Symbol: ".", Name: "plain", MoveCost: map[string]int{board.DefaultKey: 1}, Effect: map[string]int{board.DefaultKey: 100}},
			"f": {Symbol: "f", Name: "forest", MoveCost: map[string]int{board.DefaultKey: 2}, Effect: map[string]int{board.DefaultKey: 120}},
			"#": {Symbol: "#", Name: "wall", MoveCost: map[string]int{board.DefaultKey: board.Impassable}},
		},
		Classes: map[string]*unit.Class{"melee": melee, "archer": archer, "mage": mage},
		Heroes: map[string]*unit.HeroTemplate{
			"hero":   hero("hero", melee, 60, 40, 40, 20, 10),
			"foe":    hero("foe", melee, 60, 40, 20, 20, 10),
			"bowman": hero("bowman", archer, 60, 40, 40, 20, 10),
			"sage":   hero("sage", mage, 20, 20, 20, 60, 10),
		},
		Equipment: map[string]*unit.Equipment{},
		Magics: map[string]*magic.Magic{
			"fire":   {ID: "fire", Name: "Fire", Kind: magic.KindDamage, MpCost: 6, Power: 20},
			"heal":   {ID: "heal", Name: "Heal", Kind: magic.KindHeal, MpCost: 4, Power: 10},
			"weaken": {ID: "weaken", Name: "Weaken", Kind: magic.KindStatMod, MpCost: 4, Stat: types.StatAtk, Multiplier: -20, Turns: 2},
		},
	}
}

var openField = []string{
	"......",
	"......",
	"......",
	"......",
	"......",
	"......",
}

// stubScript returns a fixed end condition and records hook calls.
type stubScript struct {
	result types.Status
	err    error
	calls  []string
}

func (s *stubScript) EndCondition() (types.Status, error) { return s.result, s.err }

func (s *stubScript) Call(hook string) error {
	s.calls = append(s.calls, hook)
	return nil
}

type gameOpt func(*Config)

func withScript(s Scripter) gameOpt       { return func(c *Config) { c.Script = s } }
func withRows(rows ...string) gameOpt     { return func(c *Config) { c.Map = mustMap(rows) } }
func withForces(f ...types.Force) gameOpt { return func(c *Config) { c.Forces = f } }

func mustMap(rows []string) *board.Map {
	m, err := board.New(rows, testRules().Terrains)
	if err != nil {
		panic(err)
	}
	return m
}

// newBattle creates a started battle with no units.
func newBattle(t *testing.T, dice Dice, opts ...gameOpt) *Game {
	t.Helper()
	cfg := Config{
		Rules:     testRules(),
		Map:       mustMap(openField),
		TurnLimit: 10,
		Forces:    []types.Force{types.ForceOwn, types.ForceEnemy},
		Dice:      dice,
		Logger:    zaptest.NewLogger(t),
	}
	for _, o := range opts {
		o(&cfg)
	}
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.SubmitDeploy(); err != nil {
		t.Fatalf("SubmitDeploy: %v", err)
	}
	return g
}

func spawn(t *testing.T, g *Game, hero string, f types.Force, x, y int) unit.ID {
	t.Helper()
	id, err := g.GenerateUnit(hero, 10, f, types.Vec2D{X: x, Y: y})
	if err != nil {
		t.Fatalf("GenerateUnit %s: %v", hero, err)
	}
	return id
}

// expectContract runs fn and fails unless it panics with a ContractError.
func expectContract(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		var ce *ContractError
		if !ok || !errors.As(err, &ce) {
			t.Fatalf("expected ContractError panic, got %v", r)
		}
	}()
	fn()
}

func eventTypes(evs []types.Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

// drainQueue steps until nothing is pending and returns every result.
func drainQueue(t *testing.T, g *Game) []StepResult {
	t.Helper()
	var out []StepResult
	for g.HasPendingCmd() {
		res, err := g.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		out = append(out, res)
	}
	return out
}
