// Package gamedata loads the battle ruleset (terrains, classes, heroes,
// equipment and magic) from YAML and compiles it into engine definitions.
package gamedata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kangjianbin/mengde/engine/board"
	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Ruleset holds every compiled definition, keyed by id (terrains by symbol).
type Ruleset struct {
	Terrains  map[string]*board.Terrain
	Classes   map[string]*unit.Class
	Heroes    map[string]*unit.HeroTemplate
	Equipment map[string]*unit.Equipment
	Magics    map[string]*magic.Magic

	Warnings []string
}

type rawRuleset struct {
	Terrains  []rawTerrain   `yaml:"terrains"`
	Classes   []rawClass     `yaml:"classes"`
	Heroes    []rawHero      `yaml:"heroes"`
	Equipment []rawEquipment `yaml:"equipment"`
	Magics    []rawMagic     `yaml:"magics"`
}

type rawTerrain struct {
	Symbol   string         `yaml:"symbol"`
	Name     string         `yaml:"name"`
	MoveCost map[string]int `yaml:"move_cost"`
	Effect   map[string]int `yaml:"effect"`
}

type rawGrowth struct {
	Base int `yaml:"base"`
	Incr int `yaml:"incr"`
}

type rawClass struct {
	ID          string         `yaml:"id"`
	Move        int            `yaml:"move"`
	AttackRange [][]int        `yaml:"attack_range"`
	Grades      map[string]int `yaml:"grades"`
	Hp          rawGrowth      `yaml:"hp"`
	Mp          rawGrowth      `yaml:"mp"`
	Magics      []string       `yaml:"magics"`
}

type rawHero struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Class string         `yaml:"class"`
	Stat  map[string]int `yaml:"stat"`
}

type rawBonus struct {
	Stat       string `yaml:"stat"`
	Addend     int    `yaml:"addend"`
	Multiplier int    `yaml:"multiplier"`
}

type rawEffect struct {
	On         string `yaml:"on"`
	Kind       string `yaml:"kind"`
	Ratio      int    `yaml:"ratio"`
	Adder      int    `yaml:"adder"`
	Stat       string `yaml:"stat"`
	Turns      int    `yaml:"turns"`
	Addend     int    `yaml:"addend"`
	Multiplier int    `yaml:"multiplier"`
}

type rawEquipment struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Slot    string      `yaml:"slot"`
	Bonuses []rawBonus  `yaml:"bonuses"`
	Effects []rawEffect `yaml:"effects"`
}

type rawMagic struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	MpCost     int     `yaml:"mp_cost"`
	Power      int     `yaml:"power"`
	Accuracy   int     `yaml:"accuracy"`
	Range      [][]int `yaml:"range"`
	Stat       string  `yaml:"stat"`
	Addend     int     `yaml:"addend"`
	Multiplier int     `yaml:"multiplier"`
	Turns      int     `yaml:"turns"`
}

// Load reads and compiles a ruleset file.
func Load(path string) (*Ruleset, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	rs, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Parse compiles a ruleset from YAML. Reference and value problems are
// reported together as a *ValidationError.
func Parse(data []byte) (*Ruleset, error) {
	var raw rawRuleset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	rs := compile(&raw, ve)
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	rs.Warnings = ve.Warnings
	return rs, nil
}

func compile(raw *rawRuleset, ve *ValidationError) *Ruleset {
	rs := &Ruleset{
		Terrains:  map[string]*board.Terrain{},
		Classes:   map[string]*unit.Class{},
		Heroes:    map[string]*unit.HeroTemplate{},
		Equipment: map[string]*unit.Equipment{},
		Magics:    map[string]*magic.Magic{},
	}

	for _, t := range raw.Terrains {
		if len([]rune(t.Symbol)) != 1 {
			ve.errorf("terrain %q: symbol must be a single character, got %q", t.Name, t.Symbol)
			continue
		}
		if _, dup := rs.Terrains[t.Symbol]; dup {
			ve.errorf("terrain symbol %q defined twice", t.Symbol)
			continue
		}
		rs.Terrains[t.Symbol] = &board.Terrain{Symbol: t.Symbol, Name: t.Name, MoveCost: t.MoveCost, Effect: t.Effect}
	}

	for _, m := range raw.Magics {
		if dupID(ve, "magic", m.ID, rs.Magics) {
			continue
		}
		rs.Magics[m.ID] = compileMagic(m, ve)
	}

	for _, c := range raw.Classes {
		if dupID(ve, "class", c.ID, rs.Classes) {
			continue
		}
		rs.Classes[c.ID] = compileClass(c, rs, ve)
	}

	for _, h := range raw.Heroes {
		if dupID(ve, "hero", h.ID, rs.Heroes) {
			continue
		}
		class, ok := rs.Classes[h.Class]
		if !ok {
			ve.errorf("hero %q: unknown class %q", h.ID, h.Class)
			continue
		}
		name := h.Name
		if name == "" {
			name = h.ID
		}
		rs.Heroes[h.ID] = &unit.HeroTemplate{
			ID:    h.ID,
			Name:  name,
			Class: class,
			Stat:  compileStats(ve, "hero "+h.ID, h.Stat),
		}
	}

	for _, e := range raw.Equipment {
		if dupID(ve, "equipment", e.ID, rs.Equipment) {
			continue
		}
		rs.Equipment[e.ID] = compileEquipment(e, ve)
	}

	validate(rs, ve)
	return rs
}

func compileClass(c rawClass, rs *Ruleset, ve *ValidationError) *unit.Class {
	where := "class " + c.ID
	for _, id := range c.Magics {
		if _, ok := rs.Magics[id]; !ok {
			ve.errorf("%s: unknown magic %q", where, id)
		}
	}
	return &unit.Class{
		ID:          c.ID,
		Move:        c.Move,
		AttackRange: compileOffsets(ve, where, c.AttackRange),
		Grades:      compileStats(ve, where, c.Grades),
		HpBase:      c.Hp.Base,
		HpIncr:      c.Hp.Incr,
		MpBase:      c.Mp.Base,
		MpIncr:      c.Mp.Incr,
		Magics:      c.Magics,
	}
}

func compileMagic(m rawMagic, ve *ValidationError) *magic.Magic {
	where := "magic " + m.ID
	out := &magic.Magic{
		ID:         m.ID,
		Name:       m.Name,
		Kind:       magic.Kind(m.Kind),
		MpCost:     m.MpCost,
		Power:      m.Power,
		Accuracy:   m.Accuracy,
		Range:      compileOffsets(ve, where, m.Range),
		Addend:     m.Addend,
		Multiplier: m.Multiplier,
		Turns:      m.Turns,
	}
	if out.Name == "" {
		out.Name = m.ID
	}
	switch out.Kind {
	case magic.KindDamage, magic.KindHeal:
	case magic.KindStatMod:
		out.Stat = compileStat(ve, where, m.Stat)
	default:
		ve.errorf("%s: unknown kind %q", where, m.Kind)
	}
	return out
}

func compileEquipment(e rawEquipment, ve *ValidationError) *unit.Equipment {
	where := "equipment " + e.ID
	out := &unit.Equipment{ID: e.ID, Name: e.Name, Slot: unit.Slot(e.Slot)}
	if out.Name == "" {
		out.Name = e.ID
	}
	if !unit.ValidSlot(out.Slot) {
		ve.errorf("%s: unknown slot %q", where, e.Slot)
	}
	for _, b := range e.Bonuses {
		out.Bonuses = append(out.Bonuses, unit.StatBonus{
			Stat:       compileStat(ve, where, b.Stat),
			Addend:     b.Addend,
			Multiplier: b.Multiplier,
		})
	}
	for _, r := range e.Effects {
		eff := effects.Effect{
			On:         effects.Trigger(r.On),
			Kind:       effects.Kind(r.Kind),
			Ratio:      r.Ratio,
			Adder:      r.Adder,
			Turns:      r.Turns,
			Addend:     r.Addend,
			Multiplier: r.Multiplier,
		}
		if !effects.ValidTriggers[eff.On] {
			ve.errorf("%s: unknown effect trigger %q", where, r.On)
		}
		if !effects.ValidKinds[eff.Kind] {
			ve.errorf("%s: unknown effect kind %q", where, r.Kind)
		}
		if eff.Kind == effects.KindStatMod {
			eff.Stat = compileStat(ve, where, r.Stat)
		}
		if eff.Kind == effects.KindDamageMod && !effects.IsCmdTrigger(eff.On) {
			ve.warnf("%s: damage_mod on %q never applies", where, r.On)
		}
		out.Effects = append(out.Effects, eff)
	}
	return out
}

func compileStats(ve *ValidationError, where string, m map[string]int) types.Attribute {
	var out types.Attribute
	for name, v := range m {
		out[compileStat(ve, where, name)] = v
	}
	return out
}

func compileStat(ve *ValidationError, where, name string) types.StatIndex {
	i, ok := types.ParseStat(name)
	if !ok {
		ve.errorf("%s: unknown stat %q", where, name)
	}
	return i
}

func compileOffsets(ve *ValidationError, where string, pairs [][]int) []types.Vec2D {
	out := make([]types.Vec2D, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			ve.errorf("%s: range offset %v must be [x, y]", where, p)
			continue
		}
		out = append(out, types.Vec2D{X: p[0], Y: p[1]})
	}
	return out
}

func dupID[V any](ve *ValidationError, kind, id string, seen map[string]V) bool {
	if id == "" {
		ve.errorf("%s without id", kind)
		return true
	}
	if _, ok := seen[id]; ok {
		ve.errorf("%s %q defined twice", kind, id)
		return true
	}
	return false
}
