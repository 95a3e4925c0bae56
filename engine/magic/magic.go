// Package magic defines spell data. Resolution lives in the engine.
package magic

import "github.com/kangjianbin/mengde/types"

// Kind is the effect family of a spell.
type Kind string

const (
	KindDamage  Kind = "damage"
	KindHeal    Kind = "heal"
	KindStatMod Kind = "stat_mod"
)

// Magic is an immutable spell definition loaded from the ruleset.
type Magic struct {
	ID       string
	Name     string
	Kind     Kind
	MpCost   int
	Power    int
	Accuracy int // base hit bonus in percent
	Range    []types.Vec2D

	// stat_mod
	Stat       types.StatIndex
	Addend     int
	Multiplier int
	Turns      int
}

// TargetsHostile reports whether the spell is cast on enemies.
func (m *Magic) TargetsHostile() bool {
	switch m.Kind {
	case KindDamage:
		return true
	case KindStatMod:
		return m.Multiplier < 0 || m.Addend < 0
	default:
		return false
	}
}

// InRange reports whether target is reachable from caster with this spell.
// A spell without a range list reaches adjacent cells only.
func (m *Magic) InRange(caster, target types.Vec2D) bool {
	d := target.Sub(caster)
	if len(m.Range) == 0 {
		return types.Distance(caster, target) <= 1
	}
	for _, r := range m.Range {
		if r == d {
			return true
		}
	}
	return false
}
