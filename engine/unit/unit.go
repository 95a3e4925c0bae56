package unit

import (
	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/stat"
	"github.com/kangjianbin/mengde/types"
)

// Unit is one battle participant. It is owned by a Registry; everything
// else refers to it by ID.
type Unit struct {
	id    ID
	hero  *Hero
	force types.Force
	pos   types.Vec2D
	dir   types.Direction
	cur   types.HpMp
	done  bool
	dead  bool
	mods  stat.List
}

// New creates a unit at full health for hero on the given side.
func New(hero *Hero, force types.Force, pos types.Vec2D) *Unit {
	return &Unit{
		hero:  hero,
		force: force,
		pos:   pos,
		dir:   types.DirDown,
		cur:   hero.MaxHpMp(),
	}
}

func (u *Unit) ID() ID                     { return u.id }
func (u *Unit) Hero() *Hero                { return u.hero }
func (u *Unit) Name() string               { return u.hero.Name() }
func (u *Unit) Force() types.Force         { return u.force }
func (u *Unit) Position() types.Vec2D      { return u.pos }
func (u *Unit) Direction() types.Direction { return u.dir }
func (u *Unit) Level() int                 { return u.hero.Level() }
func (u *Unit) Move() int                  { return u.hero.Move() }
func (u *Unit) IsDead() bool               { return u.dead }
func (u *Unit) IsDone() bool               { return u.done }
func (u *Unit) CurrentHpMp() types.HpMp    { return u.cur }
func (u *Unit) OriginalHpMp() types.HpMp   { return u.hero.MaxHpMp() }
func (u *Unit) Modifiers() *stat.List      { return &u.mods }

func (u *Unit) SetPosition(p types.Vec2D)      { u.pos = p }
func (u *Unit) SetDirection(d types.Direction) { u.dir = d }

// Attribute resolves base, level, equipment and active modifiers.
func (u *Unit) Attribute() types.Attribute {
	return u.hero.Stat().Apply(u.mods.CalcAddends(), u.mods.CalcMultipliers())
}

// AddModifier installs a timed stat modifier.
func (u *Unit) AddModifier(m stat.Modifier) { u.mods.Add(m) }

// NextTurn ticks the modifier ledger.
func (u *Unit) NextTurn() { u.mods.NextTurn() }

// EndAction marks the unit's action for this turn as spent.
func (u *Unit) EndAction() { u.done = true }

// ResetAction makes the unit available again.
func (u *Unit) ResetAction() { u.done = false }

// IsHostile reports whether o fights on the opposing side.
func (u *Unit) IsHostile(o *Unit) bool { return u.force.IsHostile(o.force) }

// IsInRange reports whether target is within the class attack range
// measured from the unit's current cell.
func (u *Unit) IsInRange(target types.Vec2D) bool {
	return u.IsInRangeFrom(u.pos, target)
}

// IsInRangeFrom is IsInRange for a hypothetical origin cell.
func (u *Unit) IsInRangeFrom(origin, target types.Vec2D) bool {
	d := target.Sub(origin)
	for _, r := range u.hero.Class().AttackRange {
		if r == d {
			return true
		}
	}
	return false
}

// DoDamage subtracts hp and reports whether the unit is still standing.
func (u *Unit) DoDamage(amount int) bool {
	u.cur.Hp -= amount
	if u.cur.Hp < 0 {
		u.cur.Hp = 0
	}
	return u.cur.Hp > 0
}

// RestoreHP adds hp up to the maximum and returns the amount restored.
func (u *Unit) RestoreHP(amount int) int {
	limit := u.OriginalHpMp().Hp
	before := u.cur.Hp
	u.cur.Hp += amount
	if u.cur.Hp > limit {
		u.cur.Hp = limit
	}
	return u.cur.Hp - before
}

// UseMp spends mp, failing without change when there is not enough.
func (u *Unit) UseMp(amount int) bool {
	if u.cur.Mp < amount {
		return false
	}
	u.cur.Mp -= amount
	return true
}

// ExpFor returns the experience earned by acting on target.
func (u *Unit) ExpFor(target *Unit) int {
	exp := 8 + 2*(target.Level()-u.Level())
	if exp < 1 {
		exp = 1
	}
	if exp > 50 {
		exp = 50
	}
	return exp
}

// GainExp grants experience for acting on target and returns the number
// of levels gained. Maximums grow on level up; current values are kept.
func (u *Unit) GainExp(target *Unit) int {
	levels := u.hero.GainExp(u.ExpFor(target))
	if levels > 0 {
		limit := u.OriginalHpMp()
		if u.cur.Hp > limit.Hp {
			u.cur.Hp = limit.Hp
		}
		if u.cur.Mp > limit.Mp {
			u.cur.Mp = limit.Mp
		}
	}
	return levels
}

// RaiseEffects runs the equipment event-effects listening to trig.
func (u *Unit) RaiseEffects(trig effects.Trigger, mod *effects.AttackMod) []effects.Restore {
	var restores []effects.Restore
	u.hero.Equipment().Each(func(e *Equipment) {
		restores = append(restores, effects.Apply(e.ID, e.Effects, trig, u, mod)...)
	})
	return restores
}
