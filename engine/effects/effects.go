// Package effects applies equipment event-effects when a unit raises an event.
// Every effect kind is one atomic operation; follow-up work that needs the
// command queue is handed back to the caller instead of being run here.
package effects

import (
	"github.com/kangjianbin/mengde/engine/stat"
	"github.com/kangjianbin/mengde/types"
)

// Trigger names the unit event an effect listens to.
type Trigger string

const (
	OnTurnBegin       Trigger = types.EventTurnBegin
	OnActionDone      Trigger = types.EventActionDone
	OnNormalAttack    Trigger = types.EventNormalAttack
	OnNormalAttacked  Trigger = types.EventNormalAttacked
	OnCounterAttack   Trigger = types.EventCounterAttack
	OnCounterAttacked Trigger = types.EventCounterAttacked
)

// Kind is the effect type.
type Kind string

const (
	KindRestoreHp Kind = "restore_hp"
	KindStatMod   Kind = "stat_mod"
	KindDamageMod Kind = "damage_mod"
)

// ValidTriggers and ValidKinds are used by the ruleset validator.
var (
	ValidTriggers = map[Trigger]bool{
		OnTurnBegin: true, OnActionDone: true,
		OnNormalAttack: true, OnNormalAttacked: true,
		OnCounterAttack: true, OnCounterAttacked: true,
	}
	ValidKinds = map[Kind]bool{
		KindRestoreHp: true, KindStatMod: true, KindDamageMod: true,
	}
)

// Effect is a single event-effect definition carried by equipment.
type Effect struct {
	On   Trigger
	Kind Kind

	// restore_hp
	Ratio int
	Adder int

	// stat_mod
	Stat  types.StatIndex
	Turns int

	// stat_mod and damage_mod
	Addend     int
	Multiplier int
}

// Target is the unit an effect mutates.
type Target interface {
	AddModifier(m stat.Modifier)
}

// AttackMod accumulates damage adjustments for the attack being executed.
type AttackMod struct {
	Addend     int
	Multiplier int
}

// Restore asks the engine to enqueue an HP restoration.
type Restore struct {
	Ratio int
	Adder int
}

// Apply runs every effect in effs listening to trig. source keys the stat
// modifiers it installs. mod may be nil for general (non-attack) events;
// damage_mod effects are then ignored.
func Apply(source string, effs []Effect, trig Trigger, t Target, mod *AttackMod) []Restore {
	var restores []Restore

	for _, eff := range effs {
		if eff.On != trig {
			continue
		}
		switch eff.Kind {
		case KindRestoreHp:
			restores = append(restores, Restore{Ratio: eff.Ratio, Adder: eff.Adder})

		case KindStatMod:
			t.AddModifier(stat.Modifier{
				ID:         source,
				Stat:       eff.Stat,
				Addend:     eff.Addend,
				Multiplier: eff.Multiplier,
				TurnsLeft:  eff.Turns,
			})

		case KindDamageMod:
			if mod == nil {
				continue
			}
			mod.Addend += eff.Addend
			mod.Multiplier += eff.Multiplier

		default:
			// Unknown kinds are rejected by the ruleset validator.
		}
	}

	return restores
}

// IsCmdTrigger reports whether trig fires during an attack command, where
// damage_mod effects are meaningful.
func IsCmdTrigger(trig Trigger) bool {
	switch trig {
	case OnNormalAttack, OnNormalAttacked, OnCounterAttack, OnCounterAttacked:
		return true
	}
	return false
}
