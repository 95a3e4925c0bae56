// Package formula computes combat chances and damage from resolved
// attributes. Every function is pure; drawing against a chance is the
// engine's job.
//
// Chances are integer percentages in [0,100]. Most of them follow a ratio
// curve: the attacker's stat compared with the defender's, with breakpoints
// at half, equal and double (or triple) the defender's value.
package formula

import "github.com/kangjianbin/mengde/types"

// BasicAttackAccuracy is the hit chance of a basic attack, from dexterity.
func BasicAttackAccuracy(atk, def types.Attribute) int {
	a, d := atk.Dex(), def.Dex()
	if d <= 0 {
		return 100
	}
	var c int
	switch {
	case a >= 2*d:
		c = 100
	case a >= d:
		c = 90 + 10*(a-d)/d
	case 2*a >= d:
		c = 50 + 40*(2*a-d)/d
	default:
		c = 30 + 40*a/d
	}
	return clampChance(c)
}

// BasicAttackCritical is the critical-hit chance, from morale.
func BasicAttackCritical(atk, def types.Attribute) int {
	a, d := atk.Mor(), def.Mor()
	if d <= 0 {
		return 100
	}
	var c int
	switch {
	case a >= 3*d:
		c = 100
	case a >= 2*d:
		c = 50 + 50*(a-2*d)/d
	case a >= d:
		c = 10 + 40*(a-d)/d
	default:
		c = 10 * a / d
	}
	return clampChance(c)
}

// BasicAttackDouble is the chance of a follow-up second attack, from
// dexterity. Equal dexterity never doubles.
func BasicAttackDouble(atk, def types.Attribute) int {
	a, d := atk.Dex(), def.Dex()
	if d <= 0 {
		return 100
	}
	var c int
	switch {
	case a >= 3*d:
		c = 100
	case a >= 2*d:
		c = 50 + 50*(a-2*d)/d
	case a > d:
		c = 50 * (a - d) / d
	default:
		c = 0
	}
	return clampChance(c)
}

// BasicAttackDamage is the damage of a plain hit before critical and
// second-attack scaling. terrainEffect is the percentage applied to the
// defender's defense on its current cell. Never negative.
func BasicAttackDamage(atk, def types.Attribute, terrainEffect int) int {
	defense := def.Def() * terrainEffect / 100
	return nonNegative(atk.Atk() - defense/2)
}

// MagicAccuracy is the hit chance of a spell with the given base bonus,
// from intelligence.
func MagicAccuracy(atk, def types.Attribute, bonus int) int {
	a, d := atk.Itl(), def.Itl()
	if d <= 0 {
		return clampChance(100 + bonus)
	}
	var c int
	switch {
	case a >= 2*d:
		c = 90
	case a >= d:
		c = 70 + 20*(a-d)/d
	default:
		c = 30 + 40*a/d
	}
	return clampChance(c + bonus)
}

// MagicDamage is the damage of a damaging spell. Intelligence plays the
// role of attack and resistance; terrain scales resistance.
func MagicDamage(atk, def types.Attribute, power, terrainEffect int) int {
	resist := def.Itl() * terrainEffect / 100
	return nonNegative(power + atk.Itl()/2 - resist/4)
}

// HealAmount is the hp restored by a healing spell.
func HealAmount(atk types.Attribute, power int) int {
	return nonNegative(power + atk.Itl()/2)
}

// Critical scales damage by 1.5, rounding half up.
func Critical(d int) int { return (d*3 + 1) / 2 }

// Second scales damage by 0.75, rounding half up.
func Second(d int) int { return (d*3 + 2) / 4 }

// ApplyMod adjusts damage by an addend then a percentage multiplier.
func ApplyMod(d, addend, multiplier int) int {
	return nonNegative((d + addend) * (100 + multiplier) / 100)
}

func clampChance(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
