package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/formula"
	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/stat"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// AttackFlag qualifies a basic attack. Exactly one of AttackActive and
// AttackCounter is set; AttackSecond may accompany either.
type AttackFlag uint8

const (
	AttackActive AttackFlag = 1 << iota
	AttackCounter
	AttackSecond
)

// BasicAttack is a melee or ranged weapon attack.
type BasicAttack struct {
	cmd
	Atk   unit.ID
	Def   unit.ID
	flags AttackFlag
}

// NewBasicAttack builds an attack, panicking with a ContractError unless
// exactly one of AttackActive and AttackCounter is set.
func NewBasicAttack(atk, def unit.ID, flags AttackFlag) *BasicAttack {
	mode := flags & (AttackActive | AttackCounter)
	require(mode == AttackActive || mode == AttackCounter, "NewBasicAttack",
		"exactly one of active and counter must be set, got %03b", flags)
	return &BasicAttack{Atk: atk, Def: def, flags: flags}
}

func (c *BasicAttack) Op() Op            { return OpBasicAttack }
func (c *BasicAttack) Actor() unit.ID    { return c.Atk }
func (c *BasicAttack) Flags() AttackFlag { return c.flags }
func (c *BasicAttack) IsCounter() bool   { return c.flags&AttackCounter != 0 }
func (c *BasicAttack) IsSecond() bool    { return c.flags&AttackSecond != 0 }

func (c *BasicAttack) String() string {
	kind := "attack"
	if c.IsCounter() {
		kind = "counter"
	}
	if c.IsSecond() {
		kind += "2"
	}
	return fmt.Sprintf("basic_attack(%s #%d -> #%d)", kind, c.Atk, c.Def)
}

func (c *BasicAttack) Execute(g *Game) Seq {
	atk, def := g.units.Get(c.Atk), g.units.Get(c.Def)
	if atk.IsDead() || def.IsDead() {
		return nil
	}

	dir := types.RelativeDirection(atk.Position(), def.Position())
	atk.SetDirection(dir)
	def.SetDirection(dir.Opposite())

	var mod effects.AttackMod
	if c.IsCounter() {
		g.raise(atk, effects.OnCounterAttack, &mod)
		g.raise(def, effects.OnCounterAttacked, &mod)
	} else {
		g.raise(atk, effects.OnNormalAttack, &mod)
		g.raise(def, effects.OnNormalAttacked, &mod)
	}

	g.log.Info("basic attack",
		zap.String("kind", c.String()),
		unitField(atk), zap.String("target", def.Name()))

	var out Seq
	atkAttr, defAttr := atk.Attribute(), def.Attribute()

	if chance(g.dice, formula.BasicAttackAccuracy(atkAttr, defAttr)) {
		critical := chance(g.dice, formula.BasicAttackCritical(atkAttr, defAttr))
		effect := g.board.TerrainEffect(def.Position(), def.Hero().Class().ID)
		damage := formula.BasicAttackDamage(atkAttr, defAttr, effect)
		damage = formula.ApplyMod(damage, mod.Addend, mod.Multiplier)
		if critical {
			damage = formula.Critical(damage)
		}
		if c.IsSecond() {
			damage = formula.Second(damage)
		}
		if damage < 1 {
			damage = 1
		}
		out = append(out, &Hit{Atk: c.Atk, Def: c.Def, Critical: critical, Damage: damage})
	} else {
		out = append(out, &Miss{Atk: c.Atk, Def: c.Def})
	}

	doubled := chance(g.dice, formula.BasicAttackDouble(atkAttr, defAttr))
	if doubled && !c.IsSecond() {
		out = append(out, NewBasicAttack(c.Atk, c.Def, c.flags|AttackSecond))
	}

	// A first attack is the last one when it did not double; a second
	// attack only when its own double draw succeeds.
	last := doubled == c.IsSecond()
	if last && !c.IsCounter() && def.IsInRange(atk.Position()) {
		g.log.Debug("counter reserved", unitField(def))
		out = append(out, NewBasicAttack(c.Def, c.Atk, AttackCounter))
	}
	return out
}

// Magic casts a spell from Atk on Def. It never doubles or counters.
type Magic struct {
	cmd
	Atk   unit.ID
	Def   unit.ID
	Magic *magic.Magic
}

func (c *Magic) Op() Op         { return OpMagic }
func (c *Magic) Actor() unit.ID { return c.Atk }
func (c *Magic) String() string {
	return fmt.Sprintf("magic(%s #%d -> #%d)", c.Magic.ID, c.Atk, c.Def)
}

func (c *Magic) Execute(g *Game) Seq {
	atk, def := g.units.Get(c.Atk), g.units.Get(c.Def)
	if atk.IsDead() || def.IsDead() {
		return nil
	}
	if !atk.UseMp(c.Magic.MpCost) {
		g.log.Info("not enough mp", unitField(atk), zap.String("magic", c.Magic.ID))
		return nil
	}
	if c.Atk != c.Def {
		dir := types.RelativeDirection(atk.Position(), def.Position())
		atk.SetDirection(dir)
		def.SetDirection(dir.Opposite())
	}

	hit := true
	if c.Magic.TargetsHostile() {
		hit = chance(g.dice, formula.MagicAccuracy(atk.Attribute(), def.Attribute(), c.Magic.Accuracy))
	}
	g.log.Info("magic", unitField(atk), zap.String("magic", c.Magic.ID),
		zap.String("target", def.Name()), zap.Bool("hit", hit))

	var out Seq
	if hit {
		amount := 0
		switch c.Magic.Kind {
		case magic.KindDamage:
			effect := g.board.TerrainEffect(def.Position(), def.Hero().Class().ID)
			amount = formula.MagicDamage(atk.Attribute(), def.Attribute(), c.Magic.Power, effect)
		case magic.KindHeal:
			amount = formula.HealAmount(atk.Attribute(), c.Magic.Power)
		}
		out = Seq{&Hit{Atk: c.Atk, Def: c.Def, Magic: c.Magic, Damage: amount}}
	} else {
		out = Seq{&Miss{Atk: c.Atk, Def: c.Def, Magic: c.Magic}}
	}

	g.gainExp(atk, def)
	return out
}

// Hit applies the resolved outcome of a successful attack or spell.
// Magic is nil for basic attacks.
type Hit struct {
	cmd
	Atk      unit.ID
	Def      unit.ID
	Magic    *magic.Magic
	Critical bool
	Damage   int
}

func (c *Hit) Op() Op { return OpHit }
func (c *Hit) String() string {
	return fmt.Sprintf("hit(#%d -> #%d dmg=%d crit=%t)", c.Atk, c.Def, c.Damage, c.Critical)
}

func (c *Hit) Execute(g *Game) Seq {
	atk, def := g.units.Get(c.Atk), g.units.Get(c.Def)
	if def.IsDead() {
		return nil
	}

	data := map[string]any{"attacker": uint32(c.Atk), "critical": c.Critical}
	var out Seq

	switch {
	case c.Magic == nil:
		data["damage"] = c.Damage
		g.log.Info("hit", unitField(atk), zap.String("target", def.Name()),
			zap.Int("damage", c.Damage), zap.Bool("critical", c.Critical))
		if !def.DoDamage(c.Damage) {
			out = Seq{&Killed{Unit: c.Def}}
		}
		if !atk.IsDead() {
			g.gainExp(atk, def)
		}

	case c.Magic.Kind == magic.KindDamage:
		data["damage"] = c.Damage
		data["magic"] = c.Magic.ID
		if !def.DoDamage(c.Damage) {
			out = Seq{&Killed{Unit: c.Def}}
		}

	case c.Magic.Kind == magic.KindHeal:
		data["magic"] = c.Magic.ID
		data["restored"] = def.RestoreHP(c.Damage)

	case c.Magic.Kind == magic.KindStatMod:
		data["magic"] = c.Magic.ID
		def.AddModifier(stat.Modifier{
			ID:         c.Magic.ID,
			Stat:       c.Magic.Stat,
			Addend:     c.Magic.Addend,
			Multiplier: c.Magic.Multiplier,
			TurnsLeft:  c.Magic.Turns,
		})
	}

	g.emit(c.Def, types.EventHit, data)
	return out
}

// Miss records a failed attack or spell.
type Miss struct {
	cmd
	Atk   unit.ID
	Def   unit.ID
	Magic *magic.Magic
}

func (c *Miss) Op() Op         { return OpMiss }
func (c *Miss) String() string { return fmt.Sprintf("miss(#%d -> #%d)", c.Atk, c.Def) }

func (c *Miss) Execute(g *Game) Seq {
	g.log.Info("miss", unitField(g.units.Get(c.Atk)))
	data := map[string]any{"attacker": uint32(c.Atk)}
	if c.Magic != nil {
		data["magic"] = c.Magic.ID
	}
	g.emit(c.Def, types.EventMiss, data)
	return nil
}

// Killed takes a unit off the battlefield. Only Hit produces it, and only
// on the hit that brought health to zero, so a unit is killed once.
type Killed struct {
	cmd
	Unit unit.ID
}

func (c *Killed) Op() Op         { return OpKilled }
func (c *Killed) String() string { return fmt.Sprintf("killed(#%d)", c.Unit) }

func (c *Killed) Execute(g *Game) Seq {
	u := g.units.Get(c.Unit)
	require(!u.IsDead(), "Killed.Execute", "unit #%d is already dead", c.Unit)
	g.board.RemoveUnit(u.Position())
	g.units.Kill(c.Unit)
	g.log.Info("killed", unitField(u))
	g.emit(c.Unit, types.EventKilled, nil)
	return nil
}
