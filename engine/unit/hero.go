// Package unit owns battle participants: hero growth, equipment, the
// per-battle Unit record and the Registry that hands out stable handles.
package unit

import "github.com/kangjianbin/mengde/types"

// Class is a unit class: movement, attack reach and growth grades.
type Class struct {
	ID          string
	Move        int
	AttackRange []types.Vec2D // offsets relative to the unit's cell
	Grades      types.Attribute
	HpBase      int
	HpIncr      int
	MpBase      int
	MpIncr      int
	Magics      []string // spell ids the class can cast
}

// HeroTemplate is the immutable definition of a hero.
type HeroTemplate struct {
	ID    string
	Name  string
	Class *Class
	Stat  types.Attribute
}

// ExpPerLevel is the experience needed to gain one level.
const ExpPerLevel = 100

// Hero is a hero instance with level, experience and equipment. Heroes
// outlive battles; a Unit wraps one for the duration of a battle.
type Hero struct {
	tpl       *HeroTemplate
	level     int
	exp       int
	equipment EquipmentSet
	stat      types.Attribute
	max       types.HpMp
}

// NewHero creates a hero at the given level.
func NewHero(tpl *HeroTemplate, level int) *Hero {
	h := &Hero{tpl: tpl, level: level}
	h.update()
	return h
}

func (h *Hero) ID() string               { return h.tpl.ID }
func (h *Hero) Name() string             { return h.tpl.Name }
func (h *Hero) Class() *Class            { return h.tpl.Class }
func (h *Hero) Level() int               { return h.level }
func (h *Hero) Exp() int                 { return h.exp }
func (h *Hero) Move() int                { return h.tpl.Class.Move }
func (h *Hero) Equipment() *EquipmentSet { return &h.equipment }

// Stat returns level-scaled stats with equipment applied.
func (h *Hero) Stat() types.Attribute { return h.stat }

// MaxHpMp returns the level-scaled health and resource maximums.
func (h *Hero) MaxHpMp() types.HpMp { return h.max }

// GainExp adds experience and returns the number of levels gained.
func (h *Hero) GainExp(amount int) int {
	h.exp += amount
	gained := 0
	for h.exp >= ExpPerLevel {
		h.exp -= ExpPerLevel
		h.level++
		gained++
	}
	if gained > 0 {
		h.update()
	}
	return gained
}

// PutOn equips e and returns the piece it displaced, if any.
func (h *Hero) PutOn(e *Equipment) *Equipment {
	prev := h.equipment.Set(e)
	h.update()
	return prev
}

// TakeOff removes the equipment in slot and returns it.
func (h *Hero) TakeOff(slot Slot) *Equipment {
	prev := h.equipment.Remove(slot)
	h.update()
	return prev
}

func (h *Hero) update() {
	var base types.Attribute
	grades := h.tpl.Class.Grades
	for i, v := range h.tpl.Stat {
		base[i] = v/2 + ((100+10*(grades[i]-1))*h.level*v)/2000
	}
	h.stat = base.Apply(h.equipment.CalcAddends(), h.equipment.CalcMultipliers())

	c := h.tpl.Class
	h.max = types.HpMp{
		Hp: c.HpBase + c.HpIncr*h.level,
		Mp: c.MpBase + c.MpIncr*h.level,
	}
}
