package unit

import (
	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/types"
)

// Slot is an equipment position on a hero.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
	SlotAid    Slot = "aid"
)

var slotOrder = [...]Slot{SlotWeapon, SlotArmor, SlotAid}

// ValidSlot reports whether s names a known slot.
func ValidSlot(s Slot) bool {
	for _, o := range slotOrder {
		if o == s {
			return true
		}
	}
	return false
}

// StatBonus is a permanent stat change granted while equipped.
type StatBonus struct {
	Stat       types.StatIndex
	Addend     int
	Multiplier int
}

// Equipment is an immutable item definition.
type Equipment struct {
	ID      string
	Name    string
	Slot    Slot
	Bonuses []StatBonus
	Effects []effects.Effect
}

// EquipmentSet holds at most one piece per slot.
type EquipmentSet struct {
	slots map[Slot]*Equipment
}

// Set equips e and returns the displaced piece.
func (s *EquipmentSet) Set(e *Equipment) *Equipment {
	if s.slots == nil {
		s.slots = map[Slot]*Equipment{}
	}
	prev := s.slots[e.Slot]
	s.slots[e.Slot] = e
	return prev
}

// Get returns the piece in slot, or nil.
func (s *EquipmentSet) Get(slot Slot) *Equipment {
	return s.slots[slot]
}

// Remove empties slot and returns what was there.
func (s *EquipmentSet) Remove(slot Slot) *Equipment {
	prev := s.slots[slot]
	delete(s.slots, slot)
	return prev
}

// Each visits equipped pieces in slot order.
func (s *EquipmentSet) Each(fn func(*Equipment)) {
	for _, slot := range slotOrder {
		if e := s.slots[slot]; e != nil {
			fn(e)
		}
	}
}

func (s *EquipmentSet) CalcAddends() types.Attribute {
	var out types.Attribute
	s.Each(func(e *Equipment) {
		for _, b := range e.Bonuses {
			out[b.Stat] += b.Addend
		}
	})
	return out
}

func (s *EquipmentSet) CalcMultipliers() types.Attribute {
	var out types.Attribute
	s.Each(func(e *Equipment) {
		for _, b := range e.Bonuses {
			out[b.Stat] += b.Multiplier
		}
	})
	return out
}
