// Package stat implements the timed stat modifier ledger attached to each unit.
package stat

import "github.com/kangjianbin/mengde/types"

// Modifier is a timed adjustment to one attribute. Multiplier is a
// percentage; TurnsLeft counts down once per owning force's turn.
type Modifier struct {
	ID         string
	Stat       types.StatIndex
	Addend     int
	Multiplier int
	TurnsLeft  int
}

// Key identifies the slot a modifier occupies in a ledger.
type Key struct {
	ID   string
	Stat types.StatIndex
}

func (m Modifier) Key() Key { return Key{ID: m.ID, Stat: m.Stat} }

// List holds at most one live modifier per (ID, Stat) key.
type List struct {
	entries []Modifier
}

// Add installs m. A live entry with the same key is replaced when the
// multipliers agree in sign; otherwise both cancel out and neither stays.
func (l *List) Add(m Modifier) {
	for i, e := range l.entries {
		if e.Key() != m.Key() {
			continue
		}
		if e.Multiplier*m.Multiplier >= 0 {
			l.entries[i] = m
		} else {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
		}
		return
	}
	l.entries = append(l.entries, m)
}

// NextTurn drops entries that already reached zero, then counts the rest
// down. An entry reaching zero here is still live until the next call.
func (l *List) NextTurn() {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.TurnsLeft == 0 {
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	for i := range l.entries {
		l.entries[i].TurnsLeft--
	}
}

// CalcAddends sums the additive terms per attribute.
func (l *List) CalcAddends() types.Attribute {
	var out types.Attribute
	for _, e := range l.entries {
		out[e.Stat] += e.Addend
	}
	return out
}

// CalcMultipliers sums the percentage terms per attribute.
func (l *List) CalcMultipliers() types.Attribute {
	var out types.Attribute
	for _, e := range l.entries {
		out[e.Stat] += e.Multiplier
	}
	return out
}

// Len returns the number of live entries.
func (l *List) Len() int { return len(l.entries) }

// Get returns the live entry for key, if any.
func (l *List) Get(k Key) (Modifier, bool) {
	for _, e := range l.entries {
		if e.Key() == k {
			return e, true
		}
	}
	return Modifier{}, false
}

// Each calls fn for every live entry in insertion order.
func (l *List) Each(fn func(Modifier)) {
	for _, e := range l.entries {
		fn(e)
	}
}
