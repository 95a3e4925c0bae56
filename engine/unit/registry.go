package unit

import (
	"fmt"

	"github.com/kangjianbin/mengde/types"
)

// ID is a stable unit handle. IDs are dense indices and never reused
// within a battle, dead units included.
type ID uint32

// OptID is an optional unit handle.
type OptID struct {
	id ID
	ok bool
}

// None is the absent handle.
var None OptID

// Some wraps a present handle.
func Some(id ID) OptID { return OptID{id: id, ok: true} }

// Get returns the handle and whether it is present.
func (o OptID) Get() (ID, bool) { return o.id, o.ok }

// IsNone reports whether the handle is absent.
func (o OptID) IsNone() bool { return !o.ok }

// Must returns the handle, panicking when absent.
func (o OptID) Must() ID {
	if !o.ok {
		panic("unit: required handle is absent")
	}
	return o.id
}

func (o OptID) String() string {
	if !o.ok {
		return "none"
	}
	return fmt.Sprintf("#%d", o.id)
}

// Registry owns all units of a battle.
type Registry struct {
	units []*Unit
}

// Deploy takes ownership of u and assigns its handle.
func (r *Registry) Deploy(u *Unit) ID {
	id := ID(len(r.units))
	u.id = id
	r.units = append(r.units, u)
	return id
}

// Get returns the unit for id. An unknown id is a caller bug and panics.
func (r *Registry) Get(id ID) *Unit {
	if int(id) >= len(r.units) {
		panic(fmt.Sprintf("unit: id %d out of range (%d units)", id, len(r.units)))
	}
	return r.units[id]
}

// Lookup is Get for untrusted ids.
func (r *Registry) Lookup(id ID) (*Unit, bool) {
	if int(id) >= len(r.units) {
		return nil, false
	}
	return r.units[id], true
}

// Kill marks the unit dead. It stays addressable by its handle.
func (r *Registry) Kill(id ID) {
	r.Get(id).dead = true
}

// Len returns the number of units ever deployed.
func (r *Registry) Len() int { return len(r.units) }

// ForEach visits live units in deployment order.
func (r *Registry) ForEach(fn func(*Unit)) {
	for _, u := range r.units {
		if !u.dead {
			fn(u)
		}
	}
}

// CountAlive returns the number of live units on side f.
func (r *Registry) CountAlive(f types.Force) int {
	n := 0
	r.ForEach(func(u *Unit) {
		if u.force == f {
			n++
		}
	})
	return n
}
