// Package resolve maps unit, hero and spell names from parsed intents to
// battle objects.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Field is the set of live units names are resolved against.
type Field interface {
	ForEachUnit(fn func(*unit.Unit))
}

// Result holds the resolved units for an intent.
type Result struct {
	Object *unit.Unit
	Target *unit.Unit
}

// AmbiguityError indicates several candidates matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s called %q", e.Kind, e.Name)
}

// Resolve maps the object and target names of an intent to live units.
func Resolve(f Field, intent types.Intent) (Result, error) {
	var res Result
	var err error

	if intent.Object != "" {
		res.Object, err = Unit(f, intent.Object)
		if err != nil {
			return res, err
		}
	}

	if intent.Target != "" {
		res.Target, err = Unit(f, intent.Target)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// Unit finds a live unit by "#id", hero id or name.
func Unit(f Field, name string) (*unit.Unit, error) {
	if id, ok := parseHandle(name); ok {
		var found *unit.Unit
		f.ForEachUnit(func(u *unit.Unit) {
			if u.ID() == id {
				found = u
			}
		})
		if found == nil {
			return nil, &NotFoundError{Kind: "unit", Name: name}
		}
		return found, nil
	}

	nameLower := strings.ToLower(name)
	var matches []*unit.Unit
	f.ForEachUnit(func(u *unit.Unit) {
		if matchesName(u.Hero().ID(), u.Name(), nameLower) {
			matches = append(matches, u)
		}
	})

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "unit", Name: name}
	case 1:
		return matches[0], nil
	default:
		// Several units of one hero template are told apart by handle.
		cands := make([]string, len(matches))
		for i, u := range matches {
			cands[i] = fmt.Sprintf("%s #%d", u.Name(), u.ID())
		}
		return nil, &AmbiguityError{Name: name, Candidates: cands}
	}
}

// Hero finds a roster hero by id or name.
func Hero(roster []*unit.Hero, name string) (*unit.Hero, error) {
	nameLower := strings.ToLower(name)
	var matches []*unit.Hero
	for _, h := range roster {
		if matchesName(h.ID(), h.Name(), nameLower) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "hero", Name: name}
	case 1:
		return matches[0], nil
	default:
		cands := make([]string, len(matches))
		for i, h := range matches {
			cands[i] = h.Name()
		}
		return nil, &AmbiguityError{Name: name, Candidates: cands}
	}
}

// Magic finds a spell among those a unit can cast.
func Magic(known []*magic.Magic, name string) (*magic.Magic, error) {
	nameLower := strings.ToLower(name)
	for _, m := range known {
		if matchesName(m.ID, m.Name, nameLower) {
			return m, nil
		}
	}
	return nil, &NotFoundError{Kind: "spell", Name: name}
}

func parseHandle(name string) (unit.ID, bool) {
	if !strings.HasPrefix(name, "#") {
		return 0, false
	}
	n, err := strconv.ParseUint(name[1:], 10, 32)
	if err != nil {
		return 0, false
	}
	return unit.ID(n), true
}

// matchesName checks a query against a display name and an id
// (case-insensitive). Supports exact match, word-based partial match and
// id match with spaces standing for underscores.
func matchesName(id, display, nameLower string) bool {
	displayLower := strings.ToLower(display)
	if displayLower == nameLower {
		return true
	}
	// "yu" matches "Guan Yu".
	for _, word := range strings.Fields(displayLower) {
		if word == nameLower {
			return true
		}
	}
	// Display names without spaces: "guan yu" matches "GuanYu".
	if strings.ReplaceAll(nameLower, " ", "") == strings.ReplaceAll(displayLower, " ", "") {
		return true
	}
	idLower := strings.ToLower(id)
	if idLower == nameLower {
		return true
	}
	// "rebel leader" matches id "rebel_leader".
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}
