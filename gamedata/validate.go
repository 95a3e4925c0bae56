package gamedata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kangjianbin/mengde/engine/board"
	"github.com/kangjianbin/mengde/types"
)

// ValidationError collects all ruleset errors. Warnings do not fail a load;
// they are also copied to Ruleset.Warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks value ranges once every definition is compiled.
func validate(rs *Ruleset, ve *ValidationError) {
	if len(rs.Terrains) == 0 {
		ve.errorf("ruleset defines no terrains")
	}
	for _, sym := range sortedKeys(rs.Terrains) {
		t := rs.Terrains[sym]
		if _, ok := t.MoveCost[board.DefaultKey]; !ok {
			ve.warnf("terrain %q has no default move cost; 1 is assumed", t.Name)
		}
		for class, cost := range t.MoveCost {
			if cost < 0 {
				ve.errorf("terrain %q: negative move cost %d for %s", t.Name, cost, class)
			}
		}
		for class, eff := range t.Effect {
			if eff < 0 {
				ve.errorf("terrain %q: negative effect %d for %s", t.Name, eff, class)
			}
		}
	}

	for _, id := range sortedKeys(rs.Classes) {
		c := rs.Classes[id]
		if c.Move <= 0 {
			ve.errorf("class %q: move must be positive", id)
		}
		if len(c.AttackRange) == 0 {
			ve.warnf("class %q has an empty attack range and can never attack", id)
		}
		if c.HpBase+c.HpIncr <= 0 {
			ve.errorf("class %q: hp must be positive at level 1", id)
		}
	}

	for _, id := range sortedKeys(rs.Magics) {
		if m := rs.Magics[id]; m.MpCost < 0 {
			ve.errorf("magic %q: negative mp cost", id)
		}
	}

	for _, id := range sortedKeys(rs.Heroes) {
		h := rs.Heroes[id]
		for i, v := range h.Stat {
			if v <= 0 {
				ve.warnf("hero %q: %s is %d", id, types.StatIndex(i), v)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
