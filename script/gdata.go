package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/engine/board"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/gamedata"
	"github.com/kangjianbin/mengde/types"
)

// StageData is the compiled gdata table of a stage script.
type StageData struct {
	Cols, Rows int
	Terrain    []string
	Fixed      []engine.FixedDeploy
	Selectable []types.Vec2D
	TurnLimit  int
	Forces     []types.Force
	Roster     []RosterEntry
}

// RosterEntry is one hero the player starts the stage with.
type RosterEntry struct {
	Hero      string
	Level     int
	Equipment []string
}

// ValidationError collects every problem found in a stage's gdata table.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stage validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func compileGData(L *lua.LState) (*StageData, error) {
	gdata, ok := L.GetGlobal("gdata").(*lua.LTable)
	if !ok {
		return nil, &ValidationError{Errors: []string{"stage defines no gdata table"}}
	}
	ve := &ValidationError{}
	d := &StageData{TurnLimit: getInt(gdata, "turn_limit")}

	if m := getTable(gdata, "map"); m == nil {
		ve.errorf("gdata.map is missing")
	} else {
		if size := getTable(m, "size"); size != nil {
			d.Cols, d.Rows = int(toInt(size.RawGetInt(1))), int(toInt(size.RawGetInt(2)))
		}
		d.Terrain = stringList(getTable(m, "terrain"))
	}

	if dep := getTable(gdata, "deploy"); dep != nil {
		forEachTable(getTable(dep, "unselectables"), func(i int, t *lua.LTable) {
			pos, ok := getVec(t, "position")
			if !ok {
				ve.errorf("deploy.unselectables[%d]: position must be {x, y}", i)
			}
			d.Fixed = append(d.Fixed, engine.FixedDeploy{Hero: getString(t, "hero"), Position: pos})
		})
		forEachTable(getTable(dep, "selectables"), func(i int, t *lua.LTable) {
			pos, ok := getVec(t, "position")
			if !ok {
				ve.errorf("deploy.selectables[%d]: position must be {x, y}", i)
			}
			d.Selectable = append(d.Selectable, pos)
		})
	}

	for _, name := range stringList(getTable(gdata, "forces")) {
		f, ok := types.ParseForce(name)
		if !ok {
			ve.errorf("gdata.forces: unknown force %q", name)
			continue
		}
		d.Forces = append(d.Forces, f)
	}

	forEachTable(getTable(gdata, "roster"), func(i int, t *lua.LTable) {
		d.Roster = append(d.Roster, RosterEntry{
			Hero:      getString(t, "hero"),
			Level:     getInt(t, "level"),
			Equipment: stringList(getTable(t, "equipment")),
		})
	})

	validateStage(d, ve)
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return d, nil
}

func validateStage(d *StageData, ve *ValidationError) {
	if d.Cols <= 0 || d.Rows <= 0 {
		ve.errorf("map size %dx%d is not positive", d.Cols, d.Rows)
	}
	if len(d.Terrain) != d.Rows {
		ve.errorf("map has %d terrain rows, size says %d", len(d.Terrain), d.Rows)
	}
	for y, row := range d.Terrain {
		if len(row) != d.Cols {
			ve.errorf("terrain row %d has %d cells, size says %d", y, len(row), d.Cols)
		}
	}
	if d.TurnLimit <= 0 {
		ve.errorf("turn_limit must be positive, got %d", d.TurnLimit)
	}
	onMap := func(p types.Vec2D) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < d.Cols && p.Y < d.Rows
	}
	for _, f := range d.Fixed {
		if f.Hero == "" {
			ve.errorf("unselectable at %v names no hero", f.Position)
		}
		if !onMap(f.Position) {
			ve.errorf("unselectable %q at %v is off the map", f.Hero, f.Position)
		}
	}
	for _, p := range d.Selectable {
		if !onMap(p) {
			ve.errorf("selectable %v is off the map", p)
		}
	}
	if len(d.Forces) > 0 {
		hasOwn := false
		for _, f := range d.Forces {
			hasOwn = hasOwn || f == types.ForceOwn
		}
		if !hasOwn {
			ve.errorf("gdata.forces must include own")
		}
	}
	for i, r := range d.Roster {
		if r.Hero == "" {
			ve.errorf("roster[%d] names no hero", i+1)
		}
		if r.Level <= 0 {
			ve.errorf("roster %q: level must be positive", r.Hero)
		}
	}
}

// Config builds the engine configuration for this stage against a
// ruleset. The returned config has the stage bound as its script; callers
// add dice and a logger.
func (s *Stage) Config(rules *gamedata.Ruleset) (engine.Config, error) {
	d := s.Data
	m, err := board.New(d.Terrain, rules.Terrains)
	if err != nil {
		return engine.Config{}, fmt.Errorf("stage %s: %w", s.path, err)
	}
	ve := &ValidationError{}
	var roster []*unit.Hero
	for _, r := range d.Roster {
		tpl, ok := rules.Heroes[r.Hero]
		if !ok {
			ve.errorf("roster: unknown hero %q", r.Hero)
			continue
		}
		h := unit.NewHero(tpl, r.Level)
		for _, id := range r.Equipment {
			e, ok := rules.Equipment[id]
			if !ok {
				ve.errorf("roster %q: unknown equipment %q", r.Hero, id)
				continue
			}
			h.PutOn(e)
		}
		roster = append(roster, h)
	}
	for _, f := range d.Fixed {
		if _, ok := rules.Heroes[f.Hero]; !ok {
			ve.errorf("unselectable: unknown hero %q", f.Hero)
		}
	}
	if len(ve.Errors) > 0 {
		return engine.Config{}, ve
	}
	return engine.Config{
		Rules:      rules,
		Map:        m,
		TurnLimit:  d.TurnLimit,
		Forces:     d.Forces,
		Fixed:      d.Fixed,
		Selectable: d.Selectable,
		Roster:     roster,
		Script:     s,
	}, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(toInt(tbl.RawGetString(key)))
}

func toInt(v lua.LValue) lua.LNumber {
	if n, ok := v.(lua.LNumber); ok {
		return n
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getVec reads a {x, y} pair.
func getVec(tbl *lua.LTable, key string) (types.Vec2D, bool) {
	t := getTable(tbl, key)
	if t == nil || t.Len() != 2 {
		return types.Vec2D{}, false
	}
	x, xok := t.RawGetInt(1).(lua.LNumber)
	y, yok := t.RawGetInt(2).(lua.LNumber)
	return types.Vec2D{X: int(x), Y: int(y)}, xok && yok
}

func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.Len(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// forEachTable visits the table elements of an array, 1-based.
func forEachTable(tbl *lua.LTable, fn func(int, *lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.Len(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			fn(i, t)
		}
	}
}
