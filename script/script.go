// Package script runs Lua stage scripts. A stage script declares the battle
// in a gdata table (map, deployment, turn limit) and defines the hooks the
// engine calls while the battle runs: end_condition, on_deploy, on_begin
// and on_victory. Unlike ruleset data, the VM stays alive for the whole
// battle.
package script

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// ErrMissingHook is wrapped by Error when a required hook is not defined.
var ErrMissingHook = errors.New("hook is not defined")

// ErrUnbound is wrapped by Error when a hook runs before Bind.
var ErrUnbound = errors.New("no game bound to the script")

// Error is a failure inside the stage script, as opposed to a gameplay
// outcome.
type Error struct {
	Hook string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("script %s: %v", e.Hook, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Host is the game surface scripts can reach through the game table.
type Host interface {
	GenerateUnit(heroID string, level int, force types.Force, pos types.Vec2D) (unit.ID, error)
	GenerateOwnUnit(heroID string, pos types.Vec2D) (unit.ID, error)
	AppointHero(heroID string, level int) error
	PutOn(id unit.ID, equipmentID string) error
	PushSpeak(id unit.ID, words string) error
	CountAlive(f types.Force) int
	TurnCurrent() int
	TurnLimit() int
}

// Stage is a loaded stage script with its live VM.
type Stage struct {
	L    *lua.LState
	Data *StageData
	path string
	api  *lua.LTable
	host Host
}

// Load runs the stage script at path in a sandboxed VM and compiles its
// gdata table.
func Load(path string) (*Stage, error) {
	src, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading stage %s: %w", path, err)
	}
	return load(path, string(src))
}

// LoadString is Load for in-memory source.
func LoadString(name, src string) (*Stage, error) {
	return load(name, src)
}

func load(name, src string) (*Stage, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)

	s := &Stage{L: L, path: name}
	s.api = s.registerAPI()

	fn, err := L.LoadString(src)
	if err != nil {
		L.Close()
		return nil, &Error{Hook: "load", Err: err}
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, &Error{Hook: "load", Err: fmt.Errorf("executing %s: %w", name, err)}
	}

	data, err := compileGData(L)
	if err != nil {
		L.Close()
		return nil, err
	}
	s.Data = data
	return s, nil
}

// Bind attaches the game the script's API acts on.
func (s *Stage) Bind(h Host) { s.host = h }

// Close releases the VM.
func (s *Stage) Close() { s.L.Close() }

// Path returns the script's file name.
func (s *Stage) Path() string { return s.path }

// EndCondition calls the required end_condition hook and maps its result
// to a battle status.
func (s *Stage) EndCondition() (types.Status, error) {
	const hook = "end_condition"
	ret, err := s.call(hook, true)
	if err != nil {
		return types.StatusUndecided, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return types.StatusUndecided, &Error{Hook: hook, Err: fmt.Errorf("returned %s, want a status number", ret.Type())}
	}
	if f := float64(n); f != math.Trunc(f) {
		return types.StatusUndecided, &Error{Hook: hook, Err: fmt.Errorf("returned %v, want a whole status number", f)}
	}
	switch st := types.Status(n); st {
	case types.StatusUndecided, types.StatusVictory, types.StatusDefeat:
		return st, nil
	default:
		return types.StatusUndecided, &Error{Hook: hook, Err: fmt.Errorf("returned unknown status %d", int(n))}
	}
}

// Call runs an optional hook. Hooks that are not defined are skipped.
func (s *Stage) Call(hook string) error {
	_, err := s.call(hook, false)
	return err
}

func (s *Stage) call(hook string, required bool) (lua.LValue, error) {
	fn, ok := s.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		if required {
			return lua.LNil, &Error{Hook: hook, Err: ErrMissingHook}
		}
		return lua.LNil, nil
	}
	if s.host == nil {
		return lua.LNil, &Error{Hook: hook, Err: ErrUnbound}
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, s.api); err != nil {
		return lua.LNil, &Error{Hook: hook, Err: err}
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
