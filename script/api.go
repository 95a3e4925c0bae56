package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// registerAPI builds the game table. It is set as a global and also passed
// to every hook as its first argument.
func (s *Stage) registerAPI() *lua.LTable {
	L := s.L
	game := L.NewTable()

	force := L.NewTable()
	for _, f := range []types.Force{types.ForceOwn, types.ForceAlly, types.ForceEnemy} {
		force.RawSetString(f.String(), lua.LNumber(f))
	}
	game.RawSetString("force", force)

	status := L.NewTable()
	for _, st := range []types.Status{types.StatusUndecided, types.StatusVictory, types.StatusDefeat} {
		status.RawSetString(st.String(), lua.LNumber(st))
	}
	game.RawSetString("status", status)

	fns := map[string]lua.LGFunction{
		// generate_unit(hero, level, force, x, y) -> unit id
		"generate_unit": func(L *lua.LState) int {
			h := s.mustHost(L)
			id, err := h.GenerateUnit(L.CheckString(1), L.CheckInt(2), checkForce(L, 3), checkVec(L, 4))
			if err != nil {
				L.RaiseError("generate_unit: %s", err)
			}
			L.Push(lua.LNumber(id))
			return 1
		},
		// generate_own_unit(hero, x, y) -> unit id
		"generate_own_unit": func(L *lua.LState) int {
			h := s.mustHost(L)
			id, err := h.GenerateOwnUnit(L.CheckString(1), checkVec(L, 2))
			if err != nil {
				L.RaiseError("generate_own_unit: %s", err)
			}
			L.Push(lua.LNumber(id))
			return 1
		},
		"appoint_hero": func(L *lua.LState) int {
			if err := s.mustHost(L).AppointHero(L.CheckString(1), L.CheckInt(2)); err != nil {
				L.RaiseError("appoint_hero: %s", err)
			}
			return 0
		},
		"put_on": func(L *lua.LState) int {
			if err := s.mustHost(L).PutOn(checkUnit(L, 1), L.CheckString(2)); err != nil {
				L.RaiseError("put_on: %s", err)
			}
			return 0
		},
		"push_speak": func(L *lua.LState) int {
			if err := s.mustHost(L).PushSpeak(checkUnit(L, 1), L.CheckString(2)); err != nil {
				L.RaiseError("push_speak: %s", err)
			}
			return 0
		},
		"count_alive": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.mustHost(L).CountAlive(checkForce(L, 1))))
			return 1
		},
		"get_turn_current": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.mustHost(L).TurnCurrent()))
			return 1
		},
		"get_turn_limit": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.mustHost(L).TurnLimit()))
			return 1
		},
	}
	for name, fn := range fns {
		game.RawSetString(name, L.NewFunction(fn))
	}

	L.SetGlobal("game", game)
	return game
}

func (s *Stage) mustHost(L *lua.LState) Host {
	if s.host == nil {
		L.RaiseError("%s", ErrUnbound)
	}
	return s.host
}

func checkForce(L *lua.LState, n int) types.Force {
	f := types.Force(L.CheckInt(n))
	if f.String() == "invalid" {
		L.ArgError(n, "unknown force")
	}
	return f
}

// checkVec reads two consecutive integer arguments as a cell.
func checkVec(L *lua.LState, n int) types.Vec2D {
	return types.Vec2D{X: L.CheckInt(n), Y: L.CheckInt(n + 1)}
}

func checkUnit(L *lua.LState, n int) unit.ID {
	v := L.CheckInt(n)
	if v < 0 {
		L.ArgError(n, "unit id must not be negative")
	}
	return unit.ID(v)
}
