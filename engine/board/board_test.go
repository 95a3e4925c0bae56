package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

func testTerrains() map[string]*Terrain {
	return map[string]*Terrain{
		".": {Symbol: ".", Name: "plain", MoveCost: map[string]int{"default": 1}, Effect: map[string]int{"default": 100}},
		"f": {Symbol: "f", Name: "forest",
			MoveCost: map[string]int{"default": 2, "cavalry": 3},
			Effect:   map[string]int{"default": 120, "cavalry": 90}},
		"#": {Symbol: "#", Name: "wall", MoveCost: map[string]int{"default": Impassable}},
	}
}

func testMap(t *testing.T, rows ...string) *Map {
	t.Helper()
	m, err := New(rows, testTerrains())
	require.NoError(t, err)
	return m
}

func TestNewRejectsBadRows(t *testing.T) {
	_, err := New([]string{"...", ".."}, testTerrains())
	assert.Error(t, err)

	_, err = New([]string{"..x"}, testTerrains())
	assert.ErrorContains(t, err, "unknown terrain")

	_, err = New(nil, testTerrains())
	assert.Error(t, err)
}

func TestTerrainLookupFallsBackToDefault(t *testing.T) {
	m := testMap(t, ".f")
	forest := types.Vec2D{X: 1, Y: 0}

	assert.Equal(t, 2, m.MoveCost(forest, "infantry"))
	assert.Equal(t, 3, m.MoveCost(forest, "cavalry"))
	assert.Equal(t, 120, m.TerrainEffect(forest, "archer"))
	assert.Equal(t, 90, m.TerrainEffect(forest, "cavalry"))
}

func TestPlaceMoveRemove(t *testing.T) {
	m := testMap(t, "...", "...")
	a, b := types.Vec2D{X: 0, Y: 0}, types.Vec2D{X: 2, Y: 1}

	require.NoError(t, m.PlaceUnit(7, a))
	assert.Error(t, m.PlaceUnit(8, a), "occupied cell")
	assert.Error(t, m.PlaceUnit(8, types.Vec2D{X: 3, Y: 0}), "off the map")

	m.MoveUnit(a, b)
	assert.False(t, m.UnitInCell(a))
	id, ok := m.Cell(b).Unit().Get()
	require.True(t, ok)
	assert.Equal(t, unit.ID(7), id)

	m.RemoveUnit(b)
	assert.False(t, m.UnitInCell(b))
}

func TestMoveUnitOntoOccupiedPanics(t *testing.T) {
	m := testMap(t, "..")
	require.NoError(t, m.PlaceUnit(1, types.Vec2D{X: 0}))
	require.NoError(t, m.PlaceUnit(2, types.Vec2D{X: 1}))
	assert.Panics(t, func() { m.MoveUnit(types.Vec2D{X: 0}, types.Vec2D{X: 1}) })
}

func TestFindMovablePathCosts(t *testing.T) {
	m := testMap(t,
		".f..",
		".#..",
		"....",
	)
	tree := m.FindMovablePath(Mover{Origin: types.Vec2D{}, Move: 4, Class: "infantry"})

	assert.True(t, tree.Contains(types.Vec2D{}), "origin is always reachable")
	assert.True(t, tree.Contains(types.Vec2D{X: 1, Y: 0}))
	cost, _ := tree.Cost(types.Vec2D{X: 1, Y: 0})
	assert.Equal(t, 2, cost)
	assert.True(t, tree.Contains(types.Vec2D{X: 2, Y: 0}))
	assert.False(t, tree.Contains(types.Vec2D{X: 1, Y: 1}), "wall")
	assert.True(t, tree.Contains(types.Vec2D{X: 2, Y: 2}))
	assert.False(t, tree.Contains(types.Vec2D{X: 3, Y: 2}), "too far")

	path := tree.PathTo(types.Vec2D{X: 2, Y: 2})
	require.Len(t, path, 5)
	assert.Equal(t, types.Vec2D{}, path[0])
	assert.Equal(t, types.Vec2D{X: 2, Y: 2}, path[4])
}

func TestFindMovablePathOccupants(t *testing.T) {
	m := testMap(t, ".....")
	friend, foe := unit.ID(1), unit.ID(2)
	require.NoError(t, m.PlaceUnit(friend, types.Vec2D{X: 1}))
	require.NoError(t, m.PlaceUnit(foe, types.Vec2D{X: 3}))

	tree := m.FindMovablePath(Mover{
		Origin: types.Vec2D{},
		Move:   5,
		Class:  "infantry",
		Blocks: func(id unit.ID) bool { return id == foe },
	})

	assert.False(t, tree.Contains(types.Vec2D{X: 1}), "friend's cell cannot be a destination")
	assert.True(t, tree.Contains(types.Vec2D{X: 2}), "friend can be passed")
	assert.False(t, tree.Contains(types.Vec2D{X: 3}))
	assert.False(t, tree.Contains(types.Vec2D{X: 4}), "foe blocks the corridor")
	assert.Equal(t, []types.Vec2D{{X: 0}, {X: 2}}, tree.Nodes())
}
