// Package board is the battle map: terrain lookup per cell, unit placement
// and reachable-cell search.
package board

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Impassable is the move cost at or above which a cell cannot be entered.
const Impassable = 99

// DefaultKey is the per-class lookup fallback key.
const DefaultKey = "default"

// Terrain is one terrain kind with per-class move cost and effect.
// Effect is a percentage applied to the occupant's defensive stat.
type Terrain struct {
	Symbol   string
	Name     string
	MoveCost map[string]int
	Effect   map[string]int
}

// MoveCostFor returns the cost for class to enter this terrain.
func (t *Terrain) MoveCostFor(class string) int {
	if v, ok := t.MoveCost[class]; ok {
		return v
	}
	if v, ok := t.MoveCost[DefaultKey]; ok {
		return v
	}
	return 1
}

// EffectFor returns the percentage effect for class on this terrain.
func (t *Terrain) EffectFor(class string) int {
	if v, ok := t.Effect[class]; ok {
		return v
	}
	if v, ok := t.Effect[DefaultKey]; ok {
		return v
	}
	return 100
}

// Cell is a map square.
type Cell struct {
	terrain *Terrain
	unit    unit.OptID
}

func (c *Cell) Terrain() *Terrain  { return c.terrain }
func (c *Cell) Unit() unit.OptID   { return c.unit }
func (c *Cell) IsUnitPlaced() bool { return !c.unit.IsNone() }

// Map is a rectangular grid of cells.
type Map struct {
	cols  int
	rows  int
	cells []Cell
}

// New builds a map from terrain rows; each character is a terrain symbol.
func New(rows []string, terrains map[string]*Terrain) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map has no rows")
	}
	m := &Map{cols: len(rows[0]), rows: len(rows)}
	m.cells = make([]Cell, 0, m.cols*m.rows)
	for y, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("map row %d has %d columns, want %d", y, len(row), m.cols)
		}
		for x, ch := range row {
			t, ok := terrains[string(ch)]
			if !ok {
				return nil, fmt.Errorf("map cell (%d,%d): unknown terrain %q", x, y, ch)
			}
			m.cells = append(m.cells, Cell{terrain: t})
		}
	}
	return m, nil
}

// Size returns columns and rows.
func (m *Map) Size() (cols, rows int) { return m.cols, m.rows }

// IsValid reports whether p is on the map.
func (m *Map) IsValid(p types.Vec2D) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.cols && p.Y < m.rows
}

// Cell returns the cell at p. p must be valid.
func (m *Map) Cell(p types.Vec2D) *Cell {
	if !m.IsValid(p) {
		panic(fmt.Sprintf("board: cell %v out of bounds", p))
	}
	return &m.cells[p.Y*m.cols+p.X]
}

// UnitInCell reports whether a unit stands on p.
func (m *Map) UnitInCell(p types.Vec2D) bool {
	return m.IsValid(p) && m.Cell(p).IsUnitPlaced()
}

// PlaceUnit puts id on an empty cell.
func (m *Map) PlaceUnit(id unit.ID, p types.Vec2D) error {
	if !m.IsValid(p) {
		return fmt.Errorf("position %v is off the map", p)
	}
	c := m.Cell(p)
	if c.IsUnitPlaced() {
		return fmt.Errorf("position %v is occupied by unit %v", p, c.unit)
	}
	c.unit = unit.Some(id)
	return nil
}

// MoveUnit relocates whatever stands on src to dst.
func (m *Map) MoveUnit(src, dst types.Vec2D) {
	if src == dst {
		return
	}
	from, to := m.Cell(src), m.Cell(dst)
	if to.IsUnitPlaced() {
		panic(fmt.Sprintf("board: move %v -> %v onto occupied cell", src, dst))
	}
	to.unit = from.unit
	from.unit = unit.None
}

// RemoveUnit clears the occupant of p.
func (m *Map) RemoveUnit(p types.Vec2D) {
	m.Cell(p).unit = unit.None
}

// MoveCost returns the cost for class to enter p.
func (m *Map) MoveCost(p types.Vec2D, class string) int {
	return m.Cell(p).terrain.MoveCostFor(class)
}

// TerrainEffect returns the percentage effect of p for class.
func (m *Map) TerrainEffect(p types.Vec2D, class string) int {
	return m.Cell(p).terrain.EffectFor(class)
}

// Mover describes the unit a path search runs for.
type Mover struct {
	Origin types.Vec2D
	Move   int
	Class  string
	// Blocks reports whether the occupant id stops movement through its cell.
	Blocks func(id unit.ID) bool
}

// PathTree is the result of a reachable-cell search.
type PathTree struct {
	origin types.Vec2D
	nodes  map[types.Vec2D]pathNode
}

type pathNode struct {
	cost int
	prev types.Vec2D
}

// Contains reports whether p can be reached and stopped on.
func (t *PathTree) Contains(p types.Vec2D) bool {
	_, ok := t.nodes[p]
	return ok
}

// Cost returns the move points spent reaching p.
func (t *PathTree) Cost(p types.Vec2D) (int, bool) {
	n, ok := t.nodes[p]
	return n.cost, ok
}

// Nodes returns every reachable cell in row-major order.
func (t *PathTree) Nodes() []types.Vec2D {
	out := make([]types.Vec2D, 0, len(t.nodes))
	for p := range t.nodes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// PathTo returns the cells from origin to p inclusive.
func (t *PathTree) PathTo(p types.Vec2D) []types.Vec2D {
	if !t.Contains(p) {
		return nil
	}
	var rev []types.Vec2D
	for cur := p; ; cur = t.nodes[cur].prev {
		rev = append(rev, cur)
		if cur == t.origin {
			break
		}
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

var neighbours = [...]types.Vec2D{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// FindMovablePath runs a cheapest-cost search from mv.Origin. Blocking
// occupants cannot be passed; other occupied cells can be passed but not
// stopped on.
func (m *Map) FindMovablePath(mv Mover) *PathTree {
	best := map[types.Vec2D]pathNode{mv.Origin: {cost: 0, prev: mv.Origin}}
	pq := &queue{{pos: mv.Origin}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if n := best[cur.pos]; cur.cost > n.cost {
			continue
		}
		for _, d := range neighbours {
			next := cur.pos.Add(d)
			if !m.IsValid(next) {
				continue
			}
			step := m.MoveCost(next, mv.Class)
			if step <= 0 || step >= Impassable {
				continue
			}
			cost := cur.cost + step
			if cost > mv.Move {
				continue
			}
			if occ, ok := m.Cell(next).unit.Get(); ok && mv.Blocks != nil && mv.Blocks(occ) {
				continue
			}
			if n, seen := best[next]; seen && n.cost <= cost {
				continue
			}
			best[next] = pathNode{cost: cost, prev: cur.pos}
			heap.Push(pq, item{pos: next, cost: cost})
		}
	}

	tree := &PathTree{origin: mv.Origin, nodes: map[types.Vec2D]pathNode{}}
	for p, n := range best {
		if p != mv.Origin && m.Cell(p).IsUnitPlaced() {
			continue
		}
		tree.nodes[p] = n
	}
	return tree
}

type item struct {
	pos  types.Vec2D
	cost int
}

type queue []item

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return q[i].cost < q[j].cost }
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
