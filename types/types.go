// Package types defines the shared data structures for the mengde battle engine.
// This package contains only plain data and small value helpers.
package types

import "fmt"

// Vec2D is a cell coordinate on the battle map.
type Vec2D struct {
	X int
	Y int
}

func (v Vec2D) Add(o Vec2D) Vec2D { return Vec2D{v.X + o.X, v.Y + o.Y} }
func (v Vec2D) Sub(o Vec2D) Vec2D { return Vec2D{v.X - o.X, v.Y - o.Y} }

func (v Vec2D) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Direction is the facing of a unit.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirUp
	DirRight
	DirDown
)

var directionNames = [...]string{"none", "left", "up", "right", "down"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "invalid"
	}
	return directionNames[d]
}

// Opposite returns the reverse facing.
func (d Direction) Opposite() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	default:
		return DirNone
	}
}

// RelativeDirection returns the facing from src toward dst.
// The dominant axis wins; ties go to the vertical axis.
func RelativeDirection(src, dst Vec2D) Direction {
	d := dst.Sub(src)
	ax, ay := abs(d.X), abs(d.Y)
	switch {
	case d.X == 0 && d.Y == 0:
		return DirNone
	case ax > ay && d.X < 0:
		return DirLeft
	case ax > ay:
		return DirRight
	case d.Y < 0:
		return DirUp
	default:
		return DirDown
	}
}

// Distance is the Manhattan distance between two cells.
func Distance(a, b Vec2D) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Force is a side in the battle.
type Force int

const (
	ForceOwn Force = iota
	ForceAlly
	ForceEnemy
)

var forceNames = [...]string{"own", "ally", "enemy"}

func (f Force) String() string {
	if f < 0 || int(f) >= len(forceNames) {
		return "invalid"
	}
	return forceNames[f]
}

// ParseForce maps a force name to its value.
func ParseForce(s string) (Force, bool) {
	for i, n := range forceNames {
		if n == s {
			return Force(i), true
		}
	}
	return 0, false
}

// IsHostile reports whether two forces fight each other.
// Own and ally are friendly; enemy is hostile to both.
func (f Force) IsHostile(o Force) bool {
	return (f == ForceEnemy) != (o == ForceEnemy)
}

// Status is the battle outcome.
type Status int

const (
	StatusUndecided Status = iota
	StatusVictory
	StatusDefeat
	StatusDeploying
)

var statusNames = [...]string{"undecided", "victory", "defeat", "deploying"}

// ParseStatus maps a status name to its value.
func ParseStatus(s string) (Status, bool) {
	for i, n := range statusNames {
		if n == s {
			return Status(i), true
		}
	}
	return 0, false
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "invalid"
	}
	return statusNames[s]
}

// StatIndex identifies one combat attribute.
type StatIndex int

const (
	StatAtk StatIndex = iota
	StatDef
	StatDex
	StatItl
	StatMor
	NumStats
)

var statNames = [NumStats]string{"atk", "def", "dex", "itl", "mor"}

func (i StatIndex) String() string {
	if i < 0 || i >= NumStats {
		return "invalid"
	}
	return statNames[i]
}

// ParseStat maps a stat name to its index.
func ParseStat(s string) (StatIndex, bool) {
	for i, n := range statNames {
		if n == s {
			return StatIndex(i), true
		}
	}
	return 0, false
}

// Attribute holds the five combat stats, addressable by index.
type Attribute [NumStats]int

func (a Attribute) Atk() int { return a[StatAtk] }
func (a Attribute) Def() int { return a[StatDef] }
func (a Attribute) Dex() int { return a[StatDex] }
func (a Attribute) Itl() int { return a[StatItl] }
func (a Attribute) Mor() int { return a[StatMor] }

// Apply folds addends then percentage multipliers into a.
func (a Attribute) Apply(addends, multipliers Attribute) Attribute {
	var out Attribute
	for i := range a {
		v := a[i] + addends[i]
		out[i] = (100 + multipliers[i]) * v / 100
	}
	return out
}

// HpMp is a health/resource pair.
type HpMp struct {
	Hp int
	Mp int
}

// Event is a fire-and-forget notification raised while a command runs.
// Presentation layers consume them after each queue step.
type Event struct {
	Type string
	Unit uint32 // NoUnit for battle-wide events
	Data map[string]any
}

// NoUnit marks an event that is not about a single unit.
const NoUnit = ^uint32(0)

// Event types.
const (
	EventNormalAttack    = "normal_attack"
	EventNormalAttacked  = "normal_attacked"
	EventCounterAttack   = "counter_attack"
	EventCounterAttacked = "counter_attacked"
	EventTurnBegin       = "turn_begin"
	EventActionDone      = "action_done"
	EventMoved           = "moved"
	EventHit             = "hit"
	EventMiss            = "miss"
	EventKilled          = "killed"
	EventSpeak           = "speak"
	EventRestoreHp       = "restore_hp"
	EventLevelUp         = "level_up"
	EventTurnEnd         = "turn_end"
	EventVictory         = "victory"
	EventGameEnd         = "game_end"
)

// Intent is the parsed representation of a typed battle command.
type Intent struct {
	Verb   string
	Object string   // usually the acting unit
	Target string   // optional
	Coords []int    // trailing integer arguments (x y)
	Extra  []string // words that were neither object nor target
}

// Result is what one typed command produced, ready for display.
type Result struct {
	Output []string // narration lines
	Events []Event  // every event raised, in order
	Steps  []string // executed commands, for tracing

	Rejected bool // the command was refused and changed nothing
}
