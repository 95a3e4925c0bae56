package play

import (
	"fmt"
	"strings"

	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Describe renders an event as a line of battle narration. Trigger events
// such as turn_begin or normal_attack narrate nothing and return "".
func Describe(g *engine.Game, ev types.Event) string {
	switch ev.Type {
	case types.EventMoved:
		return fmt.Sprintf("%s moves to %v.", unitName(g, ev.Unit), ev.Data["to"])

	case types.EventHit:
		target := unitName(g, ev.Unit)
		if id, ok := ev.Data["magic"].(string); ok {
			spell := magicName(g, id)
			switch {
			case ev.Data["damage"] != nil:
				return fmt.Sprintf("%s strikes %s for %v damage.", spell, target, ev.Data["damage"])
			case ev.Data["restored"] != nil:
				return fmt.Sprintf("%s restores %v hp to %s.", spell, ev.Data["restored"], target)
			default:
				return fmt.Sprintf("%s takes hold of %s.", spell, target)
			}
		}
		line := fmt.Sprintf("%s hits %s for %v damage", attackerName(g, ev), target, ev.Data["damage"])
		if crit, _ := ev.Data["critical"].(bool); crit {
			return line + ". Critical!"
		}
		return line + "."

	case types.EventMiss:
		if id, ok := ev.Data["magic"].(string); ok {
			return fmt.Sprintf("%s misses %s.", magicName(g, id), unitName(g, ev.Unit))
		}
		return fmt.Sprintf("%s misses %s.", attackerName(g, ev), unitName(g, ev.Unit))

	case types.EventKilled:
		return fmt.Sprintf("%s is defeated!", unitName(g, ev.Unit))
	case types.EventSpeak:
		return fmt.Sprintf("%s: %q", unitName(g, ev.Unit), ev.Data["words"])
	case types.EventRestoreHp:
		return fmt.Sprintf("%s recovers %v hp.", unitName(g, ev.Unit), ev.Data["amount"])
	case types.EventLevelUp:
		return fmt.Sprintf("%s reaches level %v!", unitName(g, ev.Unit), ev.Data["level"])
	case types.EventTurnEnd:
		return fmt.Sprintf("[%v turn ends]", ev.Data["force"])
	case types.EventVictory:
		return "Victory!"
	case types.EventGameEnd:
		if won, _ := ev.Data["victory"].(bool); won {
			return "The battle is won."
		}
		return "The battle is lost."
	}
	return ""
}

func unitName(g *engine.Game, id uint32) string {
	if u, ok := g.Unit(unit.ID(id)); ok {
		return u.Name()
	}
	return fmt.Sprintf("#%d", id)
}

func attackerName(g *engine.Game, ev types.Event) string {
	id, _ := ev.Data["attacker"].(uint32)
	return unitName(g, id)
}

func magicName(g *engine.Game, id string) string {
	if m, ok := g.Rules().Magics[id]; ok {
		return m.Name
	}
	return id
}

// Glyph is what one map cell shows: a unit's initial or the terrain
// symbol.
type Glyph struct {
	Text     string
	Occupied bool
	Force    types.Force
	Done     bool
}

// CellGlyph returns the glyph for p.
func CellGlyph(g *engine.Game, p types.Vec2D) Glyph {
	if u, ok := g.UnitAt(p); ok {
		initial := strings.ToUpper(u.Name()[:1])
		if u.Force() == types.ForceEnemy {
			initial = strings.ToLower(initial)
		}
		return Glyph{Text: initial, Occupied: true, Force: u.Force(), Done: u.IsDone()}
	}
	return Glyph{Text: g.Board().Cell(p).Terrain().Symbol}
}

// RenderMap draws the battlefield as text. Own and allied units are upper
// case initials, enemies lower case.
func RenderMap(g *engine.Game) []string {
	cols, rows := g.Board().Size()
	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < cols; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	out := []string{b.String()}
	for y := 0; y < rows; y++ {
		b.Reset()
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < cols; x++ {
			b.WriteString(CellGlyph(g, types.Vec2D{X: x, Y: y}).Text)
		}
		out = append(out, b.String())
	}
	return out
}

// DiceState reports the seed and draw count of a seeded RNG, or "" for
// other dice. Replaying the seed reaches the same position.
func DiceState(g *engine.Game) string {
	r, ok := g.Dice().(*engine.RNG)
	if !ok {
		return ""
	}
	return fmt.Sprintf("RNG seed=%d pos=%d", r.Seed(), r.Position())
}
