package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Op identifies a command kind.
type Op int

const (
	OpStay Op = iota
	OpMove
	OpEndAction
	OpBasicAttack
	OpMagic
	OpHit
	OpMiss
	OpKilled
	OpAction
	OpEndTurn
	OpPlayAI
	OpGameVictory
	OpGameEnd
	OpSpeak
	OpRestoreHp
	numOps
)

var opNames = [numOps]string{
	OpStay:        "stay",
	OpMove:        "move",
	OpEndAction:   "end_action",
	OpBasicAttack: "basic_attack",
	OpMagic:       "magic",
	OpHit:         "hit",
	OpMiss:        "miss",
	OpKilled:      "killed",
	OpAction:      "action",
	OpEndTurn:     "end_turn",
	OpPlayAI:      "play_ai",
	OpGameVictory: "game_victory",
	OpGameEnd:     "game_end",
	OpSpeak:       "speak",
	OpRestoreHp:   "restore_hp",
}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return "invalid"
	}
	return opNames[o]
}

// Cmd is one unit of battle work. Execute mutates the game and returns the
// follow-up commands it produced, which run before anything queued earlier.
// The set of commands is closed; only this package implements Cmd.
type Cmd interface {
	Op() Op
	Execute(g *Game) Seq
	fmt.Stringer
	sealed()
}

// Seq is an ordered block of commands.
type Seq []Cmd

// Act is the acting half of an Action: Stay, BasicAttack or Magic.
type Act interface {
	Cmd
	Actor() unit.ID
}

type cmd struct{}

func (cmd) sealed() {}

// Stay does nothing; it is the act of a unit that only moves.
type Stay struct {
	cmd
	Unit unit.ID
}

func (c *Stay) Op() Op            { return OpStay }
func (c *Stay) Actor() unit.ID    { return c.Unit }
func (c *Stay) Execute(*Game) Seq { return nil }
func (c *Stay) String() string    { return fmt.Sprintf("stay(#%d)", c.Unit) }

// EndTurn hands control to the next force.
type EndTurn struct{ cmd }

func (c *EndTurn) Op() Op { return OpEndTurn }
func (c *EndTurn) Execute(g *Game) Seq {
	g.EndForceTurn()
	return nil
}
func (c *EndTurn) String() string { return "end_turn" }

// Speak shows a line of dialogue for a unit.
type Speak struct {
	cmd
	Unit  unit.ID
	Words string
}

func (c *Speak) Op() Op { return OpSpeak }
func (c *Speak) Execute(g *Game) Seq {
	g.emit(c.Unit, types.EventSpeak, map[string]any{"words": c.Words})
	return nil
}
func (c *Speak) String() string { return fmt.Sprintf("speak(#%d %q)", c.Unit, c.Words) }

// RestoreHp heals a unit by Ratio percent of its maximum plus Adder,
// never above the maximum.
type RestoreHp struct {
	cmd
	Unit  unit.ID
	Ratio int
	Adder int
}

func (c *RestoreHp) Op() Op { return OpRestoreHp }

func (c *RestoreHp) Execute(g *Game) Seq {
	u := g.units.Get(c.Unit)
	if u.IsDead() {
		return nil
	}
	amount := u.OriginalHpMp().Hp*c.Ratio/100 + c.Adder
	restored := u.RestoreHP(amount)
	g.log.Info("restore hp", unitField(u), zap.Int("amount", restored))
	g.emit(c.Unit, types.EventRestoreHp, map[string]any{"amount": restored})
	return nil
}

func (c *RestoreHp) String() string {
	return fmt.Sprintf("restore_hp(#%d ratio=%d adder=%d)", c.Unit, c.Ratio, c.Adder)
}
