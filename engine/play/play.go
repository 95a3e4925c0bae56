// Package play provides the Exec() orchestrator that wires parsing, name
// resolution, the command queue and narration into a single player turn.
package play

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/engine/parser"
	"github.com/kangjianbin/mengde/engine/resolve"
	"github.com/kangjianbin/mengde/engine/stat"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// Session runs typed commands against one battle.
type Session struct {
	Game *engine.Game
	Log  []string // every command line accepted by Exec
}

// New creates a session for g.
func New(g *engine.Game) *Session {
	return &Session{Game: g}
}

// Exec processes one command line and returns what happened.
func (s *Session) Exec(input string) types.Result {
	var r types.Result

	intent := parser.Parse(input)
	if intent.Verb == "" {
		r.Output = append(r.Output, "What do you want to do?")
		return r
	}
	s.Log = append(s.Log, input)

	switch intent.Verb {
	case "units":
		r.Output = s.units()
	case "map":
		r.Output = RenderMap(s.Game)
	case "info":
		s.withUnit(&r, intent, s.info)
	case "moves":
		s.withUnit(&r, intent, func(u *unit.Unit) []string { return s.moves(u, intent.Coords) })
	case "deploy", "undeploy":
		s.deploy(&r, intent)
	case "start":
		if err := s.Game.SubmitDeploy(); err != nil {
			reject(&r, errorLine(err))
			return r
		}
		r.Output = append(r.Output, "The battle begins!")
		s.drain(&r)
	case "end":
		if s.deciding(&r) || !s.resume(&r) {
			return r
		}
		if err := s.Game.PushEndTurn(); err != nil {
			reject(&r, errorLine(err))
			return r
		}
		s.drain(&r)
	case "move", "attack", "cast", "stay":
		if s.deciding(&r) || !s.resume(&r) {
			return r
		}
		a, err := s.action(intent)
		if err == nil {
			err = s.Game.PushAction(a)
		}
		if err != nil {
			reject(&r, errorLine(err))
			return r
		}
		s.drain(&r)
	default:
		reject(&r, fmt.Sprintf("I don't know how to %q. Type /help for commands.", intent.Verb))
	}
	return r
}

// deciding reports a battle that is not taking orders: still deploying or
// already finished.
func (s *Session) deciding(r *types.Result) bool {
	switch {
	case s.Game.Status() == types.StatusDeploying:
		reject(r, errorLine(engine.ErrNotStarted))
	case s.Game.Ended():
		reject(r, "The battle is over. Use /quit to exit.")
	default:
		return false
	}
	return true
}

// drain runs the queue until the player is asked again, narrating every
// step.
// resume runs the steps a script error left pending and reports whether the
// player still has the move afterwards.
func (s *Session) resume(r *types.Result) bool {
	if !s.Game.Stalled() {
		return true
	}
	r.Output = append(r.Output, "Resuming the interrupted turn.")
	s.drain(r)
	g := s.Game
	return !g.Stalled() && !g.Ended() && g.Status() == types.StatusUndecided && g.IsUserTurn()
}

func (s *Session) drain(r *types.Result) {
	turnEnded := false
	run := s.Game.Drain
	if s.Game.Stalled() {
		run = s.Game.Resume
	}
	err := run(func(res engine.StepResult) {
		r.Steps = append(r.Steps, res.Cmd.String())
		r.Events = append(r.Events, res.Events...)
		for _, ev := range res.Events {
			if ev.Type == types.EventTurnEnd {
				turnEnded = true
			}
			if line := Describe(s.Game, ev); line != "" {
				r.Output = append(r.Output, line)
			}
		}
	})
	if err != nil {
		r.Output = append(r.Output, fmt.Sprintf("Script error: %v", err))
		return
	}
	if turnEnded && !s.Game.Ended() && s.Game.IsUserTurn() {
		r.Output = append(r.Output, fmt.Sprintf("Turn %d of %d. Your move.", s.Game.TurnCurrent(), s.Game.TurnLimit()))
	}
}

// action builds the Action for a move, attack, cast or stay intent.
func (s *Session) action(intent types.Intent) (*engine.Action, error) {
	g := s.Game
	if intent.Object == "" {
		return nil, fmt.Errorf("%s whom?", intent.Verb)
	}
	doer, err := resolve.Unit(g, intent.Object)
	if err != nil {
		return nil, err
	}

	a := &engine.Action{Mode: engine.ActionImmediate}
	switch len(intent.Coords) {
	case 0:
	case 2:
		a.Move = &engine.Move{Unit: doer.ID(), Dest: types.Vec2D{X: intent.Coords[0], Y: intent.Coords[1]}}
	default:
		return nil, errors.New("coordinates are two numbers: x y")
	}

	switch intent.Verb {
	case "move":
		if a.Move == nil {
			return nil, errors.New("where to? (move <unit> to x y)")
		}
	case "stay":
		a.Act = &engine.Stay{Unit: doer.ID()}
	case "attack", "cast":
		if intent.Target == "" {
			return nil, fmt.Errorf("%s whom? (%s <unit> at <target>)", intent.Verb, intent.Verb)
		}
		target, err := resolve.Unit(g, intent.Target)
		if err != nil {
			return nil, err
		}
		if intent.Verb == "attack" {
			a.Act = engine.NewBasicAttack(doer.ID(), target.ID(), engine.AttackActive)
			break
		}
		if len(intent.Extra) == 0 {
			return nil, errors.New("cast which spell?")
		}
		m, err := resolve.Magic(g.Magics(doer.ID()), intent.Extra[0])
		if err != nil {
			return nil, err
		}
		a.Act = &engine.Magic{Atk: doer.ID(), Def: target.ID(), Magic: m}
	}
	return a, nil
}

func (s *Session) withUnit(r *types.Result, intent types.Intent, fn func(*unit.Unit) []string) {
	if intent.Object == "" {
		reject(r, fmt.Sprintf("%s which unit?", intent.Verb))
		return
	}
	u, err := resolve.Unit(s.Game, intent.Object)
	if err != nil {
		reject(r, errorLine(err))
		return
	}
	r.Output = fn(u)
}

func (s *Session) units() []string {
	g := s.Game
	if g.Status() == types.StatusDeploying {
		return s.roster()
	}
	var out []string
	g.ForEachUnit(func(u *unit.Unit) {
		out = append(out, UnitLine(u))
	})
	if len(out) == 0 {
		out = append(out, "No units on the field.")
	}
	return out
}

func (s *Session) roster() []string {
	g := s.Game
	d := g.Deployer()
	out := []string{fmt.Sprintf("Deploying: %d selectable position(s).", len(d.Slots()))}
	for _, h := range g.Roster() {
		where := "reserve"
		switch {
		case d.IsFixed(h):
			where = "fixed"
		case g.FindDeploy(h) != 0:
			n := g.FindDeploy(h)
			where = fmt.Sprintf("slot %d %v", n, d.Slots()[n-1])
		}
		out = append(out, fmt.Sprintf("  %-12s L%-2d %s", h.Name(), h.Level(), where))
	}
	return out
}

func (s *Session) deploy(r *types.Result, intent types.Intent) {
	g := s.Game
	if g.Status() != types.StatusDeploying {
		reject(r, errorLine(engine.ErrNotDeploying))
		return
	}
	if intent.Object == "" {
		reject(r, fmt.Sprintf("%s which hero?", intent.Verb))
		return
	}
	h, err := resolve.Hero(g.Roster(), intent.Object)
	if err != nil {
		reject(r, errorLine(err))
		return
	}

	if intent.Verb == "undeploy" {
		if g.UnassignDeploy(h) == 0 {
			reject(r, fmt.Sprintf("%s is not assigned.", h.Name()))
			return
		}
		r.Output = append(r.Output, fmt.Sprintf("%s returns to the reserve.", h.Name()))
		return
	}

	if g.Deployer().IsFixed(h) {
		reject(r, fmt.Sprintf("%s is already placed by the stage.", h.Name()))
		return
	}
	n := g.AssignDeploy(h)
	if n == 0 {
		reject(r, "Every position is taken.")
		return
	}
	r.Output = append(r.Output, fmt.Sprintf("%s takes position %d %v.", h.Name(), n, g.Deployer().Slots()[n-1]))
}

func (s *Session) info(u *unit.Unit) []string {
	g := s.Game
	hp, max := u.CurrentHpMp(), u.OriginalHpMp()
	st := u.Attribute()
	cell := g.Board().Cell(u.Position())

	out := []string{
		fmt.Sprintf("%s #%d (%s, %s) level %d, exp %d", u.Name(), u.ID(), u.Force(), u.Hero().Class().ID, u.Level(), u.Hero().Exp()),
		fmt.Sprintf("  hp %d/%d  mp %d/%d", hp.Hp, max.Hp, hp.Mp, max.Mp),
		fmt.Sprintf("  atk %d  def %d  dex %d  itl %d  mor %d", st.Atk(), st.Def(), st.Dex(), st.Itl(), st.Mor()),
		fmt.Sprintf("  at %v on %s, facing %s", u.Position(), cell.Terrain().Name, u.Direction()),
	}

	var gear []string
	u.Hero().Equipment().Each(func(e *unit.Equipment) {
		gear = append(gear, e.Name)
	})
	if len(gear) > 0 {
		out = append(out, "  equipment: "+strings.Join(gear, ", "))
	}
	var mods []string
	u.Modifiers().Each(func(m stat.Modifier) {
		mods = append(mods, fmt.Sprintf("%s %s (%d turn(s))", m.ID, m.Stat, m.TurnsLeft))
	})
	if len(mods) > 0 {
		sort.Strings(mods)
		out = append(out, "  effects: "+strings.Join(mods, ", "))
	}
	var spells []string
	for _, m := range g.Magics(u.ID()) {
		spells = append(spells, fmt.Sprintf("%s (%d mp)", m.Name, m.MpCost))
	}
	if len(spells) > 0 {
		out = append(out, "  magic: "+strings.Join(spells, ", "))
	}
	if u.IsDone() {
		out = append(out, "  has acted this turn")
	}
	return out
}

// moves lists the cells u can reach, or with a destination the route there.
func (s *Session) moves(u *unit.Unit, dest []int) []string {
	if len(dest) == 2 {
		p := types.Vec2D{X: dest[0], Y: dest[1]}
		tree := s.Game.MovablePath(u.ID())
		path := tree.PathTo(p)
		if path == nil {
			return []string{fmt.Sprintf("%s cannot stop on %v.", u.Name(), p)}
		}
		cost, _ := tree.Cost(p)
		cells := make([]string, len(path))
		for i, c := range path {
			cells[i] = c.String()
		}
		return []string{fmt.Sprintf("%s reaches %v for %d move points: %s", u.Name(), p, cost, strings.Join(cells, " "))}
	}
	ps := s.Game.MovablePositions(u.ID())
	cells := make([]string, len(ps))
	for i, p := range ps {
		cells[i] = p.String()
	}
	return []string{fmt.Sprintf("%s can reach: %s", u.Name(), strings.Join(cells, " "))}
}

// UnitLine is the one-line roster entry for a unit.
func UnitLine(u *unit.Unit) string {
	hp, max := u.CurrentHpMp(), u.OriginalHpMp()
	line := fmt.Sprintf("#%-2d %-12s %-5s L%-2d hp %3d/%-3d mp %2d/%-2d at %v",
		u.ID(), u.Name(), u.Force(), u.Level(), hp.Hp, max.Hp, hp.Mp, max.Mp, u.Position())
	if u.IsDone() {
		line += " (done)"
	}
	return line
}

func reject(r *types.Result, line string) {
	r.Output = append(r.Output, line)
	r.Rejected = true
}

// errorLine phrases an engine error for the player.
func errorLine(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotStarted):
		return "The battle has not started. Deploy your heroes and type start."
	case errors.Is(err, engine.ErrBattleDecided):
		return "The battle is over."
	}
	msg := err.Error()
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if strings.ContainsAny(msg[len(msg)-1:], ".?!)") {
		return msg
	}
	return msg + "."
}
