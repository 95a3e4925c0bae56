// Package engine is the battle command engine: a queue of commands that
// mutate the battle and extend the queue with their follow-ups, driven one
// step at a time by the Game orchestrator.
package engine

import (
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/kangjianbin/mengde/engine/board"
	"github.com/kangjianbin/mengde/engine/effects"
	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/gamedata"
	"github.com/kangjianbin/mengde/types"
)

// Gameplay rejections returned by the Push and deploy methods.
var (
	ErrBattleDecided = errors.New("battle is already decided")
	ErrNotStarted    = errors.New("battle has not started")
	ErrNotDeploying  = errors.New("battle is not in deployment")
	ErrBusy          = errors.New("commands are still pending")
	ErrNotYourTurn   = errors.New("unit's force is not in control")
	ErrActionDone    = errors.New("unit has already acted this turn")
	ErrDeadUnit      = errors.New("unit is dead")
	ErrUnreachable   = errors.New("destination is not reachable")
	ErrOutOfRange    = errors.New("target is out of range")
	ErrWrongTarget   = errors.New("target is on the wrong side")
	ErrUnknownMagic  = errors.New("unit cannot cast that magic")
	ErrNotEnoughMp   = errors.New("not enough mp")
	ErrUnknownUnit   = errors.New("no such unit")
	ErrUnknownHero   = errors.New("no such hero")
)

// Scripter is the stage script as seen by the engine.
type Scripter interface {
	// EndCondition evaluates the stage's terminal predicate.
	EndCondition() (types.Status, error)
	// Call runs an optional lifecycle hook; a missing hook is not an error.
	Call(hook string) error
}

type nopScript struct{}

func (nopScript) EndCondition() (types.Status, error) { return types.StatusUndecided, nil }
func (nopScript) Call(string) error                   { return nil }

// Config describes one battle.
type Config struct {
	Rules      *gamedata.Ruleset
	Map        *board.Map
	TurnLimit  int
	Forces     []types.Force // turn order; empty means DefaultForces
	Fixed      []FixedDeploy
	Selectable []types.Vec2D
	Roster     []*unit.Hero // the player's heroes
	Script     Scripter
	Dice       Dice
	Logger     *zap.Logger
}

// StepResult reports what one queue step did.
type StepResult struct {
	Cmd    Cmd
	Events []types.Event
	Status types.Status
}

// Game owns all battle state and drives the command queue.
type Game struct {
	rules  *gamedata.Ruleset
	board  *board.Map
	units  unit.Registry
	queue  Queue
	turn   Turn
	status *fsm.FSM
	deploy *Deployer
	roster []*unit.Hero
	script Scripter
	dice   Dice
	log    *zap.Logger

	events  []types.Event
	err     error
	ended   bool
	stalled bool // a script error cut the last Drain short
}

// New creates a battle in the deploying state.
func New(cfg Config) (*Game, error) {
	if cfg.Rules == nil {
		return nil, errors.New("engine: ruleset is required")
	}
	if cfg.Map == nil {
		return nil, errors.New("engine: map is required")
	}
	hasOwn := len(cfg.Forces) == 0
	for _, f := range cfg.Forces {
		hasOwn = hasOwn || f == types.ForceOwn
	}
	if !hasOwn {
		return nil, errors.New("engine: turn order must include the own force")
	}
	for _, p := range cfg.Selectable {
		if !cfg.Map.IsValid(p) {
			return nil, fmt.Errorf("engine: deploy position %v is off the map", p)
		}
	}

	g := &Game{
		rules:  cfg.Rules,
		board:  cfg.Map,
		turn:   NewTurn(cfg.Forces, cfg.TurnLimit),
		deploy: NewDeployer(cfg.Fixed, cfg.Selectable),
		roster: cfg.Roster,
		script: cfg.Script,
		dice:   cfg.Dice,
		log:    cfg.Logger,
	}
	if g.script == nil {
		g.script = nopScript{}
	}
	if g.dice == nil {
		g.dice = NewRNG(1)
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	g.status = newStatusMachine(g.log)
	return g, nil
}

// Open runs the stage's on_deploy hook. Call it once, after the script
// has been bound to the game.
func (g *Game) Open() error {
	return g.script.Call("on_deploy")
}

// Step executes the next pending command and then asks the stage script
// whether the battle is decided. The error is only ever a script failure.
// Stepping with nothing pending is a contract violation.
func (g *Game) Step() (StepResult, error) {
	g.events = nil
	g.err = nil

	c := g.queue.Step(g)
	g.log.Debug("step", zap.Stringer("cmd", c), zap.Int("pending", g.queue.Len()))

	if g.err == nil {
		if _, err := g.CheckStatus(); err != nil {
			g.fail(err)
		}
	}

	res := StepResult{Cmd: c, Events: g.events, Status: g.Status()}
	g.events = nil
	return res, g.err
}

// Drain steps until the player must decide something, scheduling PlayAI
// whenever an AI force is in control. onStep sees every step. A script
// error stops the drain and leaves the battle stalled until Resume.
func (g *Game) Drain(onStep func(StepResult)) error {
	g.stalled = true
	for {
		if !g.queue.IsEmpty() {
			res, err := g.Step()
			if onStep != nil {
				onStep(res)
			}
			if err != nil {
				g.log.Warn("drain interrupted", zap.Error(err), zap.Int("pending", g.queue.Len()))
				return err
			}
			continue
		}
		if g.ended || g.Status() != types.StatusUndecided || g.IsUserTurn() {
			g.stalled = false
			return nil
		}
		g.queue.Append(&PlayAI{})
	}
}

// Stalled reports whether a script error interrupted the last Drain.
func (g *Game) Stalled() bool { return g.stalled }

// Resume finishes a drain that a script error interrupted. The status check
// the failed step skipped runs first. Without a stall it does nothing.
func (g *Game) Resume(onStep func(StepResult)) error {
	if !g.stalled {
		return nil
	}
	if _, err := g.CheckStatus(); err != nil {
		return err
	}
	return g.Drain(onStep)
}

// PushCmd queues c after everything pending.
func (g *Game) PushCmd(c Cmd) { g.queue.Append(c) }

// PushAction validates a player action and queues it.
func (g *Game) PushAction(a *Action) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if !g.queue.IsEmpty() {
		return ErrBusy
	}

	doer, ok := g.units.Lookup(a.Doer())
	if !ok {
		return ErrUnknownUnit
	}
	if err := g.checkActor(doer); err != nil {
		return err
	}

	from := doer.Position()
	if a.Move != nil {
		if a.Move.Unit != doer.ID() {
			return fmt.Errorf("%s: move belongs to another unit", doer.Name())
		}
		if !g.MovablePath(doer.ID()).Contains(a.Move.Dest) {
			return fmt.Errorf("%s to %v: %w", doer.Name(), a.Move.Dest, ErrUnreachable)
		}
		from = a.Move.Dest
	}

	switch act := a.Act.(type) {
	case nil, *Stay:
	case *BasicAttack:
		if err := g.checkAttack(doer, from, act.Def); err != nil {
			return err
		}
	case *Magic:
		if err := g.checkMagic(doer, from, act.Def, act.Magic); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s: %s is not an act", doer.Name(), act)
	}

	g.queue.Append(a)
	return nil
}

// PushEndTurn queues the end of the player's turn.
func (g *Game) PushEndTurn() error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if !g.queue.IsEmpty() {
		return ErrBusy
	}
	g.queue.Append(&EndTurn{})
	return nil
}

func (g *Game) checkActive() error {
	switch g.Status() {
	case types.StatusDeploying:
		return ErrNotStarted
	case types.StatusUndecided:
		return nil
	default:
		return ErrBattleDecided
	}
}

func (g *Game) checkActor(u *unit.Unit) error {
	switch {
	case u.IsDead():
		return fmt.Errorf("%s: %w", u.Name(), ErrDeadUnit)
	case u.Force() != g.turn.Force():
		return fmt.Errorf("%s: %w", u.Name(), ErrNotYourTurn)
	case u.IsDone():
		return fmt.Errorf("%s: %w", u.Name(), ErrActionDone)
	}
	return nil
}

func (g *Game) checkAttack(atk *unit.Unit, from types.Vec2D, defID unit.ID) error {
	def, ok := g.units.Lookup(defID)
	if !ok {
		return ErrUnknownUnit
	}
	if def.IsDead() {
		return fmt.Errorf("%s: %w", def.Name(), ErrDeadUnit)
	}
	if !atk.IsHostile(def) {
		return fmt.Errorf("%s attacking %s: %w", atk.Name(), def.Name(), ErrWrongTarget)
	}
	if !atk.IsInRangeFrom(from, def.Position()) {
		return fmt.Errorf("%s attacking %s from %v: %w", atk.Name(), def.Name(), from, ErrOutOfRange)
	}
	return nil
}

func (g *Game) checkMagic(atk *unit.Unit, from types.Vec2D, defID unit.ID, m *magic.Magic) error {
	def, ok := g.units.Lookup(defID)
	if !ok {
		return ErrUnknownUnit
	}
	if def.IsDead() {
		return fmt.Errorf("%s: %w", def.Name(), ErrDeadUnit)
	}
	if m == nil || !g.CanCast(atk.ID(), m.ID) {
		return fmt.Errorf("%s: %w", atk.Name(), ErrUnknownMagic)
	}
	if atk.CurrentHpMp().Mp < m.MpCost {
		return fmt.Errorf("%s casting %s: %w", atk.Name(), m.Name, ErrNotEnoughMp)
	}
	if m.TargetsHostile() != atk.IsHostile(def) {
		return fmt.Errorf("%s casting %s on %s: %w", atk.Name(), m.Name, def.Name(), ErrWrongTarget)
	}
	if !m.InRange(from, def.Position()) {
		return fmt.Errorf("%s casting %s from %v: %w", atk.Name(), m.Name, from, ErrOutOfRange)
	}
	return nil
}

// AssignDeploy puts a roster hero in the next free deploy slot and returns
// the slot number, or 0 when every slot is taken.
func (g *Game) AssignDeploy(h *unit.Hero) int { return g.deploy.Assign(h) }

// UnassignDeploy frees the slot of h and returns its number, or 0.
func (g *Game) UnassignDeploy(h *unit.Hero) int { return g.deploy.Unassign(h) }

// FindDeploy returns the slot held by h, or 0.
func (g *Game) FindDeploy(h *unit.Hero) int { return g.deploy.Find(h) }

// Deployer exposes the stage's deploy positions.
func (g *Game) Deployer() *Deployer { return g.deploy }

// SubmitDeploy places fixed and assigned heroes as own units, starts the
// battle and runs the stage's on_begin hook.
func (g *Game) SubmitDeploy() error {
	if g.Status() != types.StatusDeploying {
		return ErrNotDeploying
	}
	for _, f := range g.deploy.Fixed() {
		h := g.RosterHero(f.Hero)
		if h == nil {
			return fmt.Errorf("fixed deploy %q: %w", f.Hero, ErrUnknownHero)
		}
		if _, err := g.deployUnit(h, types.ForceOwn, f.Position); err != nil {
			return err
		}
	}
	var err error
	g.deploy.Each(func(h *unit.Hero, pos types.Vec2D) {
		if err == nil {
			_, err = g.deployUnit(h, types.ForceOwn, pos)
		}
	})
	if err != nil {
		return err
	}

	g.transition(evBegin)
	g.log.Info("battle begins", zap.Int("units", g.units.Len()))
	return g.script.Call("on_begin")
}

func (g *Game) deployUnit(h *unit.Hero, force types.Force, pos types.Vec2D) (unit.ID, error) {
	u := unit.New(h, force, pos)
	if err := g.board.PlaceUnit(unit.ID(g.units.Len()), pos); err != nil {
		return 0, fmt.Errorf("deploying %s: %w", h.Name(), err)
	}
	id := g.units.Deploy(u)
	g.log.Debug("unit deployed", unitField(u), zap.Stringer("force", force), zap.Stringer("pos", pos))
	return id, nil
}

// GenerateUnit creates a new hero from the ruleset and deploys it.
func (g *Game) GenerateUnit(heroID string, level int, force types.Force, pos types.Vec2D) (unit.ID, error) {
	tpl, ok := g.rules.Heroes[heroID]
	if !ok {
		return 0, fmt.Errorf("%q: %w", heroID, ErrUnknownHero)
	}
	return g.deployUnit(unit.NewHero(tpl, level), force, pos)
}

// GenerateOwnUnit deploys a roster hero directly, outside the deploy phase.
func (g *Game) GenerateOwnUnit(heroID string, pos types.Vec2D) (unit.ID, error) {
	h := g.RosterHero(heroID)
	if h == nil {
		return 0, fmt.Errorf("%q: %w", heroID, ErrUnknownHero)
	}
	return g.deployUnit(h, types.ForceOwn, pos)
}

// AppointHero adds a new hero to the player's roster.
func (g *Game) AppointHero(heroID string, level int) error {
	tpl, ok := g.rules.Heroes[heroID]
	if !ok {
		return fmt.Errorf("%q: %w", heroID, ErrUnknownHero)
	}
	if g.RosterHero(heroID) != nil {
		return nil
	}
	g.roster = append(g.roster, unit.NewHero(tpl, level))
	return nil
}

// PutOn equips a unit's hero with a ruleset item.
func (g *Game) PutOn(id unit.ID, equipmentID string) error {
	u, ok := g.units.Lookup(id)
	if !ok {
		return ErrUnknownUnit
	}
	e, ok := g.rules.Equipment[equipmentID]
	if !ok {
		return fmt.Errorf("unknown equipment %q", equipmentID)
	}
	u.Hero().PutOn(e)
	return nil
}

// PushSpeak queues a line of dialogue.
func (g *Game) PushSpeak(id unit.ID, words string) error {
	if _, ok := g.units.Lookup(id); !ok {
		return ErrUnknownUnit
	}
	g.queue.Append(&Speak{Unit: id, Words: words})
	return nil
}

// Queries.

func (g *Game) Board() *board.Map            { return g.board }
func (g *Game) Rules() *gamedata.Ruleset     { return g.rules }
func (g *Game) Roster() []*unit.Hero         { return g.roster }
func (g *Game) Force() types.Force           { return g.turn.Force() }
func (g *Game) TurnCurrent() int             { return g.turn.Current() }
func (g *Game) TurnLimit() int               { return g.turn.Limit() }
func (g *Game) IsUserTurn() bool             { return g.turn.Force() == types.ForceOwn }
func (g *Game) IsAITurn() bool               { return !g.IsUserTurn() }
func (g *Game) HasPendingCmd() bool          { return !g.queue.IsEmpty() }
func (g *Game) Ended() bool                  { return g.ended }
func (g *Game) Dice() Dice                   { return g.dice }
func (g *Game) CountAlive(f types.Force) int { return g.units.CountAlive(f) }

// NextCmd returns the command the next Step will run.
func (g *Game) NextCmd() Cmd { return g.queue.PeekNext() }

// Pending visits queued commands front to back.
func (g *Game) Pending(fn func(Cmd)) { g.queue.Each(fn) }

// Unit returns the unit for id, dead or alive.
func (g *Game) Unit(id unit.ID) (*unit.Unit, bool) { return g.units.Lookup(id) }

// ForEachUnit visits live units in deployment order.
func (g *Game) ForEachUnit(fn func(*unit.Unit)) { g.units.ForEach(fn) }

// UnitAt returns the live unit on p. Only live units occupy cells.
func (g *Game) UnitAt(p types.Vec2D) (*unit.Unit, bool) {
	if !g.board.UnitInCell(p) {
		return nil, false
	}
	return g.units.Get(g.board.Cell(p).Unit().Must()), true
}

// RosterHero finds a roster hero by id.
func (g *Game) RosterHero(id string) *unit.Hero {
	for _, h := range g.roster {
		if h.ID() == id {
			return h
		}
	}
	return nil
}

// AvailableUnits returns the live units of the force in control that
// have not acted yet.
func (g *Game) AvailableUnits() []*unit.Unit {
	var out []*unit.Unit
	g.units.ForEach(func(u *unit.Unit) {
		if u.Force() == g.turn.Force() && !u.IsDone() {
			out = append(out, u)
		}
	})
	return out
}

// MovablePath searches the cells a unit can reach this turn. Hostile
// units block; any occupied cell other than its own is not a destination.
func (g *Game) MovablePath(id unit.ID) *board.PathTree {
	u := g.units.Get(id)
	return g.board.FindMovablePath(board.Mover{
		Origin: u.Position(),
		Move:   u.Move(),
		Class:  u.Hero().Class().ID,
		Blocks: func(occ unit.ID) bool { return u.IsHostile(g.units.Get(occ)) },
	})
}

// MovablePositions lists reachable cells in row-major order.
func (g *Game) MovablePositions(id unit.ID) []types.Vec2D {
	return g.MovablePath(id).Nodes()
}

// HostilesInRange lists live hostiles a unit could attack from pos.
func (g *Game) HostilesInRange(id unit.ID, pos types.Vec2D) []*unit.Unit {
	u := g.units.Get(id)
	var out []*unit.Unit
	g.units.ForEach(func(c *unit.Unit) {
		if u.IsHostile(c) && u.IsInRangeFrom(pos, c.Position()) {
			out = append(out, c)
		}
	})
	return out
}

// HostileInRange returns the first hostile a unit could attack from pos.
func (g *Game) HostileInRange(id unit.ID, pos types.Vec2D) (*unit.Unit, bool) {
	hs := g.HostilesInRange(id, pos)
	if len(hs) == 0 {
		return nil, false
	}
	return hs[0], true
}

// Magics returns the spells a unit's class can cast.
func (g *Game) Magics(id unit.ID) []*magic.Magic {
	u := g.units.Get(id)
	var out []*magic.Magic
	for _, mid := range u.Hero().Class().Magics {
		if m, ok := g.rules.Magics[mid]; ok {
			out = append(out, m)
		}
	}
	return out
}

// CanCast reports whether a unit's class knows the spell.
func (g *Game) CanCast(id unit.ID, magicID string) bool {
	for _, m := range g.Magics(id) {
		if m.ID == magicID {
			return true
		}
	}
	return false
}

// emit records an event for the current step.
func (g *Game) emit(id unit.ID, typ string, data map[string]any) {
	g.events = append(g.events, types.Event{Type: typ, Unit: uint32(id), Data: data})
}

func (g *Game) emitGlobal(typ string, data map[string]any) {
	g.events = append(g.events, types.Event{Type: typ, Unit: types.NoUnit, Data: data})
}

// raise fires a unit event: it is recorded for presentation, and the
// unit's equipment effects run. Restorations are queued last.
func (g *Game) raise(u *unit.Unit, trig effects.Trigger, mod *effects.AttackMod) {
	g.emit(u.ID(), string(trig), nil)
	for _, r := range u.RaiseEffects(trig, mod) {
		g.queue.Append(&RestoreHp{Unit: u.ID(), Ratio: r.Ratio, Adder: r.Adder})
	}
}

func (g *Game) gainExp(u, target *unit.Unit) {
	if levels := u.GainExp(target); levels > 0 {
		g.log.Info("level up", unitField(u), zap.Int("level", u.Level()))
		g.emit(u.ID(), types.EventLevelUp, map[string]any{"level": u.Level()})
	}
}

// fail records the first script error of the current step.
func (g *Game) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func unitField(u *unit.Unit) zap.Field {
	return zap.String("unit", fmt.Sprintf("%s#%d", u.Name(), u.ID()))
}
