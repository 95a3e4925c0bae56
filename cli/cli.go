// Package cli plays a battle as a plain line-oriented session, suitable for
// pipes and recorded command scripts.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/engine/play"
	"github.com/kangjianbin/mengde/types"
)

// CLI reads commands from In and writes narration to Out.
type CLI struct {
	Session   *play.Session
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given battle.
func New(g *engine.Game) *CLI {
	return &CLI{
		Session: play.New(g),
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run starts the command loop. It shows the roster to deploy, then loops:
// prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine("Choose your heroes with deploy <hero>, then type start.")
	c.printResult(c.Session.Exec("units"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Script files may carry comments.
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}


		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// again and g replay the last battle command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Session.Exec(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

func (c *CLI) prompt() string {
	g := c.Session.Game
	switch {
	case g.Status() == types.StatusDeploying:
		return "deploy> "
	case g.Ended():
		return "> "
	}
	return fmt.Sprintf("[turn %d/%d] > ", g.TurnCurrent(), g.TurnLimit())
}

// handleMeta runs a slash command; true means quit.
func (c *CLI) handleMeta(input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump battle state",
		"  /trace        Toggle debug trace output",
		"",
		"Deployment:",
		"  deploy <hero>                         Take the next free position (pick)",
		"  undeploy <hero>                       Return a hero to the reserve",
		"  start                                 Begin the battle",
		"",
		"Battle:",
		"  units (u)                             List units",
		"  map                                   Draw the battlefield",
		"  info <unit> (i, x)                    Inspect a unit",
		"  moves <unit> [x y]                    Cells a unit can reach, or the route to x y",
		"  move <unit> to <x> <y>                Move and end the unit's action",
		"  attack <unit> at <target> [from x y]  Attack, optionally after moving",
		"  cast <magic> <unit> at <target> [from x y]",
		"  stay <unit> [x y]                     Wait, optionally after moving",
		"  end                                   End your turn",
		"  again (g)                             Repeat your last command",
		"",
		"Units are named by hero (guan yu, guanyu) or handle (#3).",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	g := c.Session.Game
	c.printSystem(fmt.Sprintf("Status: %s", g.Status()))
	c.printSystem(fmt.Sprintf("Turn: %d/%d (%s)", g.TurnCurrent(), g.TurnLimit(), g.Force()))
	c.printSystem(fmt.Sprintf("Alive: own %d, ally %d, enemy %d",
		g.CountAlive(types.ForceOwn), g.CountAlive(types.ForceAlly), g.CountAlive(types.ForceEnemy)))
	var pending []string
	g.Pending(func(cmd engine.Cmd) { pending = append(pending, cmd.String()) })
	if len(pending) > 0 {
		c.printSystem(fmt.Sprintf("Pending: %v", pending))
	}
	if n := len(c.Session.Log); n > 0 {
		c.printSystem(fmt.Sprintf("Commands: %d", n))
	}
	if dice := play.DiceState(g); dice != "" {
		c.printSystem(dice)
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Steps) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Steps: %d", len(result.Steps)))
		for _, s := range result.Steps {
			c.printSystem(fmt.Sprintf("[trace]   %s", s))
		}
		if dice := play.DiceState(c.Session.Game); dice != "" {
			c.printSystem("[trace] " + dice)
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			if e.Unit == types.NoUnit {
				c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
				continue
			}
			c.printSystem(fmt.Sprintf("[trace]   %s #%d %v", e.Type, e.Unit, e.Data))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
