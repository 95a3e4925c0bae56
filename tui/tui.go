// Package tui provides a Bubble Tea terminal UI for the mengde battle engine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/engine/play"
	"github.com/kangjianbin/mengde/types"
)

// minLogWidth is the narrowest battle log shown beside the map. Narrower
// terminals get the log alone; the map is still available with "map".
const minLogWidth = 30

// rawLine is one log line kept unstyled; the viewport is rebuilt from these
// whenever the width changes.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the battle TUI.
type Model struct {
	session *play.Session
	title   string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated battle log (unstyled, for re-wrapping)

	width    int
	height   int
	sideMap  bool // map drawn beside the log
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// logEntry carries output from the session into the Update loop.
type logEntry struct {
	input    string // empty for the intro
	lines    []string
	isSystem bool // meta-command output
	rejected bool
}

// New creates a TUI model for a battle. stage names the stage file and
// becomes the status bar title.
func New(g *engine.Game, stage string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		session: play.New(g),
		title:   stageDisplayName(stage),
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(g *engine.Game, stage string) error {
	m := New(g, stage)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that shows the roster to deploy.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{
			m.title,
			"",
			"Choose your heroes with deploy <hero>, then type start. /help lists commands.",
		}
		result := m.session.Exec("units")
		lines = append(lines, result.Output...)
		return logEntry{lines: lines}
	}
}

// Update routes keys to the input, resizes to layout and log entries to the viewport.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case logEntry:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// layout sizes the log viewport around the map panel.
func (m *Model) layout() {
	vpWidth := m.width
	vpHeight := m.height - 2 // 1 status bar + 1 input line
	if vpHeight < 1 {
		vpHeight = 1
	}

	mapWidth := lipgloss.Width(m.renderMap())
	m.sideMap = m.width-mapWidth-1 >= minLogWidth
	if m.sideMap {
		vpWidth = m.width - mapWidth - 1
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
		return
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

// handleEnter submits the input line to the session or the meta commands.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(logEntry{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(logEntry{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Battle command.
	result := m.session.Exec(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(logEntry{input: input, lines: output, rejected: result.Rejected})
	return m, nil
}

// appendOutput adds lines to the battle log and refreshes the viewport.
func (m Model) appendOutput(msg logEntry) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: msg.input, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		switch {
		case msg.isSystem:
		case msg.rejected:
			rl.kind = kindError
		default:
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between commands.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// log width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.viewport.Width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		switch {
		case rl.isInput:
			styled = append(styled, styledPlayerInput(wordWrap(rl.text, width-2)))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wordWrap(rl.text, width-2)))
		default:
			styled = append(styled, renderLineKind(wordWrap(rl.text, width), rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

func renderLineKind(line string, kind lineKind) string {
	if st, ok := kindStyles[kind]; ok {
		return st.Render(line)
	}
	return styleNarration.Render(line)
}

// wordWrap breaks text at spaces so no line exceeds width. Text that
// already fits, such as a map row, keeps its spacing.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) > width:
			lines = append(lines, cur)
			cur = word
		default:
			cur += " " + word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return strings.Join(lines, "\n")
}

// View renders the full TUI layout: map and log, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	if m.sideMap {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderMap(), " ", body)
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta runs a slash command and reports whether to quit.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System: /quit /help /state /trace",
		"",
		"Deployment:",
		"  deploy <hero>, undeploy <hero>, start",
		"",
		"Battle:",
		"  units (u)                     List units",
		"  map                           Draw the battlefield as text",
		"  info <unit> (i, x)            Inspect a unit",
		"  moves <unit> [x y]            Cells a unit can reach, or the route",
		"  move <unit> to <x> <y>",
		"  attack <unit> at <target> [from x y]",
		"  cast <magic> <unit> at <target> [from x y]",
		"  stay <unit> [x y]",
		"  end                           End your turn",
		"  again (g)                     Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	g := m.session.Game
	output := []string{
		fmt.Sprintf("Status: %s", g.Status()),
		fmt.Sprintf("Turn: %d/%d (%s)", g.TurnCurrent(), g.TurnLimit(), g.Force()),
		fmt.Sprintf("Alive: own %d, ally %d, enemy %d",
			g.CountAlive(types.ForceOwn), g.CountAlive(types.ForceAlly), g.CountAlive(types.ForceEnemy)),
	}
	if avail := g.AvailableUnits(); len(avail) > 0 && g.IsUserTurn() {
		names := make([]string, len(avail))
		for i, u := range avail {
			names[i] = u.Name()
		}
		output = append(output, fmt.Sprintf("Ready: %s", strings.Join(names, ", ")))
	}
	if dice := play.DiceState(g); dice != "" {
		output = append(output, dice)
	}
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Steps) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Steps: %d", len(result.Steps)))
		for _, s := range result.Steps {
			lines = append(lines, fmt.Sprintf("[trace]   %s", s))
		}
		if dice := play.DiceState(m.session.Game); dice != "" {
			lines = append(lines, "[trace] "+dice)
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap scrolls by page only; Up and Down belong to the history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
