package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kangjianbin/mengde/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleTurn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Italic(true)

	styleOutcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleMapFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleAxis = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Unit glyph colours by force; units that have acted are dimmed.
var (
	forceStyles = map[types.Force]lipgloss.Style{
		types.ForceOwn:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		types.ForceAlly:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		types.ForceEnemy: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
	styleDone = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	terrainStyles = map[string]lipgloss.Style{
		"f": lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		"h": lipgloss.NewStyle().Foreground(lipgloss.Color("137")),
		"~": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"c": lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		"#": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	styleGround = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDialogue
	kindSystem
	kindError
	kindTrace
	kindTurn
	kindOutcome
)

var kindStyles = map[lineKind]lipgloss.Style{
	kindDialogue: styleDialogue,
	kindSystem:   styleSystem,
	kindError:    styleError,
	kindTrace:    styleTrace,
	kindTurn:     styleTurn,
	kindOutcome:  styleOutcome,
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasSuffix(line, "turn ends]"),
		strings.HasPrefix(line, "Turn ") && strings.HasSuffix(line, "Your move."):
		return kindTurn
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case line == "Victory!",
		strings.HasPrefix(line, "The battle is won"),
		strings.HasPrefix(line, "The battle is lost"),
		strings.HasPrefix(line, "The battle begins"):
		return kindOutcome
	case strings.HasPrefix(line, "Script error:"):
		return kindError
	case strings.Contains(line, `: "`):
		return kindDialogue
	default:
		return kindNarration
	}
}

// glyphStyle picks the style for one map cell.
func glyphStyle(text string, occupied, done bool, force types.Force) lipgloss.Style {
	if !occupied {
		if s, ok := terrainStyles[text]; ok {
			return s
		}
		return styleGround
	}
	if done {
		return styleDone
	}
	return forceStyles[force]
}

// styledPlayerInput renders the echoed player input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
