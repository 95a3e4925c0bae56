package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kangjianbin/mengde/engine/play"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

// stageDisplayName derives a human-readable name from a stage file name.
// "stage1.lua" -> "Stage1", "yellow_turbans.lua" -> "Yellow Turbans".
func stageDisplayName(file string) string {
	base := file[strings.LastIndexAny(file, `/\`)+1:]
	base = strings.TrimSuffix(base, ".lua")
	words := strings.Split(base, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing the
// stage, turn, side in control and the battle status.
func (m Model) renderStatusBar() string {
	g := m.session.Game

	var left, right string
	switch g.Status() {
	case types.StatusDeploying:
		d := g.Deployer()
		taken := 0
		d.Each(func(_ *unit.Hero, _ types.Vec2D) { taken++ })
		left = fmt.Sprintf(" %s | Deploying", m.title)
		right = fmt.Sprintf("Slots: %d/%d ", taken, len(d.Slots()))
	default:
		left = fmt.Sprintf(" %s | Turn %d/%d | %s", m.title, g.TurnCurrent(), g.TurnLimit(), g.Force())
		right = fmt.Sprintf("%s ", g.Status())
		counts := fmt.Sprintf("Own %d Enemy %d | %s ",
			g.CountAlive(types.ForceOwn), g.CountAlive(types.ForceEnemy), g.Status())
		if lipgloss.Width(left)+lipgloss.Width(counts)+2 < m.width {
			right = counts
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderMap draws the battlefield with one styled glyph per cell and
// column/row indices on the axes.
func (m Model) renderMap() string {
	g := m.session.Game
	cols, rows := g.Board().Size()

	var b strings.Builder
	b.WriteString(styleAxis.Render("   "))
	for x := 0; x < cols; x++ {
		b.WriteString(styleAxis.Render(fmt.Sprintf("%d ", x%10)))
	}
	for y := 0; y < rows; y++ {
		b.WriteString("\n")
		b.WriteString(styleAxis.Render(fmt.Sprintf("%2d ", y)))
		for x := 0; x < cols; x++ {
			gl := play.CellGlyph(g, types.Vec2D{X: x, Y: y})
			b.WriteString(glyphStyle(gl.Text, gl.Occupied, gl.Done, gl.Force).Render(gl.Text))
			b.WriteString(" ")
		}
	}
	return styleMapFrame.Render(b.String())
}
