package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/gapview/internal/selection"
	"github.com/jask/gapview/internal/service"
)

const barLabelWidth = 26

// BarView draws mean life expectancy per cluster.
type BarView struct {
	emphasisCache
	means    []service.ClusterMean
	palette  *Palette
	barWidth int
}

func NewBarView(ctrl *selection.Controller, barWidth int) *BarView {
	v := &BarView{barWidth: barWidth}
	v.bind(ctrl, v)
	return v
}

// SetData replaces the bars and recomputes their emphasis.
func (v *BarView) SetData(means []service.ClusterMean, palette *Palette) {
	v.means = means
	v.palette = palette
	v.refresh(v)
}

func (v *BarView) Title() string { return "Mean life expectancy by cluster" }

func (v *BarView) Len() int { return len(v.means) }

func (v *BarView) ClusterAt(i int) string {
	if i < 0 || i >= len(v.means) {
		return ""
	}
	return v.means[i].Cluster()
}

func (v *BarView) Render(width, height, cursor int, focused bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(v.means) == 0 {
		return mutedStyle.Render("(no data)")
	}
	maxV := 0.0
	for _, m := range v.means {
		if m.LifeExpect > maxV {
			maxV = m.LifeExpect
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	span := min(v.barWidth, width-barLabelWidth-9)
	if span < 1 {
		span = 1
	}

	lines := make([]string, 0, len(v.means))
	for i, m := range v.means {
		if len(lines) >= height {
			break
		}
		e := v.EmphasisAt(i)
		w := int((m.LifeExpect / maxV) * float64(span))
		if w < 1 {
			w = 1
		}
		marker := "  "
		if focused && i == cursor {
			marker = "› "
		}
		text := lipgloss.NewStyle().Foreground(v.palette.Text(e))
		label := text.Width(barLabelWidth).Render(ansi.Truncate(m.Cluster(), barLabelWidth, "…"))
		bar := lipgloss.NewStyle().Foreground(v.palette.Color(m.Cluster(), e)).Render(strings.Repeat("█", w))
		value := text.Render(fmt.Sprintf(" %.1f", m.LifeExpect))
		lines = append(lines, marker+label+bar+value)
	}
	return strings.Join(lines, "\n")
}

// Detail describes the mark under the cursor.
func (v *BarView) Detail(cursor int) string {
	if cursor < 0 || cursor >= len(v.means) {
		return ""
	}
	m := v.means[cursor]
	return fmt.Sprintf("%s · mean %.1f years · %d countries", m.Cluster(), m.LifeExpect, m.Countries)
}
