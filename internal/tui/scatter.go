package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/gapview/internal/selection"
	"github.com/jask/gapview/internal/service"
)

// ScatterView places countries by log population (x) and life expectancy (y).
type ScatterView struct {
	emphasisCache
	points  []service.CountryPoint
	palette *Palette
}

func NewScatterView(ctrl *selection.Controller) *ScatterView {
	v := &ScatterView{}
	v.bind(ctrl, v)
	return v
}

func (v *ScatterView) SetData(points []service.CountryPoint, palette *Palette) {
	v.points = points
	v.palette = palette
	v.refresh(v)
}

func (v *ScatterView) Title() string { return "Life expectancy vs population" }

func (v *ScatterView) Len() int { return len(v.points) }

func (v *ScatterView) ClusterAt(i int) string {
	if i < 0 || i >= len(v.points) {
		return ""
	}
	return v.points[i].Cluster()
}

type extents struct {
	minX, maxX float64
	minY, maxY float64
}

func (v *ScatterView) bounds() extents {
	e := extents{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, p := range v.points {
		x := logPop(p.Pop)
		e.minX, e.maxX = math.Min(e.minX, x), math.Max(e.maxX, x)
		e.minY, e.maxY = math.Min(e.minY, p.LifeExpect), math.Max(e.maxY, p.LifeExpect)
	}
	return e
}

// cell maps a point onto a width x height grid. Row 0 is the top.
func (e extents) cell(p service.CountryPoint, width, height int) (row, col int) {
	col = scale(logPop(p.Pop), e.minX, e.maxX, width)
	row = height - 1 - scale(p.LifeExpect, e.minY, e.maxY, height)
	return row, col
}

// layout assigns each grid cell the index of the first point landing on it, or -1.
func (v *ScatterView) layout(ext extents, width, height int) [][]int {
	grid := make([][]int, height)
	for r := range grid {
		grid[r] = make([]int, width)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	for i, p := range v.points {
		row, col := ext.cell(p, width, height)
		if grid[row][col] == -1 {
			grid[row][col] = i
		}
	}
	return grid
}

func logPop(pop int64) float64 {
	return math.Log10(math.Max(1, float64(pop)))
}

func scale(v, lo, hi float64, n int) int {
	if n <= 1 || hi <= lo {
		return n / 2
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return max(0, min(n-1, i))
}

func (v *ScatterView) Render(width, height, cursor int, focused bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(v.points) == 0 {
		return mutedStyle.Render("(no data)")
	}
	ext := v.bounds()
	grid := v.layout(ext, width, height)
	cursorRow, cursorCol := -1, -1
	if focused && cursor >= 0 && cursor < len(v.points) {
		cursorRow, cursorCol = ext.cell(v.points[cursor], width, height)
	}

	var b strings.Builder
	for r, row := range grid {
		for c, idx := range row {
			switch {
			case r == cursorRow && c == cursorCol:
				e := v.EmphasisAt(cursor)
				b.WriteString(lipgloss.NewStyle().Foreground(v.palette.Color(v.points[cursor].Cluster(), e)).Bold(true).Render("◆"))
			case idx >= 0:
				e := v.EmphasisAt(idx)
				b.WriteString(lipgloss.NewStyle().Foreground(v.palette.Color(v.points[idx].Cluster(), e)).Render("●"))
			default:
				b.WriteByte(' ')
			}
		}
		if r < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (v *ScatterView) Detail(cursor int) string {
	if cursor < 0 || cursor >= len(v.points) {
		return ""
	}
	p := v.points[cursor]
	return fmt.Sprintf("%s · %s · pop %s · life %.1f", p.Country, p.Cluster(), formatPop(p.Pop), p.LifeExpect)
}

// formatPop renders a population with an SI-style suffix.
func formatPop(n int64) string {
	f := float64(n)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.0fK", f/1e3)
	default:
		return fmt.Sprintf("%d", n)
	}
}
