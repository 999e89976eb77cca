package tui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jask/gapview/internal/selection"
)

var (
	colorText   lipgloss.Color = "#cdd6f4"
	colorMuted  lipgloss.Color = "#a6adc8"
	colorBorder lipgloss.Color = "#585b70"
	colorAccent lipgloss.Color = "#89b4fa"
	colorError  lipgloss.Color = "#f38ba8"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	focusStyle = paneStyle.BorderForeground(colorAccent)
)

// d3.schemeTableau10
var tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Palette maps clusters to colours and emphasis to visual weight.
type Palette struct {
	colors     map[string]string
	background string
	opacity    float64
}

// NewPalette assigns tableau10 colours in domain order, wrapping after ten clusters.
func NewPalette(domain []string, background string, dimmedOpacity float64) *Palette {
	p := &Palette{
		colors:     make(map[string]string, len(domain)),
		background: background,
		opacity:    dimmedOpacity,
	}
	for i, c := range domain {
		if _, ok := p.colors[c]; ok {
			continue
		}
		p.colors[c] = tableau10[i%len(tableau10)]
	}
	return p
}

// Opacity is the visual weight of an emphasis level.
func (p *Palette) Opacity(e selection.Emphasis) float64 {
	if e == selection.Dimmed {
		return p.opacity
	}
	return 1
}

// Color returns the cluster colour blended toward the background by emphasis.
func (p *Palette) Color(cluster string, e selection.Emphasis) lipgloss.Color {
	hex, ok := p.colors[cluster]
	if !ok {
		hex = string(colorMuted)
	}
	return lipgloss.Color(blend(hex, p.background, p.Opacity(e)))
}

// Text is the label colour for a mark at the given emphasis.
func (p *Palette) Text(e selection.Emphasis) lipgloss.Color {
	return lipgloss.Color(blend(string(colorText), p.background, p.Opacity(e)))
}

// blend composites fg over bg at the given opacity. Unparseable input returns fg unchanged.
func blend(fg, bg string, opacity float64) string {
	if opacity >= 1 {
		return fg
	}
	f, err := colorful.Hex(fg)
	if err != nil {
		return fg
	}
	b, err := colorful.Hex(bg)
	if err != nil {
		return fg
	}
	return f.BlendRgb(b, 1-opacity).Clamped().Hex()
}
