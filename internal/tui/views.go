package tui

import "github.com/jask/gapview/internal/selection"

// ChartView is one of the linked charts on the dashboard.
type ChartView interface {
	Title() string
	Len() int
	ClusterAt(i int) string
	Render(width, height, cursor int, focused bool) string
}

type markSource interface {
	Len() int
	ClusterAt(i int) string
}

// emphasisCache keeps one Emphasis per mark, refreshed whenever the selection changes.
type emphasisCache struct {
	ctrl    *selection.Controller
	marks   []selection.Emphasis
	renders int
	stop    func()
}

func (c *emphasisCache) bind(ctrl *selection.Controller, src markSource) {
	c.ctrl = ctrl
	c.stop = ctrl.Subscribe(func() { c.refresh(src) })
}

func (c *emphasisCache) refresh(src markSource) {
	c.marks = c.marks[:0]
	for i := 0; i < src.Len(); i++ {
		c.marks = append(c.marks, c.ctrl.Emphasis(src.ClusterAt(i)))
	}
	c.renders++
}

// EmphasisAt returns the cached emphasis of mark i.
func (c *emphasisCache) EmphasisAt(i int) selection.Emphasis {
	if i < 0 || i >= len(c.marks) {
		return selection.Full
	}
	return c.marks[i]
}

// Renders counts emphasis refreshes.
func (c *emphasisCache) Renders() int { return c.renders }

// Close unsubscribes the view from its controller.
func (c *emphasisCache) Close() {
	if c.stop != nil {
		c.stop()
	}
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
