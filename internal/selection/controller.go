// Package selection holds the shared cluster selection that links the dashboard charts.
//
// A Controller is owned by one dashboard and handed to every chart view by reference.
// Views call Toggle when a mark is activated and Subscribe once at setup to refresh
// their per-mark emphasis after each change.
package selection

// Emphasis is the visual weight a view derives for one mark.
type Emphasis int

const (
	// Full draws a mark at its normal colour.
	Full Emphasis = iota
	// Dimmed blends a mark toward the background.
	Dimmed
)

func (e Emphasis) String() string {
	switch e {
	case Full:
		return "full"
	case Dimmed:
		return "dimmed"
	default:
		return "unknown"
	}
}

// Record is anything a chart draws that belongs to a cluster.
type Record interface {
	Cluster() string
}

type listener struct {
	fn     func()
	active bool
}

// Controller is a two-state latch: Unselected, or Selected(cluster).
// It is not safe for concurrent use; the UI goroutine owns it.
type Controller struct {
	selected  string
	hasSel    bool
	listeners []*listener
}

// New returns an Unselected controller with no listeners.
func New() *Controller {
	return &Controller{}
}

// Toggle clears the selection when cluster is the selected one and selects cluster
// otherwise. Every subscribed listener runs once before Toggle returns.
func (c *Controller) Toggle(cluster string) {
	if c.hasSel && c.selected == cluster {
		c.selected, c.hasSel = "", false
	} else {
		c.selected, c.hasSel = cluster, true
	}
	c.notify()
}

// Current returns the selected cluster, or false when nothing is selected.
func (c *Controller) Current() (string, bool) {
	return c.selected, c.hasSel
}

// Emphasis is Full when nothing is selected or recordCluster is the selection.
func (c *Controller) Emphasis(recordCluster string) Emphasis {
	if !c.hasSel || recordCluster == c.selected {
		return Full
	}
	return Dimmed
}

// EmphasisOf is Emphasis applied to the record's cluster.
func (c *Controller) EmphasisOf(r Record) Emphasis {
	return c.Emphasis(r.Cluster())
}

// Partition counts how many records are drawn at full weight and how many are dimmed.
func Partition[R Record](c *Controller, records []R) (full, dimmed int) {
	for _, r := range records {
		if c.EmphasisOf(r) == Full {
			full++
		} else {
			dimmed++
		}
	}
	return full, dimmed
}

// Subscribe registers fn to run after every Toggle. The returned func removes it;
// calling it again does nothing.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	l := &listener{fn: fn, active: true}
	c.listeners = append(c.listeners, l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		for i, other := range c.listeners {
			if other == l {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				break
			}
		}
	}
}

// Listeners reports how many subscriptions are live.
func (c *Controller) Listeners() int {
	return len(c.listeners)
}

func (c *Controller) notify() {
	// snapshot so listeners may subscribe or unsubscribe while being notified
	round := make([]*listener, len(c.listeners))
	copy(round, c.listeners)
	for _, l := range round {
		if l.active {
			l.fn()
		}
	}
}
