package selection

import "testing"

type rec string

func (r rec) Cluster() string { return string(r) }

var clusters = []string{"Asia", "Europe", "Africa"}

func TestNothingSelectedIsFull(t *testing.T) {
	c := New()
	for _, cl := range append(clusters, "", "never-seen") {
		if got := c.Emphasis(cl); got != Full {
			t.Fatalf("Emphasis(%q) = %v, want full", cl, got)
		}
	}
	if _, ok := c.Current(); ok {
		t.Fatalf("expected no selection at start")
	}
}

func TestToggleTwiceReturnsToUnselected(t *testing.T) {
	for _, cl := range append(clusters, "", "Atlantis") {
		c := New()
		c.Toggle(cl)
		c.Toggle(cl)
		if sel, ok := c.Current(); ok {
			t.Fatalf("toggle(%q) twice left selection %q", cl, sel)
		}
		for _, other := range clusters {
			if c.Emphasis(other) != Full {
				t.Fatalf("expected %q full after double toggle of %q", other, cl)
			}
		}
	}
}

func TestSelectionIsExclusive(t *testing.T) {
	c := New()
	c.Toggle("Asia")
	for _, cl := range clusters {
		want := Dimmed
		if cl == "Asia" {
			want = Full
		}
		if got := c.Emphasis(cl); got != want {
			t.Fatalf("Emphasis(%q) = %v, want %v", cl, got, want)
		}
	}
}

func TestToggleOtherClusterSwitches(t *testing.T) {
	c := New()
	c.Toggle("Asia")
	c.Toggle("Europe")
	sel, ok := c.Current()
	if !ok || sel != "Europe" {
		t.Fatalf("Current() = %q, %v; want Europe, true", sel, ok)
	}
	if c.Emphasis("Asia") != Dimmed {
		t.Fatalf("expected Asia dimmed after switch")
	}
}

func TestEuropeAmongThreeClusters(t *testing.T) {
	c := New()
	c.Toggle("Europe")
	want := map[string]Emphasis{"Europe": Full, "Asia": Dimmed, "Africa": Dimmed}
	for cl, w := range want {
		if got := c.Emphasis(cl); got != w {
			t.Fatalf("Emphasis(%q) = %v, want %v", cl, got, w)
		}
	}
	c.Toggle("Europe")
	for _, cl := range clusters {
		if c.Emphasis(cl) != Full {
			t.Fatalf("expected %q full after deselect", cl)
		}
	}
}

func TestUnknownClusterDimsEverything(t *testing.T) {
	c := New()
	c.Toggle("Atlantis")
	for _, cl := range clusters {
		if c.Emphasis(cl) != Dimmed {
			t.Fatalf("expected %q dimmed when an unknown cluster is selected", cl)
		}
	}
}

func TestListenersFireOncePerToggle(t *testing.T) {
	c := New()
	var bar, scatter int
	c.Subscribe(func() { bar++ })
	c.Subscribe(func() { scatter++ })

	c.Toggle("Asia")
	c.Toggle("Asia")
	c.Toggle("Europe")

	if bar != 3 || scatter != 3 {
		t.Fatalf("calls bar=%d scatter=%d, want 3 each", bar, scatter)
	}
}

func TestListenerSeesCommittedState(t *testing.T) {
	c := New()
	var seen []string
	c.Subscribe(func() {
		sel, ok := c.Current()
		if !ok {
			sel = "<none>"
		}
		seen = append(seen, sel)
	})
	c.Toggle("Asia")
	c.Toggle("Asia")
	if len(seen) != 2 || seen[0] != "Asia" || seen[1] != "<none>" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestUnsubscribeStopsOnlyThatListener(t *testing.T) {
	c := New()
	var a, b int
	stopA := c.Subscribe(func() { a++ })
	c.Subscribe(func() { b++ })

	c.Toggle("Asia")
	stopA()
	stopA()
	c.Toggle("Europe")

	if a != 1 {
		t.Fatalf("unsubscribed listener called %d times, want 1", a)
	}
	if b != 2 {
		t.Fatalf("remaining listener called %d times, want 2", b)
	}
	if c.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", c.Listeners())
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	c := New()
	var second int
	var stopSecond func()
	c.Subscribe(func() { stopSecond() })
	stopSecond = c.Subscribe(func() { second++ })

	c.Toggle("Asia")
	if second != 0 {
		t.Fatalf("listener removed mid-round was still called")
	}
	c.Toggle("Asia")
	if second != 0 {
		t.Fatalf("removed listener called on later toggle")
	}
}

func TestPartition(t *testing.T) {
	c := New()
	records := []rec{"Asia", "Asia", "Europe", "Africa"}
	if full, dimmed := Partition(c, records); full != 4 || dimmed != 0 {
		t.Fatalf("baseline full=%d dimmed=%d", full, dimmed)
	}
	c.Toggle("Asia")
	if full, dimmed := Partition(c, records); full != 2 || dimmed != 2 {
		t.Fatalf("after toggle full=%d dimmed=%d", full, dimmed)
	}
}

func TestEmphasisString(t *testing.T) {
	if Full.String() != "full" || Dimmed.String() != "dimmed" {
		t.Fatalf("unexpected strings %q %q", Full, Dimmed)
	}
}
