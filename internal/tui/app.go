package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/gapview/internal/config"
	"github.com/jask/gapview/internal/selection"
	"github.com/jask/gapview/internal/service"
)

// Loader supplies chart data. *service.Aggregator satisfies it.
type Loader interface {
	Snapshot(ctx context.Context, year int) (service.Snapshot, error)
	Years(ctx context.Context) ([]int, error)
}

// App is the linked-charts dashboard: a bar chart and a scatter plot sharing one selection.
type App struct {
	ctx    context.Context
	loader Loader
	cfg    config.Config
	logger *slog.Logger
	keys   keyMap

	sel     *selection.Controller
	bar     *BarView
	scatter *ScatterView
	views   []ChartView
	cursors []int
	focus   int

	year     int
	years    []int
	snapshot service.Snapshot
	palette  *Palette

	prompt    textinput.Model
	prompting bool

	status      string
	width       int
	unsubscribe func()
}

func New(ctx context.Context, cfg config.Config, loader Loader, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	sel := selection.New()
	a := &App{
		ctx:     ctx,
		loader:  loader,
		cfg:     cfg,
		logger:  logger,
		keys:    defaultKeys(),
		sel:     sel,
		bar:     NewBarView(sel, cfg.UI.BarWidth),
		scatter: NewScatterView(sel),
		year:    cfg.Dataset.Year,
		palette: NewPalette(nil, cfg.UI.Background, cfg.UI.DimmedOpacity),
	}
	a.views = []ChartView{a.bar, a.scatter}
	a.cursors = make([]int, len(a.views))
	a.unsubscribe = sel.Subscribe(a.onSelectionChange)

	a.prompt = textinput.New()
	a.prompt.Placeholder = "cluster name"
	a.prompt.Prompt = "/ "
	a.prompt.CharLimit = 64
	return a
}

// Selection exposes the dashboard's controller.
func (a *App) Selection() *selection.Controller { return a.sel }

// Year is the year currently on screen.
func (a *App) Year() int { return a.year }

// Close detaches the views and the status listener from the controller.
func (a *App) Close() {
	a.unsubscribe()
	a.bar.Close()
	a.scatter.Close()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadYears(), a.loadSnapshot(a.year))
}

func (a *App) loadSnapshot(year int) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.loader.Snapshot(a.ctx, year)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	}
}

const emptyHint = "no data yet · run `gapview seed` or `gapview import <file>`"

func (a *App) loadYears() tea.Cmd {
	return func() tea.Msg {
		years, err := a.loader.Years(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		if len(years) == 0 {
			return statusMsg(emptyHint)
		}
		return yearsMsg(years)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if a.prompting {
			return a.handlePromptKey(m)
		}
		return a.handleKey(m)
	case snapshotMsg:
		a.applySnapshot(service.Snapshot(m))
	case yearsMsg:
		a.years = []int(m)
		if a.status == emptyHint {
			a.status = fmt.Sprintf("no observations for %d", a.year)
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.logger.Error("dashboard", "err", m.error)
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Focus):
		a.focus = (a.focus + 1) % len(a.views)
	case key.Matches(m, a.keys.Prev):
		a.moveCursor(-1)
	case key.Matches(m, a.keys.Next):
		a.moveCursor(1)
	case key.Matches(m, a.keys.Toggle):
		v := a.views[a.focus]
		if v.Len() > 0 {
			a.sel.Toggle(v.ClusterAt(a.cursors[a.focus]))
		}
	case key.Matches(m, a.keys.Clear):
		if cur, ok := a.sel.Current(); ok {
			a.sel.Toggle(cur)
		}
	case key.Matches(m, a.keys.Prompt):
		a.prompting = true
		a.prompt.SetValue("")
		return a, a.prompt.Focus()
	case key.Matches(m, a.keys.PrevYear):
		return a, a.stepYear(-1)
	case key.Matches(m, a.keys.NextYear):
		return a, a.stepYear(1)
	}
	return a, nil
}

func (a *App) handlePromptKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.closePrompt()
		return a, nil
	case tea.KeyEnter:
		input := a.prompt.Value()
		a.closePrompt()
		if cluster := resolveCluster(input, a.snapshot.Domain); cluster != "" {
			a.logger.Debug("prompt resolved", "input", input, "cluster", cluster)
			a.sel.Toggle(cluster)
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(m)
	return a, cmd
}

func (a *App) closePrompt() {
	a.prompting = false
	a.prompt.Blur()
	a.prompt.SetValue("")
}

func (a *App) moveCursor(delta int) {
	n := a.views[a.focus].Len()
	a.cursors[a.focus] = clampCursor(a.cursors[a.focus]+delta, n)
}

// stepYear loads the next (delta > 0) or previous year present in the data.
func (a *App) stepYear(delta int) tea.Cmd {
	next, ok := adjacentYear(a.years, a.year, delta)
	if !ok {
		a.status = fmt.Sprintf("no data beyond %d", a.year)
		return nil
	}
	a.status = fmt.Sprintf("loading %d...", next)
	return a.loadSnapshot(next)
}

func adjacentYear(years []int, current, delta int) (int, bool) {
	if delta > 0 {
		for _, y := range years {
			if y > current {
				return y, true
			}
		}
		return current, false
	}
	for i := len(years) - 1; i >= 0; i-- {
		if years[i] < current {
			return years[i], true
		}
	}
	return current, false
}

func (a *App) applySnapshot(s service.Snapshot) {
	a.snapshot = s
	a.year = s.Year
	a.palette = NewPalette(s.Domain, a.cfg.UI.Background, a.cfg.UI.DimmedOpacity)
	a.bar.SetData(s.Means, a.palette)
	a.scatter.SetData(s.Countries, a.palette)
	for i, v := range a.views {
		a.cursors[i] = clampCursor(a.cursors[i], v.Len())
	}
	a.logger.Debug("snapshot loaded", "year", s.Year, "clusters", len(s.Means), "countries", len(s.Countries))
	switch {
	case len(s.Countries) > 0:
		a.status = a.describeSelection()
	case len(a.years) > 0:
		a.status = fmt.Sprintf("no observations for %d", s.Year)
	default:
		a.status = emptyHint
	}
}

func (a *App) onSelectionChange() {
	cur, ok := a.sel.Current()
	a.logger.Debug("selection changed", "cluster", cur, "active", ok)
	a.status = a.describeSelection()
}

func (a *App) describeSelection() string {
	cur, ok := a.sel.Current()
	if !ok {
		return fmt.Sprintf("%d countries · no selection", len(a.snapshot.Countries))
	}
	full, dimmed := selection.Partition(a.sel, a.snapshot.Countries)
	return fmt.Sprintf("selected %s · %d full / %d dimmed", cur, full, dimmed)
}

func (a *App) View() string {
	title := titleStyle.Render(fmt.Sprintf("Gapminder %d", a.year))

	barInner := barLabelWidth + a.cfg.UI.BarWidth + 9
	scatterInner := 48
	if a.width > 0 {
		scatterInner = max(20, a.width-barInner-10)
	}
	height := a.cfg.UI.ScatterHeight

	barPane := a.renderPane(0, barInner, height)
	scatterPane := a.renderPane(1, scatterInner, height)
	body := lipgloss.JoinHorizontal(lipgloss.Top, barPane, " ", scatterPane)

	var footer strings.Builder
	if strings.HasPrefix(a.status, "error:") {
		footer.WriteString(errorStyle.Render(a.status))
	} else {
		footer.WriteString(a.status)
	}
	footer.WriteString("\n")
	if a.prompting {
		footer.WriteString(a.prompt.View())
	} else {
		footer.WriteString(mutedStyle.Render(a.keys.help()))
	}
	return title + "\n\n" + body + "\n" + footer.String()
}

func (a *App) renderPane(i, width, height int) string {
	v := a.views[i]
	focused := i == a.focus
	style := paneStyle
	if focused {
		style = focusStyle
	}
	var detail string
	if d, ok := v.(interface{ Detail(int) string }); ok {
		detail = d.Detail(a.cursors[i])
	}
	content := "[" + v.Title() + "]\n" + v.Render(width, height, a.cursors[i], focused) + "\n" + mutedStyle.Render(detail)
	return style.Width(width + 2).Render(content)
}
