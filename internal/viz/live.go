package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/render"
)

const (
	barWidth     = 40
	previewWidth = 64
	frameRate    = 30
)

type TickMsg time.Time

// DoneMsg carries the outcome of the background render.
type DoneMsg struct {
	Frame *render.Frame
	Err   error
}

// Model shows a render in progress and previews the finished frame.
type Model struct {
	title       string
	exp         *experiment.Experiment
	ctx         context.Context
	cancel      context.CancelFunc
	done        *atomic.Int64
	total       *atomic.Int64
	started     time.Time
	tick        int
	frame       *render.Frame
	err         error
	values      map[string]float64
	theme       int
	showPreview bool
	showHelp    bool
}

// NewModel prepares exp for rendering with progress reported to the view.
func NewModel(ctx context.Context, title string, exp *experiment.Experiment, reg *experiment.Registry) (Model, error) {
	done, total := new(atomic.Int64), new(atomic.Int64)
	progress := func(d, t int) {
		done.Store(int64(d))
		total.Store(int64(t))
	}
	if err := exp.Setup(reg, progress); err != nil {
		return Model{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		title:       title,
		exp:         exp,
		ctx:         ctx,
		cancel:      cancel,
		done:        done,
		total:       total,
		started:     time.Now(),
		showPreview: true,
	}, nil
}

// WithTheme selects the starting theme by name; unknown names keep the first.
func (m Model) WithTheme(name string) Model {
	want := GetTheme(name).Name
	for i, th := range Themes {
		if th.Name == want {
			m.theme = i
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run(), tick())
}

func (m Model) run() tea.Cmd {
	return func() tea.Msg {
		f, err := m.exp.Run(m.ctx)
		return DoneMsg{Frame: f, Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "p":
			m.showPreview = !m.showPreview
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.tick++
		if m.Finished() {
			return m, nil
		}
		return m, tick()
	case DoneMsg:
		m.frame, m.err = msg.Frame, msg.Err
		if m.frame != nil {
			m.values = m.frame.Evaluate(metrics.Defaults()...)
		}
		if m.err != nil {
			return m, tea.Quit
		}
	}
	return m, nil
}

// Finished reports whether the render has completed or failed.
func (m Model) Finished() bool { return m.frame != nil || m.err != nil }

// Frame returns the finished frame, or nil.
func (m Model) Frame() *render.Frame { return m.frame }

func (m Model) Err() error { return m.err }

// Progress returns the fraction of rows traced.
func (m Model) Progress() float64 {
	total := m.total.Load()
	if total == 0 {
		if m.frame != nil {
			return 1
		}
		return 0
	}
	return float64(m.done.Load()) / float64(total)
}

func (m Model) View() string {
	th := Themes[m.theme]

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), string(th.Primary), string(th.Secondary)) + "\n")
	cfg := m.exp.Config()
	s.WriteString(Subtle.Render(fmt.Sprintf("%dx%d  a=%.3g  n=%.3g  l=%.3g  zoom=%.3g  %s",
		cfg.Width, cfg.Height, cfg.Camera.A, cfg.Camera.N, cfg.Camera.CamL, cfg.Camera.Zoom, cfg.Integrator)) + "\n\n")

	switch {
	case m.err != nil:
		s.WriteString(lipgloss.NewStyle().Foreground(th.Error).Render("render failed: "+m.err.Error()) + "\n")
	case m.frame == nil:
		p := m.Progress()
		s.WriteString(fmt.Sprintf("%s %s %5.1f%%  %s\n",
			AnimatedSpinner(m.tick), ProgressBar(p, barWidth), 100*p,
			time.Since(m.started).Round(100*time.Millisecond)))
	default:
		s.WriteString(lipgloss.NewStyle().Foreground(th.Success).Render(
			fmt.Sprintf("done in %s", m.frame.Elapsed.Round(time.Millisecond))) + "\n\n")
		if m.showPreview {
			s.WriteString(HalfBlock(m.frame.Image, previewWidth) + "\n")
		}
		s.WriteString(HeaderStyle.Render("metrics") + "\n")
		s.WriteString(m.metricsView() + "\n")
		s.WriteString(MetricLabel.Render("row brightness") + SparklineChart(RowBrightness(m.frame), barWidth) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("q:quit  t:theme  p:preview  ?:help") + "\n")
	if m.showHelp {
		s.WriteString(Separator(barWidth) + "\n")
		s.WriteString(lipgloss.NewStyle().Foreground(th.Muted).Render("theme: "+th.Name+"  themes: "+strings.Join(ThemeNames(), ", ")) + "\n")
	}
	return s.String()
}

func (m Model) metricsView() string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = MetricLine(name, m.values[name])
	}
	return strings.Join(lines, "\n")
}

// RowBrightness returns the mean brightness of each sample row.
func RowBrightness(f *render.Frame) []float64 {
	g := f.Samples
	out := make([]float64, g.Height)
	if g.Width == 0 {
		return out
	}
	for y := 0; y < g.Height; y++ {
		sum := 0.0
		for x := 0; x < g.Width; x++ {
			sum += f.Brightness(x, y)
		}
		out[y] = sum / float64(g.Width)
	}
	return out
}
