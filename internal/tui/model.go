// Package tui implements a terminal notification surface on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/toaster/internal/core/logging"
	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/toaster"
)

const (
	defaultWidth        = 44
	defaultGutter       = 1
	defaultPromiseDelay = 2 * time.Second
)

var errDeployFailed = errors.New("remote rejected the build")

// Config configures the terminal surface.
type Config struct {
	// Key is the surface key. Empty means the default surface.
	Key string
	// Position applies to notifications without one.
	Position toast.Position
	// Width is the outer width of a notification box.
	Width int
	// Gutter is the number of blank lines between stacked notifications.
	// Zero means one line, a negative value means none.
	Gutter int
	// PromiseDelay is how long the demo promises take to settle.
	PromiseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Key == "" {
		c.Key = toast.DefaultKey
	}
	c.Position = c.Position.Or(toast.PositionTopRight)
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Gutter < 0 {
		c.Gutter = 0
	} else if c.Gutter == 0 {
		c.Gutter = defaultGutter
	}
	if c.PromiseDelay <= 0 {
		c.PromiseDelay = defaultPromiseDelay
	}
	return c
}

type snapshotMsg toaster.Snapshot

type promiseDoneMsg struct {
	err error
}

// Model is the bubbletea model of the terminal surface.
type Model struct {
	toaster *toaster.Toaster
	surface *toaster.Surface
	updates chan toaster.Snapshot
	done    chan struct{}
	once    *sync.Once
	ctx     context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger

	cfg      Config
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	styles   Styles
	renderer *toastRenderer

	snap   toaster.Snapshot
	width  int
	height int
	seq    int
}

// New mounts a surface on t's registry and returns its model. Close releases
// the surface.
func New(t *toaster.Toaster, cfg Config) Model {
	cfg = cfg.withDefaults()
	styles := NewStyles(TokyoNight)
	logger := logging.Component("tui")
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		toaster: t,
		updates: make(chan toaster.Snapshot, 1),
		done:    make(chan struct{}),
		once:    &sync.Once{},
		ctx:     ctx,
		cancel:  cancel,
		log:     logger,
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Spinner),
		),
		styles:   styles,
		renderer: newToastRenderer(styles, cfg.Width, logger),
	}

	updates := m.updates
	m.surface = t.Registry().Mount(cfg.Key, func(snap toaster.Snapshot) {
		push(updates, snap)
	})
	m.snap = m.surface.Snapshot()
	return m
}

// push queues snap, replacing a snapshot the model has not consumed yet.
func push(ch chan toaster.Snapshot, snap toaster.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close unmounts the surface and cancels running promises.
func (m Model) Close() {
	m.once.Do(func() {
		m.surface.Close()
		m.cancel()
		close(m.done)
	})
}

// Snapshot returns the last snapshot the model rendered from.
func (m Model) Snapshot() toaster.Snapshot {
	return m.snap
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot())
}

func (m Model) waitForSnapshot() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		select {
		case snap := <-updates:
			return snapshotMsg(snap)
		case <-done:
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		width := min(m.cfg.Width, max(msg.Width/3, minToastWidth))
		if width != m.renderer.width {
			m.renderer = newToastRenderer(m.styles, width, m.log)
		}
		m.measure()
		return m, nil

	case snapshotMsg:
		snap := toaster.Snapshot(msg)
		if snap.Version > m.snap.Version {
			m.snap = snap
			m.measure()
		}
		return m, m.waitForSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case promiseDoneMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("promise rejected")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opt := toaster.WithKey(m.cfg.Key)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Blank):
		m.seq++
		m.toaster.Notify(toast.Static(fmt.Sprintf("Heads up #%d", m.seq)), opt)
	case key.Matches(msg, m.keys.Success):
		m.seq++
		m.toaster.Success(toast.Static(fmt.Sprintf("Saved draft #%d", m.seq)), opt)
	case key.Matches(msg, m.keys.Error):
		m.seq++
		m.toaster.Error(toast.Static(fmt.Sprintf("Could not reach server (#%d)", m.seq)), opt)
	case key.Matches(msg, m.keys.Custom):
		m.seq++
		m.toaster.Custom(toast.Computed(func(n toast.Notification) string {
			return fmt.Sprintf("**Custom** toast `%s` rendered as _markdown_", n.ID)
		}), opt)
	case key.Matches(msg, m.keys.Loading):
		m.seq++
		return m, m.promise(m.seq, false)
	case key.Matches(msg, m.keys.Failing):
		m.seq++
		return m, m.promise(m.seq, true)
	case key.Matches(msg, m.keys.Dismiss):
		m.toaster.DismissAll(m.cfg.Key)
	case key.Matches(msg, m.keys.Remove):
		m.toaster.RemoveAll(m.cfg.Key)
	case key.Matches(msg, m.keys.Hover):
		if m.surface.Paused() {
			m.surface.Resume()
		} else {
			m.surface.Pause()
		}
	}

	return m, nil
}

// promise runs a simulated deploy through toaster.Promise.
func (m Model) promise(build int, fail bool) tea.Cmd {
	ctx, t, surfaceKey, delay := m.ctx, m.toaster, m.cfg.Key, m.cfg.PromiseDelay

	return func() tea.Msg {
		op := func(ctx context.Context) (int, error) {
			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return 0, ctx.Err()
			}
			if fail {
				return 0, errDeployFailed
			}
			return build, nil
		}

		_, err := toaster.Promise(ctx, t, op, toaster.PromiseMessages[int]{
			Loading: toast.Static(fmt.Sprintf("Deploying build #%d", build)),
			Success: func(n int) toast.Message {
				return toast.Static(fmt.Sprintf("Build #%d deployed", n))
			},
			Error: func(err error) toast.Message {
				return toast.Static(fmt.Sprintf("Build #%d failed: %v", build, err))
			},
		}, toaster.WithKey(surfaceKey))

		return promiseDoneMsg{err: err}
	}
}

// measure reports the rendered height of every visible notification whose
// recorded height is stale.
func (m Model) measure() {
	frame := m.spinner.View()
	for _, n := range m.snap.State.Toasts {
		if !n.Visible {
			continue
		}
		if h := m.renderer.height(n, frame); h != n.Height {
			m.surface.UpdateHeight(n.ID, h)
		}
	}
}

var layout = [2][3]toast.Position{
	{toast.PositionTopLeft, toast.PositionTopCenter, toast.PositionTopRight},
	{toast.PositionBottomLeft, toast.PositionBottomCenter, toast.PositionBottomRight},
}

func (m Model) View() string {
	header := m.styles.Title.Render("toaster") + m.styles.Muted.Render(" · "+m.cfg.Key)
	if m.snap.State.Paused() {
		header += "  " + m.styles.Paused.Render("paused")
	}
	footer := m.help.View(m.keys)

	opts := toaster.OffsetOptions{
		Gutter:          m.cfg.Gutter,
		DefaultPosition: m.cfg.Position,
	}
	frame := m.spinner.View()
	toasts := m.snap.State.Toasts

	if m.width == 0 || m.height == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderer.stack(toasts, m.cfg.Position, opts, frame), footer)
	}

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 2)
	heights := [2]int{bodyHeight / 2, bodyHeight - bodyHeight/2}
	colWidth := m.width / 3

	rows := make([]string, 0, len(layout))
	for r, positions := range layout {
		cells := make([]string, 0, len(positions))
		for c, pos := range positions {
			w := colWidth
			if c == len(positions)-1 {
				w = m.width - 2*colWidth
			}
			h, v := alignment(pos)
			cells = append(cells, lipgloss.Place(w, heights[r], h, v, m.renderer.stack(toasts, pos, opts, frame)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join([]string{header, lipgloss.JoinVertical(lipgloss.Left, rows...), footer}, "\n")
}

// Run starts the terminal surface and blocks until it quits or ctx is done.
func Run(ctx context.Context, t *toaster.Toaster, cfg Config) error {
	m := New(t, cfg)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
