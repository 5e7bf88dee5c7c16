package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/toaster"
)

const minToastWidth = 16

// toastRenderer renders notifications at a fixed outer width.
type toastRenderer struct {
	styles Styles
	width  int
	md     *glamour.TermRenderer
}

func newToastRenderer(styles Styles, width int, logger zerolog.Logger) *toastRenderer {
	width = max(width, minToastWidth)
	r := &toastRenderer{styles: styles, width: width}

	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourstyles.DarkStyle),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("markdown renderer unavailable, custom toasts render as plain text")
	} else {
		r.md = md
	}
	return r
}

// render returns the notification box. frame is the current spinner frame
// used as the icon of loading notifications.
func (r *toastRenderer) render(n toast.Notification, frame string) string {
	icon := n.Icon
	if icon == "" {
		if n.Kind == toast.KindLoading {
			icon = frame
		} else {
			icon = kindIcon(n.Kind)
		}
	}

	text := n.Text()
	if n.Kind == toast.KindCustom && r.md != nil {
		if out, err := r.md.Render(text); err == nil {
			text = strings.TrimSpace(out)
		}
	}

	// Width excludes the border.
	return r.styles.forKind(n.Kind).Width(r.width - 2).Render(icon + " " + text)
}

// height returns the rendered height of n in lines.
func (r *toastRenderer) height(n toast.Notification, frame string) int {
	return lipgloss.Height(r.render(n, frame))
}

// stack renders the visible, measured notifications placed at pos. Each one
// starts at its offset from the stack origin: the top edge for top positions,
// the bottom edge for bottom positions.
func (r *toastRenderer) stack(toasts []toast.Notification, pos toast.Position, opts toaster.OffsetOptions, frame string) string {
	type placed struct {
		lines  []string
		offset int
	}

	var (
		blocks []placed
		total  int
	)
	for _, n := range toasts {
		if !n.Visible || n.Height <= 0 || n.Position.Or(opts.DefaultPosition) != pos {
			continue
		}
		lines := strings.Split(r.render(n, frame), "\n")
		offset := toaster.CalculateOffset(toasts, n, opts)
		blocks = append(blocks, placed{lines: lines, offset: offset})
		total = max(total, offset+len(lines))
	}
	if len(blocks) == 0 {
		return ""
	}

	canvas := make([]string, total)
	bottom := isBottom(pos)
	for _, b := range blocks {
		row := b.offset
		if bottom {
			row = total - b.offset - len(b.lines)
		}
		for i, line := range b.lines {
			if row+i >= 0 && row+i < total {
				canvas[row+i] = line
			}
		}
	}
	return strings.Join(canvas, "\n")
}

func isBottom(pos toast.Position) bool {
	switch pos {
	case toast.PositionBottomLeft, toast.PositionBottomCenter, toast.PositionBottomRight:
		return true
	}
	return false
}

func alignment(pos toast.Position) (lipgloss.Position, lipgloss.Position) {
	h := lipgloss.Right
	switch pos {
	case toast.PositionTopLeft, toast.PositionBottomLeft:
		h = lipgloss.Left
	case toast.PositionTopCenter, toast.PositionBottomCenter:
		h = lipgloss.Center
	}

	v := lipgloss.Top
	if isBottom(pos) {
		v = lipgloss.Bottom
	}
	return h, v
}
