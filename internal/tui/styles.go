package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/toaster/internal/core/toast"
)

// Palette defines the semantic colors of the terminal surface.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// TokyoNight is the default palette.
var TokyoNight = Palette{
	Primary:    lipgloss.Color("#7aa2f7"),
	Foreground: lipgloss.Color("#c0caf5"),
	Muted:      lipgloss.Color("#565f89"),
	Surface:    lipgloss.Color("#3b4261"),
	Success:    lipgloss.Color("#9ece6a"),
	Warning:    lipgloss.Color("#e0af68"),
	Error:      lipgloss.Color("#f7768e"),
}

// Icons per kind. Loading toasts use the spinner instead.
const (
	IconBlank   = "•"
	IconSuccess = "✓"
	IconError   = "✗"
	IconCustom  = "★"
)

// Styles holds the rendered styles for a palette.
type Styles struct {
	Toast     lipgloss.Style
	Kinds     map[toast.Kind]lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Paused    lipgloss.Style
	Spinner   lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) Styles {
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Foreground(p.Foreground).
		Padding(0, 1)

	return Styles{
		Toast: base,
		Kinds: map[toast.Kind]lipgloss.Style{
			toast.KindBlank:   base.BorderForeground(p.Muted),
			toast.KindSuccess: base.BorderForeground(p.Success),
			toast.KindError:   base.BorderForeground(p.Error),
			toast.KindLoading: base.BorderForeground(p.Warning),
			toast.KindCustom:  base.BorderForeground(p.Primary),
		},
		Title:   lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Paused:  lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Spinner: lipgloss.NewStyle().Foreground(p.Warning),
	}
}

func (s Styles) forKind(k toast.Kind) lipgloss.Style {
	if st, ok := s.Kinds[k]; ok {
		return st
	}
	return s.Toast
}

func kindIcon(k toast.Kind) string {
	switch k {
	case toast.KindSuccess:
		return IconSuccess
	case toast.KindError:
		return IconError
	case toast.KindCustom:
		return IconCustom
	default:
		return IconBlank
	}
}
