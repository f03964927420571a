package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation
// that may clash with palettes like Solarized.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Item kinds
	Note    lipgloss.AdaptiveColor
	Task    lipgloss.AdaptiveColor
	Heading lipgloss.AdaptiveColor
	Done    lipgloss.AdaptiveColor
	Overdue lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once at startup instead of per-frame.
	MutedText     lipgloss.Style // Age column, position indicator
	SecondaryText lipgloss.Style // Fold indicators
	BranchText    lipgloss.Style // Tree branch glyphs
	PrimaryBold   lipgloss.Style // Selected title
	DoneText      lipgloss.Style // Completed tasks
	OverdueText   lipgloss.Style // Past-due tasks
	StatusText    lipgloss.Style // Status bar
	StatusError   lipgloss.Style // Status bar, error state
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim

		Note:    lipgloss.AdaptiveColor{Light: "#333333", Dark: "#F8F8F2"}, // Foreground
		Task:    lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"}, // Blue
		Heading: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Done:    lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		Overdue: lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}, // Red

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.BranchText = r.NewStyle().Foreground(t.Muted)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.DoneText = r.NewStyle().Foreground(t.Done).Strikethrough(true)
	t.OverdueText = r.NewStyle().Foreground(t.Overdue).Bold(true)
	t.StatusText = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(t.Overdue).Bold(true)

	return t
}

// GetKindColor returns the row color for an item kind, with completed tasks
// overriding their kind color.
func (t Theme) GetKindColor(kind string, done bool) lipgloss.AdaptiveColor {
	if done {
		return t.Done
	}
	switch kind {
	case "task":
		return t.Task
	case "heading":
		return t.Heading
	case "note":
		return t.Note
	default:
		return t.Subtext
	}
}

// GetKindIcon returns a one-cell marker and its color for an item kind.
func (t Theme) GetKindIcon(kind string, done bool) (string, lipgloss.AdaptiveColor) {
	switch kind {
	case "task":
		if done {
			return "☑", t.Done
		}
		return "☐", t.Task
	case "heading":
		return "§", t.Heading
	default:
		return "·", t.Subtext
	}
}

// TestTheme returns a theme suitable for use in tests (stable renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
