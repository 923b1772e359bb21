package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue  = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorRed   = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray  = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// Styles groups the styles used for command output. Build it with New so
// color support follows the destination writer.
type Styles struct {
	// Header is used for section titles.
	Header lipgloss.Style

	// Label is used for the left-hand column of key/value lines.
	Label lipgloss.Style

	// Value is used for timestamps and numbers.
	Value lipgloss.Style

	// Muted is used for checkpoints already passed and secondary text.
	Muted lipgloss.Style

	// Error is used for usage and failure messages.
	Error lipgloss.Style
}

// New builds the styles for r.
func New(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().Bold(true).Foreground(ColorBlue),
		Label:  r.NewStyle().Foreground(ColorGray),
		Value:  r.NewStyle().Foreground(ColorWhite),
		Muted:  r.NewStyle().Foreground(ColorGray).Faint(true),
		Error:  r.NewStyle().Bold(true).Foreground(ColorRed),
	}
}
