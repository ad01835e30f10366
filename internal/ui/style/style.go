// Package style provides the shared colors and icons used by the CLI output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Arrow   = "→"
	Dot     = "●"
)

// ReasonColor returns the color used to render an invalidation reason.
func ReasonColor(reason string) lipgloss.Color {
	switch reason {
	case "structural", "removed-dependency":
		return Red
	case "constant":
		return Yellow
	case "rebuild":
		return Iris
	default:
		return Slate
	}
}
