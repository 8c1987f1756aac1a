package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One violet accent keeps the CLI distinctive without
// turning every line into a rainbow.
const (
	ColorViolet    = "135" // primary accent
	ColorVioletDim = "97"  // borders, inactive
	ColorWhite     = "255" // headers
	ColorGray      = "245" // labels, secondary text
	ColorDarkGray  = "238" // separators
	ColorGreen     = "114" // success
	ColorRed       = "196" // errors
	ColorYellow    = "220" // warnings
)

// Styles holds the CLI output styles.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Panel   lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorViolet)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorVioletDim)).
			Padding(0, 1),
	}
}

// NoColorStyles returns an unstyled set for plain output.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
		Value:   lipgloss.NewStyle(),
		Panel:   lipgloss.NewStyle(),
	}
}

// GetStyles returns the style set for the color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
