package output

import "github.com/charmbracelet/lipgloss"

type Color int

const (
	DefaultForeground Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
)

//ANSI palette indices, rendered according to the capabilities of the terminal
var palette = map[Color]lipgloss.Color{
	Red:     lipgloss.Color("1"),
	Green:   lipgloss.Color("2"),
	Yellow:  lipgloss.Color("3"),
	Blue:    lipgloss.Color("4"),
	Magenta: lipgloss.Color("5"),
	Cyan:    lipgloss.Color("6"),
}

func Colorize(text string, color Color) string {
	foreground, known := palette[color]
	if !known {
		return text
	}
	return lipgloss.NewStyle().Foreground(foreground).Render(text)
}

func TerminalFormatAsDim(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func TerminalFormatAsError(text string) string {
	return Colorize(text, Red)
}
