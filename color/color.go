// Package color names the terminal colors used for CLI output. ANSI indexes
// follow the user's terminal theme; hex values do not.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiRed    = New("9")
	HiPurple = New("13")

	// Orange highlights the primary key binding.
	Orange = New("#ffb703")
)
