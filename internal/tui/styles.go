package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text styles shared by the record flow, doctor output and the configure wizard.
var (
	StyleHeader    = fg(ColorPrimary).Bold(true).MarginBottom(1)
	StyleLabel     = fg(ColorText).Bold(true)
	StyleHighlight = fg(ColorSecondary).Bold(true)

	StyleSuccess = fg(ColorSuccess)
	StyleWarning = fg(ColorWarning)
	StyleError   = fg(ColorError).Bold(true)

	StyleMuted  = fg(ColorMuted)
	StyleSubtle = fg(ColorSubtle).Italic(true)
)

// StyleBox frames a finished transcription.
var StyleBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorSubtle).
	Padding(1, 2)

const banner = `
                              _
__   _______  ___ __   ___ | |_ ___
\ \ / / _ \ \/ / '_ \ / _ \| __/ _ \
 \ V / (_) >  <| | | | (_) | ||  __/
  \_/ \___/_/\_\_| |_|\___/ \__\___|`

// Logo is the banner shown above the configure wizard.
func Logo() string {
	return StyleHeader.Render(strings.Trim(banner, "\n"))
}
