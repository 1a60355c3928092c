package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Status palette.
var (
	colorPass    = lipgloss.Color("#00D26A")
	colorFail    = lipgloss.Color("#FF3838")
	colorErrored = lipgloss.Color("#FFB800")
	colorMuted   = lipgloss.Color("#6B7280")
)

// styles renders report text for one writer. Colors are dropped when the
// writer is not a terminal.
type styles struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	errored lipgloss.Style
	muted   lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass:    r.NewStyle().Foreground(colorPass),
		fail:    r.NewStyle().Foreground(colorFail).Bold(true),
		errored: r.NewStyle().Foreground(colorErrored).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		bold:    r.NewStyle().Bold(true),
	}
}
