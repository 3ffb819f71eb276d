package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Semantic colors for the trace output.
var (
	colorPass   = lipgloss.Color("#2CD7C7")
	colorFail   = lipgloss.Color("#E74C3C")
	colorSkip   = lipgloss.Color("#F4D03F")
	colorMuted  = lipgloss.Color("#6C7A89")
	colorHeader = lipgloss.Color("#20B9B4")
)

// styleSet holds the styles applied to trace lines. With color disabled all
// styles are zero and render text unchanged.
type styleSet struct {
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Skip    lipgloss.Style
	Comment lipgloss.Style
	Header  lipgloss.Style
	Detail  lipgloss.Style
}

func newStyleSet(color bool) styleSet {
	if !color {
		return styleSet{}
	}
	return styleSet{
		Pass:    lipgloss.NewStyle().Foreground(colorPass),
		Fail:    lipgloss.NewStyle().Foreground(colorFail).Bold(true),
		Skip:    lipgloss.NewStyle().Foreground(colorSkip),
		Comment: lipgloss.NewStyle().Foreground(colorMuted),
		Header:  lipgloss.NewStyle().Foreground(colorHeader).Bold(true),
		Detail:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// ColorEnabled reports whether the writer is an interactive terminal, the
// default for enabling styled output.
func ColorEnabled(w io.Writer) bool {
	type fdWriter interface{ Fd() uintptr }
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
