package presenter

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ruleWidth is the width of the separator drawn around the analysis.
const ruleWidth = 80

// styles holds the decorations for one output stream. Each stream gets its
// own renderer so that color is decided by that stream's capabilities.
type styles struct {
	banner  lipgloss.Style
	label   lipgloss.Style
	done    lipgloss.Style
	rule    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	hint    lipgloss.Style
	command lipgloss.Style
	note    lipgloss.Style
	spinner lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		banner:  r.NewStyle().Foreground(lipgloss.Color("4")),
		label:   r.NewStyle().Foreground(lipgloss.Color("6")),
		done:    r.NewStyle().Foreground(lipgloss.Color("2")),
		rule:    r.NewStyle().Foreground(lipgloss.Color("8")),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		hint:    r.NewStyle().Foreground(lipgloss.Color("3")),
		command: r.NewStyle().Foreground(lipgloss.Color("6")),
		note:    r.NewStyle().Foreground(lipgloss.Color("8")),
		spinner: r.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// separator returns the horizontal rule without styling.
func separator() string {
	return strings.Repeat("─", ruleWidth)
}

// hintStyle picks a style for one hint line: indented lines are commands,
// "Note:" lines are dimmed, everything else is a plain instruction.
func (s styles) hintStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "  "):
		return s.command
	case strings.HasPrefix(line, "Note:"):
		return s.note
	default:
		return s.hint
	}
}

// renderLines styles each line on its own so that multi-line text is not
// padded into a block.
func renderLines(st lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = st.Render(l)
	}
	return strings.Join(lines, "\n")
}
