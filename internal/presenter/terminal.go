package presenter

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// DetectTerminal reports whether stdin and stdout are interactive terminals.
func DetectTerminal(stdin, stdout *os.File) model.Terminal {
	return model.Terminal{
		StdinTTY:  isTerminal(stdin),
		StdoutTTY: isTerminal(stdout),
	}
}

// isTerminal accepts any writer or reader; only *os.File can be a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
