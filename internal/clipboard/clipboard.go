// Package clipboard copies text to the system clipboard through whichever
// platform helper is installed.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard helper could be run.
var ErrUnavailable = errors.New("no clipboard utility available (tried pbcopy, wl-copy, xclip, xsel)")

// Clipboard writes text to a clipboard.
type Clipboard interface {
	Write(text string) error
}

type candidate struct {
	cmd  string
	args []string
}

// OS is the system clipboard.
type OS struct {
	// lookPath and run are replaced in tests.
	lookPath func(string) (string, error)
	run      func(path string, args []string, stdin string) error
}

// Write tries each helper in turn and stops at the first that succeeds.
func (c OS) Write(text string) error {
	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	run := c.run
	if run == nil {
		run = runHelper
	}

	var failures []string
	for _, cand := range candidates(runtime.GOOS) {
		path, err := lookPath(cand.cmd)
		if err != nil {
			continue
		}
		if err := run(path, cand.args, text); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", cand.cmd, err))
			continue
		}
		return nil
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(failures, "; "))
	}
	return ErrUnavailable
}

func candidates(goos string) []candidate {
	list := []candidate{
		{cmd: "pbcopy"},                                           // macOS
		{cmd: "wl-copy"},                                          // Wayland
		{cmd: "xclip", args: []string{"-selection", "clipboard"}}, // X11
		{cmd: "xsel", args: []string{"--clipboard", "--input"}},   // X11
	}
	if goos == "windows" {
		list = append([]candidate{{cmd: "clip"}}, list...)
	}
	return list
}

func runHelper(path string, args []string, stdin string) error {
	cmd := exec.Command(path, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return fmt.Errorf("%w: %s", err, s)
		}
		return err
	}
	return nil
}
