// Package input resolves the user's goal from the command line or stdin.
package input

import (
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// StdinPrompt is shown when the goal is read from an interactive terminal.
const StdinPrompt = "Enter your goal (press Ctrl+D when finished):"

// ResolveGoal returns the goal from argument, falling back to stdin.
//
// A non-empty argument wins and stdin is never touched. Otherwise stdin is
// read until EOF; when stdinTTY is true a one-line instruction is written to
// prompt first. An empty result is an InputError, returned before any
// subprocess or network work begins.
func ResolveGoal(argument string, stdin io.Reader, stdinTTY bool, prompt io.Writer) (model.Goal, error) {
	if strings.TrimSpace(argument) != "" {
		return model.NewGoal(argument)
	}

	if stdin == nil {
		return model.NewGoal("")
	}

	if stdinTTY && prompt != nil {
		fmt.Fprintln(prompt, StdinPrompt)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", model.WrapInputError("failed to read goal from stdin", err)
	}
	return model.NewGoal(string(data))
}
