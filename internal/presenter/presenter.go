// Package presenter owns everything the user sees: the banner, progress,
// the analysis result, clipboard feedback and error reports.
//
// In quiet mode stdout carries only the analysis text and stderr only the
// bare error message, so the output can be piped into other programs.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/shinji-kodama/codebase-guide/internal/clipboard"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// Presenter renders pipeline output to a pair of streams.
type Presenter struct {
	Out io.Writer
	Err io.Writer

	// Quiet disables all decoration, progress and clipboard handling.
	Quiet bool

	// Markdown renders the analysis with glamour in interactive mode.
	Markdown bool

	// Animate enables the bubbletea spinner. When false, progress is
	// printed as plain lines.
	Animate bool

	Clipboard clipboard.Clipboard
	Log       logger.Logger

	out styles
	err styles
}

// New creates a Presenter. Animation is enabled when errw is a terminal.
func New(out, errw io.Writer, quiet, markdown bool, cb clipboard.Clipboard, log logger.Logger) *Presenter {
	return &Presenter{
		Out:       out,
		Err:       errw,
		Quiet:     quiet,
		Markdown:  markdown,
		Animate:   isTerminal(errw),
		Clipboard: cb,
		Log:       logger.Named(log, "presenter"),
		out:       newStyles(out),
		err:       newStyles(errw),
	}
}

// Header prints the banner and the goal. Nothing is printed in quiet mode.
func (p *Presenter) Header(goal model.Goal) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.Out, p.out.banner.Render("🤖 Codebase Guide"))
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.out.label.Render("Goal:"), goal.String())
	fmt.Fprintln(p.Out)
}

// Spinner starts progress indication for one step.
func (p *Presenter) Spinner(msg string) Spinner {
	if p.Quiet {
		return noopSpinner{}
	}
	if p.Animate {
		return newTeaSpinner(p.Err, p.err, msg)
	}
	return newLineSpinner(p.Err, p.err, msg)
}

// Prompt prints the prompt about to be sent. It goes to the error stream so
// that stdout stays clean in quiet mode.
func (p *Presenter) Prompt(text string) {
	fmt.Fprintln(p.Err, p.err.note.Render("--- prompt ---"))
	fmt.Fprintln(p.Err, text)
	fmt.Fprintln(p.Err, p.err.note.Render("--- end prompt ---"))
}

// Result prints the analysis. In quiet mode the output is exactly the text
// followed by a newline.
func (p *Presenter) Result(text string) {
	if p.Quiet {
		fmt.Fprintln(p.Out, text)
		return
	}

	body := text
	if p.Markdown {
		body = p.renderMarkdown(text)
	}

	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.out.done.Render("✨ Analysis Complete!"))
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.out.rule.Render(separator()))
	fmt.Fprintln(p.Out, body)
	fmt.Fprintln(p.Out, p.out.rule.Render(separator()))
}

// Copy puts text on the clipboard when enabled and not quiet. A clipboard
// failure is reported as a warning and never returned.
func (p *Presenter) Copy(text string, enabled bool) {
	if !enabled || p.Quiet || p.Clipboard == nil {
		return
	}
	if err := p.Clipboard.Write(text); err != nil {
		p.Log.Debug().Err(err).Msg("clipboard write failed")
		p.errorLine("Warning: Failed to copy to clipboard: " + err.Error())
		return
	}
	fmt.Fprintln(p.Out, p.out.success.Render("✅ Result copied to clipboard!"))
}

// Error reports a failure once. The message is the same in both modes; hints
// and HTTP response bodies are added only in interactive mode.
func (p *Presenter) Error(err error) {
	cliErr := model.Classify(err)
	if cliErr == nil {
		return
	}

	if cliErr.Kind == model.KindUnexpected {
		p.unexpected(cliErr)
		return
	}

	p.errorLine(describe(cliErr))
	if p.Quiet {
		return
	}

	if cliErr.Body != "" {
		fmt.Fprintln(p.Err, p.err.failure.Render("Response:"))
		fmt.Fprintln(p.Err, cliErr.Body)
	}
	for _, h := range cliErr.Hints {
		fmt.Fprintln(p.Err, p.err.hintStyle(h).Render(h))
	}
}

func (p *Presenter) unexpected(e *model.CLIError) {
	detail := e.Message
	if e.Err != nil {
		detail = e.Err.Error()
	}
	if p.Quiet {
		fmt.Fprintln(p.Err, "Unexpected error:", detail)
		return
	}
	fmt.Fprintln(p.Err)
	fmt.Fprintln(p.Err, p.err.failure.Render("❌ Unexpected error:"), detail)
}

func (p *Presenter) errorLine(msg string) {
	if p.Quiet {
		fmt.Fprintln(p.Err, msg)
		return
	}
	fmt.Fprintln(p.Err, renderLines(p.err.failure, "❌ "+msg))
}

// describe returns the user-facing line for e. Reasons with a complete
// message of their own omit the underlying cause.
func describe(e *model.CLIError) string {
	switch e.Reason {
	case model.ReasonNotFound, model.ReasonTimeout, model.ReasonHTTPError, model.ReasonUnexpectedFormat:
		return e.Message
	}
	return e.Error()
}

func (p *Presenter) renderMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(ruleWidth),
	)
	if err != nil {
		p.Log.Debug().Err(err).Msg("markdown renderer unavailable")
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		p.Log.Debug().Err(err).Msg("markdown render failed")
		return text
	}
	return strings.TrimRight(out, "\n")
}
