// Package pipeline runs one codebase analysis end to end: pack the
// codebase, build the prompt, ask the model, and present the answer.
package pipeline

import (
	"context"

	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
	"github.com/shinji-kodama/codebase-guide/internal/presenter"
	"github.com/shinji-kodama/codebase-guide/internal/prompt"
)

// Packer produces the packaged codebase text.
type Packer interface {
	Pack(ctx context.Context, additionalIgnore string) (string, error)
}

// Analyzer sends a prompt to the model and returns its answer.
type Analyzer interface {
	Analyze(ctx context.Context, prompt, model string) (string, error)
}

// Pipeline wires the stages together. Each Run is independent.
type Pipeline struct {
	Packager  Packer
	Analyzer  Analyzer
	Presenter *presenter.Presenter
	Log       logger.Logger
}

// Run executes the stages in order and stops at the first failure. Errors
// are returned unprinted; the caller reports them once through the
// presenter. Clipboard failures are not errors.
func (p *Pipeline) Run(ctx context.Context, goal model.Goal, opts model.RunOptions) error {
	log := logger.Named(p.Log, "pipeline")

	// Step 1: Banner and goal.
	p.Presenter.Header(goal)

	// Step 2: Pack the codebase.
	spin := p.Presenter.Spinner("Packing codebase with repomix...")
	codebase, err := p.Packager.Pack(ctx, opts.AdditionalIgnore)
	if err != nil {
		spin.Fail("Failed to run repomix")
		return err
	}
	spin.Succeed("Codebase packed successfully")
	log.Debug().Int("bytes", len(codebase)).Msg("codebase packed")

	// Step 3: Build the prompt.
	text := prompt.Build(codebase, goal.String())
	if opts.Verbose {
		p.Presenter.Prompt(text)
	}

	// Step 4: Ask the model.
	spin = p.Presenter.Spinner("Analyzing codebase with Gemini AI...")
	analysis, err := p.Analyzer.Analyze(ctx, text, opts.Model)
	if err != nil {
		if model.IsKind(err, model.KindConfig) {
			spin.Fail("Gemini API key not found")
		} else {
			spin.Fail("Failed to analyze with Gemini AI")
		}
		return err
	}
	spin.Succeed("Analysis completed")

	// Step 5: Show the result.
	p.Presenter.Result(analysis)

	// Step 6: Optional clipboard copy.
	p.Presenter.Copy(analysis, opts.Copy)

	log.Debug().Int("bytes", len(analysis)).Msg("analysis presented")
	return nil
}
