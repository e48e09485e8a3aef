// Package cli implements the cobra-based command line for codebase-guide.
//
// The root command is the only command: it resolves the goal, loads
// configuration, wires the pipeline stages and reports the outcome. Errors
// are printed exactly once, through the presenter, and mapped to the exit
// codes defined in the model package.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/codebase-guide/internal/clipboard"
	"github.com/shinji-kodama/codebase-guide/internal/config"
	"github.com/shinji-kodama/codebase-guide/internal/gemini"
	"github.com/shinji-kodama/codebase-guide/internal/input"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
	"github.com/shinji-kodama/codebase-guide/internal/packager"
	"github.com/shinji-kodama/codebase-guide/internal/pipeline"
	"github.com/shinji-kodama/codebase-guide/internal/presenter"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// app carries the process edges (streams, terminal state) and the stage
// constructors. NewRootCommand fills it from the real process; tests build
// their own.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	term   model.Terminal

	clipboard   clipboard.Clipboard
	newPackager func(cfg *config.Config, dir string, log logger.Logger) pipeline.Packer
	newAnalyzer func(cfg *config.Config, log logger.Logger) pipeline.Analyzer

	// Flag values.
	opts       model.RunOptions
	configPath string
	timeout    time.Duration
}

// reportedError marks an error that has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func defaultApp() *app {
	return &app{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		term:      presenter.DetectTerminal(os.Stdin, os.Stdout),
		clipboard: clipboard.OS{},
		newPackager: func(cfg *config.Config, dir string, log logger.Logger) pipeline.Packer {
			return packager.New(cfg.Packager, dir, cfg.PackTimeout, log)
		},
		newAnalyzer: func(cfg *config.Config, log logger.Logger) pipeline.Analyzer {
			return gemini.New(cfg, log)
		},
	}
}

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultApp())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codebase-guide [goal]",
		Short: "Analyze your codebase with AI guidance using repomix and Gemini",
		Long: `codebase-guide packs the current codebase with repomix, sends it to Gemini
together with your goal, and prints a guide to the parts of the code that
matter for that goal.

The goal can be given as arguments or piped on stdin:

  codebase-guide "add dark mode"
  echo "add dark mode" | codebase-guide --pipe > guide.md`,

		Args: cobra.ArbitraryArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Errors are reported through the presenter.
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args)
		},
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.Flags()
	flags.BoolVarP(&a.opts.Copy, "copy", "c", false, "Copy the analysis result to clipboard")
	flags.StringVar(&a.opts.Model, "model", "", fmt.Sprintf("Gemini model to use (default %q)", config.DefaultModel))
	flags.StringVar(&a.opts.AdditionalIgnore, "additional-ignore", "", "Additional ignore patterns for repomix (comma-separated)")
	flags.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "Suppress progress indicators for piping")
	flags.BoolVarP(&a.opts.Pipe, "pipe", "p", false, "Force pipe mode (output only the analysis result)")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "Enable verbose output, including the Gemini prompt")
	flags.BoolVar(&a.opts.Markdown, "markdown", false, "Render the analysis as terminal markdown")
	flags.StringVar(&a.opts.Dir, "dir", "", "Directory to analyze (default: current directory)")
	flags.StringVar(&a.configPath, "config", "", "Path to a config file (default: .codebase-guide.yaml in the directory)")
	flags.DurationVar(&a.timeout, "timeout", 0, fmt.Sprintf("Timeout for the Gemini request (default %s)", config.DefaultAPITimeout))

	return rootCmd
}

// run resolves everything the pipeline needs and runs it. Any error is
// printed here and returned wrapped in reportedError.
func (a *app) run(ctx context.Context, args []string) (err error) {
	quiet := model.ShouldBeQuiet(a.opts, a.term)

	logOpts := logger.FromEnv()
	logOpts.Writer = a.stderr
	logOpts.RunID = uuid.NewString()
	if a.opts.Verbose {
		logOpts.Level = "debug"
	}
	log := logger.New(logOpts)

	p := presenter.New(a.stdout, a.stderr, quiet, a.opts.Markdown, a.clipboard, log)

	defer func() {
		if r := recover(); r != nil {
			err = model.NewUnexpectedError(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			p.Error(err)
			err = &reportedError{err: err}
		}
	}()

	// Step 1: Resolve the goal before any subprocess or network work.
	goal, err := input.ResolveGoal(strings.Join(args, " "), a.stdin, a.term.StdinTTY, a.stderr)
	if err != nil {
		return err
	}

	// Step 2: Load and validate configuration.
	cfg, err := config.Load(config.LoadOptions{Path: a.configPath, Dir: a.opts.Dir})
	if err != nil {
		return err
	}
	cfg.Apply(config.Overrides{Model: a.opts.Model, APITimeout: a.timeout})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Debug().
		Str("model", cfg.Model).
		Str("config", cfg.Source).
		Bool("quiet", quiet).
		Msg("configuration loaded")

	opts := a.opts
	opts.Model = cfg.Model
	opts.AdditionalIgnore = cfg.IgnoreCSV(a.opts.AdditionalIgnore)

	// Step 3: Run the pipeline.
	pl := &pipeline.Pipeline{
		Packager:  a.newPackager(cfg, opts.Dir, log),
		Analyzer:  a.newAnalyzer(cfg, log),
		Presenter: p,
		Log:       log,
	}
	return pl.Run(ctx, goal, opts)
}

// Execute runs the root command and exits the process with the mapped
// exit code. Ctrl-C cancels the packaging subprocess and the HTTP request.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, rootCmd)
	stop()
	os.Exit(int(code))
}

// execute runs rootCmd and returns the exit code. Errors that were not
// reported by the command itself (flag parsing, unknown flags) are printed
// here.
func execute(ctx context.Context, rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return model.ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err)
	}
	return model.Classify(err).Code
}
