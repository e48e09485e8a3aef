package packager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shinji-kodama/codebase-guide/internal/config"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// waitDelay bounds how long Run waits for output pipes to close after the
// process was killed.
const waitDelay = 2 * time.Second

// Runner executes a command and returns its captured output.
// ExecRunner is the production implementation; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args in dir, capturing stdout and stderr separately
// so that stderr can be included in error messages while stdout is returned
// untouched on success. When ctx is done the process and its children are
// killed; a missing dir is reported as a chdir *fs.PathError.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			var statErr *fs.PathError
			if errors.As(err, &statErr) {
				err = statErr.Err
			}
			return "", "", &fs.PathError{Op: "chdir", Path: dir, Err: err}
		}
		if !info.IsDir() {
			return "", "", &fs.PathError{Op: "chdir", Path: dir, Err: errors.New("not a directory")}
		}
	}

	// #nosec G204 -- the command comes from configuration, not from the goal
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Packager invokes the packaging tool for one directory.
type Packager struct {
	// Command is the executable to run (e.g. "npx").
	Command string

	// Args are the leading arguments (e.g. "--yes", "repomix"). The ignore
	// list and the stdout flag are appended by Pack.
	Args []string

	// Dir is the directory to package. Empty means the current directory.
	Dir string

	// Timeout bounds the whole subprocess run.
	Timeout time.Duration

	// Runner executes the subprocess.
	Runner Runner

	// Log receives debug output about the invocation.
	Log logger.Logger
}

// New creates a Packager from configuration.
func New(cfg config.PackagerConfig, dir string, timeout time.Duration, log logger.Logger) *Packager {
	return &Packager{
		Command: cfg.Command,
		Args:    append([]string(nil), cfg.Args...),
		Dir:     dir,
		Timeout: timeout,
		Runner:  ExecRunner{},
		Log:     logger.Named(log, "packager"),
	}
}

// CommandArgs returns the full argument list passed to Command for the given
// additional ignore patterns.
func (p *Packager) CommandArgs(additionalIgnore string) []string {
	patterns := BuildIgnorePatterns(additionalIgnore)
	args := make([]string, 0, len(p.Args)+3)
	args = append(args, p.Args...)
	return append(args, "--ignore", strings.Join(patterns, ","), "--stdout")
}

// Pack runs the packaging tool and returns its standard output as the
// packaged codebase.
func (p *Packager) Pack(ctx context.Context, additionalIgnore string) (string, error) {
	args := p.CommandArgs(additionalIgnore)

	runCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	p.Log.Debug().
		Str("command", p.Command).
		Strs("args", p.Args).
		Str("dir", p.Dir).
		Dur("timeout", p.Timeout).
		Msg("running packager")

	start := time.Now()
	stdout, stderr, err := p.Runner.Run(runCtx, p.Dir, p.Command, args...)
	if err != nil {
		return "", p.classify(ctx, runCtx, err, stderr)
	}

	p.Log.Debug().
		Int("bytes", len(stdout)).
		Dur("elapsed", time.Since(start)).
		Msg("codebase packed")
	return stdout, nil
}

// classify maps a subprocess failure to a PackagingError.
func (p *Packager) classify(parent, runCtx context.Context, err error, stderr string) error {
	name := p.displayName()

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op == "chdir" {
		return model.NewPackagingError(
			model.ReasonExecutionFailed,
			fmt.Sprintf("Cannot package directory %s", pathErr.Path),
			pathErr.Err,
		)
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return p.notFound(err)
	}

	// Only our own deadline counts as a timeout; a cancelled parent (Ctrl-C)
	// is an ordinary execution failure.
	if parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return model.NewPackagingError(
			model.ReasonTimeout,
			fmt.Sprintf("%s timed out after %s", name, p.Timeout),
			err,
		).WithHints(
			"Exclude more files with --additional-ignore, e.g. --additional-ignore \"**/*.log,tmp/,node_modules/\"",
			"or raise packTimeout / CODEBASE_GUIDE_PACK_TIMEOUT.",
		)
	}

	message := fmt.Sprintf("Error running %s", name)
	if s := strings.TrimSpace(stderr); s != "" {
		message = fmt.Sprintf("%s: %s", message, s)
	}
	return model.NewPackagingError(model.ReasonExecutionFailed, message, err)
}

// notFound reports a missing executable. The Node.js hint is only given for
// the npm toolchain.
func (p *Packager) notFound(err error) error {
	if isNodeTool(p.Command) {
		return model.NewPackagingError(
			model.ReasonNotFound,
			fmt.Sprintf("%s command not found. Please ensure Node.js and npm are properly installed.", p.Command),
			err,
		).WithHints("Visit: https://nodejs.org/")
	}
	return model.NewPackagingError(
		model.ReasonNotFound,
		fmt.Sprintf("%s command not found. Check packager.command in your configuration.", p.Command),
		err,
	)
}

// isNodeTool reports whether command is npx or npm, with or without a path
// or a Windows extension.
func isNodeTool(command string) bool {
	base := strings.ToLower(filepath.Base(command))
	for _, ext := range []string{".cmd", ".exe"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base == "npx" || base == "npm"
}

// displayName renders the configured command for messages, e.g.
// "npx --yes repomix".
func (p *Packager) displayName() string {
	return strings.TrimSpace(strings.Join(append([]string{p.Command}, p.Args...), " "))
}
