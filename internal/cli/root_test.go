package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/codebase-guide/internal/config"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
	"github.com/shinji-kodama/codebase-guide/internal/pipeline"
)

// stubPacker returns a fixed blob and records the ignore list it received.
type stubPacker struct {
	blob   string
	err    error
	dir    string
	ignore string
}

func (s *stubPacker) Pack(_ context.Context, additionalIgnore string) (string, error) {
	s.ignore = additionalIgnore
	return s.blob, s.err
}

// stubAnalyzer echoes a fixed answer, or panics when asked to.
type stubAnalyzer struct {
	answer string
	err    error
	panic  bool
	model  string
	calls  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, modelID string) (string, error) {
	s.calls++
	s.model = modelID
	if s.panic {
		panic("analyzer exploded")
	}
	return s.answer, s.err
}

type testEnv struct {
	app      *app
	packer   *stubPacker
	analyzer *stubAnalyzer
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	dir      string
}

// newTestEnv builds an app with non-interactive streams, stub stages and an
// isolated configuration environment.
func newTestEnv(t *testing.T, stdin string) *testEnv {
	t.Helper()

	for _, k := range []string{
		"GEMINI_BASE_URL",
		"CODEBASE_GUIDE_MODEL",
		"CODEBASE_GUIDE_API_TIMEOUT",
		"CODEBASE_GUIDE_PACK_TIMEOUT",
		"CODEBASE_GUIDE_CACHE_TTL",
		"CODEBASE_GUIDE_ADDITIONAL_IGNORE",
		"CODEBASE_GUIDE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("GEMINI_API_KEY", "test-key")

	var stdout, stderr bytes.Buffer
	env := &testEnv{
		packer:   &stubPacker{blob: "<files omitted>"},
		analyzer: &stubAnalyzer{answer: "<goal>add dark mode</goal><analysis>...</analysis>"},
		stdout:   &stdout,
		stderr:   &stderr,
		dir:      t.TempDir(),
	}
	env.app = &app{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		term:   model.Terminal{},
		newPackager: func(cfg *config.Config, dir string, _ logger.Logger) pipeline.Packer {
			env.packer.dir = dir
			return env.packer
		},
		newAnalyzer: func(cfg *config.Config, _ logger.Logger) pipeline.Analyzer {
			if cfg.APIKey == "" {
				env.analyzer.err = model.NewConfigError("GEMINI_API_KEY environment variable not set.", nil)
			}
			return env.analyzer
		},
	}
	return env
}

func (e *testEnv) run(args ...string) model.ExitCode {
	cmd := newRootCommand(e.app)
	cmd.SetArgs(append([]string{"--dir", e.dir}, args...))
	return execute(context.Background(), cmd)
}

// TestRoot_GoalFromArgs verifies that positional args are joined into the
// goal and the analysis is printed alone in non-interactive mode.
func TestRoot_GoalFromArgs(t *testing.T) {
	env := newTestEnv(t, "")

	code := env.run("add", "dark", "mode")
	assert.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, "<goal>add dark mode</goal><analysis>...</analysis>\n", env.stdout.String())
	assert.Equal(t, config.DefaultModel, env.analyzer.model)
	assert.Equal(t, env.dir, env.packer.dir)
}

// TestRoot_GoalFromStdin verifies the stdin fallback.
func TestRoot_GoalFromStdin(t *testing.T) {
	env := newTestEnv(t, "  add dark mode\n")

	assert.Equal(t, model.ExitSuccess, env.run())
	assert.Equal(t, 1, env.analyzer.calls)
}

// TestRoot_NoGoal verifies exit code 2 and that no stage runs.
func TestRoot_NoGoal(t *testing.T) {
	env := newTestEnv(t, "   \n")

	code := env.run()
	assert.Equal(t, model.ExitInputError, code)
	assert.Equal(t, 0, env.analyzer.calls)
	assert.Empty(t, env.stdout.String())
	assert.Equal(t, "No goal provided via argument or stdin\n", env.stderr.String())
}

// TestRoot_Flags verifies flag values reach the stages and that the model
// flag wins over the environment.
func TestRoot_Flags(t *testing.T) {
	env := newTestEnv(t, "")
	t.Setenv("CODEBASE_GUIDE_MODEL", "env-model")

	code := env.run("--model", "flag-model", "--additional-ignore", "dist/, tmp/", "-q", "goal")
	require.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, "flag-model", env.analyzer.model)
	assert.Equal(t, "dist/, tmp/", env.packer.ignore)
}

// TestRoot_ConfigFileIgnore verifies that project-wide ignore patterns from
// the config file precede the flag value.
func TestRoot_ConfigFileIgnore(t *testing.T) {
	env := newTestEnv(t, "")
	cfg := "model: file-model\nadditionalIgnore:\n  - \"**/*.log\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, ".codebase-guide.yaml"), []byte(cfg), 0644))

	require.Equal(t, model.ExitSuccess, env.run("--additional-ignore", "dist/", "goal"))
	assert.Equal(t, "**/*.log,dist/", env.packer.ignore)
	assert.Equal(t, "file-model", env.analyzer.model)
}

// TestRoot_InvalidConfig verifies exit code 3 for a bad timeout value.
func TestRoot_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "")
	t.Setenv("CODEBASE_GUIDE_API_TIMEOUT", "soon")

	assert.Equal(t, model.ExitConfigError, env.run("goal"))
	assert.Equal(t, 0, env.analyzer.calls)
	assert.Contains(t, env.stderr.String(), "invalid environment configuration")
}

// TestRoot_StageErrors verifies the exit code for each failing stage and
// that the error is printed once.
func TestRoot_StageErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, env *testEnv)
		wantCode model.ExitCode
		wantMsg  string
	}{
		{
			name: "missing api key",
			setup: func(t *testing.T, env *testEnv) {
				t.Setenv("GEMINI_API_KEY", "")
			},
			wantCode: model.ExitConfigError,
			wantMsg:  "GEMINI_API_KEY environment variable not set.",
		},
		{
			name: "packaging failure",
			setup: func(t *testing.T, env *testEnv) {
				env.packer.err = model.NewPackagingError(model.ReasonNotFound, "npx command not found.", nil)
			},
			wantCode: model.ExitPackagingError,
			wantMsg:  "npx command not found.",
		},
		{
			name: "api failure",
			setup: func(t *testing.T, env *testEnv) {
				env.analyzer.err = model.NewHTTPError(500, "Internal Server Error", "")
			},
			wantCode: model.ExitAPIError,
			wantMsg:  "API Error: 500 Internal Server Error",
		},
		{
			name: "unclassified failure",
			setup: func(t *testing.T, env *testEnv) {
				env.analyzer.err = errors.New("disk on fire")
			},
			wantCode: model.ExitGeneralError,
			wantMsg:  "Unexpected error: disk on fire",
		},
		{
			name: "panic",
			setup: func(t *testing.T, env *testEnv) {
				env.analyzer.panic = true
			},
			wantCode: model.ExitGeneralError,
			wantMsg:  "Unexpected error: panic: analyzer exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			tt.setup(t, env)

			code := env.run("goal")
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, env.stdout.String())
			assert.Equal(t, 1, strings.Count(env.stderr.String(), tt.wantMsg))
		})
	}
}

// TestRoot_UnknownFlag verifies that cobra errors are printed by execute.
func TestRoot_UnknownFlag(t *testing.T) {
	env := newTestEnv(t, "")

	code := env.run("--no-such-flag")
	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, env.stderr.String(), "Error: unknown flag: --no-such-flag")
}

// TestRoot_Version verifies the ldflags-backed version string.
func TestRoot_Version(t *testing.T) {
	env := newTestEnv(t, "")

	assert.Equal(t, model.ExitSuccess, env.run("--version"))
	assert.Contains(t, env.stdout.String(), "dev (commit: none, built: unknown)")
}
