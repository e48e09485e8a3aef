package model

import (
	"fmt"
	"strings"
)

// Goal is the user's stated objective guiding the analysis.
// A valid Goal is never empty and carries no surrounding whitespace.
type Goal string

// String returns the goal text.
func (g Goal) String() string {
	return string(g)
}

// NewGoal trims the given text and validates that something remains.
// Returns an InputError if the goal is empty after trimming.
func NewGoal(text string) (Goal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", NewInputError("No goal provided via argument or stdin")
	}
	return Goal(trimmed), nil
}

// RunOptions holds the per-invocation options collected from CLI flags.
// The struct is built once by the CLI layer and never mutated afterwards.
type RunOptions struct {
	// Copy copies the analysis result to the system clipboard.
	// Ignored in quiet mode.
	Copy bool

	// Model overrides the configured model identifier.
	// Empty means "use the configured default".
	Model string

	// AdditionalIgnore is a comma-separated list of glob patterns appended
	// to the built-in packager exclusions.
	AdditionalIgnore string

	// Quiet forces non-decorated, analysis-only output.
	Quiet bool

	// Pipe forces output-only mode, intended for piping into other programs.
	Pipe bool

	// Verbose prints the built prompt before it is sent.
	Verbose bool

	// Markdown renders the analysis as terminal markdown in interactive mode.
	Markdown bool

	// Dir is the directory to package. Empty means the current directory.
	Dir string
}

// Terminal records whether the standard streams are interactive terminals.
// It is detected once at the process edge and passed down explicitly so that
// quiet-mode decisions never read process state ad hoc.
type Terminal struct {
	StdinTTY  bool
	StdoutTTY bool
}

// Interactive reports whether both stdin and stdout are terminals.
func (t Terminal) Interactive() bool {
	return t.StdinTTY && t.StdoutTTY
}

// ShouldBeQuiet reports whether output must be undecorated: either the user
// asked for it (--quiet / --pipe) or one of the standard streams is not a
// terminal.
func ShouldBeQuiet(opts RunOptions, term Terminal) bool {
	return opts.Quiet || opts.Pipe || !term.Interactive()
}

// ErrorKind classifies CLIErrors by the pipeline stage that produced them.
type ErrorKind string

const (
	// KindInput indicates no goal could be resolved.
	KindInput ErrorKind = "input"

	// KindConfig indicates missing or invalid configuration (e.g. no API key).
	KindConfig ErrorKind = "config"

	// KindPackaging indicates the packaging subprocess failed.
	KindPackaging ErrorKind = "packaging"

	// KindAPI indicates the analysis API call failed.
	KindAPI ErrorKind = "api"

	// KindUnexpected covers anything not classified above.
	KindUnexpected ErrorKind = "unexpected"
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// ErrorReason refines an ErrorKind for packaging and API failures.
type ErrorReason string

const (
	// ReasonNone is used for kinds that have no sub-classification.
	ReasonNone ErrorReason = ""

	// ReasonNotFound indicates the packaging executable could not be located.
	ReasonNotFound ErrorReason = "not_found"

	// ReasonExecutionFailed indicates the packaging subprocess exited non-zero
	// or could not be started.
	ReasonExecutionFailed ErrorReason = "execution_failed"

	// ReasonTimeout indicates an operation exceeded its configured bound.
	ReasonTimeout ErrorReason = "timeout"

	// ReasonHTTPError indicates the API server answered with an HTTP error.
	ReasonHTTPError ErrorReason = "http_error"

	// ReasonNetworkError indicates a transport failure other than a timeout.
	ReasonNetworkError ErrorReason = "network_error"

	// ReasonUnexpectedFormat indicates the API response lacked the answer text.
	ReasonUnexpectedFormat ErrorReason = "unexpected_format"
)

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// which stage of the pipeline failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInputError indicates no goal was provided.
	ExitInputError ExitCode = 2

	// ExitConfigError indicates missing or invalid configuration.
	ExitConfigError ExitCode = 3

	// ExitPackagingError indicates the packaging subprocess failed.
	ExitPackagingError ExitCode = 4

	// ExitAPIError indicates the analysis API call failed.
	ExitAPIError ExitCode = 5
)

// exitCodeFor maps an ErrorKind to its process exit code.
func exitCodeFor(kind ErrorKind) ExitCode {
	switch kind {
	case KindInput:
		return ExitInputError
	case KindConfig:
		return ExitConfigError
	case KindPackaging:
		return ExitPackagingError
	case KindAPI:
		return ExitAPIError
	default:
		return ExitGeneralError
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Kind is the pipeline stage that produced the error.
	Kind ErrorKind

	// Reason refines Kind for packaging and API failures.
	Reason ErrorReason

	// Message is the human-readable error description.
	Message string

	// Status is the HTTP status code for ReasonHTTPError, zero otherwise.
	Status int

	// Body is the HTTP response body for ReasonHTTPError.
	Body string

	// Hints are follow-up lines that tell the user how to fix the problem.
	// They are printed only in interactive mode.
	Hints []string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithHints returns e after appending hint lines.
func (e *CLIError) WithHints(hints ...string) *CLIError {
	e.Hints = append(e.Hints, hints...)
	return e
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Kind: KindUnexpected, Message: message, Err: err}
}

// newKindError builds a CLIError whose exit code is derived from its kind.
func newKindError(kind ErrorKind, reason ErrorReason, message string, err error) *CLIError {
	return &CLIError{
		Code:    exitCodeFor(kind),
		Kind:    kind,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// NewInputError reports that no goal could be resolved.
func NewInputError(message string) *CLIError {
	return newKindError(KindInput, ReasonNone, message, nil)
}

// WrapInputError reports an input failure caused by err (e.g. a stdin read error).
func WrapInputError(message string, err error) *CLIError {
	return newKindError(KindInput, ReasonNone, message, err)
}

// NewConfigError reports missing or invalid configuration.
func NewConfigError(message string, err error) *CLIError {
	return newKindError(KindConfig, ReasonNone, message, err)
}

// NewPackagingError reports a packaging subprocess failure.
func NewPackagingError(reason ErrorReason, message string, err error) *CLIError {
	return newKindError(KindPackaging, reason, message, err)
}

// NewAPIError reports an analysis API failure.
func NewAPIError(reason ErrorReason, message string, err error) *CLIError {
	return newKindError(KindAPI, reason, message, err)
}

// NewHTTPError reports an HTTP error response, keeping status and body for
// diagnostics.
func NewHTTPError(status int, statusText, body string) *CLIError {
	e := newKindError(KindAPI, ReasonHTTPError, fmt.Sprintf("API Error: %d %s", status, statusText), nil)
	e.Status = status
	e.Body = body
	return e
}

// NewUnexpectedError wraps an unclassified failure with the generic prefix.
func NewUnexpectedError(err error) *CLIError {
	return WrapCLIError(ExitGeneralError, "Unexpected error", err)
}
