// Package model defines the domain types and value objects for the
// codebase-guide CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Goal, RunOptions, Terminal) are transient, request-scoped
// values: nothing persists across invocations.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes and an error kind, so the CLI layer can
// translate every failure of the pipeline into a single process exit.
package model
