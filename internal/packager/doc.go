// Package packager serializes a local codebase into one text blob by running
// an external packaging tool (repomix, via npx by default).
//
// The tool is invoked through os/exec without a shell:
//
//	npx --yes repomix --ignore "<built-in>,<additional>" --stdout
//
// Its entire standard output is the packaged codebase. The package never
// interprets that text.
//
// Failure policy:
//   - executable not found: PackagingError with reason not_found, with a
//     Node.js install hint when the command is npx or npm
//   - directory missing or not a directory: PackagingError with reason
//     execution_failed naming the directory
//   - run exceeds the configured timeout: PackagingError with reason timeout.
//     On Unix the tool runs in its own process group and the whole group is
//     killed, so children such as repomix under npx die with it.
//   - anything else (non-zero exit, start failure): PackagingError with
//     reason execution_failed carrying the underlying message and stderr
//
// None of these are retried.
package packager
