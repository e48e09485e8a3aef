package model

import "errors"

// AsCLIError extracts the first *CLIError in err's chain.
func AsCLIError(err error) (*CLIError, bool) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr, true
	}
	return nil, false
}

// IsKind reports whether err carries a CLIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	cliErr, ok := AsCLIError(err)
	return ok && cliErr.Kind == kind
}

// ReasonOf returns the reason of the CLIError in err's chain, or ReasonNone.
func ReasonOf(err error) ErrorReason {
	if cliErr, ok := AsCLIError(err); ok {
		return cliErr.Reason
	}
	return ReasonNone
}

// Classify converts any error into a *CLIError. Errors that are already
// CLIErrors are returned as-is; everything else becomes an UnexpectedError
// with exit code 1.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr, ok := AsCLIError(err); ok {
		return cliErr
	}
	return NewUnexpectedError(err)
}
