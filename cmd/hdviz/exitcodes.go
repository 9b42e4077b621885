package main

import (
	"github.com/hypervector/hdviz/internal/matrix"
	"github.com/hypervector/hdviz/internal/tsne"
)

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error, or a run with failed requests
	ExitConfigError     = 2 // Invalid config file or projection parameters
	ExitParseError      = 3 // Missing or malformed CSV input
	ExitValidationError = 4 // Input shapes disagree (e.g. rows vs labels)
)

// exitCodeFor maps an operation error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case matrix.IsParseError(err):
		return ExitParseError
	case matrix.IsValidationError(err):
		return ExitValidationError
	case tsne.IsConfigurationError(err):
		return ExitConfigError
	default:
		return ExitError
	}
}
