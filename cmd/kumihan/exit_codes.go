package main

import (
	"errors"
	"os"

	kumihan "github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/config"
)

// Exit codes for the kumihan CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitAborted = 4 // Error handling policy aborted the run
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, kumihan.ErrConversionAborted) {
		return ExitAborted
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, kumihan.ErrSourceRead) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, kumihan.ErrEmptySource) ||
		errors.Is(err, kumihan.ErrInvalidLevel) ||
		errors.Is(err, kumihan.ErrInvalidCategory) ||
		errors.Is(err, kumihan.ErrInvalidLimit) ||
		errors.Is(err, kumihan.ErrInvalidReportFormat) ||
		errors.Is(err, ErrInvalidExtension) {
		return ExitUsage
	}

	return ExitGeneral
}
