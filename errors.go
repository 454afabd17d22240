package kumihan

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptySource       = errors.New("source content cannot be empty")
	ErrSourceRead        = errors.New("failed to read source file")
	ErrDocumentRender    = errors.New("document rendering failed")
	ErrConversionAborted = errors.New("conversion aborted by error handling policy")

	// Option validation errors.
	ErrInvalidLevel    = errors.New("invalid error handling level")
	ErrInvalidCategory = errors.New("unknown error category")
	ErrInvalidLimit    = errors.New("error limit must be positive")

	// Report export errors.
	ErrInvalidReportFormat = errors.New("invalid report format")
)
