// Package recovery attempts automated fixes for diagnostics through a
// priority-ordered chain of category-specific strategies.
package recovery

import (
	"fmt"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// Context carries the mutable working state a strategy may read or
// retarget. Strategies that relocate the input (permission, not-found)
// update FilePath so downstream processing picks up the new location.
type Context struct {
	FilePath string // source file the error originated from, if any
	Line     string // offending source line, for syntax rewrites
	FileSize int64  // source size in bytes, for chunking hints
}

// Outcome is the tagged result of a recovery attempt. Attempt never
// panics; all I/O failures are converted to a failed outcome.
type Outcome struct {
	Success       bool
	Message       string // success note or failure reason
	RecoveredData string // optional recovered content (decoded text, fixed line)
}

// Successf builds a successful outcome with a formatted message.
func Successf(format string, args ...any) Outcome {
	return Outcome{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Failuref builds a failed outcome with a formatted reason.
func Failuref(format string, args ...any) Outcome {
	return Outcome{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Strategy is one automated recovery capability. CanHandle is a pure
// predicate over the record and context; Attempt performs the recovery
// action. Priority is immutable; lower values are tried first.
type Strategy interface {
	Name() string
	Priority() int
	CanHandle(rec *diagnostic.Record, ctx *Context) bool
	Attempt(rec *diagnostic.Record, ctx *Context) Outcome
}

// Strategy priorities, ordered by severity of typical impact.
const (
	priorityMemory     = 10
	priorityEncoding   = 20
	priorityPermission = 30
	priorityNotFound   = 31
	prioritySyntax     = 40
)
