package diagnostic

import "strings"

// Severity levels ordered from least to most severe.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Severity classifies how serious a detected violation is.
type Severity string

// Rank returns the ordinal position of the severity, with info lowest.
// Unknown severities rank below info so they never force an abort.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity normalizes a severity string (case-insensitive).
// Unrecognized values map to SeverityError so violations are never
// silently downgraded.
func ParseSeverity(s string) Severity {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Valid() {
		return sev
	}
	return SeverityError
}

// Error categories. Categories and severities are independent axes.
const (
	CategoryFileSystem Category = "file_system"
	CategoryEncoding   Category = "encoding"
	CategorySyntax     Category = "syntax"
	CategoryValidation Category = "validation"
	CategoryPermission Category = "permission"
	CategorySystem     Category = "system"
	CategoryUnknown    Category = "unknown"
)

// Category identifies the broad class of a violation, used for
// per-category handling policies and recovery strategy selection.
type Category string

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFileSystem, CategoryEncoding, CategorySyntax,
		CategoryValidation, CategoryPermission, CategorySystem, CategoryUnknown:
		return true
	}
	return false
}

// ParseCategory normalizes a category tag (case-insensitive).
// Unrecognized tags map to CategoryUnknown.
func ParseCategory(s string) Category {
	cat := Category(strings.ToLower(strings.TrimSpace(s)))
	if cat.Valid() {
		return cat
	}
	return CategoryUnknown
}

// Categories returns all known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFileSystem,
		CategoryEncoding,
		CategorySyntax,
		CategoryValidation,
		CategoryPermission,
		CategorySystem,
		CategoryUnknown,
	}
}
