// Package diagnostic defines the structured record describing one detected
// parsing violation, the unit flowing through classification, correction,
// recovery, and statistics.
package diagnostic

// MaxSuggestions caps the suggestion list on a record.
// Later suggestions are silently dropped once the cap is reached.
const MaxSuggestions = 5

// Span is a half-open [Start, End) character range within a record's
// context snippet, used to highlight the offending fragment in reports.
type Span struct {
	Start int
	End   int
}

// Clamp returns the span constrained to [0, length] with End >= Start.
func (sp Span) Clamp(length int) Span {
	if sp.Start < 0 {
		sp.Start = 0
	}
	if sp.Start > length {
		sp.Start = length
	}
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	if sp.End > length {
		sp.End = length
	}
	return sp
}

// Empty reports whether the span covers no characters.
func (sp Span) Empty() bool {
	return sp.End <= sp.Start
}

// Record is one structured diagnostic. It is created by the parser at the
// moment of detection and mutated exactly twice afterward: the correction
// engine assigns the pattern id, suggestions, and highlight span; the
// recovery manager appends the recovery outcome. Records are never shared
// across sessions, so no locking is needed.
type Record struct {
	Line     int
	Column   int
	Tag      string // error-type tag as reported by the parser
	Severity Severity
	Category Category
	Message  string
	Context  string // surrounding source text
	FilePath string // optional source file

	suggestions []string
	highlight   Span
	patternID   string

	recovered    bool
	recoveryNote string
}

// NewRecord creates a record for a violation at the given position.
// Line is clamped to 1 and column to 0; the category is derived from the
// error-type tag.
func NewRecord(line, column int, tag string, severity Severity, message, context string) *Record {
	if line < 1 {
		line = 1
	}
	if column < 0 {
		column = 0
	}
	if !severity.Valid() {
		severity = SeverityError
	}
	return &Record{
		Line:     line,
		Column:   column,
		Tag:      tag,
		Severity: severity,
		Category: ParseCategory(tag),
		Message:  message,
		Context:  context,
	}
}

// AddSuggestion appends a suggestion, deduplicating while preserving
// first-seen order. Returns false if the suggestion was a duplicate,
// empty, or the cap was reached.
func (r *Record) AddSuggestion(s string) bool {
	if s == "" || len(r.suggestions) >= MaxSuggestions {
		return false
	}
	for _, existing := range r.suggestions {
		if existing == s {
			return false
		}
	}
	r.suggestions = append(r.suggestions, s)
	return true
}

// Suggestions returns a copy of the suggestion list.
func (r *Record) Suggestions() []string {
	out := make([]string, len(r.suggestions))
	copy(out, r.suggestions)
	return out
}

// SetPatternID assigns the classification pattern once. Subsequent calls
// are no-ops; the first assignment wins.
func (r *Record) SetPatternID(id string) {
	if r.patternID == "" {
		r.patternID = id
	}
}

// PatternID returns the assigned pattern id, or "" if unclassified.
func (r *Record) PatternID() string {
	return r.patternID
}

// SetHighlight stores the highlight span, clamped into the context bounds.
func (r *Record) SetHighlight(sp Span) {
	r.highlight = sp.Clamp(len(r.Context))
}

// Highlight returns the highlight span within the context snippet.
func (r *Record) Highlight() Span {
	return r.highlight
}

// MarkRecovered records a successful automated recovery with its note.
// Recovery does not remove the record from statistics; it only softens
// how the record is presented.
func (r *Record) MarkRecovered(note string) {
	r.recovered = true
	r.recoveryNote = note
}

// Recovered reports whether automated recovery succeeded for this record.
func (r *Record) Recovered() bool {
	return r.recovered
}

// RecoveryNote returns the note attached by the recovery manager.
func (r *Record) RecoveryNote() string {
	return r.recoveryNote
}

// DisplayMessage returns the user-facing message: the raw message for
// unresolved records, a softened continuation notice for recovered ones.
func (r *Record) DisplayMessage() string {
	if r.recovered {
		return r.Message + " (continued after automatic fix)"
	}
	return r.Message
}
