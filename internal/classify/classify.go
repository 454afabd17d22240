// Package classify maps a diagnostic's message and context onto a short
// pattern id used for statistics, rule dispatch, and suggestion lookup.
package classify

import (
	"regexp"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// Pattern ids assigned by the classifier.
const (
	PatternMarkerMismatch   = "marker_mismatch"
	PatternIncompleteMarker = "incomplete_marker"
	PatternUnknownKeyword   = "unknown_keyword"
	PatternInvalidColor     = "invalid_color"
	PatternFullWidthMarker  = "fullwidth_marker"
	PatternEncodingError    = "encoding_error"
	PatternFileNotFound     = "file_not_found"
	PatternPermissionDenied = "permission_denied"
	PatternMemoryError      = "memory_error"
	PatternGeneralSyntax    = "general_syntax"
	PatternUnknown          = "unknown"
)

// Rule binds a message pattern to a pattern id and the fixed suggestions
// the correction engine emits for it. Rules are evaluated in order against
// the lowercased message; the first match wins.
type Rule struct {
	Pattern     *regexp.Regexp
	ID          string
	Suggestions []string
}

// Rules is the ordered rule table shared by the classifier and the
// correction engine. More specific patterns come first.
var Rules = []Rule{
	{
		Pattern: regexp.MustCompile(`incomplete marker|unclosed marker|unterminated marker|missing closing marker`),
		ID:      PatternIncompleteMarker,
		Suggestions: []string{
			`close the block with a ";;;" line`,
			`check that every ";;;keyword" line has a matching ";;;" line`,
		},
	},
	{
		Pattern: regexp.MustCompile(`marker mismatch|mismatched marker|marker.*does not match`),
		ID:      PatternMarkerMismatch,
		Suggestions: []string{
			`make opening and closing markers the same: ";;;"`,
			`remove stray marker characters inside the block`,
		},
	},
	{
		Pattern: regexp.MustCompile(`full[- ]width|zenkaku|；`),
		ID:      PatternFullWidthMarker,
		Suggestions: []string{
			`replace full-width "；；；" with half-width ";;;"`,
			`switch the input method to half-width before typing markers`,
		},
	},
	{
		Pattern: regexp.MustCompile(`unknown (decoration |)keyword|unsupported decoration`),
		ID:      PatternUnknownKeyword,
		Suggestions: []string{
			`check the decoration keyword spelling on the ";;;keyword" line`,
			`run with --list-keywords to see supported decorations`,
		},
	},
	{
		Pattern: regexp.MustCompile(`invalid color|malformed color|bad color attribute`),
		ID:      PatternInvalidColor,
		Suggestions: []string{
			`use color=#rrggbb with a 6-digit hex value`,
			`remove spaces around "=" in the color attribute`,
		},
	},
	{
		Pattern: regexp.MustCompile(`encoding|decode|utf-?8|shift[-_ ]?jis|cp932|euc-?jp`),
		ID:      PatternEncodingError,
		Suggestions: []string{
			`save the file as UTF-8`,
			`automatic re-encoding from common Japanese encodings is attempted`,
		},
	},
	{
		Pattern: regexp.MustCompile(`file not found|no such file|cannot find`),
		ID:      PatternFileNotFound,
		Suggestions: []string{
			`check the file path for typos`,
			`similar file names in the same directory are tried automatically`,
		},
	},
	{
		Pattern: regexp.MustCompile(`permission denied|access (is )?denied|operation not permitted`),
		ID:      PatternPermissionDenied,
		Suggestions: []string{
			`check the file permissions and owner`,
			`a readable temporary copy is used when possible`,
		},
	},
	{
		Pattern: regexp.MustCompile(`out of memory|memory|allocation failed`),
		ID:      PatternMemoryError,
		Suggestions: []string{
			`process the document in smaller pieces`,
			`close other applications to free memory`,
		},
	},
}

// markerRun matches a run of half-width or full-width marker characters.
var markerRun = regexp.MustCompile(`^[;；]{2,}`)

// attributeToken matches a key=value-shaped attribute token.
var attributeToken = regexp.MustCompile(`\w+\s*=\s*\S*`)

// Classify assigns a pattern id to the record and returns it. The call is
// idempotent: an already classified record keeps its pattern id and the
// rules are not re-evaluated.
func Classify(rec *diagnostic.Record) string {
	if id := rec.PatternID(); id != "" {
		return id
	}
	id := Message(rec.Message, rec.Context)
	rec.SetPatternID(id)
	return id
}

// Message classifies a raw message (plus optional context) without touching
// a record. Deterministic: the same inputs always yield the same id.
func Message(message, context string) string {
	if message == "" && context == "" {
		return PatternUnknown
	}

	lowered := strings.ToLower(message)
	for _, rule := range Rules {
		if rule.Pattern.MatchString(lowered) {
			return rule.ID
		}
	}

	if id := fromContextShape(context); id != "" {
		return id
	}

	if message == "" {
		return PatternUnknown
	}
	return PatternGeneralSyntax
}

// RuleFor returns the rule that produced the given pattern id, if any.
func RuleFor(id string) (Rule, bool) {
	for _, rule := range Rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// fromContextShape inspects the context snippet for recognizable malformed
// shapes when no message rule matched. Returns "" if nothing stands out.
func fromContextShape(context string) string {
	trimmed := strings.TrimSpace(context)
	if trimmed == "" {
		return ""
	}

	// Unterminated delimiter: the line opens with a marker run but the
	// trimmed text does not close with one.
	if markerRun.MatchString(trimmed) {
		last := trimmed[len(trimmed)-1]
		if last != ';' && !strings.HasSuffix(trimmed, "；") {
			return PatternIncompleteMarker
		}
	}

	// Malformed attribute token, e.g. "color=" with no value.
	if tok := attributeToken.FindString(trimmed); tok != "" {
		if strings.HasSuffix(strings.TrimSpace(tok), "=") {
			return PatternInvalidColor
		}
	}

	return ""
}
