// Package correction produces ranked fix suggestions for diagnostics and
// estimates the context span to highlight in reports.
package correction

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/classify"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// markerChars are the delimiter characters, half-width and full-width.
const markerChars = ";；"

// attributeToken matches a key=value-shaped token for highlight estimation.
var attributeToken = regexp.MustCompile(`\w+\s*=\s*[^\s;；]*`)

// repeatedMarkers matches a run of four or more closing delimiters, the
// most common hand-typed mistake around block markers.
var repeatedMarkers = regexp.MustCompile(`;{4,}`)

// GenerateSuggestions returns an ordered, deduplicated suggestion list for
// the record, capped at diagnostic.MaxSuggestions. Rule-based suggestions
// come first (first matching rule wins), then context heuristics.
func GenerateSuggestions(rec *diagnostic.Record) []string {
	var merged []string

	// Rule-based: first matching rule in the shared table contributes its
	// fixed suggestion set, nothing else from the table.
	lowered := strings.ToLower(rec.Message)
	for _, rule := range classify.Rules {
		if rule.Pattern.MatchString(lowered) {
			merged = append(merged, rule.Suggestions...)
			break
		}
	}

	merged = append(merged, contextSuggestions(rec.Context)...)

	return dedupe(merged, diagnostic.MaxSuggestions)
}

// Enhance performs classification, suggestion generation, and highlight
// estimation together and writes all three back onto the record. This is
// the only place a record gains its pattern id and suggestions.
func Enhance(rec *diagnostic.Record) {
	id := classify.Classify(rec)
	for _, s := range GenerateSuggestions(rec) {
		rec.AddSuggestion(s)
	}
	rec.SetHighlight(EstimateHighlight(id, rec.Context))
}

// EstimateHighlight computes the context span to emphasize for a pattern.
// Marker patterns span from the first delimiter to the end of the trimmed
// context; the color pattern spans the key=value token; everything else
// spans the whole trimmed context. The result is clamped by the caller.
func EstimateHighlight(patternID, context string) diagnostic.Span {
	trimmedEnd := len(strings.TrimRight(context, " \t\r\n"))

	switch patternID {
	case classify.PatternIncompleteMarker,
		classify.PatternMarkerMismatch,
		classify.PatternFullWidthMarker,
		classify.PatternUnknownKeyword:
		if idx := strings.IndexAny(context, markerChars); idx >= 0 {
			return diagnostic.Span{Start: idx, End: trimmedEnd}
		}
	case classify.PatternInvalidColor:
		if loc := attributeToken.FindStringIndex(context); loc != nil {
			return diagnostic.Span{Start: loc[0], End: loc[1]}
		}
	}

	start := len(context) - len(strings.TrimLeft(context, " \t\r\n"))
	if start > trimmedEnd {
		start = trimmedEnd
	}
	return diagnostic.Span{Start: start, End: trimmedEnd}
}

// contextSuggestions derives suggestions from the shape of the context
// snippet alone, independent of the message.
func contextSuggestions(context string) []string {
	var out []string
	trimmed := strings.TrimSpace(context)
	if trimmed == "" {
		return nil
	}

	// Unterminated marker: opens with a delimiter but does not close with
	// one. Echo the keyword between the opening run and the first interior
	// whitespace so the user can find the block.
	if strings.IndexAny(trimmed, markerChars) == 0 && !endsWithMarker(trimmed) {
		keyword := markerKeyword(trimmed)
		if keyword != "" {
			out = append(out, fmt.Sprintf("add a closing \";;;\" line for block %q", keyword))
		} else {
			out = append(out, `add a closing ";;;" line for the opened block`)
		}
	}

	// Mixed character width: both narrow and wide characters in the same
	// snippet usually means a full-width typo.
	if hasMixedWidth(trimmed) {
		out = append(out, "normalize character width: markers must be half-width")
	}

	// Common hand-typed mistakes.
	if containsFullWidthMarker(trimmed) {
		out = append(out, `replace full-width "；；；" with half-width ";;;"`)
	}
	if repeatedMarkers.MatchString(trimmed) {
		out = append(out, `use exactly three ";" characters per marker line`)
	}

	return out
}

// markerKeyword extracts the decoration keyword from an opening marker
// line: the text between the leading delimiter run and the first interior
// whitespace.
func markerKeyword(line string) string {
	rest := strings.TrimLeft(line, markerChars)
	if i := strings.IndexAny(rest, " \t　"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// endsWithMarker reports whether the line closes with a delimiter.
func endsWithMarker(line string) bool {
	return strings.HasSuffix(line, ";") || strings.HasSuffix(line, "；")
}

// hasMixedWidth reports whether the text mixes narrow and wide characters
// under the East Asian width classes. Spaces and neutral characters count
// toward neither side.
func hasMixedWidth(text string) bool {
	var narrow, wide bool
	for _, r := range text {
		if r == ' ' {
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianNarrow, width.EastAsianHalfwidth:
			narrow = true
		case width.EastAsianWide, width.EastAsianFullwidth:
			wide = true
		}
	}
	return narrow && wide
}

// containsFullWidthMarker reports whether the text contains a full-width
// delimiter character.
func containsFullWidthMarker(text string) bool {
	return strings.ContainsRune(text, '；')
}

// dedupe removes duplicates preserving first-seen order and truncates to n.
func dedupe(items []string, n int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == n {
			break
		}
	}
	return out
}
