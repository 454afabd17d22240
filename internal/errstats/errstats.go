// Package errstats aggregates diagnostics into a statistics snapshot and
// renders it as JSON, HTML, or plain text.
package errstats

import (
	"sort"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// TopPatternLimit is how many patterns the ranking keeps.
const TopPatternLimit = 5

// Line-number bucket labels, in display order.
var lineBuckets = []string{"1-10", "11-50", "51-100", "100+"}

// PatternCount is one entry in the top-pattern ranking.
type PatternCount struct {
	PatternID string  `json:"pattern_id"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"`
	Example   string  `json:"example"` // one example message for the pattern
}

// Statistics is an immutable snapshot aggregated over a record sequence.
// All renderers are pure functions of this snapshot.
type Statistics struct {
	TotalErrors      int            `json:"total_errors"`
	BySeverity       map[string]int `json:"by_severity"`
	ByCategory       map[string]int `json:"by_category"`
	ByPattern        map[string]int `json:"by_pattern"`
	ByLineRange      map[string]int `json:"by_line_range"`
	TopPatterns      []PatternCount `json:"top_patterns"`
	TotalSuggestions int            `json:"total_suggestions"`
	RecoveredCount   int            `json:"recovered_count"`
}

// Accumulator aggregates records incrementally so a long-running session
// can keep statistics over every handled record without retaining the
// records themselves. Not safe for concurrent use; each session owns one.
type Accumulator struct {
	total       int
	bySeverity  map[string]int
	byCategory  map[string]int
	byPattern   map[string]int
	byLineRange map[string]int
	suggestions int
	recovered   int

	firstSeen map[string]int
	example   map[string]string
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{
		bySeverity:  make(map[string]int),
		byCategory:  make(map[string]int),
		byPattern:   make(map[string]int),
		byLineRange: make(map[string]int),
		firstSeen:   make(map[string]int),
		example:     make(map[string]string),
	}
	for _, label := range lineBuckets {
		a.byLineRange[label] = 0
	}
	return a
}

// Add folds one record into the running aggregates. Records must be added
// in handling order; the order fixes the top-pattern tie-break.
func (a *Accumulator) Add(rec *diagnostic.Record) {
	a.total++
	a.bySeverity[string(rec.Severity)]++
	a.byCategory[string(rec.Category)]++
	a.byLineRange[lineBucket(rec.Line)]++
	a.suggestions += len(rec.Suggestions())
	if rec.Recovered() {
		a.recovered++
	}

	id := rec.PatternID()
	if id == "" {
		id = "unclassified"
	}
	a.byPattern[id]++
	if _, seen := a.firstSeen[id]; !seen {
		a.firstSeen[id] = a.total
		a.example[id] = rec.Message
	}
}

// Snapshot materializes the current aggregates. The returned statistics
// share nothing with the accumulator.
func (a *Accumulator) Snapshot() Statistics {
	st := Statistics{
		TotalErrors:      a.total,
		BySeverity:       copyCounts(a.bySeverity),
		ByCategory:       copyCounts(a.byCategory),
		ByPattern:        copyCounts(a.byPattern),
		ByLineRange:      copyCounts(a.byLineRange),
		TotalSuggestions: a.suggestions,
		RecoveredCount:   a.recovered,
	}
	st.TopPatterns = a.rankPatterns()
	return st
}

// Generate aggregates a finite record sequence in order. Pure: the records
// are read, never mutated.
func Generate(records []*diagnostic.Record) Statistics {
	acc := NewAccumulator()
	for _, rec := range records {
		acc.Add(rec)
	}
	return acc.Snapshot()
}

// rankPatterns builds the top-N ranking by frequency. Ties break by
// first-seen order, which keeps the ranking stable across runs.
func (a *Accumulator) rankPatterns() []PatternCount {
	ids := make([]string, 0, len(a.byPattern))
	for id := range a.byPattern {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := a.byPattern[ids[i]], a.byPattern[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return a.firstSeen[ids[i]] < a.firstSeen[ids[j]]
	})
	if len(ids) > TopPatternLimit {
		ids = ids[:TopPatternLimit]
	}

	top := make([]PatternCount, 0, len(ids))
	for _, id := range ids {
		count := a.byPattern[id]
		percent := 0.0
		if a.total > 0 {
			percent = float64(count) * 100 / float64(a.total)
		}
		top = append(top, PatternCount{
			PatternID: id,
			Count:     count,
			Percent:   percent,
			Example:   a.example[id],
		})
	}
	return top
}

// lineBucket maps a line number onto its range label.
func lineBucket(line int) string {
	switch {
	case line <= 10:
		return "1-10"
	case line <= 50:
		return "11-50"
	case line <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

// LineBuckets returns the bucket labels in display order.
func LineBuckets() []string {
	out := make([]string, len(lineBuckets))
	copy(out, lineBuckets)
	return out
}

// copyCounts returns an independent copy of a count map.
func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
