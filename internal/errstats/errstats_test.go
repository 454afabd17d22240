package errstats_test

import (
	"testing"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/errstats"
)

func record(line int, tag string, sev diagnostic.Severity, pattern, message string) *diagnostic.Record {
	rec := diagnostic.NewRecord(line, 0, tag, sev, message, "")
	if pattern != "" {
		rec.SetPatternID(pattern)
	}
	return rec
}

// ---------------------------------------------------------------------------
// TestGenerate - Aggregation over a record sequence
// ---------------------------------------------------------------------------

func TestGenerate_Empty(t *testing.T) {
	t.Parallel()

	st := errstats.Generate(nil)

	if st.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0", st.TotalErrors)
	}
	if len(st.TopPatterns) != 0 {
		t.Errorf("TopPatterns = %v, want empty", st.TopPatterns)
	}
}

func TestGenerate_Counts(t *testing.T) {
	t.Parallel()

	records := []*diagnostic.Record{
		record(3, "syntax", diagnostic.SeverityError, "marker_mismatch", "m1"),
		record(7, "syntax", diagnostic.SeverityWarning, "unknown_keyword", "m2"),
		record(12, "encoding", diagnostic.SeverityError, "encoding_error", "m3"),
		record(120, "syntax", diagnostic.SeverityError, "marker_mismatch", "m4"),
	}
	records[0].AddSuggestion("s1")
	records[0].AddSuggestion("s2")
	records[2].MarkRecovered("re-encoded")

	st := errstats.Generate(records)

	if st.TotalErrors != 4 {
		t.Errorf("TotalErrors = %d, want 4", st.TotalErrors)
	}
	if st.BySeverity["error"] != 3 || st.BySeverity["warning"] != 1 {
		t.Errorf("BySeverity = %v, want 3 errors and 1 warning", st.BySeverity)
	}
	if st.ByCategory["syntax"] != 3 || st.ByCategory["encoding"] != 1 {
		t.Errorf("ByCategory = %v, want 3 syntax and 1 encoding", st.ByCategory)
	}
	if st.ByPattern["marker_mismatch"] != 2 {
		t.Errorf("ByPattern[marker_mismatch] = %d, want 2", st.ByPattern["marker_mismatch"])
	}
	if st.TotalSuggestions != 2 {
		t.Errorf("TotalSuggestions = %d, want 2", st.TotalSuggestions)
	}
	if st.RecoveredCount != 1 {
		t.Errorf("RecoveredCount = %d, want 1", st.RecoveredCount)
	}
}

func TestGenerate_LineBuckets(t *testing.T) {
	t.Parallel()

	records := []*diagnostic.Record{
		record(1, "syntax", diagnostic.SeverityError, "p", "m"),
		record(10, "syntax", diagnostic.SeverityError, "p", "m"),
		record(11, "syntax", diagnostic.SeverityError, "p", "m"),
		record(50, "syntax", diagnostic.SeverityError, "p", "m"),
		record(51, "syntax", diagnostic.SeverityError, "p", "m"),
		record(100, "syntax", diagnostic.SeverityError, "p", "m"),
		record(101, "syntax", diagnostic.SeverityError, "p", "m"),
	}

	st := errstats.Generate(records)

	want := map[string]int{"1-10": 2, "11-50": 2, "51-100": 2, "100+": 1}
	for label, n := range want {
		if st.ByLineRange[label] != n {
			t.Errorf("ByLineRange[%s] = %d, want %d", label, st.ByLineRange[label], n)
		}
	}
}

func TestGenerate_UnclassifiedRecords(t *testing.T) {
	t.Parallel()

	st := errstats.Generate([]*diagnostic.Record{
		record(1, "syntax", diagnostic.SeverityError, "", "no pattern assigned"),
	})

	if st.ByPattern["unclassified"] != 1 {
		t.Errorf("ByPattern = %v, want unclassified bucket", st.ByPattern)
	}
}

// ---------------------------------------------------------------------------
// TestTopPatterns - Ranking, limit, and first-seen tie-break
// ---------------------------------------------------------------------------

func TestTopPatterns_RankedByFrequency(t *testing.T) {
	t.Parallel()

	var records []*diagnostic.Record
	add := func(pattern string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, record(1, "syntax", diagnostic.SeverityError, pattern, "msg "+pattern))
		}
	}
	add("common", 5)
	add("middling", 3)
	add("rare", 1)

	st := errstats.Generate(records)

	if len(st.TopPatterns) != 3 {
		t.Fatalf("len(TopPatterns) = %d, want 3", len(st.TopPatterns))
	}
	if st.TopPatterns[0].PatternID != "common" || st.TopPatterns[0].Count != 5 {
		t.Errorf("TopPatterns[0] = %+v, want common x5", st.TopPatterns[0])
	}
	if st.TopPatterns[0].Example != "msg common" {
		t.Errorf("Example = %q, want first message for the pattern", st.TopPatterns[0].Example)
	}
	wantPercent := 5.0 * 100 / 9
	if st.TopPatterns[0].Percent != wantPercent {
		t.Errorf("Percent = %v, want %v", st.TopPatterns[0].Percent, wantPercent)
	}
}

func TestTopPatterns_TieBreaksByFirstSeen(t *testing.T) {
	t.Parallel()

	records := []*diagnostic.Record{
		record(1, "syntax", diagnostic.SeverityError, "second_seen", "m"),
		record(2, "syntax", diagnostic.SeverityError, "first_tied", "m"),
		record(3, "syntax", diagnostic.SeverityError, "second_tied", "m"),
		record(4, "syntax", diagnostic.SeverityError, "first_tied", "m"),
		record(5, "syntax", diagnostic.SeverityError, "second_tied", "m"),
		record(6, "syntax", diagnostic.SeverityError, "second_seen", "m"),
	}

	st := errstats.Generate(records)

	// All three patterns count 2; order must follow first appearance.
	want := []string{"second_seen", "first_tied", "second_tied"}
	for i, id := range want {
		if st.TopPatterns[i].PatternID != id {
			t.Errorf("TopPatterns[%d] = %q, want %q (first-seen order)", i, st.TopPatterns[i].PatternID, id)
		}
	}
}

func TestTopPatterns_LimitedToFive(t *testing.T) {
	t.Parallel()

	var records []*diagnostic.Record
	for _, p := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		records = append(records, record(1, "syntax", diagnostic.SeverityError, p, "m"))
	}

	st := errstats.Generate(records)

	if len(st.TopPatterns) != errstats.TopPatternLimit {
		t.Errorf("len(TopPatterns) = %d, want %d", len(st.TopPatterns), errstats.TopPatternLimit)
	}
}

// ---------------------------------------------------------------------------
// TestAccumulator - Incremental aggregation and snapshot isolation
// ---------------------------------------------------------------------------

func TestAccumulator_MatchesGenerate(t *testing.T) {
	t.Parallel()

	records := []*diagnostic.Record{
		record(3, "syntax", diagnostic.SeverityError, "a", "m"),
		record(60, "encoding", diagnostic.SeverityWarning, "b", "m"),
		record(200, "syntax", diagnostic.SeverityCritical, "a", "m"),
	}

	acc := errstats.NewAccumulator()
	for _, rec := range records {
		acc.Add(rec)
	}

	incremental := acc.Snapshot()
	batch := errstats.Generate(records)

	if incremental.TotalErrors != batch.TotalErrors {
		t.Errorf("TotalErrors: incremental %d, batch %d", incremental.TotalErrors, batch.TotalErrors)
	}
	for k, v := range batch.ByPattern {
		if incremental.ByPattern[k] != v {
			t.Errorf("ByPattern[%s]: incremental %d, batch %d", k, incremental.ByPattern[k], v)
		}
	}
}

func TestAccumulator_SnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	acc := errstats.NewAccumulator()
	acc.Add(record(1, "syntax", diagnostic.SeverityError, "a", "m"))

	first := acc.Snapshot()
	acc.Add(record(2, "syntax", diagnostic.SeverityError, "a", "m"))

	if first.TotalErrors != 1 {
		t.Errorf("earlier snapshot mutated: TotalErrors = %d, want 1", first.TotalErrors)
	}
	first.BySeverity["error"] = 99
	if acc.Snapshot().BySeverity["error"] == 99 {
		t.Error("mutating a snapshot leaked into the accumulator")
	}
}
