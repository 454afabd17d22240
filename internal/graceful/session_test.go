package graceful_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/graceful"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/recovery"
)

// alwaysFix is a strategy that recovers everything, for recovery-path tests.
type alwaysFix struct{}

func (alwaysFix) Name() string                                         { return "always_fix" }
func (alwaysFix) Priority() int                                        { return 1 }
func (alwaysFix) CanHandle(*diagnostic.Record, *recovery.Context) bool { return true }
func (alwaysFix) Attempt(*diagnostic.Record, *recovery.Context) recovery.Outcome {
	return recovery.Successf("fixed")
}

// newSession builds a session whose recovery chain is empty, so records
// stay unrecovered and decisions depend on policy alone.
func newSession(policy graceful.Policy) *graceful.Session {
	return graceful.NewSession(policy, graceful.WithManager(recovery.NewManagerWith()))
}

func syntaxError(line int, message string) *diagnostic.Record {
	return diagnostic.NewRecord(line, 0, "syntax", diagnostic.SeverityError, message, ";;;太字")
}

// ---------------------------------------------------------------------------
// TestHandle_Enhancement - Every handled record gains its classification
// ---------------------------------------------------------------------------

func TestHandle_EnhancesRecord(t *testing.T) {
	t.Parallel()

	s := newSession(graceful.DefaultPolicy())
	rec := syntaxError(3, "marker mismatch error")

	decision := s.Handle(rec, &recovery.Context{})

	if decision != graceful.Continue {
		t.Fatalf("decision = %v, want continue under the normal level", decision)
	}
	if rec.PatternID() != "marker_mismatch" {
		t.Errorf("PatternID = %q, want classification applied", rec.PatternID())
	}
	if len(rec.Suggestions()) == 0 {
		t.Error("no suggestions attached during handling")
	}
}

// ---------------------------------------------------------------------------
// TestHandle_Levels - Continue/abort per configured level
// ---------------------------------------------------------------------------

func TestHandle_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    graceful.Level
		severity diagnostic.Severity
		want     graceful.Decision
	}{
		{name: "strict aborts on error", level: graceful.LevelStrict, severity: diagnostic.SeverityError, want: graceful.Abort},
		{name: "strict continues on warning", level: graceful.LevelStrict, severity: diagnostic.SeverityWarning, want: graceful.Continue},
		{name: "normal continues on error", level: graceful.LevelNormal, severity: diagnostic.SeverityError, want: graceful.Continue},
		{name: "lenient continues on error", level: graceful.LevelLenient, severity: diagnostic.SeverityError, want: graceful.Continue},
		{name: "ignore continues on error", level: graceful.LevelIgnore, severity: diagnostic.SeverityError, want: graceful.Continue},
		{name: "critical aborts under normal", level: graceful.LevelNormal, severity: diagnostic.SeverityCritical, want: graceful.Abort},
		{name: "critical aborts even under ignore", level: graceful.LevelIgnore, severity: diagnostic.SeverityCritical, want: graceful.Abort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			policy := graceful.DefaultPolicy()
			policy.DefaultLevel = tt.level
			s := newSession(policy)

			rec := diagnostic.NewRecord(1, 0, "syntax", tt.severity, "some violation", "")
			if got := s.Handle(rec, &recovery.Context{}); got != tt.want {
				t.Errorf("Handle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandle_CategoryLevelOverride(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.DefaultLevel = graceful.LevelNormal
	policy.Levels = map[diagnostic.Category]graceful.Level{
		diagnostic.CategoryEncoding: graceful.LevelStrict,
	}
	s := newSession(policy)

	syntax := syntaxError(1, "marker mismatch error")
	if got := s.Handle(syntax, &recovery.Context{}); got != graceful.Continue {
		t.Errorf("syntax error under normal = %v, want continue", got)
	}

	encoding := diagnostic.NewRecord(2, 0, "encoding", diagnostic.SeverityError, "failed to decode", "")
	if got := s.Handle(encoding, &recovery.Context{}); got != graceful.Abort {
		t.Errorf("encoding error under strict override = %v, want abort", got)
	}
}

// ---------------------------------------------------------------------------
// TestHandle_CategoryLimit - Occurrence cap forces an abort
// ---------------------------------------------------------------------------

func TestHandle_CategoryLimitAborts(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.MaxPerCategory = map[diagnostic.Category]int{
		diagnostic.CategorySyntax: 2,
	}
	s := newSession(policy)

	for i := 1; i <= 2; i++ {
		if got := s.Handle(syntaxError(i, "marker mismatch error"), &recovery.Context{}); got != graceful.Continue {
			t.Fatalf("error %d = %v, want continue within the limit", i, got)
		}
	}

	if got := s.Handle(syntaxError(3, "marker mismatch error"), &recovery.Context{}); got != graceful.Abort {
		t.Errorf("error past the limit = %v, want abort", got)
	}
	if s.ShouldContinue() {
		t.Error("ShouldContinue = true after an abort")
	}
}

func TestHandle_LimitIsPerCategory(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.MaxPerCategory = map[diagnostic.Category]int{
		diagnostic.CategorySyntax: 1,
	}
	s := newSession(policy)

	s.Handle(syntaxError(1, "marker mismatch error"), &recovery.Context{})

	// A different category has its own counter and default limit.
	validation := diagnostic.NewRecord(2, 0, "validation", diagnostic.SeverityWarning, "unknown keyword", "")
	if got := s.Handle(validation, &recovery.Context{}); got != graceful.Continue {
		t.Errorf("validation record = %v, want continue (separate counter)", got)
	}
}

func TestHandle_LenientExemptsSubErrorRecords(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.DefaultLevel = graceful.LevelLenient
	policy.MaxPerCategory = map[diagnostic.Category]int{
		diagnostic.CategorySyntax: 1,
	}
	s := newSession(policy)

	// Warnings do not count toward the lenient limit.
	for i := 1; i <= 5; i++ {
		rec := diagnostic.NewRecord(i, 0, "syntax", diagnostic.SeverityWarning, "minor slip", "")
		if got := s.Handle(rec, &recovery.Context{}); got != graceful.Abort {
			continue
		}
		t.Fatalf("warning %d aborted under lenient", i)
	}

	// Errors still count: the second one exceeds the limit of 1.
	if got := s.Handle(syntaxError(10, "marker mismatch error"), &recovery.Context{}); got != graceful.Continue {
		t.Fatal("first error under lenient should continue")
	}
	if got := s.Handle(syntaxError(11, "marker mismatch error"), &recovery.Context{}); got != graceful.Abort {
		t.Errorf("second error = %v, want abort past the limit", got)
	}
}

// ---------------------------------------------------------------------------
// TestHistory - Bounded retention with full statistics
// ---------------------------------------------------------------------------

func TestRecords_EvictsOldestPastCapacity(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.HistoryCapacity = 5
	s := newSession(policy)

	for i := 1; i <= 8; i++ {
		s.Handle(syntaxError(i, fmt.Sprintf("violation %d", i)), &recovery.Context{})
	}

	records := s.Records()
	if len(records) != 5 {
		t.Fatalf("len(Records) = %d, want capacity 5", len(records))
	}
	if records[0].Line != 4 {
		t.Errorf("oldest retained line = %d, want 4 (lines 1-3 evicted)", records[0].Line)
	}

	// Statistics still cover every handled record.
	if st := s.Statistics(); st.TotalErrors != 8 {
		t.Errorf("TotalErrors = %d, want 8 including evicted records", st.TotalErrors)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	policy := graceful.DefaultPolicy()
	policy.DisplayLimit = 2
	s := newSession(policy)

	for i := 1; i <= 4; i++ {
		s.Handle(syntaxError(i, fmt.Sprintf("violation %d", i)), &recovery.Context{})
	}

	sum := s.Summarize()
	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4", sum.Total)
	}
	if len(sum.Recent) != 2 {
		t.Fatalf("len(Recent) = %d, want display limit 2", len(sum.Recent))
	}
	if sum.Recent[0].Line != 3 || sum.Recent[1].Line != 4 {
		t.Errorf("Recent lines = %d,%d, want the two newest (3,4)",
			sum.Recent[0].Line, sum.Recent[1].Line)
	}
	if sum.Aborted {
		t.Error("Aborted = true, want false")
	}
	if sum.BySeverity["error"] != 4 {
		t.Errorf("BySeverity[error] = %d, want 4", sum.BySeverity["error"])
	}
}

// ---------------------------------------------------------------------------
// TestRecovery - Recovered records and the rate
// ---------------------------------------------------------------------------

func TestHandle_RecoveredRecordsStayInStatistics(t *testing.T) {
	t.Parallel()

	s := graceful.NewSession(graceful.DefaultPolicy(),
		graceful.WithManager(recovery.NewManagerWith(alwaysFix{})))

	rec := syntaxError(1, "marker mismatch error")
	s.Handle(rec, &recovery.Context{})

	if !rec.Recovered() {
		t.Fatal("record not recovered by the always-fix chain")
	}
	st := s.Statistics()
	if st.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want recovered records counted", st.TotalErrors)
	}
	if st.RecoveredCount != 1 {
		t.Errorf("RecoveredCount = %d, want 1", st.RecoveredCount)
	}

	if sum := s.Summarize(); sum.RecoveryRate != 1 {
		t.Errorf("RecoveryRate = %v, want 1", sum.RecoveryRate)
	}
}

func TestRecoveryHistory_ExposesAttempts(t *testing.T) {
	t.Parallel()

	s := graceful.NewSession(graceful.DefaultPolicy(),
		graceful.WithManager(recovery.NewManagerWith(alwaysFix{})))

	s.Handle(syntaxError(1, "marker mismatch error"), &recovery.Context{})

	hist := s.RecoveryHistory()
	if len(hist) != 1 {
		t.Fatalf("len(RecoveryHistory) = %d, want 1", len(hist))
	}
	if hist[0].Strategy != "always_fix" || !hist[0].Success {
		t.Errorf("entry = %+v, want successful always_fix attempt", hist[0])
	}
}

// ---------------------------------------------------------------------------
// TestInlineMarker - HTML-safe inline annotation
// ---------------------------------------------------------------------------

func TestInlineMarker(t *testing.T) {
	t.Parallel()

	rec := diagnostic.NewRecord(7, 0, "syntax", diagnostic.SeverityError,
		`bad marker <script>`, "")

	out := graceful.InlineMarker(rec)

	if !strings.Contains(out, `class="kumihan-error"`) {
		t.Errorf("marker %q missing error class", out)
	}
	if !strings.Contains(out, "[line 7: error]") {
		t.Errorf("marker %q missing position and severity", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("marker %q contains unescaped message", out)
	}
}

func TestInlineMarker_Recovered(t *testing.T) {
	t.Parallel()

	rec := diagnostic.NewRecord(7, 0, "syntax", diagnostic.SeverityError, "bad marker", "")
	rec.MarkRecovered("rewrote")

	out := graceful.InlineMarker(rec)

	if !strings.Contains(out, `class="kumihan-error recovered"`) {
		t.Errorf("marker %q missing recovered class", out)
	}
	if !strings.Contains(out, "continued after automatic fix") {
		t.Errorf("marker %q missing the softened message", out)
	}
}

// ---------------------------------------------------------------------------
// TestParseLevel - Level normalization
// ---------------------------------------------------------------------------

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  graceful.Level
	}{
		{input: "strict", want: graceful.LevelStrict},
		{input: " Lenient ", want: graceful.LevelLenient},
		{input: "IGNORE", want: graceful.LevelIgnore},
		{input: "bogus", want: graceful.LevelNormal},
		{input: "", want: graceful.LevelNormal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := graceful.ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
