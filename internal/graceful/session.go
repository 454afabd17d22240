// Package graceful owns the per-parse error handling session: it runs each
// diagnostic through classification, correction, and recovery, keeps a
// bounded history, and decides whether parsing continues or aborts.
//
// A session is single-threaded by design. Concurrent documents get one
// independent session each; sessions never share mutable state.
package graceful

import (
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/correction"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/errstats"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/recovery"
)

// Decision is the continue/abort verdict after handling one record.
type Decision int

const (
	// Continue means parsing proceeds past the violation.
	Continue Decision = iota
	// Abort means the run stops; further records are not expected.
	Abort
)

func (d Decision) String() string {
	if d == Abort {
		return "abort"
	}
	return "continue"
}

// Session owns the bounded record history, per-category counters, and the
// handling policy for one parse run. Created at parse start, torn down at
// parse end.
type Session struct {
	policy  Policy
	manager *recovery.Manager
	logger  *zap.Logger

	history []*diagnostic.Record // ring, oldest evicted first
	stats   *errstats.Accumulator
	counts  map[diagnostic.Category]int
	aborted bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithManager injects a recovery manager (e.g. with mock strategies).
func WithManager(m *recovery.Manager) SessionOption {
	return func(s *Session) { s.manager = m }
}

// WithLogger attaches a logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session with the given policy.
func NewSession(policy Policy, opts ...SessionOption) *Session {
	if policy.HistoryCapacity <= 0 {
		policy.HistoryCapacity = DefaultHistoryCapacity
	}
	s := &Session{
		policy: policy,
		stats:  errstats.NewAccumulator(),
		counts: make(map[diagnostic.Category]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.manager == nil {
		s.manager = recovery.NewManager()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Handle runs one record through the pipeline: enhance (classify +
// suggest + highlight), attempt recovery, update history and counters,
// and return the continue/abort decision. Records are always retained in
// statistics, recovered or not.
func (s *Session) Handle(rec *diagnostic.Record, ctx *recovery.Context) Decision {
	correction.Enhance(rec)

	outcome := s.manager.AttemptRecovery(rec, ctx)
	s.logger.Debug("handled diagnostic",
		zap.Int("line", rec.Line),
		zap.String("pattern", rec.PatternID()),
		zap.String("severity", string(rec.Severity)),
		zap.Bool("recovered", outcome.Success),
	)

	s.remember(rec)

	// Lenient categories only count error-and-above records toward the
	// abort threshold; every other level counts all occurrences.
	level := s.policy.levelFor(rec.Category)
	if level != LevelLenient || rec.Severity.Rank() >= diagnostic.SeverityError.Rank() {
		s.counts[rec.Category]++
	}

	decision := s.decide(rec, level)
	if decision == Abort {
		s.aborted = true
	}
	return decision
}

// ShouldContinue is the parser's query after each record.
func (s *Session) ShouldContinue() bool {
	return !s.aborted
}

// decide computes the verdict from severity, the configured level, and
// the per-category occurrence counter.
func (s *Session) decide(rec *diagnostic.Record, level Level) Decision {
	// Critical always aborts, regardless of configuration.
	if rec.Severity == diagnostic.SeverityCritical {
		return Abort
	}

	if level == LevelIgnore {
		return Continue
	}

	// Exceeding the category limit forces an abort regardless of severity.
	if s.counts[rec.Category] > s.policy.maxFor(rec.Category) {
		return Abort
	}

	if level == LevelStrict && rec.Severity.Rank() >= diagnostic.SeverityError.Rank() {
		return Abort
	}
	return Continue
}

// remember folds the record into the running statistics and appends it to
// the bounded history.
func (s *Session) remember(rec *diagnostic.Record) {
	s.stats.Add(rec)
	s.history = append(s.history, rec)
	if len(s.history) > s.policy.HistoryCapacity {
		s.history = s.history[len(s.history)-s.policy.HistoryCapacity:]
	}
}

// Records returns the retained history, oldest first.
func (s *Session) Records() []*diagnostic.Record {
	out := make([]*diagnostic.Record, len(s.history))
	copy(out, s.history)
	return out
}

// Statistics snapshots the aggregates over every handled record in
// handling order, including records already evicted from the history.
func (s *Session) Statistics() errstats.Statistics {
	return s.stats.Snapshot()
}

// Summary is the outward-facing snapshot for CLI and report consumers.
type Summary struct {
	Total        int
	BySeverity   map[string]int
	Recent       []*diagnostic.Record
	RecoveryRate float64
	Aborted      bool
}

// Summarize returns counts, the most recent records (bounded by the
// display limit), and the recovery rate.
func (s *Session) Summarize() Summary {
	st := s.Statistics()

	limit := s.policy.DisplayLimit
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	recent := make([]*diagnostic.Record, limit)
	copy(recent, s.history[len(s.history)-limit:])

	return Summary{
		Total:        st.TotalErrors,
		BySeverity:   st.BySeverity,
		Recent:       recent,
		RecoveryRate: s.manager.SuccessRate(),
		Aborted:      s.aborted,
	}
}

// Policy returns the session's handling policy.
func (s *Session) Policy() Policy {
	return s.policy
}

// RecoveryHistory exposes the manager's attempt log for reporting.
func (s *Session) RecoveryHistory() []recovery.HistoryEntry {
	return s.manager.History()
}

// InlineMarker renders an HTML-safe inline annotation for a record,
// suitable for embedding into generated output. All user content is
// escaped. Recovered records get the softened continuation message.
func InlineMarker(rec *diagnostic.Record) string {
	class := "kumihan-error"
	if rec.Recovered() {
		class = "kumihan-error recovered"
	}
	return fmt.Sprintf(`<span class=%q title=%q>[line %d: %s]</span>`,
		class,
		html.EscapeString(rec.DisplayMessage()),
		rec.Line,
		html.EscapeString(string(rec.Severity)),
	)
}
