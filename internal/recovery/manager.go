package recovery

import (
	"sort"
	"strings"
	"time"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// Compile-time interface implementation checks.
var (
	_ Strategy = MemoryStrategy{}
	_ Strategy = EncodingStrategy{}
	_ Strategy = PermissionStrategy{}
	_ Strategy = NotFoundStrategy{}
	_ Strategy = SyntaxStrategy{}
)

// maxHistory bounds the per-manager attempt history; the oldest entries
// are evicted first once the cap is exceeded.
const maxHistory = 100

// HistoryEntry records one recovery attempt for statistics. Entries are
// append-only and never mutated.
type HistoryEntry struct {
	Strategy  string
	PatternID string
	Success   bool
	Message   string
	Timestamp time.Time
}

// Manager dispatches strategies in ascending priority order and records
// each attempt. Pure chain of responsibility: the first success ends the
// chain and no strategy is retried.
type Manager struct {
	strategies []Strategy
	history    []HistoryEntry
	now        func() time.Time
}

// NewManager creates a manager with the full default strategy set.
func NewManager() *Manager {
	m := &Manager{now: time.Now}
	m.Register(
		MemoryStrategy{},
		EncodingStrategy{},
		PermissionStrategy{},
		NotFoundStrategy{},
		SyntaxStrategy{},
	)
	return m
}

// NewManagerWith creates a manager holding only the given strategies,
// mainly for tests exercising the dispatch order.
func NewManagerWith(strategies ...Strategy) *Manager {
	m := &Manager{now: time.Now}
	m.Register(strategies...)
	return m
}

// Register adds strategies, keeping the set sorted ascending by priority.
// The sort is stable so equal priorities preserve registration order.
func (m *Manager) Register(strategies ...Strategy) {
	m.strategies = append(m.strategies, strategies...)
	sort.SliceStable(m.strategies, func(i, j int) bool {
		return m.strategies[i].Priority() < m.strategies[j].Priority()
	})
}

// AttemptRecovery tries each eligible strategy in priority order. The
// first success is recorded on the diagnostic and returned immediately;
// failures accumulate and the chain continues. When no strategy is
// eligible or all fail, the outcome is a failure listing what was tried.
func (m *Manager) AttemptRecovery(rec *diagnostic.Record, ctx *Context) Outcome {
	var failures []string

	for _, strat := range m.strategies {
		if !strat.CanHandle(rec, ctx) {
			continue
		}

		outcome := strat.Attempt(rec, ctx)
		m.record(HistoryEntry{
			Strategy:  strat.Name(),
			PatternID: rec.PatternID(),
			Success:   outcome.Success,
			Message:   outcome.Message,
			Timestamp: m.now(),
		})

		if outcome.Success {
			rec.MarkRecovered(outcome.Message)
			return outcome
		}
		failures = append(failures, strat.Name()+": "+outcome.Message)
	}

	if len(failures) == 0 {
		return Failuref("no strategy can handle this error")
	}
	return Failuref("all strategies failed: %s", strings.Join(failures, "; "))
}

// History returns a copy of the attempt history, oldest first.
func (m *Manager) History() []HistoryEntry {
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// SuccessRate returns the fraction of recorded attempts that succeeded,
// or 0 when nothing was attempted.
func (m *Manager) SuccessRate() float64 {
	if len(m.history) == 0 {
		return 0
	}
	var succeeded int
	for _, entry := range m.history {
		if entry.Success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(m.history))
}

// record appends a history entry, evicting the oldest past the cap.
func (m *Manager) record(entry HistoryEntry) {
	m.history = append(m.history, entry)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}
