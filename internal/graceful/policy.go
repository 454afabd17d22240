package graceful

import (
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// Handling levels, from most to least aborting.
const (
	LevelStrict  Level = "strict"
	LevelNormal  Level = "normal"
	LevelLenient Level = "lenient"
	LevelIgnore  Level = "ignore"
)

// Level controls how aggressively a category aborts the run.
type Level string

// Valid reports whether l is a known handling level.
func (l Level) Valid() bool {
	switch l {
	case LevelStrict, LevelNormal, LevelLenient, LevelIgnore:
		return true
	}
	return false
}

// ParseLevel normalizes a level string; unknown values map to normal.
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l.Valid() {
		return l
	}
	return LevelNormal
}

// DefaultHistoryCapacity bounds the per-session record history.
const DefaultHistoryCapacity = 100

// DefaultMaxPerCategory is the occurrence count per category after which
// the run aborts regardless of severity.
const DefaultMaxPerCategory = 50

// Policy is the configured handling behavior for one session.
type Policy struct {
	DefaultLevel    Level
	Levels          map[diagnostic.Category]Level
	MaxPerCategory  map[diagnostic.Category]int
	ShowSuggestions bool
	ShowStatistics  bool
	DisplayLimit    int // recent records returned by Summary
	ContextLines    int // surrounding lines captured into record context
	HistoryCapacity int
}

// DefaultPolicy returns the normal handling policy: continue past
// recoverable errors, show suggestions and statistics.
func DefaultPolicy() Policy {
	return Policy{
		DefaultLevel:    LevelNormal,
		Levels:          map[diagnostic.Category]Level{},
		MaxPerCategory:  map[diagnostic.Category]int{},
		ShowSuggestions: true,
		ShowStatistics:  true,
		DisplayLimit:    10,
		ContextLines:    2,
		HistoryCapacity: DefaultHistoryCapacity,
	}
}

// levelFor resolves the handling level for a category.
func (p Policy) levelFor(cat diagnostic.Category) Level {
	if l, ok := p.Levels[cat]; ok && l.Valid() {
		return l
	}
	if p.DefaultLevel.Valid() {
		return p.DefaultLevel
	}
	return LevelNormal
}

// maxFor resolves the abort threshold for a category.
func (p Policy) maxFor(cat diagnostic.Category) int {
	if n, ok := p.MaxPerCategory[cat]; ok && n > 0 {
		return n
	}
	return DefaultMaxPerCategory
}
