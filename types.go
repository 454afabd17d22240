package kumihan

// Input describes one conversion request. Provide either Source (raw
// text) or SourceFile (a path to read); SourceFile wins when both are
// set because file-based recovery strategies need the path.
type Input struct {
	Source     string // raw Kumihan text
	SourceFile string // path to a source file
	Title      string // document title (empty = derived from file name)
	Lang       string // html lang attribute (empty = "ja")
	CSS        string // extra CSS appended after the selected style
}

// Result holds the rendered document and the error report for the run.
type Result struct {
	HTML   string // complete HTML page
	Report Report // diagnostics collected during conversion
}

// ErrorDetail is the outward-facing view of one diagnostic.
type ErrorDetail struct {
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Severity    string   `json:"severity"`
	Category    string   `json:"category"`
	Message     string   `json:"message"`
	Context     string   `json:"context,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Recovered   bool     `json:"recovered"`
}

// PatternFrequency is one entry of the most frequent error patterns.
type PatternFrequency struct {
	PatternID string `json:"pattern_id"`
	Count     int    `json:"count"`
}

// Report aggregates every diagnostic handled during one conversion.
// TotalErrors counts all handled records, including those no longer
// listed in Recent.
type Report struct {
	TotalErrors  int                `json:"total_errors"`
	BySeverity   map[string]int     `json:"by_severity"`
	ByCategory   map[string]int     `json:"by_category"`
	TopPatterns  []PatternFrequency `json:"top_patterns"`
	RecoveryRate float64            `json:"recovery_rate"`
	Aborted      bool               `json:"aborted"`
	Recent       []ErrorDetail      `json:"recent,omitempty"`
}
