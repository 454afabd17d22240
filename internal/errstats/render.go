package errstats

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatText = "text"
)

// ErrUnknownFormat is returned for export formats other than json, html, text.
var ErrUnknownFormat = errors.New("unknown report format")

// RenderJSON produces the machine-readable summary.
func RenderJSON(st Statistics) ([]byte, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding statistics: %w", err)
	}
	return data, nil
}

// ParseJSON re-reads an exported summary. Round-trips TotalErrors and the
// per-category counts exactly.
func ParseJSON(data []byte) (Statistics, error) {
	var st Statistics
	if err := json.Unmarshal(data, &st); err != nil {
		return Statistics{}, fmt.Errorf("decoding statistics: %w", err)
	}
	return st, nil
}

// RenderText produces a short human-readable summary.
func RenderText(st Statistics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Errors: %d (recovered: %d)\n", st.TotalErrors, st.RecoveredCount)

	b.WriteString("By severity:\n")
	for _, sev := range []string{"info", "warning", "error", "critical"} {
		if n := st.BySeverity[sev]; n > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", sev, n)
		}
	}

	b.WriteString("By line range:\n")
	for _, label := range LineBuckets() {
		if n := st.ByLineRange[label]; n > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", label, n)
		}
	}

	if len(st.TopPatterns) > 0 {
		b.WriteString("Top patterns:\n")
		for _, p := range st.TopPatterns {
			fmt.Fprintf(&b, "  %-20s %3d (%.1f%%)  e.g. %s\n", p.PatternID, p.Count, p.Percent, p.Example)
		}
	}

	fmt.Fprintf(&b, "Suggestions issued: %d\n", st.TotalSuggestions)
	return b.String()
}

// RenderHTML produces an HTML fragment with per-severity and per-pattern
// bars. All user content is escaped before embedding.
func RenderHTML(st Statistics) string {
	var b strings.Builder

	b.WriteString(`<div class="kumihan-error-report">` + "\n")
	fmt.Fprintf(&b, `<p class="total">%d errors (%d recovered)</p>`+"\n", st.TotalErrors, st.RecoveredCount)

	b.WriteString(`<ul class="by-severity">` + "\n")
	for _, sev := range []string{"info", "warning", "error", "critical"} {
		n := st.BySeverity[sev]
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, `<li class="sev-%s">%s: %d %s</li>`+"\n", sev, sev, n, bar(n, st.TotalErrors))
	}
	b.WriteString("</ul>\n")

	b.WriteString(`<ul class="by-pattern">` + "\n")
	for _, p := range st.TopPatterns {
		fmt.Fprintf(&b, `<li>%s: %d (%.1f%%) %s <span class="example">%s</span></li>`+"\n",
			html.EscapeString(p.PatternID), p.Count, p.Percent,
			bar(p.Count, st.TotalErrors), html.EscapeString(p.Example))
	}
	b.WriteString("</ul>\n")

	b.WriteString("</div>\n")
	return b.String()
}

// bar renders a proportional bar as a styled span.
func bar(n, total int) string {
	if total == 0 {
		return ""
	}
	percent := float64(n) * 100 / float64(total)
	return fmt.Sprintf(`<span class="bar" style="width:%.0f%%"></span>`, percent)
}

// WriteFile exports the snapshot to path in the given format.
func WriteFile(st Statistics, path, format string) error {
	var data []byte
	switch format {
	case FormatJSON:
		encoded, err := RenderJSON(st)
		if err != nil {
			return err
		}
		data = encoded
	case FormatHTML:
		data = []byte(RenderHTML(st))
	case FormatText:
		data = []byte(RenderText(st))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Formats returns the supported export formats.
func Formats() []string {
	return []string{FormatJSON, FormatHTML, FormatText}
}
