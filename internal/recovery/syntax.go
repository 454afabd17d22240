package recovery

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/fileutil"
)

// substitutions maps known malformed marker spellings to the canonical
// form. Applied before the generic normalization pass.
var substitutions = []struct {
	from string
	to   string
}{
	{from: "；；；", to: ";;;"},
	{from: "；；", to: ";;"},
	{from: ";；;", to: ";;;"},
}

// markerRunPattern matches over-long delimiter runs for the generic pass.
var markerRunPattern = regexp.MustCompile(`;{4,}`)

// SyntaxStrategy rewrites a malformed marker line in place: known bad
// spellings first, then a generic delimiter-run normalization accepted
// only when it actually changed the line.
type SyntaxStrategy struct{}

func (SyntaxStrategy) Name() string  { return "syntax" }
func (SyntaxStrategy) Priority() int { return prioritySyntax }

// CanHandle matches syntax-category records that carry the offending line.
func (SyntaxStrategy) CanHandle(rec *diagnostic.Record, ctx *Context) bool {
	if ctx == nil || ctx.Line == "" {
		return false
	}
	return rec.Category == diagnostic.CategorySyntax
}

// Attempt corrects the line and, when a source file is known, persists the
// corrected line back after writing a backup copy.
func (s SyntaxStrategy) Attempt(rec *diagnostic.Record, ctx *Context) Outcome {
	corrected, changed := CorrectLine(ctx.Line)
	if !changed {
		return Failuref("no substitution rule applies to %q", strings.TrimSpace(ctx.Line))
	}

	if ctx.FilePath != "" {
		if err := persistLine(ctx.FilePath, rec.Line, ctx.Line, corrected); err != nil {
			return Failuref("persisting corrected line: %v", err)
		}
	}

	ctx.Line = corrected
	out := Successf("rewrote marker line as %q", strings.TrimSpace(corrected))
	out.RecoveredData = corrected
	return out
}

// CorrectLine applies the substitution table, then the generic
// delimiter-run normalization. Reports whether the line changed.
func CorrectLine(line string) (string, bool) {
	corrected := line
	for _, sub := range substitutions {
		corrected = strings.ReplaceAll(corrected, sub.from, sub.to)
	}
	corrected = markerRunPattern.ReplaceAllString(corrected, ";;;")
	return corrected, corrected != line
}

// persistLine replaces line number n (1-based) in the file, writing a
// backup first. When the numbered line does not match the expected text,
// the first matching line is replaced instead.
func persistLine(path string, n int, oldLine, newLine string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the session context
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	idx := -1
	if n >= 1 && n <= len(lines) && lines[n-1] == oldLine {
		idx = n - 1
	} else {
		for i, l := range lines {
			if l == oldLine {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return fmt.Errorf("offending line not present in %s", path)
	}

	if _, err := fileutil.BackupFile(path); err != nil {
		return err
	}

	lines[idx] = newLine
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600)
}
