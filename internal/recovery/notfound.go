package recovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// Similarity threshold and candidate cap for file name matching.
const (
	notFoundThreshold  = 0.6
	notFoundCandidates = 3
)

// fallbackExtension widens the sibling search when the target extension
// matches nothing, since plain-text sources are the common case.
const fallbackExtension = ".txt"

// NotFoundStrategy redirects a missing source file to the most similarly
// named sibling in the same directory.
type NotFoundStrategy struct{}

func (NotFoundStrategy) Name() string  { return "not_found" }
func (NotFoundStrategy) Priority() int { return priorityNotFound }

// CanHandle matches file-system records, or "not found" messages, when a
// target path is available.
func (NotFoundStrategy) CanHandle(rec *diagnostic.Record, ctx *Context) bool {
	if ctx == nil || ctx.FilePath == "" {
		return false
	}
	if rec.Category == diagnostic.CategoryFileSystem {
		return true
	}
	msg := strings.ToLower(rec.Message)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no such file")
}

type nameMatch struct {
	name       string
	similarity float64
}

// Attempt scans sibling files, ranks them by name similarity, and
// retargets the context at the best candidate above the threshold.
func (s NotFoundStrategy) Attempt(rec *diagnostic.Record, ctx *Context) Outcome {
	dir := filepath.Dir(ctx.FilePath)
	base := filepath.Base(ctx.FilePath)
	ext := filepath.Ext(base)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Failuref("listing %s: %v", dir, err)
	}

	matches := make([]nameMatch, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		entryExt := filepath.Ext(name)
		if ext != "" && !strings.EqualFold(entryExt, ext) && !strings.EqualFold(entryExt, fallbackExtension) {
			continue
		}
		if sim := similarity(base, name); sim >= notFoundThreshold {
			matches = append(matches, nameMatch{name: name, similarity: sim})
		}
	}

	if len(matches) == 0 {
		return Failuref("no file in %s resembles %q", dir, base)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if len(matches) > notFoundCandidates {
		matches = matches[:notFoundCandidates]
	}

	best := matches[0]
	ctx.FilePath = filepath.Join(dir, best.name)
	return Successf("redirected to %s (similarity %.2f)", best.name, best.similarity)
}

// similarity returns a [0,1] ratio between two file names, 1 meaning
// identical. Case-insensitive, Levenshtein-based.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
