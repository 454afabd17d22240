package recovery

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/fileutil"
)

// encodingCandidate pairs a decoder with its display name. Shift-JIS is
// decoded with the CP932-compatible decoder, so both spellings in the
// candidate list resolve through the same table.
type encodingCandidate struct {
	name string
	enc  encoding.Encoding
}

// encodingCandidates is the fixed ordered list of encodings tried against
// undecodable source bytes.
var encodingCandidates = []encodingCandidate{
	{name: "utf-8", enc: unicode.UTF8},
	{name: "shift_jis", enc: japanese.ShiftJIS},
	{name: "euc-jp", enc: japanese.EUCJP},
	{name: "iso-2022-jp", enc: japanese.ISO2022JP},
}

// EncodingStrategy re-encodes a source file that failed to decode. On the
// first candidate that decodes cleanly, the content is written back as
// UTF-8 and the original is moved aside as a backup.
type EncodingStrategy struct{}

func (EncodingStrategy) Name() string  { return "encoding" }
func (EncodingStrategy) Priority() int { return priorityEncoding }

// CanHandle matches encoding-category records, or decode failures by
// message keyword, when a source file is available.
func (EncodingStrategy) CanHandle(rec *diagnostic.Record, ctx *Context) bool {
	if ctx == nil || ctx.FilePath == "" {
		return false
	}
	if rec.Category == diagnostic.CategoryEncoding {
		return true
	}
	msg := strings.ToLower(rec.Message)
	return strings.Contains(msg, "decode") || strings.Contains(msg, "encoding")
}

// Attempt reads the source bytes, tries the candidate list, and rewrites
// the file as UTF-8 on success.
func (s EncodingStrategy) Attempt(rec *diagnostic.Record, ctx *Context) Outcome {
	data, err := os.ReadFile(ctx.FilePath) // #nosec G304 -- path comes from the session context
	if err != nil {
		return Failuref("reading source for re-encoding: %v", err)
	}

	content, encName, err := TryDecode(data)
	if err != nil {
		return Failuref("%v", err)
	}

	if encName != "utf-8" {
		if _, err := fileutil.BackupFile(ctx.FilePath); err != nil {
			return Failuref("backing up original before re-encoding: %v", err)
		}
		if err := os.WriteFile(ctx.FilePath, []byte(content), 0o600); err != nil {
			return Failuref("writing UTF-8 content: %v", err)
		}
	}

	out := Successf("decoded source as %s and rewrote it as UTF-8", encName)
	out.RecoveredData = content
	return out
}

// TryDecode decodes data against the fixed candidate list and returns the
// decoded text plus the name of the encoding that worked. The error lists
// every attempted encoding when none decodes cleanly.
func TryDecode(data []byte) (content, encodingName string, err error) {
	attempted := make([]string, 0, len(encodingCandidates))
	for _, cand := range encodingCandidates {
		attempted = append(attempted, cand.name)
		if decoded, ok := decodeClean(data, cand.enc); ok {
			return decoded, cand.name, nil
		}
	}
	return "", "", fmt.Errorf("no candidate encoding decoded the source (tried %s)",
		strings.Join(attempted, ", "))
}

// decodeClean decodes data with enc and reports whether the result is
// valid UTF-8 free of replacement characters, i.e. a clean decode.
func decodeClean(data []byte, enc encoding.Encoding) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(decoded) {
		return "", false
	}
	text := string(decoded)
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}
