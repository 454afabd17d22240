// Package parser implements the line-based Kumihan notation parser. It
// renders well-formed blocks to HTML fragments and hands every violation
// to the graceful session instead of aborting on the first bad marker.
package parser

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/coordinator"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/graceful"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/recovery"
)

// ErrAborted is returned when the session decides the run must stop.
var ErrAborted = errors.New("parsing aborted by error handling policy")

// decoration describes how one keyword renders.
type decoration struct {
	open      string
	close     string
	withColor bool // accepts a color attribute
}

// decorations maps notation keywords to their HTML rendering.
var decorations = map[string]decoration{
	"太字":     {open: "<strong>", close: "</strong>"},
	"イタリック":  {open: "<em>", close: "</em>"},
	"見出し1":   {open: "<h1>", close: "</h1>"},
	"見出し2":   {open: "<h2>", close: "</h2>"},
	"見出し3":   {open: "<h3>", close: "</h3>"},
	"見出し4":   {open: "<h4>", close: "</h4>"},
	"見出し5":   {open: "<h5>", close: "</h5>"},
	"枠線":     {open: `<div class="kumihan-box">`, close: "</div>"},
	"中央寄せ":   {open: `<div class="kumihan-center">`, close: "</div>"},
	"ハイライト":  {open: `<div class="kumihan-highlight">`, close: "</div>", withColor: true},
	"ネタバレ":   {open: "<details><summary>ネタバレ</summary>", close: "</details>"},
}

// colorValue validates a color attribute: 6-digit hex with leading #.
var colorValue = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// attributePattern matches key=value tokens on the opening marker line.
var attributePattern = regexp.MustCompile(`(\w+)\s*=\s*([^\s;；]*)`)

// Keywords returns the supported decoration keywords, for help output.
func Keywords() []string {
	names := make([]string, 0, len(decorations))
	for name := range decorations {
		names = append(names, name)
	}
	return names
}

// Parser renders Kumihan blocks, reporting violations to its session.
// One parser per document; not safe for concurrent use.
type Parser struct {
	session  *graceful.Session
	filePath string
	fileSize int64
}

// Option configures a Parser.
type Option func(*Parser)

// WithSource attaches the source file path and size so recovery
// strategies can operate on the file.
func WithSource(path string, size int64) Option {
	return func(p *Parser) {
		p.filePath = path
		p.fileSize = size
	}
}

// New creates a parser reporting to the given session.
func New(session *graceful.Session, opts ...Option) *Parser {
	p := &Parser{session: session}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseBlock renders one coordinator block to an HTML fragment. On a
// violation the block is handed to the session; if the session says
// continue, rendering proceeds (annotated with an inline marker), and if
// it says abort, ErrAborted is returned.
func (p *Parser) ParseBlock(block coordinator.Block) (string, error) {
	if block.Kind != coordinator.KindKumihan || len(block.Lines) == 0 {
		return "", nil
	}

	opening := block.Lines[0]
	line := block.StartLine

	// Inline annotations for violations that did not recover; they are
	// embedded before the rendered block so readers see what happened.
	var annotations []string
	annotate := func(rec *diagnostic.Record) {
		if !rec.Recovered() {
			annotations = append(annotations, graceful.InlineMarker(rec))
		}
	}

	// Malformed marker spellings on the opening line: report, then keep
	// parsing with the corrected line when recovery fixed it.
	fixed, rec, err := p.checkMarkerSpelling(opening, line)
	if err != nil {
		return "", err
	}
	if rec != nil {
		annotate(rec)
		if fixed != "" {
			opening = fixed
		}
	}

	keyword, attrs := parseOpening(opening)
	if keyword == "" {
		rec := diagnostic.NewRecord(line, 0, string(diagnostic.CategorySyntax),
			diagnostic.SeverityError,
			"marker line has no decoration keyword", opening)
		if err := p.report(rec, opening); err != nil {
			return "", err
		}
		return graceful.InlineMarker(rec) + "\n", nil
	}

	deco, known := decorations[keyword]
	if !known {
		rec := diagnostic.NewRecord(line, 0, string(diagnostic.CategoryValidation),
			diagnostic.SeverityWarning,
			fmt.Sprintf("unknown decoration keyword %q", keyword), opening)
		if err := p.report(rec, opening); err != nil {
			return "", err
		}
		annotate(rec)
		// Render the body undecorated rather than dropping content.
		deco = decoration{open: "<div>", close: "</div>"}
	}

	style := ""
	if color, ok := attrs["color"]; ok {
		if deco.withColor && colorValue.MatchString(color) {
			style = fmt.Sprintf(` style="background-color:%s"`, color)
		} else {
			rec := diagnostic.NewRecord(line, strings.Index(opening, "color"),
				string(diagnostic.CategoryValidation), diagnostic.SeverityError,
				fmt.Sprintf("invalid color attribute %q", color), opening)
			if err := p.report(rec, opening); err != nil {
				return "", err
			}
			annotate(rec)
		}
	}

	body, closed := blockBody(block.Lines)
	if !closed {
		rec := diagnostic.NewRecord(line, 0, string(diagnostic.CategorySyntax),
			diagnostic.SeverityError,
			fmt.Sprintf("incomplete marker found: block %q opened at line %d is never closed", keyword, line),
			opening)
		if err := p.report(rec, opening); err != nil {
			return "", err
		}
		annotate(rec)
	}

	var b strings.Builder
	for _, ann := range annotations {
		b.WriteString(ann)
		b.WriteString("\n")
	}
	open := deco.open
	if style != "" {
		open = strings.Replace(open, ">", style+">", 1)
	}
	b.WriteString(open)
	b.WriteString(renderBody(body))
	b.WriteString(deco.close)
	b.WriteString("\n")
	return b.String(), nil
}

// checkMarkerSpelling diagnoses full-width and over-long delimiter runs
// on the opening line. Returns the corrected line when recovery rewrote
// it, along with the record, or ErrAborted.
func (p *Parser) checkMarkerSpelling(opening string, line int) (string, *diagnostic.Record, error) {
	trimmed := strings.TrimSpace(opening)

	var rec *diagnostic.Record
	switch {
	case strings.HasPrefix(trimmed, "；"):
		rec = diagnostic.NewRecord(line, 0, string(diagnostic.CategorySyntax),
			diagnostic.SeverityError,
			`full-width marker "；；；" used instead of ";;;"`, opening)
	case strings.HasPrefix(trimmed, ";;;;"):
		rec = diagnostic.NewRecord(line, 0, string(diagnostic.CategorySyntax),
			diagnostic.SeverityError,
			fmt.Sprintf(`marker mismatch error: expected ";;;" but found %q`, leadingRun(trimmed)), opening)
	case !strings.HasPrefix(trimmed, ";;;"):
		rec = diagnostic.NewRecord(line, 0, string(diagnostic.CategorySyntax),
			diagnostic.SeverityError,
			fmt.Sprintf(`marker mismatch error: expected ";;;" but found %q`, leadingRun(trimmed)), opening)
	default:
		return "", nil, nil
	}

	ctx := p.recoveryContext(opening)
	decision := p.session.Handle(rec, ctx)
	if decision == graceful.Abort {
		return "", rec, ErrAborted
	}
	if rec.Recovered() && ctx.Line != opening {
		return ctx.Line, rec, nil
	}
	return "", rec, nil
}

// report hands a record to the session and converts an abort decision
// into ErrAborted.
func (p *Parser) report(rec *diagnostic.Record, offendingLine string) error {
	if p.session.Handle(rec, p.recoveryContext(offendingLine)) == graceful.Abort {
		return ErrAborted
	}
	return nil
}

// recoveryContext builds the per-record context for the recovery chain.
func (p *Parser) recoveryContext(offendingLine string) *recovery.Context {
	return &recovery.Context{
		FilePath: p.filePath,
		Line:     offendingLine,
		FileSize: p.fileSize,
	}
}

// parseOpening extracts the keyword and key=value attributes from an
// opening marker line.
func parseOpening(line string) (string, map[string]string) {
	rest := strings.TrimLeft(strings.TrimSpace(line), ";；")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", nil
	}

	keyword := rest
	attrText := ""
	if i := strings.IndexAny(rest, " \t　"); i >= 0 {
		keyword = rest[:i]
		attrText = rest[i:]
	}

	attrs := make(map[string]string)
	for _, m := range attributePattern.FindAllStringSubmatch(attrText, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}
	return keyword, attrs
}

// blockBody returns the body lines between the opening and closing
// markers and whether the block was properly closed.
func blockBody(lines []string) ([]string, bool) {
	if len(lines) < 2 {
		return nil, false
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	closed := last != "" && strings.Trim(last, ";；") == ""
	if closed {
		return lines[1 : len(lines)-1], true
	}
	return lines[1:], false
}

// renderBody escapes body lines and joins them with line breaks.
func renderBody(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = html.EscapeString(l)
	}
	return strings.Join(escaped, "<br>\n")
}

// leadingRun returns the leading delimiter run of a line, for messages.
func leadingRun(line string) string {
	for i, r := range line {
		if r != ';' && r != '；' {
			return line[:i]
		}
	}
	return line
}
