package kumihan

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/assets"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/config"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/coordinator"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/errstats"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/graceful"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/parser"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/pipeline"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/recovery"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
)

// Converter renders Kumihan notation to standalone HTML documents,
// collecting and recovering from input errors instead of failing on the
// first malformed marker. Create with NewConverter; a Converter is safe
// to reuse across conversions.
type Converter struct {
	cfg    converterConfig
	logger *zap.Logger

	policy   graceful.Policy
	styleCSS string
	template string
	title    string

	reportFormat string
	reportPath   string

	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
}

// NewConverter creates a Converter. Settings come from WithConfigFile
// (when given) with explicit options overriding the file's values.
// Returns an error when a level, category, limit, style, or report
// format is invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		logger:        zap.NewNop(),
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}
	for _, opt := range opts {
		opt(c)
	}

	fileCfg := config.DefaultConfig()
	if c.cfg.configPath != "" {
		loaded, err := config.LoadConfig(c.cfg.configPath)
		if err != nil {
			return nil, err
		}
		fileCfg = loaded
	}
	c.overlay(fileCfg)

	if err := fileCfg.Validate(); err != nil {
		return nil, translateConfigError(err)
	}
	c.policy = fileCfg.Policy()

	styleName := fileCfg.CSS.Style
	if styleName == "" {
		styleName = assets.DefaultStyleName
	}
	css, err := assets.LoadStyle(styleName)
	if err != nil {
		return nil, err
	}
	c.styleCSS = css

	c.template = fileCfg.Document.Template
	if c.template == "" {
		c.template = assets.DefaultTemplateName
	}
	c.title = fileCfg.Document.Title

	c.reportFormat = strings.ToLower(fileCfg.Report.Format)
	c.reportPath = fileCfg.Report.Path
	if c.reportPath != "" {
		if _, ok := validFormats()[c.reportFormat]; !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)",
				ErrInvalidReportFormat, c.reportFormat, strings.Join(errstats.Formats(), ", "))
		}
	}

	return c, nil
}

// overlay writes explicitly-set option values over the file config.
func (c *Converter) overlay(fc *config.Config) {
	if c.cfg.style != "" {
		fc.CSS.Style = c.cfg.style
	}
	if c.cfg.template != "" {
		fc.Document.Template = c.cfg.template
	}
	if c.cfg.title != "" {
		fc.Document.Title = c.cfg.title
	}
	if c.cfg.defaultLevel != "" {
		fc.ErrorHandling.DefaultLevel = c.cfg.defaultLevel
	}
	for cat, level := range c.cfg.categoryLevels {
		if fc.ErrorHandling.Levels == nil {
			fc.ErrorHandling.Levels = make(map[string]string)
		}
		fc.ErrorHandling.Levels[cat] = level
	}
	for cat, limit := range c.cfg.categoryLimits {
		if fc.ErrorHandling.MaxPerCategory == nil {
			fc.ErrorHandling.MaxPerCategory = make(map[string]int)
		}
		fc.ErrorHandling.MaxPerCategory[cat] = limit
	}
	if c.cfg.displayLimit > 0 {
		fc.ErrorHandling.DisplayLimit = c.cfg.displayLimit
	}
	if c.cfg.disableRecovery {
		fc.ErrorHandling.DisableRecovery = true
	}
	if c.cfg.reportFormat != "" {
		fc.Report.Format = c.cfg.reportFormat
	}
	if c.cfg.reportPath != "" {
		fc.Report.Path = c.cfg.reportPath
	}
	c.cfg.disableRecovery = fc.ErrorHandling.DisableRecovery
}

// Convert renders one input to a complete HTML document. Diagnostics
// are collected into Result.Report; recoverable problems do not fail
// the conversion. When the error handling policy aborts, the partial
// result is returned together with an error wrapping
// ErrConversionAborted.
func (c *Converter) Convert(ctx context.Context, input Input) (*Result, error) {
	source, path, size, err := c.loadSource(input)
	if err != nil {
		return nil, err
	}

	session := graceful.NewSession(c.policy,
		graceful.WithManager(c.newManager()),
		graceful.WithLogger(c.logger))
	p := parser.New(session, parser.WithSource(path, size))

	sourceLines := strings.Split(source, "\n")

	var body strings.Builder
	aborted := false
	for _, block := range coordinator.Split(source) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var fragment string
		switch block.Kind {
		case coordinator.KindKumihan:
			fragment, err = p.ParseBlock(block)
			if errors.Is(err, parser.ErrAborted) {
				aborted = true
			} else if err != nil {
				return nil, err
			}
		case coordinator.KindMarkdown:
			fragment, err = c.htmlConverter.ToHTML(ctx, strings.Join(block.Lines, "\n"))
			if err != nil {
				return nil, fmt.Errorf("converting block at line %d: %w", block.StartLine, err)
			}
		}
		body.WriteString(fragment)
		if aborted {
			break
		}
	}

	report := buildReport(session, sourceLines)
	if err := c.exportReport(session); err != nil {
		return nil, err
	}

	if aborted {
		return &Result{Report: report}, fmt.Errorf("%w: %d errors recorded",
			ErrConversionAborted, report.TotalErrors)
	}

	docHTML, err := assets.RenderDocument(c.template, assets.DocumentData{
		Title: c.documentTitle(input),
		Lang:  input.Lang,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	docHTML = c.cssInjector.InjectCSS(ctx, docHTML, c.styleCSS+input.CSS)

	return &Result{HTML: docHTML, Report: report}, nil
}

// loadSource resolves the input to text. File content that is not valid
// UTF-8 goes through the encoding fallback chain before parsing.
func (c *Converter) loadSource(input Input) (source, path string, size int64, err error) {
	if input.SourceFile == "" {
		if strings.TrimSpace(input.Source) == "" {
			return "", "", 0, ErrEmptySource
		}
		return input.Source, "", 0, nil
	}

	data, err := os.ReadFile(input.SourceFile)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	size = int64(len(data))

	content := string(data)
	if !utf8.ValidString(content) {
		decoded, encName, decErr := recovery.TryDecode(data)
		if decErr != nil {
			return "", "", 0, fmt.Errorf("%w: %v", ErrSourceRead, decErr)
		}
		c.logger.Debug("decoded non-UTF-8 source",
			zap.String("path", input.SourceFile),
			zap.String("encoding", encName))
		content = decoded
	}
	if strings.TrimSpace(content) == "" {
		return "", "", 0, ErrEmptySource
	}
	return content, input.SourceFile, size, nil
}

// newManager builds the recovery chain for one conversion. An empty
// chain reports "cannot handle" for everything, which keeps records
// unrecovered without special-casing callers.
func (c *Converter) newManager() *recovery.Manager {
	if c.cfg.disableRecovery {
		return recovery.NewManagerWith()
	}
	return recovery.NewManager()
}

// documentTitle picks the title: input, configured default, then the
// source file base name.
func (c *Converter) documentTitle(input Input) string {
	if input.Title != "" {
		return input.Title
	}
	if c.title != "" {
		return c.title
	}
	if input.SourceFile != "" {
		base := filepath.Base(input.SourceFile)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "Kumihan Document"
}

// exportReport writes the statistics file when configured.
func (c *Converter) exportReport(session *graceful.Session) error {
	if c.reportPath == "" {
		return nil
	}
	return errstats.WriteFile(session.Statistics(), c.reportPath, c.reportFormat)
}

// buildReport converts the session state into the public report type,
// honoring the policy's display toggles.
func buildReport(session *graceful.Session, sourceLines []string) Report {
	st := session.Statistics()
	sum := session.Summarize()
	policy := session.Policy()

	var patterns []PatternFrequency
	if policy.ShowStatistics {
		patterns = make([]PatternFrequency, len(st.TopPatterns))
		for i, pc := range st.TopPatterns {
			patterns[i] = PatternFrequency{PatternID: pc.PatternID, Count: pc.Count}
		}
	}

	recent := make([]ErrorDetail, len(sum.Recent))
	for i, rec := range sum.Recent {
		detail := ErrorDetail{
			Line:      rec.Line,
			Column:    rec.Column,
			Severity:  string(rec.Severity),
			Category:  string(rec.Category),
			Message:   rec.DisplayMessage(),
			Context:   contextSnippet(sourceLines, rec.Line, policy.ContextLines, rec.Context),
			Recovered: rec.Recovered(),
		}
		if policy.ShowSuggestions {
			detail.Suggestions = rec.Suggestions()
		}
		recent[i] = detail
	}

	return Report{
		TotalErrors:  st.TotalErrors,
		BySeverity:   st.BySeverity,
		ByCategory:   st.ByCategory,
		TopPatterns:  patterns,
		RecoveryRate: sum.RecoveryRate,
		Aborted:      sum.Aborted,
		Recent:       recent,
	}
}

// contextSnippet widens a record's context to the configured number of
// surrounding source lines. Falls back to the record's own context when
// the line number is out of range.
func contextSnippet(lines []string, line, around int, fallback string) string {
	if line < 1 || line > len(lines) || around < 0 {
		return fallback
	}
	start := line - 1 - around
	if start < 0 {
		start = 0
	}
	end := line + around
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// translateConfigError maps internal config sentinels onto the public
// ones so callers can match with errors.Is.
func translateConfigError(err error) error {
	switch {
	case errors.Is(err, config.ErrInvalidLevel):
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	case errors.Is(err, config.ErrInvalidCategory):
		return fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	case errors.Is(err, config.ErrInvalidLimit):
		return fmt.Errorf("%w: %v", ErrInvalidLimit, err)
	}
	return err
}

// validFormats returns the accepted report export formats as a set.
func validFormats() map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range errstats.Formats() {
		set[f] = struct{}{}
	}
	return set
}
