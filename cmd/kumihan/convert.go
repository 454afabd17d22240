package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	kumihan "github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/parser"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidExtension = errors.New("file must have .txt, .md, or .kumihan extension")
)

// filePermissions is the mode for generated HTML and reports.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// acceptedExtensions lists the source extensions the CLI converts.
var acceptedExtensions = []string{".txt", ".md", ".kumihan"}

// Diagnostic output colors, keyed by severity.
var severityColors = map[string]*color.Color{
	"info":     color.New(color.FgCyan),
	"warning":  color.New(color.FgYellow),
	"error":    color.New(color.FgRed),
	"critical": color.New(color.FgRed, color.Bold),
}

// run executes one conversion from parsed CLI state.
func run(ctx context.Context, flags *cliFlags, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: pass a source file (see --help)", ErrNoInput)
	}
	source := args[0]
	if err := validateExtension(source); err != nil {
		return err
	}

	conv, err := newConverter(flags)
	if err != nil {
		return err
	}

	result, err := conv.Convert(ctx, kumihan.Input{
		SourceFile: source,
		Title:      flags.title,
		Lang:       flags.lang,
	})
	if err != nil {
		// An aborted run still carries a report worth showing.
		if result != nil && !flags.quiet {
			printSummary(stderr, result.Report, flags.showSource)
		}
		return err
	}

	output := flags.output
	if output == "" {
		output = strings.TrimSuffix(source, filepath.Ext(source)) + ".html"
	}
	if err := os.WriteFile(output, []byte(result.HTML), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if !flags.quiet {
		printSummary(stderr, result.Report, flags.showSource)
		fmt.Fprintf(stdout, "%s -> %s\n", source, output)
	}
	return nil
}

// newConverter maps CLI flags onto converter options.
func newConverter(flags *cliFlags) (*kumihan.Converter, error) {
	var opts []kumihan.Option
	if flags.config != "" {
		opts = append(opts, kumihan.WithConfigFile(flags.config))
	}
	if flags.style != "" {
		opts = append(opts, kumihan.WithStyle(flags.style))
	}
	if flags.errorLevel != "" {
		opts = append(opts, kumihan.WithErrorLevel(flags.errorLevel))
	}
	for cat, level := range flags.levels {
		opts = append(opts, kumihan.WithCategoryLevel(cat, level))
	}
	for cat, limit := range flags.maxErrors {
		opts = append(opts, kumihan.WithMaxErrors(cat, limit))
	}
	if flags.displayMax > 0 {
		opts = append(opts, kumihan.WithDisplayLimit(flags.displayMax))
	}
	if flags.noRecovery {
		opts = append(opts, kumihan.WithoutRecovery())
	}
	if flags.reportPath != "" {
		format := flags.reportFormat
		if format == "" {
			format = "json"
		}
		opts = append(opts, kumihan.WithReport(format, flags.reportPath))
	}
	if flags.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, kumihan.WithLogger(logger))
	}
	return kumihan.NewConverter(opts...)
}

// printSummary writes the diagnostic summary in the order users read
// it: individual diagnostics first, aggregate counts last.
func printSummary(w io.Writer, report kumihan.Report, showContext bool) {
	if report.TotalErrors == 0 {
		fmt.Fprintln(w, color.GreenString("no problems found"))
		return
	}

	for _, d := range report.Recent {
		c, ok := severityColors[d.Severity]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprintf(w, "%s line %d: %s\n", c.Sprintf("[%s]", d.Severity), d.Line, d.Message)
		if showContext && d.Context != "" {
			fmt.Fprintf(w, "    > %s\n", d.Context)
		}
		for _, s := range d.Suggestions {
			fmt.Fprintf(w, "    hint: %s\n", s)
		}
	}

	shown := len(report.Recent)
	if shown < report.TotalErrors {
		fmt.Fprintf(w, "... and %d earlier problems\n", report.TotalErrors-shown)
	}

	fmt.Fprintf(w, "%d problems", report.TotalErrors)
	var parts []string
	for _, sev := range []string{"critical", "error", "warning", "info"} {
		if n := report.BySeverity[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(w, ", %.0f%% recovered\n", report.RecoveryRate*100)

	if report.Aborted {
		fmt.Fprintln(w, color.RedString("conversion aborted by error handling policy"))
	}
}

// printKeywords lists the supported decoration keywords, one per line.
func printKeywords(w io.Writer) {
	keywords := parser.Keywords()
	sort.Strings(keywords)
	for _, k := range keywords {
		fmt.Fprintln(w, k)
	}
}

// validateExtension checks the source file extension.
func validateExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, ok := range acceptedExtensions {
		if ext == ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidExtension, path)
}
