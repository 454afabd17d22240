package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// cliFlags holds every flag accepted by the kumihan command.
type cliFlags struct {
	output string
	title  string
	lang   string
	style  string
	config string

	errorLevel string
	levels     map[string]string
	maxErrors  map[string]int
	noRecovery bool
	showSource bool
	displayMax int

	reportFormat string
	reportPath   string

	quiet        bool
	verbose      bool
	listKeywords bool
	version      bool
	help         bool
}

// newFlagSet registers all flags on a fresh FlagSet.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("kumihan", flag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: source name with .html)")
	fs.StringVarP(&f.title, "title", "t", "", "document title")
	fs.StringVar(&f.lang, "lang", "", "html lang attribute (default ja)")
	fs.StringVarP(&f.style, "style", "s", "", "built-in style name")
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file or named config")

	fs.StringVar(&f.errorLevel, "error-level", "", "default handling level: strict|normal|lenient|ignore")
	fs.StringToStringVar(&f.levels, "level", nil, "per-category level override (e.g. syntax=strict)")
	fs.StringToIntVar(&f.maxErrors, "max-errors", nil, "per-category abort limit (e.g. syntax=10)")
	fs.BoolVar(&f.noRecovery, "no-recovery", false, "disable automated error recovery")
	fs.BoolVar(&f.showSource, "show-context", false, "print source context for each diagnostic")
	fs.IntVar(&f.displayMax, "display-limit", 0, "diagnostics shown in the summary (0 = default)")

	fs.StringVar(&f.reportFormat, "report-format", "", "error report format: json|html|text")
	fs.StringVar(&f.reportPath, "report", "", "write the error report to this path")

	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress the diagnostic summary")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging to stderr")
	fs.BoolVar(&f.listKeywords, "list-keywords", false, "list supported decoration keywords and exit")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	return fs
}

// parseFlags parses os.Args style input and returns the flags plus
// positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)
	fs.Usage = func() {}
	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// printUsage writes the help text.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `kumihan - convert Kumihan notation to HTML

Usage:
  kumihan [flags] <source.txt>

Kumihan decorates text blocks with ;;; marker lines. Malformed input is
classified, corrected where possible, and reported; the conversion keeps
going unless the error handling policy says abort.

Flags:
`)
	f := &cliFlags{}
	fmt.Fprint(w, newFlagSet(f).FlagUsages())
	fmt.Fprint(w, `
Examples:
  kumihan novel.txt
  kumihan -o out.html --style dark novel.txt
  kumihan --error-level lenient --max-errors syntax=10 novel.txt
  kumihan --report errors.json --report-format json novel.txt
`)
}
