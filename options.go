package kumihan

import (
	"go.uber.org/zap"
)

// converterConfig holds settings applied via options.
type converterConfig struct {
	style           string
	template        string
	title           string
	lang            string
	defaultLevel    string
	categoryLevels  map[string]string
	categoryLimits  map[string]int
	displayLimit    int
	disableRecovery bool
	reportFormat    string
	reportPath      string
	configPath      string
}

// Option configures a Converter.
type Option func(*Converter)

// WithStyle selects a built-in CSS style by name.
func WithStyle(name string) Option {
	return func(c *Converter) { c.cfg.style = name }
}

// WithTemplate selects a built-in document template by name.
func WithTemplate(name string) Option {
	return func(c *Converter) { c.cfg.template = name }
}

// WithTitle sets the default document title, used when Input.Title is
// empty and no file name is available.
func WithTitle(title string) Option {
	return func(c *Converter) { c.cfg.title = title }
}

// WithErrorLevel sets the default error handling level: "strict",
// "normal", "lenient", or "ignore".
func WithErrorLevel(level string) Option {
	return func(c *Converter) { c.cfg.defaultLevel = level }
}

// WithCategoryLevel overrides the handling level for one error
// category (e.g. "syntax", "encoding").
func WithCategoryLevel(category, level string) Option {
	return func(c *Converter) {
		if c.cfg.categoryLevels == nil {
			c.cfg.categoryLevels = make(map[string]string)
		}
		c.cfg.categoryLevels[category] = level
	}
}

// WithMaxErrors sets the per-category occurrence limit; one more
// occurrence than the limit aborts the conversion.
func WithMaxErrors(category string, limit int) Option {
	return func(c *Converter) {
		if c.cfg.categoryLimits == nil {
			c.cfg.categoryLimits = make(map[string]int)
		}
		c.cfg.categoryLimits[category] = limit
	}
}

// WithDisplayLimit bounds how many recent diagnostics appear in the
// report.
func WithDisplayLimit(n int) Option {
	return func(c *Converter) { c.cfg.displayLimit = n }
}

// WithoutRecovery disables automated recovery; diagnostics are still
// classified and reported.
func WithoutRecovery() Option {
	return func(c *Converter) { c.cfg.disableRecovery = true }
}

// WithReport exports the error statistics after each conversion in the
// given format ("json", "html", "text") to the given path.
func WithReport(format, path string) Option {
	return func(c *Converter) {
		c.cfg.reportFormat = format
		c.cfg.reportPath = path
	}
}

// WithConfigFile loads settings from a YAML configuration file. Options
// applied after this one override the file's values.
func WithConfigFile(path string) Option {
	return func(c *Converter) { c.cfg.configPath = path }
}

// WithLogger attaches a structured logger; diagnostics are logged at
// debug level as they are handled.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}
