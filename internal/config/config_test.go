package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/graceful"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input.DefaultDir != "" {
		t.Errorf("Input.DefaultDir = %q, want empty", cfg.Input.DefaultDir)
	}
	if cfg.Output.DefaultDir != "" {
		t.Errorf("Output.DefaultDir = %q, want empty", cfg.Output.DefaultDir)
	}
	if cfg.CSS.Style != "" {
		t.Errorf("CSS.Style = %q, want empty", cfg.CSS.Style)
	}
	if cfg.ErrorHandling.DefaultLevel != string(graceful.LevelNormal) {
		t.Errorf("ErrorHandling.DefaultLevel = %q, want normal", cfg.ErrorHandling.DefaultLevel)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Report.Format = %q, want json", cfg.Report.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name: "level case insensitive",
			mutate: func(c *Config) {
				c.ErrorHandling.DefaultLevel = "STRICT"
			},
		},
		{
			name: "valid category overrides",
			mutate: func(c *Config) {
				c.ErrorHandling.Levels = map[string]string{"syntax": "lenient", "encoding": "strict"}
				c.ErrorHandling.MaxPerCategory = map[string]int{"validation": 20}
			},
		},
		{
			name: "unknown default level",
			mutate: func(c *Config) {
				c.ErrorHandling.DefaultLevel = "pedantic"
			},
			wantErr: ErrInvalidLevel,
		},
		{
			name: "unknown category in levels",
			mutate: func(c *Config) {
				c.ErrorHandling.Levels = map[string]string{"typo": "strict"}
			},
			wantErr: ErrInvalidCategory,
		},
		{
			name: "unknown level in levels",
			mutate: func(c *Config) {
				c.ErrorHandling.Levels = map[string]string{"syntax": "pedantic"}
			},
			wantErr: ErrInvalidLevel,
		},
		{
			name: "unknown category in limits",
			mutate: func(c *Config) {
				c.ErrorHandling.MaxPerCategory = map[string]int{"typo": 5}
			},
			wantErr: ErrInvalidCategory,
		},
		{
			name: "zero limit",
			mutate: func(c *Config) {
				c.ErrorHandling.MaxPerCategory = map[string]int{"syntax": 0}
			},
			wantErr: ErrInvalidLimit,
		},
		{
			name: "negative display limit",
			mutate: func(c *Config) {
				c.ErrorHandling.DisplayLimit = -1
			},
			wantErr: ErrInvalidLimit,
		},
		{
			name: "negative context lines",
			mutate: func(c *Config) {
				c.ErrorHandling.ContextLines = -3
			},
			wantErr: ErrInvalidLimit,
		},
		{
			name: "report format html",
			mutate: func(c *Config) {
				c.Report.Format = "html"
			},
		},
		{
			name: "report format case insensitive",
			mutate: func(c *Config) {
				c.Report.Format = "TEXT"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBadReportFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report.Format = "xml"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with report.format=xml = nil, want error")
	}
}

func TestPolicy(t *testing.T) {
	show := false
	cfg := DefaultConfig()
	cfg.ErrorHandling = ErrorHandlingConfig{
		DefaultLevel:    "lenient",
		Levels:          map[string]string{"encoding": "strict", "syntax": "IGNORE"},
		MaxPerCategory:  map[string]int{"validation": 7},
		ShowSuggestions: &show,
		DisplayLimit:    3,
		ContextLines:    5,
	}

	p := cfg.Policy()

	if p.DefaultLevel != graceful.LevelLenient {
		t.Errorf("DefaultLevel = %q, want lenient", p.DefaultLevel)
	}
	if got := p.Levels[diagnostic.CategoryEncoding]; got != graceful.LevelStrict {
		t.Errorf("Levels[encoding] = %q, want strict", got)
	}
	if got := p.Levels[diagnostic.CategorySyntax]; got != graceful.LevelIgnore {
		t.Errorf("Levels[syntax] = %q, want ignore", got)
	}
	if got := p.MaxPerCategory[diagnostic.CategoryValidation]; got != 7 {
		t.Errorf("MaxPerCategory[validation] = %d, want 7", got)
	}
	if p.ShowSuggestions {
		t.Error("ShowSuggestions = true, want false")
	}
	if !p.ShowStatistics {
		t.Error("ShowStatistics = false, want default true")
	}
	if p.DisplayLimit != 3 {
		t.Errorf("DisplayLimit = %d, want 3", p.DisplayLimit)
	}
	if p.ContextLines != 5 {
		t.Errorf("ContextLines = %d, want 5", p.ContextLines)
	}
}

func TestPolicyZeroValuesKeepDefaults(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Policy()

	def := graceful.DefaultPolicy()
	if p.DisplayLimit != def.DisplayLimit {
		t.Errorf("DisplayLimit = %d, want default %d", p.DisplayLimit, def.DisplayLimit)
	}
	if p.ContextLines != def.ContextLines {
		t.Errorf("ContextLines = %d, want default %d", p.ContextLines, def.ContextLines)
	}
	if !p.ShowSuggestions || !p.ShowStatistics {
		t.Error("suggestion/statistics toggles should default on")
	}
}

func TestLoadConfigFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	content := `css:
  style: academic
errorHandling:
  defaultLevel: strict
  levels:
    syntax: lenient
  maxPerCategory:
    validation: 10
report:
  format: html
  path: report.html
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CSS.Style != "academic" {
		t.Errorf("CSS.Style = %q, want academic", cfg.CSS.Style)
	}
	if cfg.ErrorHandling.DefaultLevel != "strict" {
		t.Errorf("DefaultLevel = %q, want strict", cfg.ErrorHandling.DefaultLevel)
	}
	if cfg.ErrorHandling.Levels["syntax"] != "lenient" {
		t.Errorf("Levels[syntax] = %q, want lenient", cfg.ErrorHandling.Levels["syntax"])
	}
	if cfg.ErrorHandling.MaxPerCategory["validation"] != 10 {
		t.Errorf("MaxPerCategory[validation] = %d, want 10", cfg.ErrorHandling.MaxPerCategory["validation"])
	}
	if cfg.Report.Format != "html" || cfg.Report.Path != "report.html" {
		t.Errorf("Report = %+v", cfg.Report)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "empty name",
			path:    "",
			wantErr: ErrEmptyConfigName,
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.yaml"),
			wantErr: ErrConfigNotFound,
		},
		{
			name:    "malformed yaml",
			path:    write("bad.yaml", "errorHandling: ["),
			wantErr: ErrConfigParse,
		},
		{
			name:    "unknown field rejected",
			path:    write("unknown.yaml", "outputs:\n  dir: build\n"),
			wantErr: ErrConfigParse,
		},
		{
			name:    "validation failure surfaces",
			path:    write("invalid.yaml", "errorHandling:\n  defaultLevel: pedantic\n"),
			wantErr: ErrInvalidLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	content := "errorHandling:\n  defaultLevel: lenient\n"
	if err := os.WriteFile(filepath.Join(dir, "myconf.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	cfg, err := LoadConfig("myconf")
	if err != nil {
		t.Fatalf("LoadConfig(myconf) error = %v", err)
	}
	if cfg.ErrorHandling.DefaultLevel != "lenient" {
		t.Errorf("DefaultLevel = %q, want lenient", cfg.ErrorHandling.DefaultLevel)
	}
}

func TestLoadConfigByNameYmlFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alt.yml"), []byte("report:\n  format: text\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	cfg, err := LoadConfig("alt")
	if err != nil {
		t.Fatalf("LoadConfig(alt) error = %v", err)
	}
	if cfg.Report.Format != "text" {
		t.Errorf("Report.Format = %q, want text", cfg.Report.Format)
	}
}

func TestLoadConfigByNameNotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("definitely-missing")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig() error = %v, want ErrConfigNotFound", err)
	}
}

func TestIsFilePath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "conf", want: false},
		{in: "./conf.yaml", want: true},
		{in: "/etc/kumihan/conf.yaml", want: true},
		{in: `relative\windows.yaml`, want: true},
	}

	for _, tt := range tests {
		if got := isFilePath(tt.in); got != tt.want {
			t.Errorf("isFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
