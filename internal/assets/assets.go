package assets

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrTemplateRender   = errors.New("document template rendering failed")
)

// DefaultStyleName is used when no style is configured.
const DefaultStyleName = "default"

// DefaultTemplateName is the built-in document template.
const DefaultTemplateName = "document"

//go:embed styles/*.css
var styles embed.FS

//go:embed templates/*.html
var templates embed.FS

// LoadStyle loads a built-in CSS style by name (without the .css
// extension).
func LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q (available: %s)",
			ErrStyleNotFound, name, strings.Join(AvailableStyles(), ", "))
	}
	return string(content), nil
}

// AvailableStyles lists the built-in style names, sorted.
func AvailableStyles() []string {
	entries, err := styles.ReadDir("styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

// DocumentData feeds the document template.
type DocumentData struct {
	Title string
	Lang  string
	Body  template.HTML // assembled body fragment; already escaped upstream
}

// RenderDocument wraps an assembled body fragment into a complete HTML
// page using the named template.
func RenderDocument(templateName string, data DocumentData) (string, error) {
	if err := ValidateAssetName(templateName); err != nil {
		return "", err
	}

	raw, err := templates.ReadFile("templates/" + templateName + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, templateName)
	}

	tmpl, err := template.New(templateName).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	if data.Lang == "" {
		data.Lang = "ja"
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return b.String(), nil
}

// ValidateAssetName rejects names with path separators or traversal
// sequences; asset names are bare identifiers, never paths.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
