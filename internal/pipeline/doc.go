// Package pipeline implements the document assembly stages around the
// Kumihan parser:
//   - Markdown to HTML conversion via Goldmark, for blocks the
//     coordinator routes to the Markdown sub-parser
//   - CSS injection into the assembled HTML document
//
// Kumihan notation parsing and error handling are handled separately by
// internal/parser and internal/graceful; this package only deals with
// well-formed content.
package pipeline
