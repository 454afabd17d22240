// Package assets provides the built-in CSS styles and document templates
// for generated HTML, plus validation of user-supplied asset names.
//
// Assets are embedded at build time. Styles are selected by name from
// styles/; the document template wraps the assembled body fragment into a
// complete HTML page.
package assets
