// Package markdownload clips web pages into Markdown documents.
// It extracts the main article from rendered HTML, converts it to Markdown
// and wraps it in user-configurable templates, optionally materializing the
// images it references.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, htmltomarkdown/, rod/).
package markdownload
