// Package report renders search reports for people and tools.
//
// Three writers are provided:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON, optionally wrapped with the tool version
//   - MarkdownWriter: GitHub-flavored Markdown with a salary chart
//
// All writers implement Writer and can be combined with MultiWriter.
package report
