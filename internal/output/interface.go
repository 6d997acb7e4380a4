// Package output persists assembled documents in the configured formats.
package output

// Writer writes a run's document next to the markdown path it is given.
// Depending on the configured format it produces the markdown file, a
// DOCX rendering, or both; the DOCX path is derived from the markdown
// path.
type Writer interface {
	Write(title, document, mdPath string) ([]string, error)
}
