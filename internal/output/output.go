package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write writes the document under mdPath's directory. The markdown file
// keeps mdPath; the DOCX variant swaps the extension. Returns the paths
// written, in write order.
func (w *implWriter) Write(title, document, mdPath string) ([]string, error) {
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string

	if w.format == "markdown" || w.format == "both" {
		if err := os.WriteFile(mdPath, []byte(document), 0o644); err != nil {
			return written, fmt.Errorf("write markdown: %w", err)
		}
		w.logger.Info(ctx, "Wrote %s", mdPath)
		written = append(written, mdPath)
	}

	if w.format == "docx" || w.format == "both" {
		docxPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".docx"
		if err := w.asm.WriteDocx(title, document, docxPath); err != nil {
			return written, fmt.Errorf("write docx: %w", err)
		}
		w.logger.Info(ctx, "Wrote %s", docxPath)
		written = append(written, docxPath)
	}

	return written, nil
}
