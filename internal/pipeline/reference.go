package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// maxRefChars caps how much of one reference document goes into prompts.
const maxRefChars = 4000

// loadReferences reads supporting documents for prompt context. Text
// files are inlined up to the cap; other formats contribute their name
// only. Unreadable files are skipped with a warning, never fatal.
func loadReferences(ctx context.Context, paths []string, log logger.Logger) (string, []string) {
	var blocks []string
	var names []string

	for _, path := range paths {
		name := filepath.Base(path)
		names = append(names, name)

		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md", ".markdown":
		default:
			blocks = append(blocks, fmt.Sprintf("[Reference: %s (content not inlined)]", name))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn(ctx, "Failed to read reference %s: %v", path, err)
			continue
		}

		text := strings.TrimSpace(string(data))
		if len(text) > maxRefChars {
			text = text[:maxRefChars] + "\n[truncated]"
		}
		blocks = append(blocks, fmt.Sprintf("[Reference: %s]\n%s", name, text))
	}

	return strings.Join(blocks, "\n\n"), names
}
