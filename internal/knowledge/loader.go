package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Chunk splits text into pieces no longer than maxLen, preferring paragraph
// boundaries, then line boundaries.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = 1000
	}
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= maxLen {
			out = append(out, para)
			continue
		}
		var current strings.Builder
		for _, line := range strings.Split(para, "\n") {
			if current.Len() > 0 && current.Len()+len(line)+1 > maxLen {
				out = append(out, current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(line)
		}
		if current.Len() > 0 {
			out = append(out, current.String())
		}
	}
	return out
}

// LoadFile chunks a text document and ingests it into a collection. A
// missing file is not an error; the searchers fall back to canned answers.
func LoadFile(ctx context.Context, ingestor Ingestor, collection, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	chunks := Chunk(string(data), 1000)
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := ingestor.AddDocuments(ctx, collection, chunks); err != nil {
		return 0, fmt.Errorf("knowledge: ingest %s: %w", path, err)
	}
	return len(chunks), nil
}
