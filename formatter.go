package sitechat

import "strings"

// FormatContext formats retrieved passages for use as LLM context.
// Uses title if available, falls back to source URL.
// Passages are separated by blank lines.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		header := r.Chunk.Title
		if header == "" {
			header = r.Chunk.SourceURL
		}
		parts = append(parts, "## Source: "+header+"\n"+r.Chunk.Content)
	}

	return strings.Join(parts, "\n\n")
}
