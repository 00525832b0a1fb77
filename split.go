package sitechat

import (
	"strings"
	"unicode/utf8"
)

// Default text splitting parameters, in runes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separators are tried in order; later ones split pieces that are still too long.
var separators = []string{"\n\n", "\n", " "}

// SplitText splits text into chunks of at most size runes for embedding.
// Whitespace is normalized first. Paragraph boundaries are preferred, then
// line boundaries, then word boundaries; a single word longer than size is
// cut. Consecutive chunks share up to overlap runes of trailing context.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text = normalizeWhitespace(text)
	if text == "" {
		return nil
	}
	return splitRecursive(text, separators, size, overlap)
}

func splitRecursive(text string, seps []string, size, overlap int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}
	if len(seps) == 0 {
		return cutRunes(text, size, overlap)
	}

	sep := seps[0]
	var pieces []string
	for _, part := range strings.Split(text, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > size {
			pieces = append(pieces, splitRecursive(part, seps[1:], size, overlap)...)
			continue
		}
		pieces = append(pieces, part)
	}
	return mergePieces(pieces, sep, size, overlap)
}

// mergePieces greedily joins pieces into chunks no longer than size,
// starting each new chunk with the tail of the previous one.
func mergePieces(pieces []string, sep string, size, overlap int) []string {
	var chunks []string
	var window []string
	windowLen := 0
	sepLen := utf8.RuneCountInString(sep)

	for _, p := range pieces {
		pLen := utf8.RuneCountInString(p)
		if len(window) > 0 && windowLen+sepLen+pLen > size {
			chunks = append(chunks, strings.Join(window, sep))
			for len(window) > 0 && (windowLen > overlap || windowLen+sepLen+pLen > size) {
				windowLen -= utf8.RuneCountInString(window[0])
				if len(window) > 1 {
					windowLen -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			windowLen += sepLen
		}
		window = append(window, p)
		windowLen += pLen
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, sep))
	}
	return chunks
}

func cutRunes(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// normalizeWhitespace collapses runs of spaces within lines and runs of
// blank lines into a single paragraph break.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = true
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		blank = false
	}
	return b.String()
}
