package chunker

import (
	"log"
	"strings"
	"unicode/utf8"
)

// maxTextLen caps raw input before chunking so a pathological upload cannot
// exhaust memory. Excess is truncated with a warning, not an error.
const maxTextLen = 10_000_000

// sentence-terminal separators, tried in order when shrinking a window back
// to a sentence boundary.
var separators = []string{". ", "! ", "? ", "\n"}

type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunker splits cleaned text into overlapping segments, preferring to end
// each segment at a sentence boundary.
type Chunker struct {
	config Config
}

func NewWithConfig(config Config) Chunker {
	if config.ChunkSize == 0 {
		config.ChunkSize = 400
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 100
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 4
	}
	return Chunker{config: config}
}

// Split scans left to right over text. Each window is at most ChunkSize
// characters; if the window ends before the end of the text, the cut is moved
// back to the last sentence separator found after the window's midpoint.
// Consecutive windows overlap by up to ChunkOverlap characters; windows and
// cuts always fall on rune boundaries. Splitting the same text twice yields
// identical chunks.
func (c Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) > maxTextLen {
		log.Printf("warning: text too large (%d chars), truncating to %d", len(text), maxTextLen)
		text = text[:maxTextLen]
	}

	size := c.config.ChunkSize
	overlap := c.config.ChunkOverlap

	var chunks []string
	start := 0
	n := len(text)

	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			for _, sep := range separators {
				if i := strings.LastIndex(text[start:end], sep); i != -1 && i > size/2 {
					end = start + i + len(sep)
					break
				}
			}
			// A hard cut is byte-indexed and may land inside a rune; back it
			// up so every chunk is valid UTF-8.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				_, w := utf8.DecodeRuneInString(text[start:])
				end = start + w
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= n {
			break
		}

		// The next window must start on a rune boundary and must advance: a
		// sentence-boundary cut can leave the window narrower than the
		// overlap, in which case the overlap is skipped for that boundary.
		next := end - overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
