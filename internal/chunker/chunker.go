// Package chunker splits extracted text into overlapping fixed-size windows.
package chunker

import "fmt"

// Chunker emits sliding windows of size characters, each advancing by
// size-overlap from the previous one.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. overlap >= size would make the window
// stop advancing, so it is rejected here rather than tolerated.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be strictly less than size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into windows in left-to-right order. Windows cover
// runes, not bytes, so multibyte text is never split mid-character. The
// final window may be shorter than size; it is emitted exactly once and
// the loop stops, so no chunk is ever contained in its predecessor. Empty
// text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := c.size - c.overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)

	for start := 0; ; start += step {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Size returns the configured window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int { return c.overlap }
