// Package chunker slices document text into fixed-size pieces.
package chunker

import "errors"

// DefaultMaxLength is the chunk size used by the summary pipeline.
const DefaultMaxLength = 1000

var ErrInvalidMaxLength = errors.New("max length must be positive")

// Split cuts text into consecutive chunks of maxLength characters. Lengths
// are counted in runes so multibyte text is never cut mid-character. Only
// the last chunk may be shorter. Empty text yields no chunks.
func Split(text string, maxLength int) ([]string, error) {
	if maxLength <= 0 {
		return nil, ErrInvalidMaxLength
	}

	if text == "" {
		return nil, nil
	}

	chunks := make([]string, 0, len(text)/maxLength+1)

	start := 0
	count := 0
	for i := range text {
		if count == maxLength {
			chunks = append(chunks, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	chunks = append(chunks, text[start:])

	return chunks, nil
}
