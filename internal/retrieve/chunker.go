// Package retrieve splits OCR text into chunks and ranks them against a query.
package retrieve

import "github.com/ppiankov/claimlens/internal/model"

// DefaultChunkSize is the chunk length in characters.
const DefaultChunkSize = 1000

// Chunk splits text into consecutive, non-overlapping slices of size
// characters. The final chunk may be shorter. Empty text yields one empty chunk.
func Chunk(text string, size int) []model.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return []model.Chunk{{Text: "", Index: 0}}
	}

	chunks := make([]model.Chunk, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, model.Chunk{
			Text:  string(runes[start:end]),
			Index: len(chunks),
		})
	}
	return chunks
}
