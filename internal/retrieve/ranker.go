package retrieve

import (
	"sort"

	"github.com/ppiankov/claimlens/internal/model"
)

// DefaultTopK is the number of chunks kept in the candidate pool.
const DefaultTopK = 6

// Ranker orders chunks by relevance to a query.
type Ranker interface {
	// Rank returns at most topK chunks, most relevant first.
	// Chunks with equal scores keep their original order.
	Rank(chunks []model.Chunk, query string, topK int) []model.ScoredChunk
}

// PassthroughRanker keeps the original chunk order. It is the no-op ranker
// used when relevance ranking is switched off.
type PassthroughRanker struct{}

// Rank returns the first topK chunks with a zero score.
func (PassthroughRanker) Rank(chunks []model.Chunk, _ string, topK int) []model.ScoredChunk {
	n := limit(len(chunks), topK)
	out := make([]model.ScoredChunk, n)
	for i := 0; i < n; i++ {
		out[i] = model.ScoredChunk{Chunk: chunks[i]}
	}
	return out
}

// NewRanker returns the ranker registered under name ("tfidf" or "none").
// Unknown names fall back to TF-IDF.
func NewRanker(name string) Ranker {
	switch name {
	case "none", "passthrough", "off":
		return PassthroughRanker{}
	default:
		return NewTFIDFRanker()
	}
}

func limit(n, topK int) int {
	if topK <= 0 || topK > n {
		return n
	}
	return topK
}

// topByScore sorts a copy of scored descending by score (stable) and truncates.
func topByScore(scored []model.ScoredChunk, topK int) []model.ScoredChunk {
	out := make([]model.ScoredChunk, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out[:limit(len(out), topK)]
}
