package retrieve

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDFRanker scores chunks by cosine similarity between TF-IDF vectors.
// The vocabulary and inverse document frequencies come from the chunks
// being ranked; the query is projected onto that vocabulary.
type TFIDFRanker struct{}

// NewTFIDFRanker creates a TF-IDF ranker.
func NewTFIDFRanker() *TFIDFRanker {
	return &TFIDFRanker{}
}

// Rank implements Ranker.
func (r *TFIDFRanker) Rank(chunks []model.Chunk, query string, topK int) []model.ScoredChunk {
	scored := make([]model.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = model.ScoredChunk{Chunk: c}
	}

	space := fitSpace(chunks)
	if space.degenerate() {
		return topByScore(scored, topK)
	}

	q := space.vector(tokenize(query))
	for i, c := range chunks {
		d := space.vector(tokenize(c.Text))
		scored[i].Score = cosine(q, d)
	}

	return topByScore(scored, topK)
}

// vectorSpace holds the fitted vocabulary with smoothed idf weights.
type vectorSpace struct {
	idf map[string]float64
}

// fitSpace builds the idf table. Corpora with fewer than two non-empty
// chunks are treated as a single empty placeholder document, which has an
// empty vocabulary and scores every chunk zero.
func fitSpace(chunks []model.Chunk) vectorSpace {
	docs := make([][]string, 0, len(chunks))
	nonEmpty := 0
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			nonEmpty++
		}
		docs = append(docs, tokenize(c.Text))
	}
	if nonEmpty < 2 {
		return vectorSpace{idf: map[string]float64{}}
	}

	df := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return vectorSpace{idf: idf}
}

func (s vectorSpace) degenerate() bool {
	return len(s.idf) == 0
}

// vector returns the L2-normalised tf-idf weights of tokens. Terms outside
// the vocabulary are ignored.
func (s vectorSpace) vector(tokens []string) map[string]float64 {
	v := make(map[string]float64)
	for _, t := range tokens {
		if w, ok := s.idf[t]; ok {
			v[t] += w
		}
	}

	var norm float64
	for _, w := range v {
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for t := range v {
		v[t] /= norm
	}
	return v
}

func cosine(a, b map[string]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for t, w := range a {
		dot += w * b[t]
	}
	return math.Max(0, math.Min(1, dot))
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
