package retrieve

import (
	"testing"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunksOf(texts ...string) []model.Chunk {
	out := make([]model.Chunk, len(texts))
	for i, t := range texts {
		out[i] = model.Chunk{Text: t, Index: i}
	}
	return out
}

func TestTFIDFRanker_RanksRelevantChunkFirst(t *testing.T) {
	chunks := chunksOf(
		"Hospital visiting hours and parking directions for visitors.",
		"Policy number PL-12345. Claimant name John Doe. Date of loss 2025-01-01.",
		"Terms and conditions apply to all riders of this document.",
	)

	ranked := NewTFIDFRanker().Rank(chunks, model.DefaultQuery, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestTFIDFRanker_TiesKeepOriginalOrder(t *testing.T) {
	chunks := chunksOf("alpha beta", "gamma delta", "epsilon zeta")

	ranked := NewTFIDFRanker().Rank(chunks, "policy number", 3)
	require.Len(t, ranked, 3)
	for i, r := range ranked {
		assert.Equal(t, i, r.Index)
		assert.Zero(t, r.Score)
	}
}

func TestTFIDFRanker_DegenerateCorpus(t *testing.T) {
	tests := []struct {
		name   string
		chunks []model.Chunk
	}{
		{"no chunks", nil},
		{"single empty chunk", chunksOf("")},
		{"single non-empty chunk", chunksOf("Policy Number: PL-1")},
		{"one non-empty among blanks", chunksOf("  ", "Policy Number: PL-1", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := NewTFIDFRanker().Rank(tt.chunks, model.DefaultQuery, 6)
			require.Len(t, ranked, len(tt.chunks))
			for i, r := range ranked {
				assert.Equal(t, i, r.Index)
				assert.Zero(t, r.Score)
			}
		})
	}
}

func TestTFIDFRanker_Deterministic(t *testing.T) {
	chunks := chunksOf(
		"claimant name and policy number",
		"amount claimed INR",
		"date of loss reported",
		"unrelated boilerplate",
	)
	r := NewTFIDFRanker()
	first := r.Rank(chunks, model.DefaultQuery, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Rank(chunks, model.DefaultQuery, 4))
	}
}

func TestPassthroughRanker(t *testing.T) {
	chunks := chunksOf("a", "b", "c", "d")

	ranked := PassthroughRanker{}.Rank(chunks, "ignored", 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Text)
	assert.Equal(t, "b", ranked[1].Text)

	all := PassthroughRanker{}.Rank(chunks, "ignored", 10)
	assert.Len(t, all, 4)
}

func TestNewRanker(t *testing.T) {
	assert.IsType(t, PassthroughRanker{}, NewRanker("none"))
	assert.IsType(t, &TFIDFRanker{}, NewRanker("tfidf"))
	assert.IsType(t, &TFIDFRanker{}, NewRanker(""))
}
