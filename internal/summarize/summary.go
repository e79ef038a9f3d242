// Package summarize builds a short extractive summary of claim text by
// word-frequency sentence scoring.
package summarize

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSentences is the number of sentences kept.
const DefaultSentences = 3

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Summarize returns the n highest-scoring sentences of text joined by a
// space, highest score first. Ties keep document order.
func Summarize(text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}

	freq := make(map[string]int)
	for _, w := range words(text) {
		freq[w]++
	}

	type scored struct {
		text  string
		score int
	}
	var sentences []scored
	seen := make(map[string]bool)
	for _, s := range splitSentences(text) {
		if seen[s] {
			continue
		}
		seen[s] = true
		total := 0
		for _, w := range words(s) {
			total += freq[w]
		}
		sentences = append(sentences, scored{text: s, score: total})
	}

	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].score > sentences[j].score
	})

	top := make([]string, 0, n)
	for i := 0; i < len(sentences) && i < n; i++ {
		top = append(top, sentences[i].text)
	}
	return strings.Join(top, " ")
}

func words(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// splitSentences splits on '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && text[i+1] == ' ' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
