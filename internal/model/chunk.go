package model

// Document is OCR text for a single claim document.
type Document struct {
	ID          string `json:"id"`
	Source      string `json:"source"`                 // Path or URI the text was read from
	Text        string `json:"-"`                      // Raw OCR text
	ContentType string `json:"content_type,omitempty"` // text/plain, text/html (hOCR)
}

// Chunk is a contiguous slice of a document's text.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// ScoredChunk pairs a chunk with its relevance to the retrieval query.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"` // Cosine similarity in [0, 1]
}
