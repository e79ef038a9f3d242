package model

import "time"

// Report is the per-document output of the pipeline.
type Report struct {
	DocumentID  string           `json:"document_id"`
	Source      string           `json:"source"`
	ExtractedAt time.Time        `json:"extracted_at"`
	Record      ClaimRecord      `json:"record"`
	Validation  ValidationResult `json:"validation"`
	Summary     string           `json:"summary,omitempty"` // Local extractive summary
	Cached      bool             `json:"cached,omitempty"`  // Served from the result cache

	Model *ModelResult `json:"model,omitempty"` // Optional hosted-model extraction, validated separately
}

// ModelResult holds the hosted-model extraction path.
// It never replaces the rule-based record.
type ModelResult struct {
	Enabled    bool              `json:"enabled"`
	Provider   string            `json:"provider,omitempty"`
	Model      string            `json:"model,omitempty"`
	Record     *ClaimRecord      `json:"record,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	TokensUsed int               `json:"tokens_used,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}
