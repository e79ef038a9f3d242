package model

// Field names a claim attribute produced by extraction.
type Field string

const (
	FieldPolicyNumber     Field = "policy_number"
	FieldClaimantName     Field = "claimant_name"
	FieldDateOfLoss       Field = "date_of_loss"
	FieldAmountClaimed    Field = "amount_claimed"
	FieldClaimDescription Field = "claim_description"
)

// CoreFields lists the five fields every record carries, in output order.
var CoreFields = []Field{
	FieldPolicyNumber,
	FieldClaimantName,
	FieldDateOfLoss,
	FieldAmountClaimed,
	FieldClaimDescription,
}

// ClaimRecord is the structured result of extracting one claim document.
// Core fields serialize as null when absent; supplemental fields are omitted.
type ClaimRecord struct {
	PolicyNumber     *string `json:"policy_number"`     // Alphanumeric identifier, dashes allowed
	ClaimantName     *string `json:"claimant_name"`     // Person name as printed
	DateOfLoss       *string `json:"date_of_loss"`      // YYYY-MM-DD, or bare YYYY when only a year was found
	AmountClaimed    *string `json:"amount_claimed"`    // "INR 45000.00" or bare "45000.00"
	ClaimDescription *string `json:"claim_description"` // Free text describing the loss

	InsuredName         *string `json:"insured_name,omitempty"`
	Contact             *string `json:"contact,omitempty"`
	LocationOfLoss      *string `json:"location_of_loss,omitempty"`
	CauseOfLoss         *string `json:"cause_of_loss,omitempty"`
	ItemsDamaged        *string `json:"items_damaged,omitempty"`
	ClaimReference      *string `json:"claim_reference,omitempty"`
	RawClaimDescription *string `json:"raw_claim_description,omitempty"`
}

// Get returns the value of a core field and whether it is present.
func (r ClaimRecord) Get(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldPolicyNumber:
		p = r.PolicyNumber
	case FieldClaimantName:
		p = r.ClaimantName
	case FieldDateOfLoss:
		p = r.DateOfLoss
	case FieldAmountClaimed:
		p = r.AmountClaimed
	case FieldClaimDescription:
		p = r.ClaimDescription
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set assigns a core field. An empty value clears it.
func (r *ClaimRecord) Set(f Field, value string) {
	p := StringPtr(value)
	switch f {
	case FieldPolicyNumber:
		r.PolicyNumber = p
	case FieldClaimantName:
		r.ClaimantName = p
	case FieldDateOfLoss:
		r.DateOfLoss = p
	case FieldAmountClaimed:
		r.AmountClaimed = p
	case FieldClaimDescription:
		r.ClaimDescription = p
	}
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Tier records which stage of the cascade produced a value.
type Tier string

const (
	TierPoolPattern Tier = "pool-pattern" // Pattern matched inside the ranked pool
	TierFullPattern Tier = "full-pattern" // Pattern matched against the whole text
	TierFallback    Tier = "fallback"     // Field-specific heuristic
)

// FieldCandidate is an intermediate cascade result.
type FieldCandidate struct {
	Field Field  `json:"field"`
	Value string `json:"value"` // Selected capture group, trimmed
	Match string `json:"match"` // Entire matched text
	Tier  Tier   `json:"tier"`
}
