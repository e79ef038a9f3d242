// Package validate scores extracted claim records against fixed rules and
// checks hosted-model output against the claim JSON schema.
package validate

import (
	"regexp"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/normalize"
)

const (
	// ValidThreshold is the minimum score, in points, for a valid record.
	ValidThreshold = 70

	fullScore     = 100
	policyPenalty = 40
	datePenalty   = 30
	amountPenalty = 30
)

var (
	policyShape = regexp.MustCompile(`^[A-Z0-9-]{5,}$`)
	yearOnly    = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// rule is a single deduction. check returns true when the rule fires.
type rule struct {
	issue   model.IssueKind
	penalty int
	check   func(model.ClaimRecord) bool
}

// Validator applies the deduction rules in a fixed order.
type Validator struct {
	rules []rule
}

// NewValidator creates a validator with the standard rules.
func NewValidator() *Validator {
	return &Validator{
		rules: []rule{
			{model.IssuePolicyMissingOrInvalid, policyPenalty, policyInvalid},
			{model.IssueDateMissing, datePenalty, dateMissing},
			{model.IssueDateUnparseable, datePenalty, dateUnparseable},
			{model.IssueAmountMissing, amountPenalty, amountMissing},
			{model.IssueAmountUnparseable, amountPenalty, amountUnparseable},
			{model.IssueAmountNonPositive, amountPenalty, amountNonPositive},
		},
	}
}

// Validate scores rec. It never mutates the record and never fails.
func (v *Validator) Validate(rec model.ClaimRecord) model.ValidationResult {
	points := fullScore
	issues := make([]model.IssueKind, 0, len(v.rules))

	for _, r := range v.rules {
		if r.check(rec) {
			points -= r.penalty
			issues = append(issues, r.issue)
		}
	}

	points = max(points, 0)
	return model.ValidationResult{
		Valid:  points >= ValidThreshold,
		Score:  float64(points) / fullScore,
		Issues: issues,
	}
}

// Validate scores rec with the standard rules.
func Validate(rec model.ClaimRecord) model.ValidationResult {
	return NewValidator().Validate(rec)
}

func policyInvalid(rec model.ClaimRecord) bool {
	return rec.PolicyNumber == nil || !policyShape.MatchString(*rec.PolicyNumber)
}

func dateMissing(rec model.ClaimRecord) bool {
	return rec.DateOfLoss == nil
}

func dateUnparseable(rec model.ClaimRecord) bool {
	if rec.DateOfLoss == nil {
		return false
	}
	if yearOnly.MatchString(*rec.DateOfLoss) {
		return false
	}
	_, ok := normalize.ParseTime(*rec.DateOfLoss)
	return !ok
}

func amountMissing(rec model.ClaimRecord) bool {
	return rec.AmountClaimed == nil
}

func amountUnparseable(rec model.ClaimRecord) bool {
	if rec.AmountClaimed == nil {
		return false
	}
	_, ok := normalize.ParseAmount(*rec.AmountClaimed)
	return !ok
}

func amountNonPositive(rec model.ClaimRecord) bool {
	if rec.AmountClaimed == nil {
		return false
	}
	v, ok := normalize.ParseAmount(*rec.AmountClaimed)
	return ok && v <= 0
}
