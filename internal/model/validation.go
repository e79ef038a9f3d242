package model

// IssueKind identifies a validation rule that failed.
type IssueKind string

const (
	IssuePolicyMissingOrInvalid IssueKind = "policy_number_missing_or_invalid"
	IssueDateMissing            IssueKind = "date_of_loss_missing"
	IssueDateUnparseable        IssueKind = "date_of_loss_unparseable"
	IssueAmountMissing          IssueKind = "amount_missing"
	IssueAmountUnparseable      IssueKind = "amount_unparseable"
	IssueAmountNonPositive      IssueKind = "amount_non_positive"
)

// ValidationResult is the rule-based assessment of a ClaimRecord.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Score  float64     `json:"score"`  // 1.0 minus deductions, floored at 0
	Issues []IssueKind `json:"issues"` // In evaluation order, never null
}

// HasIssue reports whether kind is among the result's issues.
func (v ValidationResult) HasIssue(kind IssueKind) bool {
	for _, i := range v.Issues {
		if i == kind {
			return true
		}
	}
	return false
}
