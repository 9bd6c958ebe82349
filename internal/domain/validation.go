// internal/domain/validation.go
package domain

import "fmt"

// IssueType distinguishes blocking errors from advisory warnings.
type IssueType string

const (
	IssueError   IssueType = "error"
	IssueWarning IssueType = "warning"
)

// IssueCategory is the fixed set of validation issue categories.
type IssueCategory string

const (
	IssueEquipmentViolation     IssueCategory = "equipment_violation"
	IssueInjuryConflict         IssueCategory = "injury_conflict"
	IssueDuplicateExercise      IssueCategory = "duplicate_exercise"
	IssueDifficultyMismatch     IssueCategory = "difficulty_mismatch"
	IssueMissingExercise        IssueCategory = "missing_exercise"
	IssueMuscleImbalance        IssueCategory = "muscle_imbalance"
	IssueMissingMovementPattern IssueCategory = "missing_movement_pattern"
	IssueVolume                 IssueCategory = "volume_issue"
	IssueRestPeriod             IssueCategory = "rest_period"
)

// ValidationIssue is one finding from the validation engine.
type ValidationIssue struct {
	Type     IssueType     `json:"type"`
	Category IssueCategory `json:"category"`
	Message  string        `json:"message"`
	SlotID   string        `json:"slot_id,omitempty"`
}

// ValidationResult is the full outcome of a validation run. Pass is true iff
// the issue list contains zero entries of type error; warnings never block.
type ValidationResult struct {
	Pass    bool              `json:"pass"`
	Issues  []ValidationIssue `json:"issues"`
	Summary string            `json:"summary"`
}

// Counts returns the number of errors and warnings in the result.
func (r ValidationResult) Counts() (errors, warnings int) {
	for _, issue := range r.Issues {
		if issue.Type == IssueError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Summarize returns the one-line human-readable count, e.g. "2 errors, 1 warning".
func Summarize(errors, warnings int) string {
	return fmt.Sprintf("%s, %s", plural(errors, "error"), plural(warnings, "warning"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
