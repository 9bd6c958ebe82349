package generation

import (
	"fmt"
	"strings"

	"pulsefit/program-engine/internal/domain"
)

// Validate runs every rule-based check against a reconciled program. Pure and
// deterministic: no I/O, the checks are independent and never short-circuit
// each other, and issue order follows skeleton order (week, day, slot).
//
// Pass is true iff no issue of type error was found; warnings never block.
func Validate(
	skeleton domain.ProgramSkeleton,
	assignment domain.ExerciseAssignment,
	analysis domain.ProfileAnalysis,
	library []domain.CompressedExercise,
	clientEquipment []string,
	clientLevel domain.Difficulty,
) domain.ValidationResult {
	byID := make(map[string]domain.CompressedExercise, len(library))
	for _, ex := range library {
		byID[ex.ID] = ex
	}
	available := NormalizeEquipmentSet(clientEquipment)

	var issues []domain.ValidationIssue

	for _, week := range skeleton.Weeks {
		for _, day := range week.Days {
			seen := make(map[string][]string) // exercise id -> slot ids within this day
			var seenOrder []string

			for _, slot := range day.Slots {
				assigned, ok := assignment.Slots[slot.ID]
				if !ok || assigned.ExerciseID == "" {
					issues = append(issues, domain.ValidationIssue{
						Type:     domain.IssueError,
						Category: domain.IssueMissingExercise,
						Message:  fmt.Sprintf("slot %s has no exercise assigned", slot.ID),
						SlotID:   slot.ID,
					})
					continue
				}

				ex, found := byID[assigned.ExerciseID]
				if !found {
					issues = append(issues, domain.ValidationIssue{
						Type:     domain.IssueError,
						Category: domain.IssueMissingExercise,
						Message:  fmt.Sprintf("slot %s references unknown exercise %q (%s)", slot.ID, assigned.ExerciseID, assigned.ExerciseName),
						SlotID:   slot.ID,
					})
					continue
				}

				if _, dup := seen[ex.ID]; !dup {
					seenOrder = append(seenOrder, ex.ID)
				}
				seen[ex.ID] = append(seen[ex.ID], slot.ID)

				issues = append(issues, checkEquipment(slot.ID, ex, available)...)
				issues = append(issues, checkConstraints(slot.ID, ex, analysis.ExerciseConstraints)...)
				issues = append(issues, checkDifficulty(slot.ID, ex, clientLevel)...)
			}

			// One duplicate issue per (day, exercise) pair, however many slots
			// repeat it. First-seen order keeps the issue list deterministic.
			for _, exID := range seenOrder {
				if slotIDs := seen[exID]; len(slotIDs) > 1 {
					issues = append(issues, domain.ValidationIssue{
						Type:     domain.IssueError,
						Category: domain.IssueDuplicateExercise,
						Message: fmt.Sprintf("exercise %q appears in %d slots on week %d day %d (%s)",
							byID[exID].Name, len(slotIDs), week.Week, day.DayOfWeek, strings.Join(slotIDs, ", ")),
						SlotID: slotIDs[0],
					})
				}
			}
		}
	}

	errCount, warnCount := domain.ValidationResult{Issues: issues}.Counts()
	return domain.ValidationResult{
		Pass:    errCount == 0,
		Issues:  issues,
		Summary: domain.Summarize(errCount, warnCount),
	}
}

// checkEquipment flags every required equipment item the client does not
// have, one issue per (slot, missing item) pair. Bodyweight exercises always
// pass.
func checkEquipment(slotID string, ex domain.CompressedExercise, available map[string]struct{}) []domain.ValidationIssue {
	if ex.IsBodyweight {
		return nil
	}
	var issues []domain.ValidationIssue
	for _, item := range ex.EquipmentRequired {
		canonical := NormalizeEquipment(item)
		if _, ok := available[canonical]; !ok {
			issues = append(issues, domain.ValidationIssue{
				Type:     domain.IssueError,
				Category: domain.IssueEquipmentViolation,
				Message:  fmt.Sprintf("exercise %q requires %q which the client does not have", ex.Name, canonical),
				SlotID:   slotID,
			})
		}
	}
	return issues
}

// checkConstraints flags exercises that collide with avoid_movement or
// avoid_muscle constraints from the profile analysis.
func checkConstraints(slotID string, ex domain.CompressedExercise, constraints []domain.ExerciseConstraint) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, c := range constraints {
		switch c.Type {
		case domain.ConstraintAvoidMovement:
			if ex.MovementPattern != "" && strings.EqualFold(ex.MovementPattern, c.Value) {
				issues = append(issues, domain.ValidationIssue{
					Type:     domain.IssueError,
					Category: domain.IssueInjuryConflict,
					Message:  fmt.Sprintf("exercise %q uses avoided movement pattern %q (%s)", ex.Name, c.Value, c.Reason),
					SlotID:   slotID,
				})
			}
		case domain.ConstraintAvoidMuscle:
			if muscleTargeted(ex, c.Value) {
				issues = append(issues, domain.ValidationIssue{
					Type:     domain.IssueError,
					Category: domain.IssueInjuryConflict,
					Message:  fmt.Sprintf("exercise %q targets avoided muscle %q (%s)", ex.Name, c.Value, c.Reason),
					SlotID:   slotID,
				})
			}
		}
	}
	return issues
}

func muscleTargeted(ex domain.CompressedExercise, muscle string) bool {
	for _, m := range ex.PrimaryMuscles {
		if strings.EqualFold(m, muscle) {
			return true
		}
	}
	for _, m := range ex.SecondaryMuscles {
		if strings.EqualFold(m, muscle) {
			return true
		}
	}
	return false
}

// checkDifficulty warns when an exercise sits more than one step above the
// client on the ordered difficulty scale.
func checkDifficulty(slotID string, ex domain.CompressedExercise, clientLevel domain.Difficulty) []domain.ValidationIssue {
	if domain.DifficultyRank(ex.Difficulty)-domain.DifficultyRank(clientLevel) <= 1 {
		return nil
	}
	return []domain.ValidationIssue{{
		Type:     domain.IssueWarning,
		Category: domain.IssueDifficultyMismatch,
		Message:  fmt.Sprintf("exercise %q (%s) is above the client's %s level", ex.Name, ex.Difficulty, clientLevel),
		SlotID:   slotID,
	}}
}
