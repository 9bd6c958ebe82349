package generation

import (
	"testing"

	"pulsefit/program-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleDaySkeleton(slotIDs ...string) domain.ProgramSkeleton {
	slots := make([]domain.Slot, len(slotIDs))
	for i, id := range slotIDs {
		slots[i] = domain.Slot{ID: id, Role: domain.RolePrimaryCompound, Sets: 3, Reps: "8"}
	}
	return domain.ProgramSkeleton{
		Weeks: []domain.ProgramWeek{{
			Week: 1,
			Days: []domain.ProgramDay{{DayOfWeek: 1, SessionLabel: "Full Body", Slots: slots}},
		}},
	}
}

func assignments(pairs map[string]string) domain.ExerciseAssignment {
	slots := make(map[string]domain.SlotAssignment, len(pairs))
	for slotID, exID := range pairs {
		slots[slotID] = domain.SlotAssignment{ExerciseID: exID, ExerciseName: exID}
	}
	return domain.ExerciseAssignment{Slots: slots}
}

func issuesOf(result domain.ValidationResult, cat domain.IssueCategory) []domain.ValidationIssue {
	var out []domain.ValidationIssue
	for _, issue := range result.Issues {
		if issue.Category == cat {
			out = append(out, issue)
		}
	}
	return out
}

var testLibrary = []domain.CompressedExercise{
	{
		ID:                "squat",
		Name:              "Barbell Back Squat",
		PrimaryMuscles:    []string{"quads", "glutes"},
		Difficulty:        domain.DifficultyIntermediate,
		EquipmentRequired: []string{"Barbell", "Squat Rack"},
		MovementPattern:   "squat",
	},
	{
		ID:                "goblet",
		Name:              "Goblet Squat",
		PrimaryMuscles:    []string{"quads"},
		Difficulty:        domain.DifficultyBeginner,
		EquipmentRequired: []string{"dumbbell"},
		MovementPattern:   "squat",
	},
	{
		ID:             "pushup",
		Name:           "Push-Up",
		PrimaryMuscles: []string{"chest"},
		Difficulty:     domain.DifficultyBeginner,
		IsBodyweight:   true,
	},
	{
		ID:                "snatch",
		Name:              "Barbell Snatch",
		PrimaryMuscles:    []string{"full body"},
		Difficulty:        domain.DifficultyAdvanced,
		EquipmentRequired: []string{"barbell"},
		MovementPattern:   "hinge",
	},
}

func TestValidate_CleanProgramPasses(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1", "w1d1-s2")
	assignment := assignments(map[string]string{"w1d1-s1": "goblet", "w1d1-s2": "pushup"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		[]string{"dumbbell"}, domain.DifficultyBeginner)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "0 errors, 0 warnings", result.Summary)
}

func TestValidate_UnassignedSlotIsMissingExercise(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1", "w1d1-s2")
	assignment := assignments(map[string]string{"w1d1-s1": "pushup"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		nil, domain.DifficultyBeginner)

	require.False(t, result.Pass)
	missing := issuesOf(result, domain.IssueMissingExercise)
	require.Len(t, missing, 1)
	assert.Equal(t, domain.IssueError, missing[0].Type)
	assert.Equal(t, "w1d1-s2", missing[0].SlotID)
}

func TestValidate_UnknownExerciseIDIsMissingExercise(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "made-up-id"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		nil, domain.DifficultyBeginner)

	assert.False(t, result.Pass)
	assert.Len(t, issuesOf(result, domain.IssueMissingExercise), 1)
}

func TestValidate_EquipmentViolationPerMissingItem(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "squat"})

	// Client only has dumbbells: both barbell and squat_rack are flagged.
	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		[]string{"dumbbells"}, domain.DifficultyIntermediate)

	require.False(t, result.Pass)
	violations := issuesOf(result, domain.IssueEquipmentViolation)
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0].Message, "barbell")
	assert.Contains(t, violations[1].Message, "squat_rack")
}

func TestValidate_EquipmentMatchedThroughNormalization(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "squat"})

	// "BB" and "Squat-Rack" normalize to the catalog's canonical names.
	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		[]string{"BB", "Squat-Rack"}, domain.DifficultyIntermediate)

	assert.True(t, result.Pass)
	assert.Empty(t, issuesOf(result, domain.IssueEquipmentViolation))
}

func TestValidate_BodyweightExemptFromEquipmentCheck(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "pushup"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		nil, domain.DifficultyBeginner)

	assert.True(t, result.Pass)
}

func TestValidate_DuplicateOnSameDayFlaggedOnce(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1", "w1d1-s2", "w1d1-s3")
	assignment := assignments(map[string]string{
		"w1d1-s1": "pushup",
		"w1d1-s2": "pushup",
		"w1d1-s3": "pushup",
	})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		nil, domain.DifficultyBeginner)

	require.False(t, result.Pass)
	dups := issuesOf(result, domain.IssueDuplicateExercise)
	require.Len(t, dups, 1)
	assert.Equal(t, "w1d1-s1", dups[0].SlotID)
}

func TestValidate_SameExerciseOnDifferentDaysAllowed(t *testing.T) {
	skeleton := domain.ProgramSkeleton{
		Weeks: []domain.ProgramWeek{{
			Week: 1,
			Days: []domain.ProgramDay{
				{DayOfWeek: 1, Slots: []domain.Slot{{ID: "w1d1-s1"}}},
				{DayOfWeek: 3, Slots: []domain.Slot{{ID: "w1d3-s1"}}},
			},
		}},
	}
	assignment := assignments(map[string]string{"w1d1-s1": "pushup", "w1d3-s1": "pushup"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		nil, domain.DifficultyBeginner)

	assert.True(t, result.Pass)
	assert.Empty(t, issuesOf(result, domain.IssueDuplicateExercise))
}

func TestValidate_AvoidMovementConstraint(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "goblet"})
	analysis := domain.ProfileAnalysis{
		ExerciseConstraints: []domain.ExerciseConstraint{
			{Type: domain.ConstraintAvoidMovement, Value: "squat", Reason: "knee injury"},
		},
	}

	result := Validate(skeleton, assignment, analysis, testLibrary,
		[]string{"dumbbell"}, domain.DifficultyBeginner)

	require.False(t, result.Pass)
	conflicts := issuesOf(result, domain.IssueInjuryConflict)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Message, "knee injury")
}

func TestValidate_AvoidMuscleConstraintChecksSecondary(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "goblet"})
	analysis := domain.ProfileAnalysis{
		ExerciseConstraints: []domain.ExerciseConstraint{
			{Type: domain.ConstraintAvoidMuscle, Value: "Quads", Reason: "strain"},
		},
	}

	result := Validate(skeleton, assignment, analysis, testLibrary,
		[]string{"dumbbell"}, domain.DifficultyBeginner)

	assert.False(t, result.Pass)
	assert.Len(t, issuesOf(result, domain.IssueInjuryConflict), 1)
}

func TestValidate_DifficultyGapWarning(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "snatch"})

	// Advanced exercise for a beginner: two steps up, warn but do not fail.
	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		[]string{"barbell"}, domain.DifficultyBeginner)

	assert.True(t, result.Pass)
	warnings := issuesOf(result, domain.IssueDifficultyMismatch)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.IssueWarning, warnings[0].Type)
	assert.Equal(t, "0 errors, 1 warning", result.Summary)
}

func TestValidate_OneStepDifficultyGapAccepted(t *testing.T) {
	skeleton := singleDaySkeleton("w1d1-s1")
	assignment := assignments(map[string]string{"w1d1-s1": "squat"})

	result := Validate(skeleton, assignment, domain.ProfileAnalysis{}, testLibrary,
		[]string{"barbell", "squat rack"}, domain.DifficultyBeginner)

	assert.True(t, result.Pass)
	assert.Empty(t, issuesOf(result, domain.IssueDifficultyMismatch))
}
