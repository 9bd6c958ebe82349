// internal/domain/analysis.go
package domain

// ConstraintType enumerates the kinds of exercise constraints a profile
// analysis may impose on exercise selection.
type ConstraintType string

const (
	ConstraintAvoidMovement     ConstraintType = "avoid_movement"
	ConstraintAvoidEquipment    ConstraintType = "avoid_equipment"
	ConstraintAvoidMuscle       ConstraintType = "avoid_muscle"
	ConstraintLimitLoad         ConstraintType = "limit_load"
	ConstraintRequireUnilateral ConstraintType = "require_unilateral"
)

// VolumeTarget is a weekly set target for one muscle group.
type VolumeTarget struct {
	MuscleGroup string `json:"muscle_group"`
	SetsPerWeek int    `json:"sets_per_week"`
	Priority    string `json:"priority"` // "high" | "medium" | "low"
}

// ExerciseConstraint restricts exercise selection, typically derived from
// injuries or equipment limitations.
type ExerciseConstraint struct {
	Type   ConstraintType `json:"type"`
	Value  string         `json:"value"`
	Reason string         `json:"reason,omitempty"`
}

// SessionStructure describes the shape of a single session in minutes and
// exercise counts.
type SessionStructure struct {
	WarmUpMin      int `json:"warm_up_min"`
	MainWorkMin    int `json:"main_work_min"`
	CoolDownMin    int `json:"cool_down_min"`
	TotalExercises int `json:"total_exercises"`
	CompoundCount  int `json:"compound_count"`
	IsolationCount int `json:"isolation_count"`
}

// ProfileAnalysis is the derived training recommendation produced once per
// generation attempt. SplitType and Periodization may be overridden by
// explicit request values; the override happens exactly once, before the
// analysis is shared with any downstream step.
type ProfileAnalysis struct {
	SplitType           SplitType            `json:"split_type"`
	Periodization       Periodization        `json:"periodization"`
	VolumeTargets       []VolumeTarget       `json:"volume_targets"`
	ExerciseConstraints []ExerciseConstraint `json:"exercise_constraints"`
	SessionStructure    SessionStructure     `json:"session_structure"`
	TrainingAge         Difficulty           `json:"training_age"`
	Notes               string               `json:"notes,omitempty"`
}

// ApplyOverrides copies explicit request overrides onto the analysis.
func (a *ProfileAnalysis) ApplyOverrides(req TrainingRequest) {
	if req.SplitOverride != "" {
		a.SplitType = req.SplitOverride
	}
	if req.PeriodizationOverride != "" {
		a.Periodization = req.PeriodizationOverride
	}
}
