// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotRole describes what job a slot does within a session.
type SlotRole string

const (
	RoleWarmUp            SlotRole = "warm_up"
	RolePrimaryCompound   SlotRole = "primary_compound"
	RoleSecondaryCompound SlotRole = "secondary_compound"
	RoleAccessory         SlotRole = "accessory"
	RoleIsolation         SlotRole = "isolation"
	RoleCoolDown          SlotRole = "cool_down"
)

// SlotTechnique describes how the sets of a slot are executed.
type SlotTechnique string

const (
	TechniqueStraightSet SlotTechnique = "straight_set"
	TechniqueSuperset    SlotTechnique = "superset"
	TechniqueDropset     SlotTechnique = "dropset"
	TechniqueGiantSet    SlotTechnique = "giant_set"
	TechniqueCircuit     SlotTechnique = "circuit"
	TechniqueRestPause   SlotTechnique = "rest_pause"
	TechniqueAMRAP       SlotTechnique = "amrap"
)

// SessionContext is the skeleton metadata for one training day before any
// exercise content exists. One is produced per (week, day) pair by the plan
// builder; its SlotPrefix is unique across the whole program.
type SessionContext struct {
	Week              int     `json:"week"`
	DayOfWeek         int     `json:"day_of_week"` // 1 (Mon) - 7 (Sun)
	Phase             string  `json:"phase"`
	IntensityModifier float64 `json:"intensity_modifier"`
	SessionLabel      string  `json:"session_label"`
	Focus             string  `json:"focus"`
	SlotPrefix        string  `json:"slot_prefix"`
}

// Slot is one exercise placement within a session: the prescription
// (sets/reps/rest) plus the exercise the generator put into it.
type Slot struct {
	ID              string        `json:"id"`
	Role            SlotRole      `json:"role"`
	MovementPattern string        `json:"movement_pattern,omitempty"`
	TargetMuscles   []string      `json:"target_muscles"`
	Sets            int           `json:"sets"`
	Reps            string        `json:"reps"` // numeric or range, e.g. "8" or "8-12"
	RestSeconds     int           `json:"rest_seconds"`
	RPETarget       *float64      `json:"rpe_target,omitempty"`
	Tempo           string        `json:"tempo,omitempty"`
	GroupTag        string        `json:"group_tag,omitempty"` // shared tag = superset/circuit membership
	Technique       SlotTechnique `json:"technique"`
	ExerciseID      string        `json:"exercise_id"`
	ExerciseName    string        `json:"exercise_name"`
	Notes           string        `json:"notes,omitempty"`
}

// SessionPlan is the direct output of one session-generation call: a labeled
// session with its ordered slots, exercises already assigned.
type SessionPlan struct {
	SessionLabel      string   `json:"session_label"`
	Focus             string   `json:"focus"`
	Slots             []Slot   `json:"slots"`
	SubstitutionNotes []string `json:"substitution_notes,omitempty"`
}

// ProgramDay is one reconciled training day.
type ProgramDay struct {
	DayOfWeek    int    `json:"day_of_week"`
	Phase        string `json:"phase"`
	SessionLabel string `json:"session_label"`
	Focus        string `json:"focus"`
	Slots        []Slot `json:"slots"`
}

// ProgramWeek groups the days of one calendar week.
type ProgramWeek struct {
	Week int          `json:"week"`
	Days []ProgramDay `json:"days"`
}

// ProgramSkeleton is the full reconciled structure: all session plans merged,
// grouped by week then sorted by day-of-week.
type ProgramSkeleton struct {
	SplitType     SplitType     `json:"split_type"`
	Periodization Periodization `json:"periodization"`
	TotalSessions int           `json:"total_sessions"`
	Notes         string        `json:"notes,omitempty"`
	Weeks         []ProgramWeek `json:"weeks"`
}

// SlotAssignment is the exercise half of a slot, keyed by slot id in an
// ExerciseAssignment.
type SlotAssignment struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	Notes        string `json:"notes,omitempty"`
}

// ExerciseAssignment is the flattened slot-to-exercise view across the whole
// skeleton. Derived during reconciliation, never independently authored.
type ExerciseAssignment struct {
	Slots             map[string]SlotAssignment `json:"slots"`
	SubstitutionNotes []string                  `json:"substitution_notes,omitempty"`
}

// ValidationSummary is the compact validation outcome embedded in the
// persisted program record so listings can show validation state without
// recomputation.
type ValidationSummary struct {
	Pass     bool   `bson:"pass" json:"pass"`
	Errors   int    `bson:"errors" json:"errors"`
	Warnings int    `bson:"warnings" json:"warnings"`
	Summary  string `bson:"summary" json:"summary"`
}

// Program is the persisted program record.
type Program struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	Name            string             `bson:"name" json:"name"`
	SplitType       SplitType          `bson:"splitType" json:"splitType"`
	Periodization   Periodization      `bson:"periodization" json:"periodization"`
	DurationWeeks   int                `bson:"durationWeeks" json:"durationWeeks"`
	SessionsPerWeek int                `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	TotalSessions   int                `bson:"totalSessions" json:"totalSessions"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Validation      ValidationSummary  `bson:"validation" json:"validation"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgramSlot is the persisted form of one slot, one row per slot across all
// weeks of a program.
type ProgramSlot struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID       primitive.ObjectID `bson:"programId" json:"programId"`
	SlotID          string             `bson:"slotId" json:"slotId"`
	Week            int                `bson:"week" json:"week"`
	DayOfWeek       int                `bson:"dayOfWeek" json:"dayOfWeek"`
	SessionLabel    string             `bson:"sessionLabel" json:"sessionLabel"`
	Role            SlotRole           `bson:"role" json:"role"`
	MovementPattern string             `bson:"movementPattern,omitempty" json:"movementPattern,omitempty"`
	TargetMuscles   []string           `bson:"targetMuscles,omitempty" json:"targetMuscles,omitempty"`
	Sets            int                `bson:"sets" json:"sets"`
	Reps            string             `bson:"reps" json:"reps"`
	RestSeconds     int                `bson:"restSeconds" json:"restSeconds"`
	RPETarget       *float64           `bson:"rpeTarget,omitempty" json:"rpeTarget,omitempty"`
	Tempo           string             `bson:"tempo,omitempty" json:"tempo,omitempty"`
	GroupTag        string             `bson:"groupTag,omitempty" json:"groupTag,omitempty"`
	Technique       SlotTechnique      `bson:"technique" json:"technique"`
	ExerciseID      string             `bson:"exerciseId" json:"exerciseId"`
	ExerciseName    string             `bson:"exerciseName" json:"exerciseName"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
