// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty is the ordered experience scale shared by exercises and clients.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyElite        Difficulty = "elite"
)

// DifficultyRank maps a difficulty onto the ordered scale
// beginner < intermediate < advanced < elite. Unknown values rank as beginner
// so a missing difficulty never produces a spurious mismatch.
func DifficultyRank(d Difficulty) int {
	switch d {
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	case DifficultyElite:
		return 3
	default:
		return 0
	}
}

// Exercise is a single entry in the exercise catalog.
type Exercise struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	CategoryTags      []string           `bson:"categoryTags,omitempty" json:"categoryTags,omitempty"` // e.g. "strength", "mobility"
	PrimaryMuscles    []string           `bson:"primaryMuscles" json:"primaryMuscles"`
	SecondaryMuscles  []string           `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles,omitempty"`
	Difficulty        Difficulty         `bson:"difficulty" json:"difficulty"`
	EquipmentRequired []string           `bson:"equipmentRequired,omitempty" json:"equipmentRequired,omitempty"`
	IsBodyweight      bool               `bson:"isBodyweight" json:"isBodyweight"`
	IsCompound        bool               `bson:"isCompound" json:"isCompound"`
	MovementPattern   string             `bson:"movementPattern,omitempty" json:"movementPattern,omitempty"` // e.g. "squat", "hinge", "horizontal_push"
	ForceType         string             `bson:"forceType,omitempty" json:"forceType,omitempty"`             // "push" | "pull" | "static"
	Laterality        string             `bson:"laterality,omitempty" json:"laterality,omitempty"`           // "bilateral" | "unilateral"
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CompressedExercise is the compact, generation-friendly projection of an
// Exercise. It is rebuilt from the catalog on every generation attempt and is
// the only exercise representation the prompts and the validator ever see.
type CompressedExercise struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	CategoryTags      []string   `json:"category_tags,omitempty"`
	PrimaryMuscles    []string   `json:"primary_muscles"`
	SecondaryMuscles  []string   `json:"secondary_muscles,omitempty"`
	Difficulty        Difficulty `json:"difficulty"`
	EquipmentRequired []string   `json:"equipment_required,omitempty"`
	IsBodyweight      bool       `json:"is_bodyweight"`
	IsCompound        bool       `json:"is_compound"`
	MovementPattern   string     `json:"movement_pattern,omitempty"`
	ForceType         string     `json:"force_type,omitempty"`
	Laterality        string     `json:"laterality,omitempty"`
}
