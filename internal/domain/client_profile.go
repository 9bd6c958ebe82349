// internal/domain/client_profile.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientProfile holds the questionnaire-derived facts about a client that the
// generation pipeline reads. Absence of a profile is a valid state: the
// pipeline falls back to a documented default context.
type ClientProfile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	ExperienceLevel Difficulty         `bson:"experienceLevel" json:"experienceLevel"`
	Goals           []string           `bson:"goals,omitempty" json:"goals,omitempty"`
	Equipment       []string           `bson:"equipment,omitempty" json:"equipment,omitempty"` // free-text, normalized on use
	Injuries        []string           `bson:"injuries,omitempty" json:"injuries,omitempty"`
	PreferredDays   []int              `bson:"preferredDays,omitempty" json:"preferredDays,omitempty"` // 1 (Mon) - 7 (Sun)
	Age             int                `bson:"age,omitempty" json:"age,omitempty"`
	Sex             string             `bson:"sex,omitempty" json:"sex,omitempty"`
	HeightCm        float64            `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg        float64            `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
