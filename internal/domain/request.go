// internal/domain/request.go
package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SplitType is the recommended (or requested) weekly training split.
type SplitType string

const (
	SplitFullBody     SplitType = "full_body"
	SplitUpperLower   SplitType = "upper_lower"
	SplitPushPullLegs SplitType = "push_pull_legs"
	SplitBodyPart     SplitType = "body_part"
)

// Periodization is the scheme governing phase and intensity across weeks.
type Periodization string

const (
	PeriodizationLinear     Periodization = "linear"
	PeriodizationUndulating Periodization = "undulating"
	PeriodizationBlock      Periodization = "block"
)

// TrainingRequest is the immutable input to one generation attempt.
type TrainingRequest struct {
	ClientID             primitive.ObjectID `bson:"clientId" json:"client_id"`
	Goals                []string           `bson:"goals" json:"goals"`
	DurationWeeks        int                `bson:"durationWeeks" json:"duration_weeks"`
	SessionsPerWeek      int                `bson:"sessionsPerWeek" json:"sessions_per_week"`
	SessionLengthMinutes int                `bson:"sessionLengthMinutes" json:"session_length_minutes"`
	// Optional overrides. When set they take precedence over the generated
	// ProfileAnalysis and propagate to every downstream step.
	SplitOverride         SplitType     `bson:"splitOverride,omitempty" json:"split_override,omitempty"`
	PeriodizationOverride Periodization `bson:"periodizationOverride,omitempty" json:"periodization_override,omitempty"`
	EquipmentOverride     []string      `bson:"equipmentOverride,omitempty" json:"equipment_override,omitempty"`
	Instructions          string        `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// Validate checks the structural constraints on a request before any external
// call is made.
func (r TrainingRequest) Validate() error {
	if r.ClientID == primitive.NilObjectID {
		return errors.New("client id is required")
	}
	if len(r.Goals) == 0 {
		return errors.New("at least one goal is required")
	}
	if r.DurationWeeks < 1 {
		return fmt.Errorf("duration_weeks must be >= 1, got %d", r.DurationWeeks)
	}
	if r.SessionsPerWeek < 1 || r.SessionsPerWeek > 7 {
		return fmt.Errorf("sessions_per_week must be in 1..7, got %d", r.SessionsPerWeek)
	}
	return nil
}
