// internal/domain/generation_log.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationStatus is the lifecycle state of one generation attempt.
type GenerationStatus string

const (
	GenerationStatusGenerating GenerationStatus = "generating"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// GenerationLog is the append-only observability record for one attempt.
// It is created with status "generating" before any external call and updated
// exactly once when the attempt reaches a terminal state. The pipeline owns
// it exclusively and never reads it back.
type GenerationLog struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AttemptID     string             `bson:"attemptId" json:"attemptId"` // correlation id, also keys the raw-payload archive
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"`
	Status        GenerationStatus   `bson:"status" json:"status"`
	Request       TrainingRequest    `bson:"request" json:"request"`
	OutputSummary string             `bson:"outputSummary,omitempty" json:"outputSummary,omitempty"`
	ErrorMessage  string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	TokensUsed    int                `bson:"tokensUsed" json:"tokensUsed"`
	DurationMs    int64              `bson:"durationMs" json:"durationMs"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
