package repository

import (
	"context"

	"pulsefit/program-engine/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ExerciseRepository reads the exercise catalog. The pipeline fetches the
// complete active set once per attempt; no pagination contract is assumed.
type ExerciseRepository interface {
	GetAllActive(ctx context.Context) ([]domain.Exercise, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
}

// ClientProfileRepository reads client profiles by client id. Absence is a
// valid, non-error outcome surfaced as ErrNotFound.
type ClientProfileRepository interface {
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ClientProfile, error)
}

// ProgramRepository persists generated programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Program, error)
}

// ProgramSlotRepository persists the per-slot exercise assignments of a
// program, one row per slot.
type ProgramSlotRepository interface {
	Create(ctx context.Context, slot *domain.ProgramSlot) (primitive.ObjectID, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramSlot, error)
}

// GenerationLogRepository owns the attempt observability records. One row per
// attempt: created at start, updated exactly once at terminal state.
type GenerationLogRepository interface {
	Create(ctx context.Context, log *domain.GenerationLog) (primitive.ObjectID, error)
	MarkCompleted(ctx context.Context, id primitive.ObjectID, outputSummary string, tokensUsed int, durationMs int64) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, errorMessage string, tokensUsed int, durationMs int64) error
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.GenerationLog, error)
}
