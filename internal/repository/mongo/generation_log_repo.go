package mongo

import (
	"context"
	"errors"
	"time"

	"pulsefit/program-engine/internal/domain"
	"pulsefit/program-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const generationLogCollectionName = "generation_logs"

// mongoGenerationLogRepository implements repository.GenerationLogRepository
type mongoGenerationLogRepository struct {
	collection *mongo.Collection
}

// NewMongoGenerationLogRepository creates a new GenerationLog repository backed by MongoDB.
func NewMongoGenerationLogRepository(db *mongo.Database) repository.GenerationLogRepository {
	return &mongoGenerationLogRepository{
		collection: db.Collection(generationLogCollectionName),
	}
}

// Create inserts the attempt row. Called before any external call so a crash
// mid-pipeline is still observable.
func (r *mongoGenerationLogRepository) Create(ctx context.Context, log *domain.GenerationLog) (primitive.ObjectID, error) {
	if log.ClientID == primitive.NilObjectID || log.AttemptID == "" {
		return primitive.NilObjectID, errors.New("log client ID and attempt ID are required")
	}

	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// MarkCompleted records the terminal success state.
func (r *mongoGenerationLogRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, outputSummary string, tokensUsed int, durationMs int64) error {
	return r.markTerminal(ctx, id, bson.M{
		"status":        domain.GenerationStatusCompleted,
		"outputSummary": outputSummary,
		"tokensUsed":    tokensUsed,
		"durationMs":    durationMs,
		"updatedAt":     time.Now().UTC(),
	})
}

// MarkFailed records the terminal failure state with the causing error message.
func (r *mongoGenerationLogRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, errorMessage string, tokensUsed int, durationMs int64) error {
	return r.markTerminal(ctx, id, bson.M{
		"status":       domain.GenerationStatusFailed,
		"errorMessage": errorMessage,
		"tokensUsed":   tokensUsed,
		"durationMs":   durationMs,
		"updatedAt":    time.Now().UTC(),
	})
}

func (r *mongoGenerationLogRepository) markTerminal(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	// Only a row still in "generating" may transition; the terminal update
	// happens exactly once.
	filter := bson.M{"_id": id, "status": domain.GenerationStatusGenerating}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByClientID retrieves attempt logs for a client, newest first.
func (r *mongoGenerationLogRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.GenerationLog, error) {
	var logs []domain.GenerationLog
	filter := bson.M{"clientId": clientID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

// EnsureGenerationLogIndexes creates necessary indexes for the generation_logs collection.
func EnsureGenerationLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "attemptId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
