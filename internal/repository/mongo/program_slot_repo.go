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

const programSlotCollectionName = "program_slots"

// mongoProgramSlotRepository implements repository.ProgramSlotRepository
type mongoProgramSlotRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramSlotRepository creates a new ProgramSlot repository backed by MongoDB.
func NewMongoProgramSlotRepository(db *mongo.Database) repository.ProgramSlotRepository {
	return &mongoProgramSlotRepository{
		collection: db.Collection(programSlotCollectionName),
	}
}

// Create inserts one slot row. Rows are independent; the pipeline issues these
// writes concurrently and waits for all of them.
func (r *mongoProgramSlotRepository) Create(ctx context.Context, slot *domain.ProgramSlot) (primitive.ObjectID, error) {
	if slot.ProgramID == primitive.NilObjectID || slot.SlotID == "" {
		return primitive.NilObjectID, errors.New("program ID and slot ID are required")
	}

	slot.ID = primitive.NewObjectID()
	slot.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByProgramID retrieves all slots of a program ordered by week, day, then slot id.
func (r *mongoProgramSlotRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramSlot, error) {
	var slots []domain.ProgramSlot
	filter := bson.M{"programId": programID}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "week", Value: 1},
		{Key: "dayOfWeek", Value: 1},
		{Key: "slotId", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// EnsureProgramSlotIndexes creates necessary indexes for the program_slots collection.
func EnsureProgramSlotIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "week", Value: 1}, {Key: "dayOfWeek", Value: 1}},
			Options: options.Index(),
		},
		{
			// Slot ids are unique within a program by construction.
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "slotId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
