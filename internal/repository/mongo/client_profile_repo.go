package mongo

import (
	"context"
	"errors"

	"pulsefit/program-engine/internal/domain"
	"pulsefit/program-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clientProfileCollectionName = "client_profiles"

// mongoClientProfileRepository implements repository.ClientProfileRepository
type mongoClientProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoClientProfileRepository creates a new ClientProfile repository backed by MongoDB.
func NewMongoClientProfileRepository(db *mongo.Database) repository.ClientProfileRepository {
	return &mongoClientProfileRepository{
		collection: db.Collection(clientProfileCollectionName),
	}
}

// GetByClientID retrieves the profile for a client. A missing profile is
// reported as repository.ErrNotFound; callers treat that as a valid state.
func (r *mongoClientProfileRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ClientProfile, error) {
	var profile domain.ClientProfile
	filter := bson.M{"clientId": clientID}

	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// EnsureClientProfileIndexes creates necessary indexes for the client_profiles collection.
func EnsureClientProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
