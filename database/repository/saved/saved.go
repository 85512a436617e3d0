package savedRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSavedProviderNotFound = errors.New("saved provider not found")

// SavedProviderRepository stores the professionals a user has bookmarked.
type SavedProviderRepository interface {
	// Upsert saves the provider, replacing an earlier save of the same professional.
	Upsert(ctx context.Context, sp *models.SavedProvider) error
	Delete(ctx context.Context, userID, professionalID string) error
	ListByUser(ctx context.Context, userID string) ([]models.SavedProvider, error)
}

type mongoSavedProviderRepo struct {
	coll *mongo.Collection
}

func NewMongoSavedProviderRepo(db *mongo.Database) (SavedProviderRepository, error) {
	repo := &mongoSavedProviderRepo{coll: db.Collection("saved_providers")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "professionalId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create saved provider indexes: %w", err)
	}
	return repo, nil
}

func (r *mongoSavedProviderRepo) Upsert(ctx context.Context, sp *models.SavedProvider) error {
	filter := bson.M{"userId": sp.UserID, "professionalId": sp.ProfessionalID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, sp, opts); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}
	return nil
}

func (r *mongoSavedProviderRepo) Delete(ctx context.Context, userID, professionalID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID, "professionalId": professionalID})
	if err != nil {
		return fmt.Errorf("failed to remove saved provider: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSavedProviderNotFound
	}
	return nil
}

func (r *mongoSavedProviderRepo) ListByUser(ctx context.Context, userID string) ([]models.SavedProvider, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list saved providers: %w", err)
	}
	defer cursor.Close(ctx)

	saved := []models.SavedProvider{}
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode saved providers: %w", err)
	}
	return saved, nil
}
