package notesRepo

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

var ErrNoteNotFound = errors.New("note not found")

// NoteRepository defines note data access. Every lookup is scoped to the owner.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, userID, id string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
}

type mongoNoteRepo struct {
	coll *mongo.Collection
}

// NewMongoNoteRepo returns a NoteRepository backed by the "notes" collection.
func NewMongoNoteRepo(db *mongo.Database) (NoteRepository, error) {
	repo := &mongoNoteRepo{coll: db.Collection("notes")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *mongoNoteRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create note indexes: %w", err)
	}
	return nil
}

func (r *mongoNoteRepo) Create(ctx context.Context, note *models.Note) error {
	if _, err := r.coll.InsertOne(ctx, note); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *mongoNoteRepo) GetByID(ctx context.Context, userID, id string) (*models.Note, error) {
	var note models.Note
	err := r.coll.FindOne(ctx, bson.M{"id": id, "userId": userID}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch note %s: %w", id, err)
	}
	return &note, nil
}

func (r *mongoNoteRepo) Update(ctx context.Context, note *models.Note) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": note.ID, "userId": note.UserID}, note)
	if err != nil {
		return fmt.Errorf("failed to update note %s: %w", note.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *mongoNoteRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *mongoNoteRepo) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []models.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}
