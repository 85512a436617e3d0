package notes

import (
	"context"
	"errors"
	"strings"
	"time"

	notesRepo "homeserve/database/repository/notes"
	"homeserve/models"
	"homeserve/services/listing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyNote    = errors.New("a note needs a title or some content")
)

const defaultCategory = "general"

// Store is the persistence the notes editor needs.
type Store interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, userID, id string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
}

var noteView = listing.View[models.Note]{
	Fields: func(n models.Note) []string {
		return append([]string{n.Title, n.Content}, n.Tags...)
	},
	Category: func(n models.Note) string { return n.Category },
	Tags:     func(n models.Note) []string { return n.Tags },
	Pinned:   func(n models.Note) bool { return n.Pinned },
	Sorts: map[string]listing.Less[models.Note]{
		"date":  func(a, b models.Note) bool { return a.UpdatedAt.Before(b.UpdatedAt) },
		"title": func(a, b models.Note) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) },
	},
	DefaultSort:  "date",
	DefaultOrder: listing.OrderDesc,
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID string, in models.NoteInput) (*models.Note, error) {
	now := s.now().UTC()
	note := &models.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Category:  defaultCategory,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(note, in)
	if note.Title == "" && note.Content == "" {
		return nil, ErrEmptyNote
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	note, err := s.store.GetByID(ctx, userID, id)
	if errors.Is(err, notesRepo.ErrNoteNotFound) {
		return nil, ErrNoteNotFound
	}
	return note, err
}

// Update applies the non-nil fields of in to the note.
func (s *Service) Update(ctx context.Context, userID, id string, in models.NoteInput) (*models.Note, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	apply(note, in)
	if note.Title == "" && note.Content == "" {
		return nil, ErrEmptyNote
	}
	note.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, note); err != nil {
		if errors.Is(err, notesRepo.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.store.Delete(ctx, userID, id)
	if errors.Is(err, notesRepo.ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	return err
}

// List returns the user's notes filtered and sorted by q. Pinned notes come first.
func (s *Service) List(ctx context.Context, userID string, q listing.Query) ([]models.Note, error) {
	all, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Tags are stored lower-cased.
	q.Tag = strings.ToLower(strings.TrimSpace(q.Tag))
	return noteView.Apply(all, q)
}

func apply(n *models.Note, in models.NoteInput) {
	if in.Title != nil {
		n.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Category != nil {
		n.Category = strings.TrimSpace(*in.Category)
		if n.Category == "" {
			n.Category = defaultCategory
		}
	}
	if in.Tags != nil {
		n.Tags = normalizeTags(in.Tags)
	}
	if in.Pinned != nil {
		n.Pinned = *in.Pinned
	}
}

// normalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
