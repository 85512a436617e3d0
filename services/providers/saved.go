package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	savedRepo "homeserve/database/repository/saved"
	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/listing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrNotSaved             = errors.New("provider is not in your saved list")
)

// SavedStore is the persistence the saved-providers list needs.
type SavedStore interface {
	Upsert(ctx context.Context, sp *models.SavedProvider) error
	Delete(ctx context.Context, userID, professionalID string) error
	ListByUser(ctx context.Context, userID string) ([]models.SavedProvider, error)
}

var savedView = listing.View[models.SavedProvider]{
	Fields: func(sp models.SavedProvider) []string {
		return []string{sp.Name, sp.Service, sp.Notes}
	},
	Category: func(sp models.SavedProvider) string { return sp.Category },
	Sorts: map[string]listing.Less[models.SavedProvider]{
		"date":   func(a, b models.SavedProvider) bool { return a.SavedAt.Before(b.SavedAt) },
		"name":   func(a, b models.SavedProvider) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
		"rating": func(a, b models.SavedProvider) bool { return a.Rating < b.Rating },
	},
	DefaultSort:  "date",
	DefaultOrder: listing.OrderDesc,
}

// Service backs provider comparison and the saved-providers list.
type Service struct {
	catalog *catalog.Catalog
	saved   SavedStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(cat *catalog.Catalog, saved SavedStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: cat, saved: saved, logger: logger, now: time.Now}
}

// Save bookmarks a professional for userID. Saving again updates the note.
func (s *Service) Save(ctx context.Context, userID, professionalID, notes string) (*models.SavedProvider, error) {
	pro, err := s.catalog.Professional(professionalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfessionalNotFound, professionalID)
	}
	service := pro.Specialty
	if len(pro.ServiceIDs) > 0 {
		if svc, err := s.catalog.Service(pro.ServiceIDs[0]); err == nil {
			service = svc.Name
		}
	}
	sp := &models.SavedProvider{
		ID:             uuid.New().String(),
		UserID:         userID,
		ProfessionalID: pro.ID,
		Name:           pro.Name,
		Service:        service,
		Category:       pro.Category,
		Rating:         pro.Rating,
		Notes:          strings.TrimSpace(notes),
		SavedAt:        s.now().UTC(),
	}
	if err := s.saved.Upsert(ctx, sp); err != nil {
		return nil, err
	}
	s.logger.Debug("provider saved", zap.String("userId", userID), zap.String("professionalId", pro.ID))
	return sp, nil
}

func (s *Service) Unsave(ctx context.Context, userID, professionalID string) error {
	err := s.saved.Delete(ctx, userID, professionalID)
	if errors.Is(err, savedRepo.ErrSavedProviderNotFound) {
		return ErrNotSaved
	}
	return err
}

// ListSaved returns the user's saved providers filtered and sorted by q.
func (s *Service) ListSaved(ctx context.Context, userID string, q listing.Query) ([]models.SavedProvider, error) {
	saved, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return savedView.Apply(saved, q)
}
