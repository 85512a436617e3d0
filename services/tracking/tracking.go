package tracking

import (
	"context"
	"errors"
	"math"
	"time"

	bookingRepo "homeserve/database/repository/bookings"
	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/geo"
	"homeserve/services/listing"

	"go.uber.org/zap"
)

var (
	ErrTrackingNotFound = errors.New("no live tracking for this booking")
	ErrBookingNotFound  = errors.New("booking not found")
)

const (
	// stepFraction is how much of the remaining distance a provider covers per tick.
	stepFraction   = 0.35
	arrivalKm      = 0.05
	averageSpeedKm = 30.0
)

// Bookings is the booking persistence tracking reads and updates.
type Bookings interface {
	GetByID(ctx context.Context, userID, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

// Store persists live tracking state.
type Store interface {
	Put(ctx context.Context, st *models.TrackingState) error
	Get(ctx context.Context, bookingID string) (*models.TrackingState, error)
	Active(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, bookingID string) error
}

var bookingView = listing.View[models.Booking]{
	Fields: func(b models.Booking) []string {
		return []string{b.ServiceName, b.ProfessionalName}
	},
	Category: func(b models.Booking) string { return string(b.Status) },
	Sorts: map[string]listing.Less[models.Booking]{
		"date":  func(a, b models.Booking) bool { return a.CreatedAt.Before(b.CreatedAt) },
		"total": func(a, b models.Booking) bool { return a.Total < b.Total },
	},
	DefaultSort:  "date",
	DefaultOrder: listing.OrderDesc,
}

// Service simulates the assigned professional travelling to the customer and
// serves the tracking list.
type Service struct {
	store    Store
	bookings Bookings
	catalog  *catalog.Catalog
	locator  *geo.Locator
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, bookings Bookings, cat *catalog.Catalog, locator *geo.Locator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, bookings: bookings, catalog: cat, locator: locator, logger: logger, now: time.Now}
}

// BookingSubmitted seeds tracking for a freshly submitted booking.
func (s *Service) BookingSubmitted(ctx context.Context, b models.Booking, _ models.Confirmation) {
	if b.ProfessionalID == "" {
		return
	}
	pro, err := s.catalog.Professional(b.ProfessionalID)
	if err != nil {
		s.logger.Warn("cannot track booking without a known professional", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	origin := geo.Point{Lat: pro.Location.Lat(), Lon: pro.Location.Lon()}
	// Customer coordinates are not collected by the wizard.
	dest := s.locator.Fallback()
	if _, err := s.Seed(ctx, b, pro.Name, origin, dest); err != nil {
		s.logger.Error("failed to seed tracking", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

// Seed starts tracking a booking with the professional at origin.
func (s *Service) Seed(ctx context.Context, b models.Booking, professionalName string, origin, dest geo.Point) (*models.TrackingState, error) {
	st := &models.TrackingState{
		BookingID:        b.ID,
		UserID:           b.UserID,
		ProfessionalName: professionalName,
		Status:           models.TrackingAssigned,
		ProviderLocation: models.NewGeoPoint(origin.Lat, origin.Lon),
		Destination:      models.NewGeoPoint(dest.Lat, dest.Lon),
		UpdatedAt:        s.now().UTC(),
	}
	measure(st)
	if err := s.store.Put(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get returns the live state of one of the user's bookings.
func (s *Service) Get(ctx context.Context, userID, bookingID string) (*models.TrackingState, error) {
	st, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrTrackingNotFound
	}
	return st, nil
}

// Booking returns one of the user's bookings.
func (s *Service) Booking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, userID, bookingID)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// List returns the user's bookings filtered by q. The category selector is the booking status.
func (s *Service) List(ctx context.Context, userID string, q listing.Query) ([]models.Booking, error) {
	all, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return bookingView.Apply(all, q)
}

// Tick advances every active provider one step toward its destination.
func (s *Service) Tick(ctx context.Context) {
	ids, err := s.store.Active(ctx)
	if err != nil {
		s.logger.Error("tracking tick failed", zap.Error(err))
		return
	}
	for _, id := range ids {
		st, err := s.store.Get(ctx, id)
		if errors.Is(err, ErrTrackingNotFound) {
			_ = s.store.Forget(ctx, id)
			continue
		}
		if err != nil {
			s.logger.Warn("failed to load tracking state", zap.String("bookingId", id), zap.Error(err))
			continue
		}
		prev := st.Status
		s.advance(st)
		if err := s.store.Put(ctx, st); err != nil {
			s.logger.Warn("failed to store tracking state", zap.String("bookingId", id), zap.Error(err))
			continue
		}
		if st.Status != prev {
			s.syncBookingStatus(ctx, st)
		}
	}
}

func (s *Service) advance(st *models.TrackingState) {
	if st.Status == models.TrackingArrived {
		return
	}
	from := geo.Point{Lat: st.ProviderLocation.Lat(), Lon: st.ProviderLocation.Lon()}
	to := geo.Point{Lat: st.Destination.Lat(), Lon: st.Destination.Lon()}
	next := geo.Toward(from, to, stepFraction)
	st.ProviderLocation = models.NewGeoPoint(next.Lat, next.Lon)
	st.Status = models.TrackingEnRoute
	measure(st)
	if st.DistanceKm < arrivalKm {
		st.ProviderLocation = st.Destination
		st.Status = models.TrackingArrived
		st.DistanceKm = 0
		st.ETAMinutes = 0
	}
	st.UpdatedAt = s.now().UTC()
}

func (s *Service) syncBookingStatus(ctx context.Context, st *models.TrackingState) {
	status := models.BookingEnRoute
	if st.Status == models.TrackingArrived {
		status = models.BookingInProgress
	}
	if err := s.bookings.UpdateStatus(ctx, st.BookingID, status); err != nil {
		s.logger.Warn("failed to update booking status", zap.String("bookingId", st.BookingID), zap.Error(err))
	}
}

// measure recomputes distance and ETA from the current positions.
func measure(st *models.TrackingState) {
	from := geo.Point{Lat: st.ProviderLocation.Lat(), Lon: st.ProviderLocation.Lon()}
	to := geo.Point{Lat: st.Destination.Lat(), Lon: st.Destination.Lon()}
	d := geo.Distance(from, to)
	st.DistanceKm = math.Round(d*100) / 100
	st.ETAMinutes = int(math.Ceil(d / averageSpeedKm * 60))
}
