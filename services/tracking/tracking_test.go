package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	bookingRepo "homeserve/database/repository/bookings"
	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/geo"
	"homeserve/services/listing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func (m *memoryBookings) GetByID(_ context.Context, userID, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.UserID != userID {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (m *memoryBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryBookings) UpdateStatus(_ context.Context, id string, status models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return nil
}

var nairobi = geo.Point{Lat: -1.286389, Lon: 36.817223}

func newTestService(t *testing.T) (*Service, *memoryBookings) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bookings := &memoryBookings{bookings: map[string]models.Booking{}}
	svc := NewService(NewRedisStore(client), bookings, catalog.New(), geo.NewLocator(nairobi, nil), nil)
	return svc, bookings
}

func TestTick_MovesCloserUntilArrived(t *testing.T) {
	svc, bookings := newTestService(t)
	ctx := context.Background()
	b := models.Booking{ID: "b1", UserID: "u1", ProfessionalID: "pro-rajesh", Status: models.BookingConfirmed}
	bookings.bookings[b.ID] = b

	svc.BookingSubmitted(ctx, b, models.Confirmation{})
	st, err := svc.Get(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingAssigned, st.Status)
	require.Greater(t, st.DistanceKm, 0.0)
	assert.Greater(t, st.ETAMinutes, 0)

	last := st.DistanceKm
	for i := 0; i < 100 && st.Status != models.TrackingArrived; i++ {
		svc.Tick(ctx)
		st, err = svc.Get(ctx, "u1", "b1")
		require.NoError(t, err)
		if st.Status != models.TrackingArrived {
			assert.Equal(t, models.TrackingEnRoute, st.Status)
			assert.Less(t, st.DistanceKm, last)
			assert.Equal(t, models.BookingEnRoute, bookings.bookings["b1"].Status)
		}
		last = st.DistanceKm
	}

	assert.Equal(t, models.TrackingArrived, st.Status)
	assert.Zero(t, st.DistanceKm)
	assert.Zero(t, st.ETAMinutes)
	assert.Equal(t, st.Destination, st.ProviderLocation)
	assert.Equal(t, models.BookingInProgress, bookings.bookings["b1"].Status)

	active, err := svc.store.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGet_MissingOrForeign(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1", "nope")
	assert.ErrorIs(t, err, ErrTrackingNotFound)

	_, err = svc.Seed(ctx, models.Booking{ID: "b2", UserID: "u2"}, "Grace", nairobi, nairobi)
	require.NoError(t, err)
	_, err = svc.Get(ctx, "u1", "b2")
	assert.ErrorIs(t, err, ErrTrackingNotFound)
}

func TestBookingSubmitted_WithoutProfessionalIsIgnored(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.BookingSubmitted(ctx, models.Booking{ID: "b3", UserID: "u1"}, models.Confirmation{})
	_, err := svc.Get(ctx, "u1", "b3")
	assert.ErrorIs(t, err, ErrTrackingNotFound)
}

func TestList(t *testing.T) {
	svc, bookings := newTestService(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	bookings.bookings = map[string]models.Booking{
		"b1": {ID: "b1", UserID: "u1", ServiceName: "Plumbing Repair", ProfessionalName: "Rajesh Kumar", Total: 640, Status: models.BookingCompleted, CreatedAt: base},
		"b2": {ID: "b2", UserID: "u1", ServiceName: "Deep Cleaning", ProfessionalName: "Grace Muthoni", Total: 1800, Status: models.BookingConfirmed, CreatedAt: base.Add(time.Hour)},
		"b3": {ID: "b3", UserID: "u1", ServiceName: "Carpentry", ProfessionalName: "Mohan Singh", Total: 1000, Status: models.BookingConfirmed, CreatedAt: base.Add(2 * time.Hour)},
		"b4": {ID: "b4", UserID: "u2", ServiceName: "Carpentry", CreatedAt: base},
	}

	all, err := svc.List(ctx, "u1", listing.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[0].ID)

	confirmed, err := svc.List(ctx, "u1", listing.Query{Category: "confirmed", SortBy: "total", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, "b2", confirmed[0].ID)

	byName, err := svc.List(ctx, "u1", listing.Query{Search: "grace"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "b2", byName[0].ID)
}

func TestBooking(t *testing.T) {
	svc, bookings := newTestService(t)
	bookings.bookings["b1"] = models.Booking{ID: "b1", UserID: "u1"}

	b, err := svc.Booking(context.Background(), "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)

	_, err = svc.Booking(context.Background(), "u2", "b1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
