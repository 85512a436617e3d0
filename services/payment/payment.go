package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "homeserve/database/repository/bookings"
	"homeserve/models"
	"homeserve/services/pricing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

var (
	ErrPaymentsDisabled = errors.New("card payments are not configured")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrNotCardPayment   = errors.New("booking is not paid by card")
	ErrNotPayable       = errors.New("booking can no longer be paid")
)

// Bookings is the booking persistence the payment flow needs.
type Bookings interface {
	GetByID(ctx context.Context, userID, id string) (*models.Booking, error)
	SetPaymentIntent(ctx context.Context, id, intentID string) error
}

// intentCreator is satisfied by *paymentintent.Client.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type Service struct {
	intents  intentCreator
	bookings Bookings
	logger   *zap.Logger
}

// NewService returns a payment service. An empty key disables card payments.
func NewService(stripeKey string, bookings Bookings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{bookings: bookings, logger: logger}
	if stripeKey != "" {
		s.intents = &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: stripeKey}
	}
	return s
}

func (s *Service) Enabled() bool { return s.intents != nil }

// CreateIntent opens a Stripe PaymentIntent for the booking total and records
// its id on the booking.
func (s *Service) CreateIntent(ctx context.Context, userID, bookingID string) (*models.PaymentIntent, error) {
	if s.intents == nil {
		return nil, ErrPaymentsDisabled
	}
	b, err := s.bookings.GetByID(ctx, userID, bookingID)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.PaymentMethod != models.PaymentCard {
		return nil, ErrNotCardPayment
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		return nil, ErrNotPayable
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(pricing.ToMinorUnits(b.Total)),
		Currency: stripe.String(strings.ToLower(b.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(b.ServiceName),
	}
	params.Context = ctx
	params.AddMetadata("bookingId", b.ID)
	params.AddMetadata("userId", b.UserID)
	params.SetIdempotencyKey("booking-" + b.ID)

	pi, err := s.intents.New(params)
	if err != nil {
		s.logger.Error("stripe payment intent failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.bookings.SetPaymentIntent(ctx, b.ID, pi.ID); err != nil {
		return nil, err
	}
	s.logger.Info("payment intent created", zap.String("bookingId", b.ID), zap.String("intentId", pi.ID))

	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Total:        b.Total,
	}, nil
}
