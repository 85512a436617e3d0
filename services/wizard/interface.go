package wizard

import (
	"context"

	"homeserve/models"
)

// UpdateFunc mutates a session in place and reports whether anything changed.
// It may run more than once when a concurrent writer wins the race.
type UpdateFunc func(s *models.WizardSession) (bool, error)

// SessionStore persists wizard sessions.
type SessionStore interface {
	Create(ctx context.Context, s *models.WizardSession) error
	Get(ctx context.Context, id string) (*models.WizardSession, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.WizardSession, error)
	Delete(ctx context.Context, id string) error
}

// HandoffStore parks a submitted draft for exactly one read by the confirmation view.
type HandoffStore interface {
	Put(ctx context.Context, c *models.Confirmation) error
	Take(ctx context.Context, token string) (*models.Confirmation, error)
}

// BookingRecorder stores the booking produced by a submit.
type BookingRecorder interface {
	Create(ctx context.Context, b *models.Booking) error
}

// SubmitListener reacts to a completed submit. Listeners own their failures;
// a submit is never rolled back because of one.
type SubmitListener interface {
	BookingSubmitted(ctx context.Context, b models.Booking, c models.Confirmation)
}
