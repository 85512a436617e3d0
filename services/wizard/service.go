package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/pricing"
	"homeserve/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Service.
type Options struct {
	Store       SessionStore
	Handoffs    HandoffStore
	Catalog     *catalog.Catalog
	Bookings    BookingRecorder
	Listeners   []SubmitListener
	Metrics     *utils.Metrics
	Logger      *zap.Logger
	SubmitDelay time.Duration
	Currency    string
}

// Service drives the booking wizard: step navigation, draft updates, pricing
// and the final submit.
type Service struct {
	store     SessionStore
	handoffs  HandoffStore
	catalog   *catalog.Catalog
	bookings  BookingRecorder
	listeners []SubmitListener
	metrics   *utils.Metrics
	logger    *zap.Logger
	delay     time.Duration
	currency  string
	now       func() time.Time
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New()
	}
	return &Service{
		store:     opts.Store,
		handoffs:  opts.Handoffs,
		catalog:   cat,
		bookings:  opts.Bookings,
		listeners: opts.Listeners,
		metrics:   opts.Metrics,
		logger:    logger,
		delay:     opts.SubmitDelay,
		currency:  opts.Currency,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// View is a session together with everything derived from its draft.
type View struct {
	Session      models.WizardSession `json:"session"`
	Quote        models.Quote         `json:"quote"`
	Service      *models.Service      `json:"service,omitempty"`
	Professional *models.Professional `json:"professional,omitempty"`
	TimeSlot     *models.TimeSlot     `json:"timeSlot,omitempty"`
	CanAdvance   bool                 `json:"canAdvance"`
	Blocked      string               `json:"blockedReason,omitempty"`
}

// Start opens a new session at the first step with a default draft.
func (s *Service) Start(ctx context.Context, userID string) (*models.WizardSession, error) {
	now := s.now()
	sess := &models.WizardSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Step:      models.FirstStep,
		Draft:     models.NewBookingDraft(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug("booking session started", zap.String("sessionId", sess.ID), zap.String("userId", userID))
	return sess, nil
}

// Get returns the caller's session. Sessions owned by someone else are reported
// as missing.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.WizardSession, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// mutate applies fn to the caller's session. A session claimed by a submit is
// frozen until the submit finishes or fails.
func (s *Service) mutate(ctx context.Context, userID, id string, fn UpdateFunc) (*models.WizardSession, error) {
	return s.store.Update(ctx, id, func(sess *models.WizardSession) (bool, error) {
		if sess.UserID != userID {
			return false, ErrSessionNotFound
		}
		if sess.Loading {
			return false, ErrSubmitInProgress
		}
		return fn(sess)
	})
}

// View returns the session with its quote and resolved catalog selection.
func (s *Service) View(ctx context.Context, userID, id string) (*View, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Describe(sess), nil
}

// Describe derives the view of a session the caller already holds.
func (s *Service) Describe(sess *models.WizardSession) *View {
	svc, pro, slot := s.resolve(sess.Draft)
	reason := ""
	if sess.Step < models.StepCount {
		reason = gate(sess.Step, sess.Draft)
	}
	return &View{
		Session:      *sess,
		Quote:        pricing.Calculate(svc, slot, sess.Draft.Discount, s.currency),
		Service:      svc,
		Professional: pro,
		TimeSlot:     slot,
		CanAdvance:   sess.Step < models.StepCount && reason == "",
		Blocked:      reason,
	}
}

// resolve looks up the draft's references. Unknown ids resolve to nil.
func (s *Service) resolve(d models.BookingDraft) (*models.Service, *models.Professional, *models.TimeSlot) {
	var (
		svc  *models.Service
		pro  *models.Professional
		slot *models.TimeSlot
	)
	if d.ServiceID != nil {
		if v, err := s.catalog.Service(*d.ServiceID); err == nil {
			svc = &v
		}
	}
	if d.ProfessionalID != nil {
		if v, err := s.catalog.Professional(*d.ProfessionalID); err == nil {
			pro = &v
		}
	}
	if d.TimeSlotID != nil {
		if v, err := s.catalog.Slot(*d.TimeSlotID); err == nil {
			slot = &v
		}
	}
	return svc, pro, slot
}

// Next advances one step when the current step's gate passes. A blocked move
// is not an error: the session comes back unchanged with Moved false.
func (s *Service) Next(ctx context.Context, userID, id string) (*models.Transition, error) {
	var reason string
	sess, err := s.mutate(ctx, userID, id, func(sess *models.WizardSession) (bool, error) {
		reason = ""
		if sess.Step >= models.StepCount {
			reason = "Already at the final step"
			return false, nil
		}
		if reason = gate(sess.Step, sess.Draft); reason != "" {
			return false, nil
		}
		sess.Step++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	moved := reason == ""
	s.metrics.ObserveTransition("next", moved)
	return &models.Transition{Session: *sess, Moved: moved, Reason: reason}, nil
}

// Back returns to the previous step. It is never gated.
func (s *Service) Back(ctx context.Context, userID, id string) (*models.Transition, error) {
	var moved bool
	sess, err := s.mutate(ctx, userID, id, func(sess *models.WizardSession) (bool, error) {
		moved = sess.Step > models.FirstStep
		if moved {
			sess.Step--
		}
		return moved, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition("back", moved)
	t := &models.Transition{Session: *sess, Moved: moved}
	if !moved {
		t.Reason = "Already at the first step"
	}
	return t, nil
}

// Update shallow-merges patch into the draft. It works at any step.
func (s *Service) Update(ctx context.Context, userID, id string, patch models.DraftPatch) (*models.WizardSession, error) {
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return s.mutate(ctx, userID, id, func(sess *models.WizardSession) (bool, error) {
		draft := sess.Draft
		draft.Merge(patch)
		if err := s.checkReferences(&draft, patch); err != nil {
			return false, err
		}
		sess.Draft = draft
		return true, nil
	})
}

// UpdateStep merges a typed step payload into the draft.
func (s *Service) UpdateStep(ctx context.Context, userID, id string, payload StepPayload) (*models.WizardSession, error) {
	return s.Update(ctx, userID, id, payload.Patch())
}

// AddPhoto appends a stored photo reference to the draft.
func (s *Service) AddPhoto(ctx context.Context, userID, id, ref string) (*models.WizardSession, error) {
	return s.mutate(ctx, userID, id, func(sess *models.WizardSession) (bool, error) {
		sess.Draft.Photos = append(append([]string{}, sess.Draft.Photos...), ref)
		return true, nil
	})
}

// checkReferences validates the catalog ids the patch touched. Changing the
// service drops a professional who does not offer the new one.
func (s *Service) checkReferences(d *models.BookingDraft, patch models.DraftPatch) error {
	svcID := models.StringValue(d.ServiceID)
	if patch.ServiceID != nil && svcID != "" {
		if _, err := s.catalog.Service(svcID); err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownReference, err)
		}
		if patch.ProfessionalID == nil && d.ProfessionalID != nil {
			if pro, err := s.catalog.Professional(*d.ProfessionalID); err == nil && !pro.Offers(svcID) {
				d.ProfessionalID = nil
			}
		}
	}
	if patch.ProfessionalID != nil && d.ProfessionalID != nil {
		if err := s.catalog.ValidateSelection(svcID, *d.ProfessionalID, ""); err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownReference, err)
		}
	}
	if patch.TimeSlotID != nil && d.TimeSlotID != nil {
		if _, err := s.catalog.Slot(*d.TimeSlotID); err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownReference, err)
		}
	}
	return nil
}

// ApplyPromo applies a promo code to the draft. Rejected codes leave the
// session untouched.
func (s *Service) ApplyPromo(ctx context.Context, userID, id, code string) (*models.WizardSession, error) {
	return s.mutate(ctx, userID, id, func(sess *models.WizardSession) (bool, error) {
		draft := sess.Draft
		if err := pricing.ApplyPromo(&draft, code); err != nil {
			return false, err
		}
		sess.Draft = draft
		return true, nil
	})
}

// Quote prices the session's current draft.
func (s *Service) Quote(ctx context.Context, userID, id string) (models.Quote, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Quote{}, err
	}
	svc, _, slot := s.resolve(sess.Draft)
	return pricing.Calculate(svc, slot, sess.Draft.Discount, s.currency), nil
}

// Cancel abandons the session.
func (s *Service) Cancel(ctx context.Context, userID, id string) error {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if sess.Loading {
		return ErrSubmitInProgress
	}
	return s.store.Delete(ctx, id)
}

// Submit finalizes the draft. The session is flagged loading for the fixed
// submit delay, then the booking is recorded, the draft is parked under a
// one-shot confirmation token and the session is removed.
func (s *Service) Submit(ctx context.Context, userID, id string) (*models.Confirmation, error) {
	// The gate runs detached so a request cancelled early still claims the session.
	sess, err := s.mutate(context.WithoutCancel(ctx), userID, id, func(sess *models.WizardSession) (bool, error) {
		switch {
		case sess.Step != models.StepCount:
			return false, ErrNotFinalStep
		case !sess.Draft.TermsAccepted:
			return false, ErrTermsNotAccepted
		}
		sess.Loading = true
		return true, nil
	})
	if err != nil {
		s.metrics.ObserveSubmit("rejected")
		return nil, err
	}

	s.wait(ctx)

	// The simulated operation always completes once started.
	ctx = context.WithoutCancel(ctx)
	conf, booking, err := s.complete(ctx, sess)
	if err != nil {
		s.metrics.ObserveSubmit("error")
		s.clearLoading(ctx, id)
		return nil, err
	}
	s.metrics.ObserveSubmit("ok")
	s.logger.Info("booking submitted",
		zap.String("sessionId", id),
		zap.String("bookingId", booking.ID),
		zap.String("userId", userID),
		zap.Float64("total", booking.Total))

	for _, l := range s.listeners {
		l.BookingSubmitted(ctx, *booking, *conf)
	}
	return conf, nil
}

func (s *Service) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *Service) complete(ctx context.Context, sess *models.WizardSession) (*models.Confirmation, *models.Booking, error) {
	svc, pro, slot := s.resolve(sess.Draft)
	quote := pricing.Calculate(svc, slot, sess.Draft.Discount, s.currency)
	now := s.now()

	booking := &models.Booking{
		ID:            sess.ID,
		UserID:        sess.UserID,
		ServiceID:     models.StringValue(sess.Draft.ServiceID),
		TimeSlot:      slot,
		Urgency:       sess.Draft.Urgency,
		Address:       sess.Draft.PersonalInfo.Address,
		Total:         quote.Total,
		Currency:      quote.Currency,
		PaymentMethod: sess.Draft.PaymentMethod,
		Status:        models.BookingConfirmed,
		CreatedAt:     now,
	}
	if svc != nil {
		booking.ServiceName = svc.Name
		booking.Category = svc.Category
	}
	if pro != nil {
		booking.ProfessionalID = pro.ID
		booking.ProfessionalName = pro.Name
	}
	if s.bookings != nil {
		if err := s.bookings.Create(ctx, booking); err != nil {
			return nil, nil, fmt.Errorf("failed to record booking: %w", err)
		}
	}

	conf := &models.Confirmation{
		Token:        uuid.New().String(),
		SessionID:    sess.ID,
		UserID:       sess.UserID,
		BookingID:    booking.ID,
		Draft:        sess.Draft,
		Quote:        quote,
		Service:      svc,
		Professional: pro,
		TimeSlot:     slot,
		SubmittedAt:  now,
	}
	conf.Draft.Photos = append([]string{}, sess.Draft.Photos...)
	if err := s.handoffs.Put(ctx, conf); err != nil {
		return nil, nil, err
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		s.logger.Warn("failed to delete submitted session", zap.String("sessionId", sess.ID), zap.Error(err))
	}
	return conf, booking, nil
}

// clearLoading lets the user retry after an infrastructure failure.
func (s *Service) clearLoading(ctx context.Context, id string) {
	_, err := s.store.Update(ctx, id, func(sess *models.WizardSession) (bool, error) {
		if !sess.Loading {
			return false, nil
		}
		sess.Loading = false
		return true, nil
	})
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		s.logger.Error("failed to clear loading flag", zap.String("sessionId", id), zap.Error(err))
	}
}

// TakeConfirmation reads the confirmation for token exactly once.
func (s *Service) TakeConfirmation(ctx context.Context, userID, token string) (*models.Confirmation, error) {
	conf, err := s.handoffs.Take(ctx, token)
	if err != nil {
		return nil, err
	}
	if conf.UserID != userID {
		s.logger.Warn("confirmation token presented by another user", zap.String("userId", userID))
		return nil, ErrHandoffNotFound
	}
	return conf, nil
}
