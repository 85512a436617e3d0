package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type recordingBookings struct {
	mu       sync.Mutex
	bookings []models.Booking
	err      error
}

func (r *recordingBookings) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.bookings {
		if existing.ID == b.ID {
			return nil
		}
	}
	r.bookings = append(r.bookings, *b)
	return nil
}

// flakyHandoffs fails the next failPuts parks.
type flakyHandoffs struct {
	HandoffStore
	mu       sync.Mutex
	failPuts int
}

func (f *flakyHandoffs) Put(ctx context.Context, c *models.Confirmation) error {
	f.mu.Lock()
	if f.failPuts > 0 {
		f.failPuts--
		f.mu.Unlock()
		return errors.New("redis unavailable")
	}
	f.mu.Unlock()
	return f.HandoffStore.Put(ctx, c)
}

type recordingListener struct {
	mu    sync.Mutex
	calls []models.Confirmation
}

func (l *recordingListener) BookingSubmitted(_ context.Context, _ models.Booking, c models.Confirmation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

type harness struct {
	svc      *Service
	mr       *miniredis.Miniredis
	store    *RedisSessionStore
	bookings *recordingBookings
	handoffs *flakyHandoffs
	listener *recordingListener
}

func newHarness(t *testing.T, delay time.Duration) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := &harness{
		mr:       mr,
		store:    NewRedisSessionStore(client, 30*time.Minute),
		bookings: &recordingBookings{},
		handoffs: &flakyHandoffs{HandoffStore: NewRedisHandoffStore(client, 10*time.Minute)},
		listener: &recordingListener{},
	}
	h.svc = NewService(Options{
		Store:       h.store,
		Handoffs:    h.handoffs,
		Catalog:     catalog.New(),
		Bookings:    h.bookings,
		Listeners:   []SubmitListener{h.listener},
		SubmitDelay: delay,
		Currency:    "INR",
	})
	return h
}

func strPtr(s string) *string { return &s }

func (h *harness) start(t *testing.T) *models.WizardSession {
	t.Helper()
	sess, err := h.svc.Start(context.Background(), testUser)
	require.NoError(t, err)
	return sess
}

// readyToSubmit walks a session to the review step with terms accepted.
func (h *harness) readyToSubmit(t *testing.T) *models.WizardSession {
	t.Helper()
	ctx := context.Background()
	sess := h.start(t)
	_, err := h.svc.UpdateStep(ctx, testUser, sess.ID, ServiceSelection{ServiceID: "plumbing", ProfessionalID: strPtr("pro-rajesh")})
	require.NoError(t, err)
	_, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	_, err = h.svc.UpdateStep(ctx, testUser, sess.ID, PersonalDetails{PersonalInfo: models.PersonalInfo{Name: "Asha", Address: "12 Ngong Rd"}})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		tr, err := h.svc.Next(ctx, testUser, sess.ID)
		require.NoError(t, err)
		require.True(t, tr.Moved)
	}
	_, err = h.svc.UpdateStep(ctx, testUser, sess.ID, ReviewAcceptance{TermsAccepted: true})
	require.NoError(t, err)
	return sess
}

func TestStart_Defaults(t *testing.T) {
	h := newHarness(t, 0)
	sess := h.start(t)

	assert.Equal(t, models.FirstStep, sess.Step)
	assert.False(t, sess.Loading)
	assert.Equal(t, models.NewBookingDraft(), sess.Draft)

	got, err := h.svc.Get(context.Background(), testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestGet_OtherUserSeesNothing(t *testing.T) {
	h := newHarness(t, 0)
	sess := h.start(t)

	_, err := h.svc.Get(context.Background(), "someone-else", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGet_ExpiredSession(t *testing.T) {
	h := newHarness(t, 0)
	sess := h.start(t)
	h.mr.FastForward(31 * time.Minute)

	_, err := h.svc.Get(context.Background(), testUser, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNext_BlockedWithoutService(t *testing.T) {
	h := newHarness(t, 0)
	sess := h.start(t)

	tr, err := h.svc.Next(context.Background(), testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, tr.Moved)
	assert.NotEmpty(t, tr.Reason)
	assert.Equal(t, models.StepService, tr.Session.Step)
}

func TestNext_NameGate(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	_, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("plumbing")})
	require.NoError(t, err)
	tr, err := h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	require.True(t, tr.Moved)
	assert.Equal(t, models.StepDetails, tr.Session.Step)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{PersonalInfo: &models.PersonalInfo{Name: "   "}})
	require.NoError(t, err)
	tr, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, tr.Moved)
	assert.Equal(t, models.StepDetails, tr.Session.Step)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{PersonalInfo: &models.PersonalInfo{Name: "Asha"}})
	require.NoError(t, err)
	tr, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.True(t, tr.Moved)
	assert.Equal(t, models.StepPayment, tr.Session.Step)

	tr, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.True(t, tr.Moved, "payment step is ungated")
	assert.Equal(t, models.StepReview, tr.Session.Step)

	tr, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, tr.Moved)
	assert.Equal(t, models.StepReview, tr.Session.Step)
}

func TestBack(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	tr, err := h.svc.Back(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, tr.Moved)
	assert.Equal(t, models.FirstStep, tr.Session.Step)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("plumbing")})
	require.NoError(t, err)
	_, err = h.svc.Next(ctx, testUser, sess.ID)
	require.NoError(t, err)

	// Going back never depends on the draft.
	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("")})
	require.NoError(t, err)
	tr, err = h.svc.Back(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.True(t, tr.Moved)
	assert.Equal(t, models.StepService, tr.Session.Step)
}

func TestStepStaysInRange(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.readyToSubmit(t)

	moves := []string{"next", "next", "back", "back", "back", "back", "back", "next", "next", "next", "next", "next"}
	for _, m := range moves {
		var (
			tr  *models.Transition
			err error
		)
		if m == "next" {
			tr, err = h.svc.Next(ctx, testUser, sess.ID)
		} else {
			tr, err = h.svc.Back(ctx, testUser, sess.ID)
		}
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tr.Session.Step, models.FirstStep)
		assert.LessOrEqual(t, tr.Session.Step, models.StepCount)
	}
}

func TestUpdate_ShallowMerge(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	_, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{
		PersonalInfo: &models.PersonalInfo{Name: "Asha", Phone: "0700000000"},
	})
	require.NoError(t, err)
	got, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{
		PersonalInfo: &models.PersonalInfo{Name: "Asha K"},
		Description:  strPtr("Leaking tap"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PersonalInfo{Name: "Asha K"}, got.Draft.PersonalInfo, "sub-record is replaced, not deep-merged")
	assert.Equal(t, "Leaking tap", got.Draft.Description)
	assert.Equal(t, models.UrgencyMedium, got.Draft.Urgency)
	assert.Equal(t, models.PaymentCard, got.Draft.PaymentMethod)
}

func TestUpdate_Rejections(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	_, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	bad := models.Urgency("whenever")
	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{Urgency: &bad})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("teleportation")})
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("painting"), ProfessionalID: strPtr("pro-rajesh")})
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{TimeSlotID: strPtr("tomorrow")})
	assert.ErrorIs(t, err, ErrUnknownReference)

	got, err := h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NewBookingDraft(), got.Draft)
}

func TestUpdate_ServiceChangeDropsProfessional(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	_, err := h.svc.UpdateStep(ctx, testUser, sess.ID, ServiceSelection{ServiceID: "plumbing", ProfessionalID: strPtr("pro-rajesh")})
	require.NoError(t, err)

	got, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("emergency-plumbing")})
	require.NoError(t, err)
	assert.Equal(t, "pro-rajesh", models.StringValue(got.Draft.ProfessionalID))

	got, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("painting")})
	require.NoError(t, err)
	assert.Nil(t, got.Draft.ProfessionalID)
}

func TestUpdateStep_OnlyTouchesItsFields(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	got, err := h.svc.UpdateStep(ctx, testUser, sess.ID, PaymentOptions{PaymentMethod: models.PaymentCash})
	require.NoError(t, err)

	want := models.NewBookingDraft()
	want.PaymentMethod = models.PaymentCash
	assert.Equal(t, want, got.Draft)
}

func TestUpdate_ConcurrentDisjointFields(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	high := models.UrgencyHigh
	patches := []models.DraftPatch{
		{Description: strPtr("Burst pipe under sink")},
		{Urgency: &high},
	}
	var wg sync.WaitGroup
	errs := make([]error, len(patches))
	for i, p := range patches {
		wg.Add(1)
		go func(i int, p models.DraftPatch) {
			defer wg.Done()
			_, errs[i] = h.svc.Update(ctx, testUser, sess.ID, p)
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Burst pipe under sink", got.Draft.Description)
	assert.Equal(t, models.UrgencyHigh, got.Draft.Urgency)
}

func TestApplyPromo(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)
	_, err := h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{ServiceID: strPtr("plumbing")})
	require.NoError(t, err)

	_, err = h.svc.ApplyPromo(ctx, testUser, sess.ID, "BOGUS")
	assert.ErrorIs(t, err, pricing.ErrInvalidPromoCode)
	q, err := h.svc.Quote(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, q.Total)

	got, err := h.svc.ApplyPromo(ctx, testUser, sess.ID, " save20 ")
	require.NoError(t, err)
	assert.True(t, got.Draft.PromoApplied)
	assert.Equal(t, "SAVE20", got.Draft.PromoCode)
	assert.Equal(t, 20, got.Draft.Discount)

	q, err = h.svc.Quote(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 640.0, q.Total)
	assert.Equal(t, "INR", q.Currency)

	_, err = h.svc.ApplyPromo(ctx, testUser, sess.ID, "FIRST10")
	assert.ErrorIs(t, err, pricing.ErrPromoAlreadyApplied)
	got, err = h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Draft.Discount)
}

func TestView_QuoteWithSurcharge(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)
	slot := time.Now().Format("2006-01-02") + "@evening"

	_, err := h.svc.UpdateStep(ctx, testUser, sess.ID, ServiceSelection{ServiceID: "electrical", TimeSlotID: &slot})
	require.NoError(t, err)

	v, err := h.svc.View(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1700.0, v.Quote.Total)
	require.NotNil(t, v.Service)
	require.NotNil(t, v.TimeSlot)
	assert.Nil(t, v.Professional)
	assert.True(t, v.CanAdvance)
	assert.Empty(t, v.Blocked)
}

func TestSubmit_Preconditions(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	sess := h.start(t)
	_, err := h.svc.Submit(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrNotFinalStep)

	sess = h.readyToSubmit(t)
	_, err = h.svc.UpdateStep(ctx, testUser, sess.ID, ReviewAcceptance{TermsAccepted: false})
	require.NoError(t, err)
	_, err = h.svc.Submit(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrTermsNotAccepted)

	got, err := h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.Loading)
	assert.Empty(t, h.bookings.bookings)
}

func TestSubmit_InProgress(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.readyToSubmit(t)

	_, err := h.store.Update(ctx, sess.ID, func(s *models.WizardSession) (bool, error) {
		s.Loading = true
		return true, nil
	})
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
}

func TestSubmit_HandsOffOnce(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.readyToSubmit(t)
	_, err := h.svc.ApplyPromo(ctx, testUser, sess.ID, "SAVE20")
	require.NoError(t, err)

	conf, err := h.svc.Submit(ctx, testUser, sess.ID)
	require.NoError(t, err)
	require.NotEmpty(t, conf.Token)
	assert.Equal(t, 640.0, conf.Quote.Total)
	assert.Equal(t, "Asha", conf.Draft.PersonalInfo.Name)

	_, err = h.svc.Get(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.Len(t, h.bookings.bookings, 1)
	b := h.bookings.bookings[0]
	assert.Equal(t, conf.BookingID, b.ID)
	assert.Equal(t, "Plumbing Repair", b.ServiceName)
	assert.Equal(t, "Rajesh Kumar", b.ProfessionalName)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.Len(t, h.listener.calls, 1)

	got, err := h.svc.TakeConfirmation(ctx, testUser, conf.Token)
	require.NoError(t, err)
	assert.Equal(t, conf.BookingID, got.BookingID)

	_, err = h.svc.TakeConfirmation(ctx, testUser, conf.Token)
	assert.ErrorIs(t, err, ErrHandoffNotFound)
}

func TestSubmit_WaitsForDelay(t *testing.T) {
	h := newHarness(t, 50*time.Millisecond)
	sess := h.readyToSubmit(t)

	started := time.Now()
	_, err := h.svc.Submit(context.Background(), testUser, sess.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func TestSubmit_CancelledContextStillCompletes(t *testing.T) {
	h := newHarness(t, time.Hour)
	sess := h.readyToSubmit(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conf, err := h.svc.Submit(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Token)
	assert.Len(t, h.bookings.bookings, 1)
}

func TestSubmit_RecorderFailureClearsLoading(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.readyToSubmit(t)
	h.bookings.err = errors.New("mongo unavailable")

	_, err := h.svc.Submit(ctx, testUser, sess.ID)
	require.Error(t, err)

	got, err := h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.Loading)
	assert.Equal(t, models.StepReview, got.Step)
	assert.Empty(t, h.listener.calls)
}

func TestTakeConfirmation_UnknownToken(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.svc.TakeConfirmation(context.Background(), testUser, "nope")
	assert.ErrorIs(t, err, ErrHandoffNotFound)
}

func TestCancel(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	assert.ErrorIs(t, h.svc.Cancel(ctx, "intruder", sess.ID), ErrSessionNotFound)
	require.NoError(t, h.svc.Cancel(ctx, testUser, sess.ID))
	_, err := h.svc.Get(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAddPhoto(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.start(t)

	_, err := h.svc.AddPhoto(ctx, testUser, sess.ID, "uploads/a.jpg")
	require.NoError(t, err)
	got, err := h.svc.AddPhoto(ctx, testUser, sess.ID, "uploads/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, got.Draft.Photos)
}

func TestSubmit_FreezesSessionDuringDelay(t *testing.T) {
	h := newHarness(t, 300*time.Millisecond)
	ctx := context.Background()
	sess := h.readyToSubmit(t)

	type result struct {
		conf *models.Confirmation
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conf, err := h.svc.Submit(ctx, testUser, sess.ID)
		done <- result{conf, err}
	}()

	require.Eventually(t, func() bool {
		got, err := h.store.Get(ctx, sess.ID)
		return err == nil && got.Loading
	}, time.Second, 5*time.Millisecond)

	_, err := h.svc.ApplyPromo(ctx, testUser, sess.ID, "SAVE20")
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = h.svc.Back(ctx, testUser, sess.ID)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = h.svc.Update(ctx, testUser, sess.ID, models.DraftPatch{Description: strPtr("late edit")})
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = h.svc.AddPhoto(ctx, testUser, sess.ID, "uploads/late.jpg")
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, h.svc.Cancel(ctx, testUser, sess.ID), ErrSubmitInProgress)

	res := <-done
	require.NoError(t, res.err)
	conf, err := h.svc.TakeConfirmation(ctx, testUser, res.conf.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, conf.Draft.Discount)
	assert.Empty(t, conf.Draft.Description)
	assert.Equal(t, res.conf.Quote.Total, conf.Quote.Total)
}

func TestSubmit_RetryAfterHandoffFailureRecordsOneBooking(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	sess := h.readyToSubmit(t)
	h.handoffs.failPuts = 1

	_, err := h.svc.Submit(ctx, testUser, sess.ID)
	require.Error(t, err)
	got, err := h.svc.Get(ctx, testUser, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.Loading)

	conf, err := h.svc.Submit(ctx, testUser, sess.ID)
	require.NoError(t, err)
	require.Len(t, h.bookings.bookings, 1)
	assert.Equal(t, sess.ID, conf.BookingID)
	assert.Equal(t, conf.BookingID, h.bookings.bookings[0].ID)
}
