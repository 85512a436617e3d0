package pricing

import (
	"testing"

	"homeserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_PromoOnBasePrice(t *testing.T) {
	svc := &models.Service{BasePrice: 800}

	q := Calculate(svc, nil, 20, "INR")

	assert.Equal(t, 800.0, q.Subtotal)
	assert.Equal(t, 160.0, q.DiscountAmount)
	assert.Equal(t, 640.0, q.Total)
	assert.Equal(t, "INR", q.Currency)
}

func TestCalculate_SurchargeNoPromo(t *testing.T) {
	svc := &models.Service{BasePrice: 1500}
	slot := &models.TimeSlot{Surcharge: 200}

	q := Calculate(svc, slot, 0, "INR")

	assert.Equal(t, 1700.0, q.Total)
	assert.Equal(t, 0.0, q.DiscountAmount)
}

func TestCalculate_NothingSelected(t *testing.T) {
	q := Calculate(nil, nil, 10, "INR")
	assert.Equal(t, 0.0, q.Total)
}

func TestCalculate_Idempotent(t *testing.T) {
	svc := &models.Service{BasePrice: 955.55}
	slot := &models.TimeSlot{Surcharge: 150}

	first := Calculate(svc, slot, 10, "INR")
	second := Calculate(svc, slot, 10, "INR")

	assert.Equal(t, first, second)
	assert.InDelta(t, (955.55+150)*0.9, first.Total, 0.01)
}

func TestApplyPromo_ValidCodes(t *testing.T) {
	for code, want := range map[string]int{"FIRST10": 10, "SAVE20": 20, " save20 ": 20} {
		d := models.NewBookingDraft()
		require.NoError(t, ApplyPromo(&d, code), code)
		assert.Equal(t, want, d.Discount)
		assert.True(t, d.PromoApplied)
	}
}

func TestApplyPromo_OnlyOnce(t *testing.T) {
	d := models.NewBookingDraft()
	require.NoError(t, ApplyPromo(&d, "FIRST10"))

	err := ApplyPromo(&d, "SAVE20")

	assert.ErrorIs(t, err, ErrPromoAlreadyApplied)
	assert.Equal(t, 10, d.Discount)
	assert.Equal(t, "FIRST10", d.PromoCode)
}

func TestApplyPromo_UnknownLeavesDraft(t *testing.T) {
	d := models.NewBookingDraft()
	before := d

	err := ApplyPromo(&d, "HALFOFF")

	assert.ErrorIs(t, err, ErrInvalidPromoCode)
	assert.Equal(t, before, d)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(64000), ToMinorUnits(640))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
}
