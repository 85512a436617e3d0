package pricing

import (
	"errors"
	"math"
	"strings"

	"homeserve/models"
)

var (
	ErrInvalidPromoCode    = errors.New("invalid promo code")
	ErrPromoAlreadyApplied = errors.New("promo code already applied")
)

// promoCodes maps an accepted code to its percentage discount.
var promoCodes = map[string]int{
	"FIRST10": 10,
	"SAVE20":  20,
}

// LookupPromo returns the discount for code. Codes are matched case-insensitively
// after trimming.
func LookupPromo(code string) (int, bool) {
	pct, ok := promoCodes[normalize(code)]
	return pct, ok
}

// ApplyPromo applies code to the draft. A draft accepts one promo code; an
// unknown code leaves the draft untouched.
func ApplyPromo(draft *models.BookingDraft, code string) error {
	if draft.PromoApplied {
		return ErrPromoAlreadyApplied
	}
	pct, ok := LookupPromo(code)
	if !ok {
		return ErrInvalidPromoCode
	}
	draft.PromoCode = normalize(code)
	draft.Discount = pct
	draft.PromoApplied = true
	return nil
}

// Calculate derives the price of a draft:
//
//	total = (base + surcharge) * (1 - discount/100)
//
// rounded to cents. A nil service or slot contributes zero.
func Calculate(service *models.Service, slot *models.TimeSlot, discount int, currency string) models.Quote {
	q := models.Quote{Discount: clampDiscount(discount), Currency: currency}
	if service != nil {
		q.BasePrice = service.BasePrice
	}
	if slot != nil {
		q.Surcharge = slot.Surcharge
	}
	q.Subtotal = round2(q.BasePrice + q.Surcharge)
	q.DiscountAmount = round2(q.Subtotal * float64(q.Discount) / 100)
	q.Total = round2(q.Subtotal - q.DiscountAmount)
	return q
}

// ToMinorUnits converts an amount to the smallest currency unit (cents).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func clampDiscount(d int) int {
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
