package models

import "time"

// Wizard steps.
const (
	StepService = 1 // service, professional and time slot
	StepDetails = 2 // personal info, urgency, description, photos
	StepPayment = 3 // payment method, promo code, notifications
	StepReview  = 4 // summary and terms
	StepCount   = StepReview
	FirstStep   = StepService
)

// WizardSession holds a booking draft and the wizard's position.
type WizardSession struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Step      int          `json:"step"`
	Draft     BookingDraft `json:"draft"`
	Loading   bool         `json:"loading"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Quote is the derived price of a draft. It is recomputed on every read.
type Quote struct {
	BasePrice      float64 `json:"basePrice"`
	Surcharge      float64 `json:"surcharge"`
	Subtotal       float64 `json:"subtotal"`
	Discount       int     `json:"discount"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
	Currency       string  `json:"currency"`
}

// Transition is the outcome of a next/back request. Blocked navigation is not an
// error: Moved is false and Reason says why.
type Transition struct {
	Session WizardSession `json:"session"`
	Moved   bool          `json:"moved"`
	Reason  string        `json:"reason,omitempty"`
}
