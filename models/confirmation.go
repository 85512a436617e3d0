package models

import "time"

// Confirmation is the one-shot payload handed from a submitted wizard to the
// confirmation view.
type Confirmation struct {
	Token        string        `json:"token"`
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	BookingID    string        `json:"bookingId"`
	Draft        BookingDraft  `json:"draft"`
	Quote        Quote         `json:"quote"`
	Service      *Service      `json:"service,omitempty"`
	Professional *Professional `json:"professional,omitempty"`
	TimeSlot     *TimeSlot     `json:"timeSlot,omitempty"`
	SubmittedAt  time.Time     `json:"submittedAt"`
}
