package models

import "fmt"

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentCash         PaymentMethod = "cash"
	PaymentWallet       PaymentMethod = "wallet"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentWallet, PaymentBankTransfer:
		return true
	}
	return false
}

type PersonalInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

type NotificationPrefs struct {
	Email     bool `json:"email"`
	SMS       bool `json:"sms"`
	Reminders bool `json:"reminders"`
}

// BookingDraft is the in-progress booking owned by a wizard session.
type BookingDraft struct {
	ServiceID      *string           `json:"serviceId"`
	ProfessionalID *string           `json:"professionalId"`
	TimeSlotID     *string           `json:"timeSlotId"`
	PersonalInfo   PersonalInfo      `json:"personalInfo"`
	Urgency        Urgency           `json:"urgency"`
	Description    string            `json:"description"`
	Photos         []string          `json:"photos"`
	PaymentMethod  PaymentMethod     `json:"paymentMethod"`
	PromoCode      string            `json:"promoCode"`
	PromoApplied   bool              `json:"promoApplied"`
	Discount       int               `json:"discount"`
	TermsAccepted  bool              `json:"termsAccepted"`
	Notifications  NotificationPrefs `json:"notifications"`
}

// NewBookingDraft returns a draft with every field at its default.
func NewBookingDraft() BookingDraft {
	return BookingDraft{
		Urgency:       UrgencyMedium,
		Photos:        []string{},
		PaymentMethod: PaymentCard,
		Notifications: NotificationPrefs{Email: true, SMS: true, Reminders: true},
	}
}

// DraftPatch carries the fields of a partial draft update. Nil means "not present".
// Promo fields are absent on purpose: they only change through promo application.
type DraftPatch struct {
	ServiceID      *string            `json:"serviceId,omitempty"`
	ProfessionalID *string            `json:"professionalId,omitempty"`
	TimeSlotID     *string            `json:"timeSlotId,omitempty"`
	PersonalInfo   *PersonalInfo      `json:"personalInfo,omitempty"`
	Urgency        *Urgency           `json:"urgency,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Photos         []string           `json:"photos,omitempty"`
	PaymentMethod  *PaymentMethod     `json:"paymentMethod,omitempty"`
	TermsAccepted  *bool              `json:"termsAccepted,omitempty"`
	Notifications  *NotificationPrefs `json:"notifications,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p DraftPatch) Empty() bool {
	return p.ServiceID == nil && p.ProfessionalID == nil && p.TimeSlotID == nil &&
		p.PersonalInfo == nil && p.Urgency == nil && p.Description == nil &&
		p.Photos == nil && p.PaymentMethod == nil && p.TermsAccepted == nil &&
		p.Notifications == nil
}

// Validate checks enum values carried by the patch.
func (p DraftPatch) Validate() error {
	if p.Urgency != nil && !p.Urgency.Valid() {
		return fmt.Errorf("unknown urgency %q", *p.Urgency)
	}
	if p.PaymentMethod != nil && !p.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q", *p.PaymentMethod)
	}
	return nil
}

// Merge shallow-merges the patch into the draft. Sub-records and the photo list
// are replaced wholesale when present.
func (d *BookingDraft) Merge(p DraftPatch) {
	if p.ServiceID != nil {
		d.ServiceID = optional(*p.ServiceID)
	}
	if p.ProfessionalID != nil {
		d.ProfessionalID = optional(*p.ProfessionalID)
	}
	if p.TimeSlotID != nil {
		d.TimeSlotID = optional(*p.TimeSlotID)
	}
	if p.PersonalInfo != nil {
		d.PersonalInfo = *p.PersonalInfo
	}
	if p.Urgency != nil {
		d.Urgency = *p.Urgency
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Photos != nil {
		d.Photos = append([]string{}, p.Photos...)
	}
	if p.PaymentMethod != nil {
		d.PaymentMethod = *p.PaymentMethod
	}
	if p.TermsAccepted != nil {
		d.TermsAccepted = *p.TermsAccepted
	}
	if p.Notifications != nil {
		d.Notifications = *p.Notifications
	}
}

// optional maps an empty string to a cleared reference.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// StringValue dereferences a nullable reference.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
