package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"homeserve/models"
)

// StepPayload is the typed data one wizard step contributes to the draft.
type StepPayload interface {
	Step() int
	Patch() models.DraftPatch
}

// ServiceSelection is the step 1 payload.
type ServiceSelection struct {
	ServiceID      string  `json:"serviceId"`
	ProfessionalID *string `json:"professionalId"`
	TimeSlotID     *string `json:"timeSlotId"`
}

func (ServiceSelection) Step() int { return models.StepService }

func (p ServiceSelection) Patch() models.DraftPatch {
	id := p.ServiceID
	return models.DraftPatch{ServiceID: &id, ProfessionalID: p.ProfessionalID, TimeSlotID: p.TimeSlotID}
}

// PersonalDetails is the step 2 payload.
type PersonalDetails struct {
	PersonalInfo models.PersonalInfo `json:"personalInfo"`
	Urgency      *models.Urgency     `json:"urgency"`
	Description  *string             `json:"description"`
	Photos       []string            `json:"photos"`
}

func (PersonalDetails) Step() int { return models.StepDetails }

func (p PersonalDetails) Patch() models.DraftPatch {
	info := p.PersonalInfo
	return models.DraftPatch{PersonalInfo: &info, Urgency: p.Urgency, Description: p.Description, Photos: p.Photos}
}

// PaymentOptions is the step 3 payload. Promo codes go through ApplyPromo.
type PaymentOptions struct {
	PaymentMethod models.PaymentMethod      `json:"paymentMethod"`
	Notifications *models.NotificationPrefs `json:"notifications"`
}

func (PaymentOptions) Step() int { return models.StepPayment }

func (p PaymentOptions) Patch() models.DraftPatch {
	method := p.PaymentMethod
	return models.DraftPatch{PaymentMethod: &method, Notifications: p.Notifications}
}

// ReviewAcceptance is the step 4 payload.
type ReviewAcceptance struct {
	TermsAccepted bool `json:"termsAccepted"`
}

func (ReviewAcceptance) Step() int { return models.StepReview }

func (p ReviewAcceptance) Patch() models.DraftPatch {
	accepted := p.TermsAccepted
	return models.DraftPatch{TermsAccepted: &accepted}
}

// StepEnvelope is the wire form of a step payload: {"step": n, "data": {...}}.
type StepEnvelope struct {
	Step int             `json:"step"`
	Data json.RawMessage `json:"data"`
}

// Decode resolves the envelope into the payload type for its step.
func (e StepEnvelope) Decode() (StepPayload, error) {
	if len(e.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data for step %d", ErrInvalidPayload, e.Step)
	}
	switch e.Step {
	case models.StepService:
		var p ServiceSelection
		if err := decodeStrict(e.Data, &p); err != nil {
			return nil, err
		}
		if strings.TrimSpace(p.ServiceID) == "" {
			return nil, fmt.Errorf("%w: serviceId is required", ErrInvalidPayload)
		}
		return p, nil
	case models.StepDetails:
		var p PersonalDetails
		if err := decodeStrict(e.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case models.StepPayment:
		var p PaymentOptions
		if err := decodeStrict(e.Data, &p); err != nil {
			return nil, err
		}
		if !p.PaymentMethod.Valid() {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayload, p.PaymentMethod)
		}
		return p, nil
	case models.StepReview:
		var p ReviewAcceptance
		if err := decodeStrict(e.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStep, e.Step)
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// gate returns why the wizard cannot leave step, or "" when it can.
func gate(step int, d models.BookingDraft) string {
	switch step {
	case models.StepService:
		if d.ServiceID == nil {
			return "Please select a service to continue"
		}
	case models.StepDetails:
		if strings.TrimSpace(d.PersonalInfo.Name) == "" {
			return "Please enter your name to continue"
		}
	}
	return ""
}
