package wizard

import (
	"encoding/json"
	"testing"

	"homeserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, raw string) (StepPayload, error) {
	t.Helper()
	var env StepEnvelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env.Decode()
}

func TestStepEnvelope_Decode(t *testing.T) {
	p, err := decodeEnvelope(t, `{"step":1,"data":{"serviceId":"plumbing","timeSlotId":"2026-10-16@morning"}}`)
	require.NoError(t, err)
	sel, ok := p.(ServiceSelection)
	require.True(t, ok)
	assert.Equal(t, "plumbing", sel.ServiceID)
	assert.Nil(t, sel.ProfessionalID)

	p, err = decodeEnvelope(t, `{"step":2,"data":{"personalInfo":{"name":"Asha","city":"Nairobi"},"urgency":"high"}}`)
	require.NoError(t, err)
	patch := p.Patch()
	require.NotNil(t, patch.PersonalInfo)
	assert.Equal(t, "Nairobi", patch.PersonalInfo.City)
	assert.Equal(t, models.UrgencyHigh, *patch.Urgency)
	assert.Nil(t, patch.ServiceID)

	p, err = decodeEnvelope(t, `{"step":3,"data":{"paymentMethod":"wallet"}}`)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, p.Step())

	p, err = decodeEnvelope(t, `{"step":4,"data":{"termsAccepted":true}}`)
	require.NoError(t, err)
	assert.True(t, *p.Patch().TermsAccepted)
}

func TestStepEnvelope_DecodeErrors(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want error
	}{
		"unknown step":        {`{"step":7,"data":{}}`, ErrUnknownStep},
		"missing data":        {`{"step":1}`, ErrInvalidPayload},
		"missing service":     {`{"step":1,"data":{"professionalId":"pro-amina"}}`, ErrInvalidPayload},
		"field of other step": {`{"step":1,"data":{"serviceId":"plumbing","termsAccepted":true}}`, ErrInvalidPayload},
		"bad payment method":  {`{"step":3,"data":{"paymentMethod":"barter"}}`, ErrInvalidPayload},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeEnvelope(t, tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGate(t *testing.T) {
	d := models.NewBookingDraft()
	assert.NotEmpty(t, gate(models.StepService, d))
	assert.NotEmpty(t, gate(models.StepDetails, d))
	assert.Empty(t, gate(models.StepPayment, d))

	svc := "plumbing"
	d.ServiceID = &svc
	d.PersonalInfo.Name = " Asha "
	assert.Empty(t, gate(models.StepService, d))
	assert.Empty(t, gate(models.StepDetails, d))
}
