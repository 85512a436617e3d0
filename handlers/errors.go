package handlers

import (
	"errors"
	"net/http"

	"homeserve/services/catalog"
	"homeserve/services/chat"
	"homeserve/services/listing"
	"homeserve/services/notes"
	"homeserve/services/payment"
	"homeserve/services/pricing"
	"homeserve/services/providers"
	"homeserve/services/storage"
	"homeserve/services/tracking"
	"homeserve/services/wizard"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorStatuses maps domain errors to HTTP statuses. The first match wins.
var errorStatuses = []errorMapping{
	{wizard.ErrSessionNotFound, http.StatusNotFound, ""},
	{wizard.ErrHandoffNotFound, http.StatusNotFound, ""},
	{wizard.ErrConcurrentUpdate, http.StatusConflict, ""},
	{wizard.ErrSubmitInProgress, http.StatusConflict, ""},
	{wizard.ErrNotFinalStep, http.StatusUnprocessableEntity, ""},
	{wizard.ErrTermsNotAccepted, http.StatusUnprocessableEntity, "Please accept the terms and conditions"},
	{wizard.ErrUnknownReference, http.StatusUnprocessableEntity, ""},
	{wizard.ErrEmptyUpdate, http.StatusBadRequest, ""},
	{wizard.ErrUnknownStep, http.StatusBadRequest, ""},
	{wizard.ErrInvalidPayload, http.StatusBadRequest, ""},
	{pricing.ErrInvalidPromoCode, http.StatusUnprocessableEntity, "Invalid promo code"},
	{pricing.ErrPromoAlreadyApplied, http.StatusUnprocessableEntity, "Promo code already applied"},
	{catalog.ErrServiceNotFound, http.StatusNotFound, ""},
	{catalog.ErrProfessionalNotFound, http.StatusNotFound, ""},
	{catalog.ErrSlotNotFound, http.StatusNotFound, ""},
	{listing.ErrUnsupportedSort, http.StatusBadRequest, ""},
	{listing.ErrUnsupportedOrder, http.StatusBadRequest, ""},
	{providers.ErrProfessionalNotFound, http.StatusNotFound, ""},
	{providers.ErrNotSaved, http.StatusNotFound, ""},
	{notes.ErrNoteNotFound, http.StatusNotFound, ""},
	{notes.ErrEmptyNote, http.StatusUnprocessableEntity, ""},
	{tracking.ErrBookingNotFound, http.StatusNotFound, ""},
	{tracking.ErrTrackingNotFound, http.StatusNotFound, ""},
	{payment.ErrPaymentsDisabled, http.StatusServiceUnavailable, ""},
	{payment.ErrBookingNotFound, http.StatusNotFound, ""},
	{payment.ErrNotCardPayment, http.StatusUnprocessableEntity, ""},
	{payment.ErrNotPayable, http.StatusConflict, ""},
	{chat.ErrConversationNotFound, http.StatusNotFound, ""},
	{chat.ErrEmptyMessage, http.StatusUnprocessableEntity, ""},
	{chat.ErrMessageTooLong, http.StatusUnprocessableEntity, ""},
	{chat.ErrUnknownSender, http.StatusBadRequest, ""},
	{storage.ErrUnsupportedType, http.StatusUnsupportedMediaType, ""},
	{storage.ErrEmptyUpload, http.StatusBadRequest, ""},
}

func lookupError(err error) (int, string) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			if m.message != "" {
				return m.status, m.message
			}
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes err as a JSON error with the status of its domain sentinel.
func respondError(c *gin.Context, err error) {
	status, message := lookupError(err)
	utils.JSONError(c, status, message, err.Error())
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}
