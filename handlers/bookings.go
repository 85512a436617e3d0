package handlers

import (
	"errors"
	"net/http"

	"homeserve/middleware"
	"homeserve/services/listing"
	"homeserve/services/payment"
	"homeserve/services/tracking"

	"github.com/gin-gonic/gin"
)

// BookingsEntryPath is the tracking list clients return to when live tracking is gone.
const BookingsEntryPath = "/api/bookings"

type BookingHandler struct {
	tracking *tracking.Service
	payments *payment.Service
}

func NewBookingHandler(tr *tracking.Service, payments *payment.Service) *BookingHandler {
	return &BookingHandler{tracking: tr, payments: payments}
}

// List is the tracking list: the caller's bookings, filterable by status (?category).
func (h *BookingHandler) List(c *gin.Context) {
	var q listing.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	bookings, err := h.tracking.List(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.tracking.Booking(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Tracking returns the live position of the assigned professional. Without
// live state the client is sent back to the tracking list.
func (h *BookingHandler) Tracking(c *gin.Context) {
	st, err := h.tracking.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, tracking.ErrTrackingNotFound) {
		c.Redirect(http.StatusSeeOther, BookingsEntryPath)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *BookingHandler) PaymentIntent(c *gin.Context) {
	pi, err := h.payments.CreateIntent(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pi)
}
