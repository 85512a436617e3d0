package handlers

import (
	"context"
	"errors"
	"net/http"

	"homeserve/middleware"
	"homeserve/models"
	"homeserve/services/storage"
	"homeserve/services/wizard"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WizardEntryPath is where clients land when a confirmation is missing.
const WizardEntryPath = "/api/booking/wizard"

// WizardHandler serves the booking wizard endpoints.
type WizardHandler struct {
	svc    *wizard.Service
	photos storage.PhotoStore
}

func NewWizardHandler(svc *wizard.Service, photos storage.PhotoStore) *WizardHandler {
	return &WizardHandler{svc: svc, photos: photos}
}

func (h *WizardHandler) Start(c *gin.Context) {
	sess, err := h.svc.Start(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.svc.Describe(sess))
}

func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.svc.View(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WizardHandler) Update(c *gin.Context) {
	var patch models.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Describe(sess))
}

// UpdateStep accepts {"step": n, "data": {...}} where data is the payload of step n.
func (h *WizardHandler) UpdateStep(c *gin.Context) {
	var env wizard.StepEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		badRequest(c, err)
		return
	}
	payload, err := env.Decode()
	if err != nil {
		respondError(c, err)
		return
	}
	sess, err := h.svc.UpdateStep(c.Request.Context(), middleware.UserID(c), c.Param("id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Describe(sess))
}

func (h *WizardHandler) Next(c *gin.Context) {
	t, err := h.svc.Next(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *WizardHandler) Back(c *gin.Context) {
	t, err := h.svc.Back(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *WizardHandler) ApplyPromo(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.svc.ApplyPromo(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Describe(sess))
}

// UploadPhoto stores the multipart "photo" file and appends its reference to the draft.
func (h *WizardHandler) UploadPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	userID, id := middleware.UserID(c), c.Param("id")
	if _, err := h.svc.Get(ctx, userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxPhotoSize+1<<20)
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "photo not provided", err.Error())
		return
	}
	if fileHeader.Size > storage.MaxPhotoSize {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "photo is too large", "")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable photo", err.Error())
		return
	}
	defer file.Close()

	ref, err := h.photos.SavePhoto(ctx, "wizard/"+id, fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	sess, err := h.svc.AddPhoto(ctx, userID, id, ref)
	if err != nil {
		if derr := h.photos.DeletePhoto(context.WithoutCancel(ctx), ref); derr != nil {
			getLogger(c).Warn("orphaned photo left in storage", zap.String("ref", ref), zap.Error(derr))
		}
		respondError(c, err)
		return
	}
	getLogger(c).Info("photo attached", zap.String("sessionId", id), zap.String("ref", ref))
	c.JSON(http.StatusCreated, gin.H{"photo": ref, "view": h.svc.Describe(sess)})
}

// Submit blocks for the configured submit delay and returns the one-shot confirmation token.
func (h *WizardHandler) Submit(c *gin.Context) {
	conf, err := h.svc.Submit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"confirmationToken": conf.Token,
		"bookingId":         conf.BookingID,
		"quote":             conf.Quote,
	})
}

func (h *WizardHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirmation hands the submitted booking to the confirmation view once.
// A missing or consumed token sends the client back to the start of the flow.
func (h *WizardHandler) Confirmation(c *gin.Context) {
	conf, err := h.svc.TakeConfirmation(c.Request.Context(), middleware.UserID(c), c.Param("token"))
	if errors.Is(err, wizard.ErrHandoffNotFound) {
		c.Redirect(http.StatusSeeOther, WizardEntryPath)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}
