package handlers

import (
	"net/http"
	"strconv"

	"homeserve/middleware"
	"homeserve/services/geo"
	"homeserve/services/listing"
	"homeserve/services/providers"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	svc     *providers.Service
	locator *geo.Locator
}

func NewProviderHandler(svc *providers.Service, locator *geo.Locator) *ProviderHandler {
	return &ProviderHandler{svc: svc, locator: locator}
}

// origin picks the caller's position: explicit ?lat&lon first, then the IP
// location, then the configured fallback.
func (h *ProviderHandler) origin(c *gin.Context) (geo.Point, geo.Source) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr == nil && lonErr == nil {
		return h.locator.Resolve(&lat, &lon)
	}
	if loc := middleware.GeoLocation(c); loc.Known() {
		p := loc.Point()
		return h.locator.Resolve(&p.Lat, &p.Lon)
	}
	return h.locator.Resolve(nil, nil)
}

func (h *ProviderHandler) Compare(c *gin.Context) {
	var q providers.CompareQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	origin, source := h.origin(c)
	rows, err := h.svc.Compare(origin, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"origin":         origin,
		"locationSource": source,
		"professionals":  rows,
	})
}

func (h *ProviderHandler) ListSaved(c *gin.Context) {
	var q listing.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.svc.ListSaved(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *ProviderHandler) Save(c *gin.Context) {
	var input struct {
		ProfessionalID string `json:"professionalId" binding:"required"`
		Notes          string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sp, err := h.svc.Save(c.Request.Context(), middleware.UserID(c), input.ProfessionalID, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

func (h *ProviderHandler) Unsave(c *gin.Context) {
	if err := h.svc.Unsave(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
