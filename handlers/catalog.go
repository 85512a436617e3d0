package handlers

import (
	"net/http"
	"strconv"
	"time"

	"homeserve/services/catalog"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
)

const maxSlotDays = 14

type CatalogHandler struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat, now: time.Now}
}

func (h *CatalogHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.catalog.Services()})
}

// Professionals lists professionals, optionally only those offering ?serviceId.
func (h *CatalogHandler) Professionals(c *gin.Context) {
	serviceID := c.Query("serviceId")
	if serviceID != "" {
		if _, err := h.catalog.Service(serviceID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"professionals": h.catalog.ProfessionalsFor(serviceID)})
}

// Slots lists appointment windows from ?from (YYYY-MM-DD, default today) for ?days days.
func (h *CatalogHandler) Slots(c *gin.Context) {
	from := h.now()
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSlotDays {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "days must be between 1 and 14")
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, gin.H{"slots": h.catalog.Slots(from, days)})
}
