package handlers

import (
	"net/http"
	"time"

	"vendly/models"
	"vendly/services/availability"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler exposes template management and slot queries.
type AvailabilityHandler struct {
	Templates availability.TemplateService
}

// UpsertTemplate creates or replaces a recurring availability template and
// regenerates the affected day's slots.
func (h *AvailabilityHandler) UpsertTemplate(c *gin.Context) {
	var tpl models.AvailabilityTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleVendor || actor.ID != tpl.VendorID {
		utils.JSONError(c, http.StatusForbidden, "not permitted", "only the vendor may manage their templates")
		return
	}

	if err := h.Templates.UpsertTemplate(c.Request.Context(), &tpl); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

func (h *AvailabilityHandler) ListTemplates(c *gin.Context) {
	vendorID := c.Param("vendorID")
	templates, err := h.Templates.ListTemplates(c.Request.Context(), vendorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *AvailabilityHandler) DeleteTemplate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleVendor {
		utils.JSONError(c, http.StatusForbidden, "not permitted", "only the vendor may manage their templates")
		return
	}
	if err := h.Templates.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// QuerySlots returns the slots effective on a date for a vendor, optionally
// narrowed to one service. Date format is 2006-01-02; empty means today.
func (h *AvailabilityHandler) QuerySlots(c *gin.Context) {
	vendorID := c.Param("vendorID")
	serviceID := c.Query("serviceId")

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid date", "expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	slots, err := h.Templates.SlotsOn(c.Request.Context(), vendorID, serviceID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "slots": slots})
}
