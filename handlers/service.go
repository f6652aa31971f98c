package handlers

import (
	"net/http"

	serviceRepo "vendly/database/repository/service"
	"vendly/models"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// ServiceHandler manages a vendor's service catalogue.
type ServiceHandler struct {
	Services serviceRepo.Repository
}

func (h *ServiceHandler) Upsert(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleVendor || actor.ID != svc.VendorID {
		utils.JSONError(c, http.StatusForbidden, "not permitted", "only the vendor may manage their services")
		return
	}

	if err := h.Services.Upsert(c.Request.Context(), &svc); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.Services.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

func (h *ServiceHandler) ListByVendor(c *gin.Context) {
	services, err := h.Services.ListActiveByVendor(c.Request.Context(), c.Param("vendorID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleVendor {
		utils.JSONError(c, http.StatusForbidden, "not permitted", "only the vendor may manage their services")
		return
	}
	if err := h.Services.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
