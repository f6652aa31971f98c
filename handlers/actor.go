package handlers

import (
	"net/http"

	"vendly/models"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// actorFrom reads the acting identity from the request headers. Which role
// the caller acts as is always explicit; it is never guessed from the payload.
// Returns false after writing the error response when either header is
// missing or the role is unknown.
func actorFrom(c *gin.Context) (models.Actor, bool) {
	id := c.GetHeader("X-Actor-ID")
	role := models.Role(c.GetHeader("X-Acting-As"))
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing actor", "X-Actor-ID header is required")
		return models.Actor{}, false
	}
	if role != models.RoleCustomer && role != models.RoleVendor {
		utils.JSONError(c, http.StatusBadRequest, "invalid acting role", "X-Acting-As must be customer or vendor")
		return models.Actor{}, false
	}
	c.Set("actorID", id)
	return models.Actor{ID: id, Role: role}, true
}
