package handlers

import (
	"net/http"

	"vendly/services/booking"
	"vendly/services/payment"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes the deposit initiation and the synchronous confirm
// path. Webhooks land on WebhookHandler.
type PaymentHandler struct {
	Bookings   booking.Service
	Reconciler payment.Reconciler
}

// InitiateDeposit opens a deposit charge for the booking.
func (h *PaymentHandler) InitiateDeposit(c *gin.Context) {
	p, err := h.Bookings.InitiateDepositPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": p})
}

// Confirm polls the provider for the charge and applies the result. Used by
// clients right after a card attempt, ahead of the webhook.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var input struct {
		ChargeID string `json:"chargeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	p, err := h.Reconciler.OnConfirm(c.Request.Context(), input.ChargeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}
