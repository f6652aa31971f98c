package handlers

import (
	"errors"
	"io"
	"net/http"

	"vendly/services/payment"
	"vendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives provider payment events. The provider retries on
// any non-2xx, so everything after a verified signature answers 200: an
// unknown charge or event type is the provider's noise, not our failure.
type WebhookHandler struct {
	Reconciler payment.Reconciler
	Logger     *zap.Logger
}

const signatureHeader = "X-Webhook-Signature"

func (h *WebhookHandler) ProviderEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable body", err.Error())
		return
	}

	if err := h.Reconciler.VerifyWebhook(payload, c.GetHeader(signatureHeader)); err != nil {
		respondServiceError(c, err)
		return
	}

	chargeID, providerStatus, err := payment.ParseWebhook(payload)
	if err != nil {
		if errors.Is(err, payment.ErrUnhandledEvent) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "malformed webhook", err.Error())
		return
	}

	if err := h.Reconciler.OnProviderEvent(c.Request.Context(), chargeID, providerStatus, payload); err != nil {
		h.Logger.Error("webhook reconciliation failed",
			zap.String("chargeID", chargeID),
			zap.String("providerStatus", providerStatus),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "reconciliation failed", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
