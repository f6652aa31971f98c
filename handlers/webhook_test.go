package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendly/models"
	"vendly/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recordingReconciler verifies signatures for real and records applied events.
type recordingReconciler struct {
	secret  string
	applied []string
}

func (r *recordingReconciler) VerifyWebhook(payload []byte, signature string) error {
	if r.secret == "" {
		return nil
	}
	return payment.VerifySignature(payload, signature, r.secret)
}

func (r *recordingReconciler) OnProviderEvent(_ context.Context, chargeID, providerStatus string, _ []byte) error {
	r.applied = append(r.applied, chargeID+":"+providerStatus)
	return nil
}

func (r *recordingReconciler) OnConfirm(context.Context, string) (*models.Payment, error) {
	return nil, nil
}

func (r *recordingReconciler) RequestRefund(context.Context, string, float64, string) (*models.Payment, error) {
	return nil, nil
}

func webhookRouter(rec *recordingReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &WebhookHandler{Reconciler: rec, Logger: zap.NewNop()}
	r.POST("/api/payments/webhook", h.ProviderEvent)
	return r
}

func post(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func hmacHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignedEventApplied(t *testing.T) {
	rec := &recordingReconciler{secret: "whsec_test"}
	router := webhookRouter(rec)
	body := []byte(`{"type":"charge.succeeded","data":{"object":{"id":"ch_1","status":"succeeded"}}}`)

	w := post(router, body, hmacHex(body, "whsec_test"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if len(rec.applied) != 1 || rec.applied[0] != "ch_1:successful" {
		t.Errorf("applied = %v", rec.applied)
	}
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	rec := &recordingReconciler{secret: "whsec_test"}
	router := webhookRouter(rec)
	body := []byte(`{"type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`)

	for _, sig := range []string{"", "deadbeef", hmacHex(body, "wrong_secret")} {
		w := post(router, body, sig)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("signature %q: status = %d, want 401", sig, w.Code)
		}
	}
	if len(rec.applied) != 0 {
		t.Errorf("unverified events reached the reconciler: %v", rec.applied)
	}
}

func TestWebhookUnhandledTypeAcknowledged(t *testing.T) {
	rec := &recordingReconciler{}
	router := webhookRouter(rec)
	body := []byte(`{"type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	w := post(router, body, "")
	if w.Code != http.StatusOK {
		t.Errorf("unhandled event: status = %d, want 200 so the provider stops retrying", w.Code)
	}
	if len(rec.applied) != 0 {
		t.Errorf("unhandled event applied: %v", rec.applied)
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	router := webhookRouter(&recordingReconciler{})

	w := post(router, []byte("not json"), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", w.Code)
	}
}
