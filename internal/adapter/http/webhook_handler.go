package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/payment"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/logging"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/security"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// WebhookHandler receives the provider's signed payment callbacks. It is the
// same idempotent finalizer the status-topic consumer uses: the order is
// never touched when it already exists.
type WebhookHandler struct {
	checkout *usecase.MobileCheckout
	verifier *security.WebhookVerifier
}

func NewWebhookHandler(checkout *usecase.MobileCheckout, verifier *security.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{checkout: checkout, verifier: verifier}
}

func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 64*1024))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if err := h.verifier.Verify(body, c.GetHeader("X-Signature")); err != nil {
		logging.From(c).Warn("webhook signature rejected", "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
		return
	}

	var ev usecase.PaymentStatusMsg
	if err := json.Unmarshal(body, &ev); err != nil || ev.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	switch payment.Classify(ev.Status) {
	case usecase.ProviderCompleted:
		err = h.checkout.Confirm(ctx, ev.Reference, true, webhookCompletedAt(ev))
	case usecase.ProviderFailed:
		err = h.checkout.Confirm(ctx, ev.Reference, false, webhookCompletedAt(ev))
	default:
		// non-terminal callbacks are acknowledged and dropped
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func webhookCompletedAt(ev usecase.PaymentStatusMsg) time.Time {
	if ev.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, ev.CompletedAt); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
