package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

type PaymentHandler struct {
	checkout     *usecase.MobileCheckout
	pollInterval time.Duration
}

func NewPaymentHandler(checkout *usecase.MobileCheckout, pollInterval time.Duration) *PaymentHandler {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &PaymentHandler{checkout: checkout, pollInterval: pollInterval}
}

type mobileInitiateReq struct {
	Items           []lineItemReq `json:"items" binding:"required"`
	Currency        string        `json:"currency" binding:"required"`
	Provider        string        `json:"provider" binding:"required"`
	Phone           string        `json:"phone"`
	ShippingAddress string        `json:"shipping_address"`
	Notes           string        `json:"notes"`
}

// Initiate starts a mobile-money checkout. No order exists yet; the client
// polls the returned reference until the provider answers.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	var req mobileInitiateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	ref, err := h.checkout.Initiate(ctx, usecase.MobileInitiateInput{
		UserID:          userID,
		Email:           email,
		Items:           toLineItems(req.Items),
		Currency:        req.Currency,
		Provider:        req.Provider,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"reference":        ref,
		"poll_interval_ms": h.pollInterval.Milliseconds(),
	})
}

// Poll runs one provider status round trip for the reference.
func (h *PaymentHandler) Poll(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	res, err := h.checkout.Poll(ctx, c.Param("reference"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := gin.H{"state": res.State}
	if res.OrderID != "" {
		out["order_id"] = res.OrderID
	}
	c.JSON(http.StatusOK, out)
}

// Retry re-initiates a timed-out attempt with a fresh reference.
func (h *PaymentHandler) Retry(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	ref, err := h.checkout.Retry(ctx, c.Param("reference"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"reference":        ref,
		"poll_interval_ms": h.pollInterval.Milliseconds(),
	})
}
