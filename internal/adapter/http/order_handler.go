package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

type OrderHandler struct {
	place      *usecase.PlaceOrder
	transition *usecase.TransitionOrder
	update     *usecase.UpdateOrder
	query      usecase.OrderRepo
}

func NewOrderHandler(place *usecase.PlaceOrder, transition *usecase.TransitionOrder, update *usecase.UpdateOrder, query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{place: place, transition: transition, update: update, query: query}
}

type createOrderReq struct {
	Items           []lineItemReq `json:"items" binding:"required"`
	Currency        string        `json:"currency" binding:"required"`
	PaymentMethod   string        `json:"payment_method" binding:"required"`
	ShippingAddress string        `json:"shipping_address"`
	Notes           string        `json:"notes"`
}

type orderResp struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	AmountCents     int64          `json:"amount_cents"`
	Currency        string         `json:"currency"`
	PaymentMethod   string         `json:"payment_method"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes,omitempty"`
	Items           []orderItemOut `json:"items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type orderItemOut struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

func toOrderResp(o *domain.Order) orderResp {
	items := make([]orderItemOut, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemOut{ProductID: it.ProductID, Quantity: it.Quantity, PriceCents: it.UnitPriceCents})
	}
	return orderResp{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		AmountCents:     o.Amount.Cents,
		Currency:        o.Amount.Currency,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// CreateOrder is the immediate-method checkout: the order row exists as soon
// as pricing validation passes, with payment still pending.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.place.Execute(ctx, usecase.PlaceOrderInput{
		UserID:          userID,
		Email:           email,
		Items:           toLineItems(req.Items),
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResp(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListByUser(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResp, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResp(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

type patchOrderReq struct {
	ShippingAddress *string `json:"shipping_address"`
	Notes           *string `json:"notes"`
}

func (h *OrderHandler) PatchOrder(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req patchOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.update.Execute(ctx, c.Param("id"), userID, usecase.UpdateOrderInput{
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

type transitionReq struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

func (h *OrderHandler) TransitionOrder(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.transition.Execute(ctx, c.Param("id"), userID, domain.Status(req.Status), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}
