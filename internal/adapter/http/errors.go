package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// writeError maps core errors onto HTTP statuses with enough detail for the
// client to pick a corrective action.
func writeError(c *gin.Context, err error) {
	var pnf *usecase.ProductNotFoundError
	var ins *usecase.InsufficientStockError
	var illegal *domain.IllegalTransitionError
	var provider *usecase.ProviderError

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, usecase.ErrEmptyItems),
		errors.Is(err, usecase.ErrShippingAddressRequired),
		errors.Is(err, usecase.ErrPhoneRequired),
		errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": err.Error()})
	case errors.As(err, &pnf):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product_not_found", "product_id": pnf.ProductID})
	case errors.As(err, &ins):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "insufficient_stock", "product_id": ins.ProductID,
			"requested": ins.Requested, "available": ins.Available,
		})
	case errors.As(err, &illegal):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal_transition", "from": illegal.From, "to": illegal.To})
	case errors.Is(err, usecase.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "already_paid"})
	case errors.Is(err, usecase.ErrOrderNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": "order_not_editable"})
	case errors.Is(err, usecase.ErrRetryLimit):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "retry_limit"})
	case errors.As(err, &provider):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
