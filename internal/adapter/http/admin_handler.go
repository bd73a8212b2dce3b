package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// AdminHandler exposes the office payment-confirmation path. Routes using it
// require the orders.admin permission; ownership scoping is deliberately
// bypassed.
type AdminHandler struct {
	markPaid *usecase.MarkPaid
}

func NewAdminHandler(markPaid *usecase.MarkPaid) *AdminHandler {
	return &AdminHandler{markPaid: markPaid}
}

func (h *AdminHandler) MarkPaid(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.markPaid.Execute(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}
