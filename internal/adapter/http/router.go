package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/http/middleware"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Orders   *OrderHandler
	Payments *PaymentHandler
	Webhooks *WebhookHandler
	Admin    *AdminHandler
	Tokens   *TokenHandler
}

func NewRouter(h Handlers, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// scraped by Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", h.Tokens.IssueToken)

	// provider callbacks authenticate via HMAC signature, not bearer tokens
	r.POST("/v1/webhooks/payment", h.Webhooks.HandlePayment)

	v1 := r.Group("/v1")
	{
		orders := v1.Group("", authz.Require("orders.read"))
		orders.GET("/orders", h.Orders.ListOrders)
		orders.GET("/orders/:id", h.Orders.GetOrder)

		write := v1.Group("", authz.Require("orders.write"))
		write.POST("/orders", h.Orders.CreateOrder)
		write.PATCH("/orders/:id", h.Orders.PatchOrder)
		write.POST("/orders/:id/status", h.Orders.TransitionOrder)
		write.POST("/payments/mobile", h.Payments.Initiate)
		write.GET("/payments/mobile/:reference", h.Payments.Poll)
		write.POST("/payments/mobile/:reference/retry", h.Payments.Retry)

		admin := v1.Group("/admin", authz.Require("orders.admin"))
		admin.POST("/orders/:id/mark-paid", h.Admin.MarkPaid)
	}

	return r
}
