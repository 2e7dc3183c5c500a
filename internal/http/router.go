package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/teich/phone-gate-bridge/internal/http/handlers"
	"github.com/teich/phone-gate-bridge/internal/http/middleware"
)

// BuildRouter wires the webhook, health, and dashboard routes
func BuildRouter(wh *handlers.WebhookHandlers, dh *handlers.DashboardHandlers, gate *middleware.DashboardGate) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// The origin gate must see the socket peer address. Trusting proxies
	// would let any caller pick their own address via X-Forwarded-For.
	_ = r.SetTrustedProxies(nil)

	r.GET("/healthz", wh.Health)

	tw := r.Group("/twilio")
	tw.POST("/voice", wh.Voice)
	tw.POST("/voice/confirm", wh.Confirm)

	r.GET("/dashboard", gate.Gate(), dh.Show)

	return r
}
