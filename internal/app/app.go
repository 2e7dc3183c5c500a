package app

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teich/phone-gate-bridge/internal/config"
	httpx "github.com/teich/phone-gate-bridge/internal/http"
	"github.com/teich/phone-gate-bridge/internal/http/handlers"
	"github.com/teich/phone-gate-bridge/internal/http/middleware"
	"github.com/teich/phone-gate-bridge/internal/infrastructure/allowlist"
	"github.com/teich/phone-gate-bridge/internal/infrastructure/database"
	"github.com/teich/phone-gate-bridge/internal/infrastructure/repositories"
	"github.com/teich/phone-gate-bridge/internal/infrastructure/twilio"
	"github.com/teich/phone-gate-bridge/internal/infrastructure/unifi"
	"github.com/teich/phone-gate-bridge/internal/services"
)

// Run wires the components from the configuration and serves until the
// listener fails. The webhook endpoints bind locally; a tunnel provides the
// public ingress the signature check is anchored to.
func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	gdb, err := database.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}

	verifier := twilio.NewSignatureVerifier(cfg.TwilioAuthToken)
	callers := allowlist.NewFileSource(cfg.AllowedCallersFile)
	doors := unifi.NewClient(unifi.Config{
		Host:        cfg.AccessHost,
		Port:        cfg.AccessPort,
		Token:       cfg.AccessToken,
		Timeout:     cfg.AccessTimeout,
		InsecureTLS: cfg.AccessInsecureTLS,
	})
	events := repositories.NewEventRepository(gdb, cfg.EventRetention)

	flow := services.NewCallFlowService(callers, doors, events, services.CallFlowConfig{
		DoorName:  cfg.DoorName,
		ActorID:   cfg.ActorID,
		ActorName: cfg.ActorName,
		TTSVoice:  cfg.TTSVoice,
	})

	wh := handlers.NewWebhookHandlers(flow, verifier, cfg.PublicBaseURL)
	dh := handlers.NewDashboardHandlers(events, cfg.EventRetention)
	gate, err := middleware.NewDashboardGate(cfg.DashboardCIDRs)
	if err != nil {
		return err
	}

	r := httpx.BuildRouter(wh, dh, gate)

	addr := cfg.BindHost + ":" + cfg.Port
	log.Printf("listening on %s (door %q via %s:%d)", addr, cfg.DoorName, cfg.AccessHost, cfg.AccessPort)
	return http.ListenAndServe(addr, r)
}
