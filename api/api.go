// Package api exposes the credential verification and bot-link endpoints
// over HTTP. Handlers are stateless: each request reads its own payload and
// the immutable allow-list, so concurrent requests never interfere.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/BasilOkoth/digitest/botlink"
	"github.com/BasilOkoth/digitest/internal/config"
	"github.com/BasilOkoth/digitest/origin"
	"github.com/BasilOkoth/digitest/token"
)

// version reported by the health endpoint.
const version = "1.0.0"

// API holds the dependencies needed by the REST handlers.
type API struct {
	cfg         config.Config
	allow       *origin.AllowList
	issuer      *token.Issuer
	links       *botlink.Generator
	audit       *auditLogger
	verifyDelay time.Duration
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithVerifyDelay overrides the simulated upstream verification latency.
// Tests set this to 0.
func WithVerifyDelay(d time.Duration) Option {
	return func(a *API) {
		a.verifyDelay = d
	}
}

// New creates a new API instance.
func New(cfg config.Config, allow *origin.AllowList, issuer *token.Issuer, opts ...Option) *API {
	a := &API{
		cfg:         cfg,
		allow:       allow,
		issuer:      issuer,
		links:       botlink.NewGenerator(issuer),
		verifyDelay: cfg.VerifyDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted. The origin gate
// applies uniformly; there is no per-route override.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.OriginMiddleware)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/redoc",
	}, nil))

	r.Post("/verify-token", a.VerifyToken)
	r.Post("/get-bot-config", a.GetBotConfig)
	r.Post("/generate-bot-link", a.GenerateBotLink)
	r.Get("/get-affiliate-code", a.GetAffiliateCode)
	r.Post("/track-referral", a.TrackReferral)
	r.Get("/health", a.Health)
	r.Get("/test-domain", a.TestDomain)

	r.NotFound(a.NotFound)
	r.MethodNotAllowed(a.NotFound)

	return r
}
