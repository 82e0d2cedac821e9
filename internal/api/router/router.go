package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-booking/internal/appointments"
	"github.com/wolfman30/clinic-booking/internal/chatbot"
	"github.com/wolfman30/clinic-booking/internal/http/httpjson"
	httpmiddleware "github.com/wolfman30/clinic-booking/internal/http/middleware"
	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/internal/users"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	UsersHandler        *users.Handler
	AppointmentsHandler *appointments.Handler
	ChatHandler         *chatbot.Handler
	Verifier            httpmiddleware.TokenVerifier
	MetricsHandler      http.Handler
	HTTPMetrics         *metrics.HTTPMetrics
	CORSAllowedOrigins  []string
	RateLimitRPS        float64
	RateLimitBurst      int

	// HealthChecks are run by /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.HTTPMetrics))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	// Public endpoints
	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			if cfg.RateLimitRPS > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
			}
			public.Post("/register", cfg.UsersHandler.Register)
			public.Post("/login", cfg.UsersHandler.Login)
		})

		// Authenticated API routes
		api.Group(func(authed chi.Router) {
			authed.Use(httpmiddleware.Authenticate(cfg.Verifier))

			authed.Route("/appointments", func(r chi.Router) {
				r.Get("/", cfg.AppointmentsHandler.List)
				r.Post("/", cfg.AppointmentsHandler.Create)
				r.With(httpmiddleware.RequireRoles(identity.RoleAdmin, identity.RoleSuperAdmin)).
					Put("/{id}", cfg.AppointmentsHandler.Update)
				r.Delete("/{id}", cfg.AppointmentsHandler.Delete)
			})

			if cfg.ChatHandler != nil {
				authed.Route("/chat", func(r chi.Router) {
					r.Group(func(limited chi.Router) {
						if cfg.RateLimitRPS > 0 {
							limited.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
						}
						limited.Post("/", cfg.ChatHandler.Chat)
					})
					r.Get("/ws", cfg.ChatHandler.ServeWS)
					r.Delete("/session", cfg.ChatHandler.ResetSession)
				})
			}

			authed.Group(func(super chi.Router) {
				super.Use(httpmiddleware.RequireRoles(identity.RoleSuperAdmin))
				super.Post("/admin/create-user", cfg.UsersHandler.CreateStaff)
				super.Get("/users", cfg.UsersHandler.ListStaff)
				super.Delete("/users/{id}", cfg.UsersHandler.Delete)
			})
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := map[string]string{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				body[name] = "unavailable"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}
		httpjson.Write(w, status, body)
	}
}
