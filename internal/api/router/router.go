package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/hvac-dispatch/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/hvac-dispatch/internal/http/middleware"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger             *logging.Logger
	Schedule           *handlers.ScheduleHandler
	BookingUserPush    http.Handler
	BookingAdminPush   http.Handler
	WebhookLimiter     *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Pub/Sub push endpoints
	if cfg.BookingUserPush != nil || cfg.BookingAdminPush != nil {
		r.Route("/webhooks/booking", func(wh chi.Router) {
			if cfg.WebhookLimiter != nil {
				wh.Use(httpmiddleware.RateLimit(cfg.WebhookLimiter))
			}
			if cfg.BookingUserPush != nil {
				wh.Post("/user", cfg.BookingUserPush.ServeHTTP)
			}
			if cfg.BookingAdminPush != nil {
				wh.Post("/admin", cfg.BookingAdminPush.ServeHTTP)
			}
		})
	}

	if cfg.Schedule != nil {
		r.Mount("/api", cfg.Schedule.Routes())
	}

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
