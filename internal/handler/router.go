package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/infra/observability"
	"github.com/boddenberg/treasury-stress-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The /v1/treasury routes require a Bearer token when jwtSecret is set.
func NewRouter(svc *service.TreasuryService, metrics *observability.Metrics, logger *zap.Logger, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/treasury", treasuryMetricsHandler(metrics))

		r.Route("/treasury", func(r chi.Router) {
			if svc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "treasury service not configured")
				}))
				return
			}
			if jwtSecret != "" {
				r.Use(JWTAuthMiddleware([]byte(jwtSecret), logger))
			}

			r.Post("/simulate", simulateHandler(svc, logger))
			r.Post("/compare", compareHandler(svc, logger))
			r.Post("/report", reportHandler(svc, logger))
			r.Get("/aging", agingHandler(svc, logger))
			r.Get("/analytics", analyticsHandler(svc, logger))
			r.Get("/baseline", baselineHandler(svc))
		})
	})

	return r
}

// ============================================================
// Health & metrics
// ============================================================

func healthzHandler(svc *service.TreasuryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "treasury-api", Status: "healthy", LastChecked: now},
		}

		if svc != nil {
			status := "healthy"
			if svc.BaselineSnapshot().State == domain.BaselineStale {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "baseline", Status: status, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func treasuryMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetTreasurySnapshot())
	}
}
