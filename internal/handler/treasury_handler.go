package handler

import (
	"net/http"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Treasury: /v1/treasury
// ============================================================

func simulateHandler(svc *service.TreasuryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/treasury/simulate")
		defer span.End()

		var req domain.SimulationRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		run, err := svc.Simulate(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("run.id", run.RunID),
			attribute.String("run.status", string(run.Result.Status)),
			attribute.Bool("run.cached", run.Cached),
		)

		writeJSON(w, http.StatusOK, run)
	}
}

func compareHandler(svc *service.TreasuryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/treasury/compare")
		defer span.End()

		var req domain.CompareRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("scenarios.count", len(req.Scenarios)))

		runs, err := svc.CompareScenarios(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, runs)
	}
}

func reportHandler(svc *service.TreasuryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/treasury/report")
		defer span.End()

		var req domain.SimulationRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		report, err := svc.StressReport(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("report.id", report.ID))

		logger.Info("stress report generated",
			zap.String("report_id", report.ID),
			zap.String("subject", SubjectFromContext(ctx)),
			zap.String("status", string(report.Status)),
		)
		writeJSON(w, http.StatusOK, report)
	}
}

func agingHandler(svc *service.TreasuryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/treasury/aging")
		defer span.End()

		profiles, err := svc.Aging(ctx, r.URL.Query().Get("filter"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("clients.count", len(profiles)))

		writeJSON(w, http.StatusOK, profiles)
	}
}

func analyticsHandler(svc *service.TreasuryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/treasury/analytics")
		defer span.End()

		analytics, err := svc.Analytics(ctx, r.URL.Query().Get("filter"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, analytics)
	}
}

func baselineHandler(svc *service.TreasuryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := svc.BaselineSnapshot()
		if snap.Run == nil {
			writeError(w, http.StatusNotFound, "baseline not computed yet")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
