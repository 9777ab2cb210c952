// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	eventsfeature "github.com/dalemusser/questionhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/questionhub/internal/app/features/health"
	sweepfeature "github.com/dalemusser/questionhub/internal/app/features/sweep"
	"github.com/dalemusser/questionhub/internal/app/system/ratelimit"
	"github.com/dalemusser/questionhub/internal/app/system/sharedsecret"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed, so deps.Services is populated.
//
//	GET  /health   database ping and sweep status
//	GET  /metrics  Prometheus metrics
//	POST /events   pushed question events
//	POST /sweep    run a reconciliation sweep now
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Services
	if svc == nil || svc.Assigner == nil || svc.Sweeper == nil {
		return nil, errors.New("build handler: services not started")
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, svc.Sweeper.Running, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{}))

	// Write endpoints share a per-client limiter and the intake secret
	limiter := ratelimit.New(float64(appCfg.IntakeRatePerSecond), appCfg.IntakeBurst)
	r.Group(func(r chi.Router) {
		if appCfg.IntakeRatePerSecond > 0 {
			r.Use(limiter.Middleware(logger))
		}

		if appCfg.EventIntakeSecret == "" {
			logger.Warn("event intake secret not set; POST /events and POST /sweep accept unauthenticated requests")
		}
		r.Use(sharedsecret.Middleware(appCfg.EventIntakeSecret, logger.Named("intake")))

		eventsHandler := eventsfeature.NewHandler(svc.Assigner, logger.Named("events"))
		r.Mount("/events", eventsfeature.Routes(eventsHandler))

		sweepHandler := sweepfeature.NewHandler(svc.Sweeper, logger.Named("sweep"))
		r.Mount("/sweep", sweepfeature.Routes(sweepHandler))
	})

	return r, nil
}
