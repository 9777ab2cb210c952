// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/questionhub/internal/app/assign"
	"github.com/dalemusser/questionhub/internal/app/notify"
	questionstore "github.com/dalemusser/questionhub/internal/app/store/questions"
	userstore "github.com/dalemusser/questionhub/internal/app/store/users"
	"github.com/dalemusser/questionhub/internal/app/system/metrics"
	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Services are the long-lived components built in Startup.
type Services struct {
	Registry   *prometheus.Registry
	Assigner   *assign.Assigner
	Sweeper    *assign.Sweeper
	Scheduler  *workers.SweepScheduler
	ChangeFeed *workers.ChangeFeed // nil when the change feed is disabled
}

// Startup builds the stores, notifier and assignment core, then starts the
// sweep scheduler and the change feed consumer.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Sweep:  appCfg.TimeoutSweep,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("sweep", cur.Sweep))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewPrometheus(reg, appCfg.MetricsNamespace)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	transport, err := buildTransport(ctx, appCfg, logger)
	if err != nil {
		return err
	}

	questions := questionstore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)
	notifier := notify.New(users, transport, rec, logger.Named("notify"))

	svc := deps.Services
	svc.Registry = reg
	svc.Assigner = assign.NewAssigner(questions, users, notifier, logger.Named("assign"),
		assign.WithMetrics(rec))
	svc.Sweeper = assign.NewSweeper(questions, users, notifier, logger.Named("sweep"),
		assign.WithMetrics(rec),
		assign.WithSweepWorkers(appCfg.SweepWorkers))

	svc.Scheduler = workers.NewSweepScheduler(svc.Sweeper, logger, appCfg.SweepInterval, appCfg.SweepOnStart)
	svc.Scheduler.Start()

	if appCfg.ChangeFeedEnabled {
		svc.ChangeFeed = workers.NewChangeFeed(questions, svc.Assigner, logger.Named("changefeed"))
		svc.ChangeFeed.SetMetrics(rec)
		svc.ChangeFeed.Start()
	} else {
		logger.Info("change feed disabled; questions are assigned by the sweep and POST /events")
	}
	return nil
}

func buildTransport(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (notify.Transport, error) {
	if appCfg.PushMode != PushModeFCM {
		logger.Info("push notifications go to the log")
		return notify.LogTransport{Log: logger.Named("push")}, nil
	}

	key, err := os.ReadFile(appCfg.FCMCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	t, err := notify.NewFCMTransport(ctx, key, appCfg.FCMProjectID, float64(appCfg.PushRatePerSecond), appCfg.PushBurst)
	if err != nil {
		return nil, err
	}
	logger.Info("push notifications via FCM",
		zap.Int("rate_per_second", appCfg.PushRatePerSecond),
		zap.Int("burst", appCfg.PushBurst))
	return t, nil
}
