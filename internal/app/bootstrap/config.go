// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	PushModeFCM = "fcm"
	PushModeLog = "log"
)

// appConfigKeys defines the configuration keys for QuestionHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, sweep_interval_seconds, etc.
//   - Environment variables: QUESTIONHUB_MONGO_URI, QUESTIONHUB_SWEEP_INTERVAL_SECONDS, etc.
//   - Command-line flags: --mongo_uri, --sweep_interval_seconds, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (change streams need a replica set)"},
	{Name: "mongo_database", Default: "questionhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Reconciliation sweep
	{Name: "sweep_interval_seconds", Default: 60, Desc: "Seconds between reconciliation sweeps (must be > 0)"},
	{Name: "sweep_workers", Default: 1, Desc: "Parallel assignment writes within one sweep"},
	{Name: "sweep_on_start", Default: true, Desc: "Run one sweep immediately at startup"},

	// Change feed
	{Name: "change_feed_enabled", Default: true, Desc: "Consume the questions change stream"},
	{Name: "change_images", Default: true, Desc: "Enable change stream pre/post images on the questions collection (MongoDB 6.0+)"},

	// Push notifications
	{Name: "push_mode", Default: PushModeLog, Desc: "Notification transport: 'fcm' or 'log'"},
	{Name: "fcm_credentials_path", Default: "", Desc: "Path to the Firebase service-account JSON key"},
	{Name: "fcm_project_id", Default: "", Desc: "Firebase project ID (defaults to the key's project)"},
	{Name: "push_rate_per_second", Default: 20, Desc: "Max FCM sends per second (0 disables limiting)"},
	{Name: "push_burst", Default: 20, Desc: "FCM send burst size"},

	// HTTP event intake
	{Name: "event_intake_secret", Default: "", Desc: "Shared secret for POST /events (blank disables the check)"},
	{Name: "intake_rate_per_second", Default: 50, Desc: "Per-client request rate for /events and /sweep"},
	{Name: "intake_burst", Default: 100, Desc: "Per-client burst for /events and /sweep"},

	// Timeouts
	{Name: "timeout_short", Default: timeouts.DefaultShort.String(), Desc: "Timeout for single-document operations and one push delivery"},
	{Name: "timeout_medium", Default: timeouts.DefaultMedium.String(), Desc: "Timeout for listing users and scanning questions"},
	{Name: "timeout_sweep", Default: timeouts.DefaultSweep.String(), Desc: "Upper bound for one reconciliation sweep"},

	{Name: "metrics_namespace", Default: "questionhub", Desc: "Prometheus metric namespace"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, QUESTIONHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "QUESTIONHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SweepInterval: time.Duration(appValues.Int("sweep_interval_seconds")) * time.Second,
		SweepWorkers:  appValues.Int("sweep_workers"),
		SweepOnStart:  appValues.Bool("sweep_on_start"),

		ChangeFeedEnabled: appValues.Bool("change_feed_enabled"),
		ChangeImages:      appValues.Bool("change_images"),

		PushMode:           appValues.String("push_mode"),
		FCMCredentialsPath: appValues.String("fcm_credentials_path"),
		FCMProjectID:       appValues.String("fcm_project_id"),
		PushRatePerSecond:  appValues.Int("push_rate_per_second"),
		PushBurst:          appValues.Int("push_burst"),

		EventIntakeSecret:   appValues.String("event_intake_secret"),
		IntakeRatePerSecond: appValues.Int("intake_rate_per_second"),
		IntakeBurst:         appValues.Int("intake_burst"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutSweep:  appValues.Duration("timeout_sweep", timeouts.DefaultSweep),

		MetricsNamespace: appValues.String("metrics_namespace"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg)
}

func validateApp(appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}
	if appCfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval_seconds must be > 0 (got %s)", appCfg.SweepInterval)
	}
	if appCfg.SweepWorkers < 1 {
		return fmt.Errorf("sweep_workers must be >= 1 (got %d)", appCfg.SweepWorkers)
	}
	switch appCfg.PushMode {
	case PushModeLog:
	case PushModeFCM:
		if appCfg.FCMCredentialsPath == "" {
			return errors.New("push_mode fcm requires fcm_credentials_path")
		}
	default:
		return fmt.Errorf("push_mode must be %q or %q (got %q)", PushModeFCM, PushModeLog, appCfg.PushMode)
	}
	if appCfg.PushRatePerSecond < 0 || appCfg.IntakeRatePerSecond < 0 {
		return errors.New("rates must not be negative")
	}
	return nil
}
