// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports, TLS,
// logging level and format. Everything specific to QuestionHub lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017/?replicaSet=rs0)
	MongoDatabase    string // Database holding the questions and users collections
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Reconciliation sweep
	SweepInterval time.Duration // time between scheduled sweeps
	SweepWorkers  int           // parallel assignment writes within one sweep
	SweepOnStart  bool          // run one sweep immediately at startup

	// Change feed
	ChangeFeedEnabled bool // consume the questions change stream
	ChangeImages      bool // enable pre/post images on the questions collection at startup

	// Push notifications
	PushMode           string // "fcm" or "log"
	FCMCredentialsPath string // service-account JSON key
	FCMProjectID       string // overrides the key's project_id when set
	PushRatePerSecond  int    // sustained FCM sends per second (0 disables limiting)
	PushBurst          int

	// HTTP event intake
	EventIntakeSecret   string // shared secret required in X-Questionhub-Secret (blank disables the check)
	IntakeRatePerSecond int    // per-client request rate for /events and /sweep
	IntakeBurst         int

	// Per-operation timeouts (see system/timeouts)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutSweep  time.Duration

	MetricsNamespace string
}
