// Package dispatcher parses dispatcher command flags and launches the
// dispatcher runtime.
package dispatcher

import (
	"context"
	"flag"
	"time"

	dispatcherserver "github.com/vidmark/vidmark/internal/dispatcher/app"
	entrypoint "github.com/vidmark/vidmark/internal/platform/cmd"
)

// Config holds dispatcher command configuration.
type Config struct {
	Port          int           `env:"VIDMARK_DISPATCHER_PORT" envDefault:"8093"`
	DBPath        string        `env:"VIDMARK_DISPATCHER_DB_PATH" envDefault:"data/annotation.db"`
	Consumer      string        `env:"VIDMARK_DISPATCHER_CONSUMER" envDefault:"dispatcher"`
	BatchSize     int           `env:"VIDMARK_DISPATCHER_BATCH_SIZE" envDefault:"32"`
	PollInterval  time.Duration `env:"VIDMARK_DISPATCHER_POLL_INTERVAL" envDefault:"2s"`
	LeaseTTL      time.Duration `env:"VIDMARK_DISPATCHER_LEASE_TTL" envDefault:"30s"`
	MaxAttempts   int           `env:"VIDMARK_DISPATCHER_MAX_ATTEMPTS" envDefault:"8"`
	RetryBackoff  time.Duration `env:"VIDMARK_DISPATCHER_RETRY_BACKOFF" envDefault:"5s"`
	RetryMaxDelay time.Duration `env:"VIDMARK_DISPATCHER_RETRY_MAX_DELAY" envDefault:"5m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The dispatcher health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The annotation SQLite database path")
	fs.StringVar(&cfg.Consumer, "consumer", cfg.Consumer, "Domain event outbox consumer name")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Maximum events leased per poll")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Domain event outbox poll interval")
	fs.DurationVar(&cfg.LeaseTTL, "lease-ttl", cfg.LeaseTTL, "Domain event outbox lease duration")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum delivery attempts before dead-letter")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base retry backoff delay")
	fs.DurationVar(&cfg.RetryMaxDelay, "retry-max-delay", cfg.RetryMaxDelay, "Maximum retry delay")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dispatcher runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDispatcher, func(context.Context) error {
		return dispatcherserver.Run(ctx, dispatcherserver.RuntimeConfig{
			Port:          cfg.Port,
			DBPath:        cfg.DBPath,
			Consumer:      cfg.Consumer,
			BatchSize:     cfg.BatchSize,
			PollInterval:  cfg.PollInterval,
			LeaseTTL:      cfg.LeaseTTL,
			MaxAttempts:   cfg.MaxAttempts,
			RetryBackoff:  cfg.RetryBackoff,
			RetryMaxDelay: cfg.RetryMaxDelay,
		})
	})
}
