// Package pipeline parses pipeline command flags and launches the pipeline
// runtime.
package pipeline

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/hirecrest/talentline/internal/platform/cmd"
	pipelineapp "github.com/hirecrest/talentline/internal/services/pipeline/app"
)

// Config holds pipeline command configuration. Vendor credentials are
// environment-only so they never land in shell history.
type Config struct {
	Port                int           `env:"TALENTLINE_PIPELINE_PORT" envDefault:"8084"`
	DBPath              string        `env:"TALENTLINE_PIPELINE_DB_PATH" envDefault:"data/pipeline.db"`
	NotificationsDBPath string        `env:"TALENTLINE_NOTIFICATIONS_DB_PATH" envDefault:"data/notifications.db"`
	VendorBaseURL       string        `env:"TALENTLINE_IBR_BASE_URL"`
	VendorUsername      string        `env:"TALENTLINE_IBR_USERNAME"`
	VendorPassword      string        `env:"TALENTLINE_IBR_PASSWORD"`
	PollInterval        time.Duration `env:"TALENTLINE_PIPELINE_POLL_INTERVAL" envDefault:"1m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The pipeline health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The pipeline SQLite database path")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db-path", cfg.NotificationsDBPath, "The notifications SQLite database path")
	fs.StringVar(&cfg.VendorBaseURL, "vendor-base-url", cfg.VendorBaseURL, "The background-check vendor API base URL")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Background-check reconciliation interval")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the pipeline runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePipeline, func(context.Context) error {
		return pipelineapp.Run(ctx, pipelineapp.RuntimeConfig{
			Port:                cfg.Port,
			DBPath:              cfg.DBPath,
			NotificationsDBPath: cfg.NotificationsDBPath,
			VendorBaseURL:       cfg.VendorBaseURL,
			VendorUsername:      cfg.VendorUsername,
			VendorPassword:      cfg.VendorPassword,
			PollInterval:        cfg.PollInterval,
		})
	})
}
