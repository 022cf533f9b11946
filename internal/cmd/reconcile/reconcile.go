// Package reconcile runs a single background-check reconciliation pass and
// reports per-candidate outcomes. It shares storage with the pipeline
// runtime, so an operator can converge open cases without waiting for the
// next scheduled tick.
package reconcile

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/hirecrest/talentline/internal/platform/cmd"
	notificationsapp "github.com/hirecrest/talentline/internal/services/notifications/app"
	notificationsdomain "github.com/hirecrest/talentline/internal/services/notifications/domain"
	notificationssqlite "github.com/hirecrest/talentline/internal/services/notifications/storage/sqlite"
	pipelineapp "github.com/hirecrest/talentline/internal/services/pipeline/app"
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/ibr"
	pipelinesqlite "github.com/hirecrest/talentline/internal/services/pipeline/storage/sqlite"
)

// Config holds reconcile command configuration.
type Config struct {
	DBPath              string        `env:"TALENTLINE_PIPELINE_DB_PATH" envDefault:"data/pipeline.db"`
	NotificationsDBPath string        `env:"TALENTLINE_NOTIFICATIONS_DB_PATH" envDefault:"data/notifications.db"`
	VendorBaseURL       string        `env:"TALENTLINE_IBR_BASE_URL"`
	VendorUsername      string        `env:"TALENTLINE_IBR_USERNAME"`
	VendorPassword      string        `env:"TALENTLINE_IBR_PASSWORD"`
	Timeout             time.Duration `env:"TALENTLINE_RECONCILE_TIMEOUT" envDefault:"2m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The pipeline SQLite database path")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db-path", cfg.NotificationsDBPath, "The notifications SQLite database path")
	fs.StringVar(&cfg.VendorBaseURL, "vendor-base-url", cfg.VendorBaseURL, "The background-check vendor API base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Deadline for the whole pass")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes one reconciliation pass and writes per-candidate outcomes to
// out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	pipelineStore, err := pipelinesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open pipeline sqlite store: %w", err)
	}
	defer func() {
		if closeErr := pipelineStore.Close(); closeErr != nil {
			log.Printf("close pipeline sqlite store: %v", closeErr)
		}
	}()

	notificationsStore, err := notificationssqlite.Open(cfg.NotificationsDBPath)
	if err != nil {
		return fmt.Errorf("open notifications sqlite store: %w", err)
	}
	defer func() {
		if closeErr := notificationsStore.Close(); closeErr != nil {
			log.Printf("close notifications sqlite store: %v", closeErr)
		}
	}()

	vendor, err := ibr.NewClient(ibr.Config{
		BaseURL:  cfg.VendorBaseURL,
		Username: cfg.VendorUsername,
		Password: cfg.VendorPassword,
	})
	if err != nil {
		return fmt.Errorf("configure background-check vendor: %w", err)
	}

	notificationsService := notificationsdomain.NewService(
		notificationsapp.NewDomainStoreAdapter(notificationsStore), nil, nil)
	reconciler := domain.NewReconciler(
		pipelineStore, vendor, pipelineapp.NewTransitionRecorder(notificationsService), nil)

	results, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}
	for _, result := range results {
		switch {
		case result.Err != nil:
			fmt.Fprintf(out, "candidate %s case %s: error: %v\n", result.CandidateID, result.CaseID, result.Err)
		case result.Changed:
			fmt.Fprintf(out, "candidate %s case %s: %s -> %s\n", result.CandidateID, result.CaseID, result.PreviousStatus, result.NewStatus)
		default:
			fmt.Fprintf(out, "candidate %s case %s: unchanged (%s)\n", result.CandidateID, result.CaseID, result.PreviousStatus)
		}
	}
	fmt.Fprintf(out, "%d open cases reconciled\n", len(results))
	return nil
}
