package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	notificationsapp "github.com/hirecrest/talentline/internal/services/notifications/app"
	notificationsdomain "github.com/hirecrest/talentline/internal/services/notifications/domain"
	notificationssqlite "github.com/hirecrest/talentline/internal/services/notifications/storage/sqlite"
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/ibr"
	pipelinesqlite "github.com/hirecrest/talentline/internal/services/pipeline/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls pipeline startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port                int
	DBPath              string
	NotificationsDBPath string
	VendorBaseURL       string
	VendorUsername      string
	VendorPassword      string
	PollInterval        time.Duration
}

const (
	defaultPipelinePort    = 8084
	defaultPipelineDB      = "data/pipeline.db"
	defaultNotificationsDB = "data/notifications.db"
)

// Run starts pipeline runtime dependencies and the reconciliation loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPipelinePort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultPipelineDB
	}
	if strings.TrimSpace(cfg.NotificationsDBPath) == "" {
		cfg.NotificationsDBPath = defaultNotificationsDB
	}

	for _, path := range []string{cfg.DBPath, cfg.NotificationsDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
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
	notificationsService := notificationsdomain.NewService(
		notificationsapp.NewDomainStoreAdapter(notificationsStore), nil, nil)

	// Missing vendor credentials abort startup. A runtime that cannot poll
	// would silently strand every open case.
	vendor, err := ibr.NewClient(ibr.Config{
		BaseURL:  cfg.VendorBaseURL,
		Username: cfg.VendorUsername,
		Password: cfg.VendorPassword,
	})
	if err != nil {
		return fmt.Errorf("configure background-check vendor: %w", err)
	}

	reconciler := domain.NewReconciler(
		pipelineStore, vendor, NewTransitionRecorder(notificationsService), nil)

	offerListeners := domain.NewOfferListenerManager(pipelineStore, pipelineStore)
	defer offerListeners.CloseAll()
	if err := attachOutstandingOfferListeners(ctx, pipelineStore, offerListeners); err != nil {
		return fmt.Errorf("attach offer listeners: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on pipeline port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("pipeline.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("pipeline server listening at %v", listener.Addr())
	return NewScheduler(reconciler, cfg.PollInterval).Run(ctx)
}

type offerDocumentLister interface {
	ListUnsignedOfferDocuments(ctx context.Context) ([]domain.OfferDocument, error)
}

// attachOutstandingOfferListeners resumes signature watching for offers that
// went out before this process started. Outstanding offers come from the
// offer document store: the candidate record only reflects what a listener
// already merged, so a send with no merge yet would be invisible there.
func attachOutstandingOfferListeners(ctx context.Context, docs offerDocumentLister, listeners *domain.OfferListenerManager) error {
	outstanding, err := docs.ListUnsignedOfferDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list unsigned offer documents: %w", err)
	}
	for _, doc := range outstanding {
		if _, err := listeners.Attach(doc.CandidateID); err != nil {
			return fmt.Errorf("attach offer listener for %s: %w", doc.CandidateID, err)
		}
	}
	return nil
}
