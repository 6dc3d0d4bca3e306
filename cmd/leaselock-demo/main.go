// cmd/leaselock-demo/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leaselock/leaselock/internal/config"
	"github.com/leaselock/leaselock/internal/lockservice"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
	"github.com/leaselock/leaselock/lock"

	// Register store constructors.
	_ "github.com/leaselock/leaselock/internal/store/dynamodb"
	_ "github.com/leaselock/leaselock/internal/store/redis"
	_ "github.com/leaselock/leaselock/internal/store/scylladb"
)

// App holds the wired-up application state.
type App struct {
	logger       *observability.SLogger
	metrics      *observability.OTelMetrics
	configLoader *config.ConfigLoader
	otelShutdown func()
	store        store.LockStore
	manager      *lock.Manager
}

func main() {
	configPath := flag.String("config", "/etc/leaselock/config.yaml", "Path to configuration file")
	resource := flag.String("resource", "demo-resource", "Resource ID to lock")
	hold := flag.Duration("hold", 30*time.Second, "How long to hold the lock")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := NewApp(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	runErr := app.Run(ctx, *resource, *hold)
	if runErr != nil {
		app.logger.Errorf("Application error: %v", runErr)
	}
	app.Shutdown()
	if runErr != nil {
		os.Exit(1)
	}
}

// NewApp loads configuration, initializes observability and builds the
// lock manager on top of the configured store backend.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	backendType, err := config.DetectBackendType(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect backend type: %w", err)
	}

	switch backendType {
	case "redis":
		return newApp(ctx, configPath, backendType, config.RedisConfigLoader)
	case "dynamodb":
		return newApp(ctx, configPath, backendType, config.DynamoConfigLoader)
	case "scylladb":
		return newApp(ctx, configPath, backendType, config.ScyllaConfigLoader)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

func newApp[T store.StoreConfig](ctx context.Context, configPath, backendType string, loadFn config.ConfigLoadFn[T]) (*App, error) {
	app := &App{}

	loader, cfg, err := config.LoadConfig(configPath, loadFn)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.configLoader = loader

	logger, err := observability.NewLogger(cfg.Logger.Level.GetZapLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	app.logger = logger

	otelShutdown, err := observability.InitProvider(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.otelShutdown = otelShutdown

	metrics, err := observability.NewMetricsClient(cfg.Observability, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	app.metrics = metrics

	st, err := lockservice.NewStore(ctx, backendType, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	app.store = st

	manager, err := lock.New(st, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock manager: %w", err)
	}
	app.manager = manager

	return app, nil
}

// Run acquires the lock, holds it with auto-renewal until the hold
// duration elapses or a signal arrives, then releases it.
func (a *App) Run(ctx context.Context, resourceID string, hold time.Duration) error {
	a.logger.Infof("Acquiring lock for %q", resourceID)

	return a.manager.WithLock(ctx, resourceID, func(ctx context.Context) error {
		a.logger.Infof("Lock acquired, holding for %s", hold)

		select {
		case <-time.After(hold):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Shutdown releases all resources in reverse initialization order.
func (a *App) Shutdown() {
	if a.store != nil {
		a.store.Close()
	}
	if a.otelShutdown != nil {
		a.otelShutdown()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
