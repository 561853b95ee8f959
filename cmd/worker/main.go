// Package main is the entry point for the PlantOps background worker.
// Multi-tenant architecture: processes jobs for all tenants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"plantops/internal/core/tenant"
	"plantops/internal/infrastructure/storage/postgres"
	"plantops/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting plantops multi-tenant worker")

	// Connect to meta-database
	metaPool, err := pgxpool.New(ctx, mustEnv("META_DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	// Create tenant registry and manager
	registry := tenant.NewPostgresRegistry(metaPool)

	managerCfg := tenant.DefaultManagerConfig()
	managerCfg.DBUser = mustEnv("TENANT_DB_USER")
	managerCfg.DBPassword = mustEnv("TENANT_DB_PASSWORD")
	managerCfg.PoolIdleTimeout = 10 * time.Minute // Shorter for worker

	manager := tenant.NewManager(managerCfg, registry, log)
	defer manager.Close()

	// Start multi-tenant worker
	worker := NewMultiTenantWorker(manager, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// MultiTenantWorker processes background jobs for all tenants.
type MultiTenantWorker struct {
	manager *tenant.Manager
	log     *logger.Logger
}

func NewMultiTenantWorker(manager *tenant.Manager, log *logger.Logger) *MultiTenantWorker {
	return &MultiTenantWorker{
		manager: manager,
		log:     log.WithComponent("worker"),
	}
}

// Run starts worker goroutines for all active tenants.
func (w *MultiTenantWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	var wg sync.WaitGroup
	tenantContexts := make(map[string]context.CancelFunc) // tenant_id(UUID) -> cancel
	var mu sync.Mutex

	// Initial start
	w.refreshTenants(ctx, &wg, tenantContexts, &mu)

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, cancel := range tenantContexts {
				cancel()
			}
			mu.Unlock()
			wg.Wait()
			return

		case <-ticker.C:
			w.refreshTenants(ctx, &wg, tenantContexts, &mu)
		}
	}
}

func (w *MultiTenantWorker) refreshTenants(ctx context.Context, wg *sync.WaitGroup, tenantContexts map[string]context.CancelFunc, mu *sync.Mutex) {
	tenants, err := w.manager.GetActiveTenants(ctx)
	if err != nil {
		w.log.Errorw("failed to get active tenants", "error", err)
		return
	}

	activeTenants := make(map[string]*tenant.Tenant, len(tenants))
	for _, t := range tenants {
		activeTenants[t.ID] = t
	}

	mu.Lock()
	defer mu.Unlock()

	for tenantID, cancel := range tenantContexts {
		if _, active := activeTenants[tenantID]; !active {
			cancel()
			delete(tenantContexts, tenantID)
			w.log.Infow("stopped worker for inactive tenant", "tenant_id", tenantID)
		}
	}

	for _, t := range tenants {
		if _, exists := tenantContexts[t.ID]; !exists {
			tenantCtx, tenantCancel := context.WithCancel(ctx)
			tenantContexts[t.ID] = tenantCancel

			wg.Add(1)
			go func(t *tenant.Tenant) {
				defer wg.Done()
				w.runTenantWorker(tenantCtx, t)
			}(t)

			w.log.Infow("started worker for tenant", "tenant_id", t.ID)
		}
	}
}

func (w *MultiTenantWorker) runTenantWorker(ctx context.Context, t *tenant.Tenant) {
	mp, err := w.manager.GetPool(ctx, t.ID)
	if err != nil {
		w.log.Errorw("failed to get pool for tenant", "tenant_id", t.ID, "error", err)
		return
	}

	pool := mp.Pool()
	txManager := postgres.NewTxManagerFromRawPool(pool)

	relay := postgres.NewOutboxRelay(pool, 100, &loggingOutboxHandler{log: w.log, tenantID: t.ID})
	idempotency := postgres.NewIdempotencyStoreFromRawPool(pool, txManager, 24*time.Hour)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("stopping worker for tenant", "tenant_id", t.ID)
			return
		case <-ticker.C:
			count, err := relay.ProcessBatch(ctx)
			if err != nil {
				w.log.Errorw("outbox batch failed", "tenant_id", t.ID, "error", err)
				continue
			}
			if count > 0 {
				w.log.Debugw("processed outbox batch", "tenant_id", t.ID, "count", count)
			}
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx, idempotency, t.ID)
			w.moveDeadLetters(ctx, relay, t.ID)
		}
	}
}

func (w *MultiTenantWorker) cleanupIdempotency(ctx context.Context, store *postgres.IdempotencyStore, tenantID string) {
	deleted, err := store.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "tenant_id", tenantID, "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("cleaned up idempotency keys", "tenant_id", tenantID, "count", deleted)
	}
}

func (w *MultiTenantWorker) moveDeadLetters(ctx context.Context, relay *postgres.OutboxRelay, tenantID string) {
	moved, err := relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("outbox DLQ sweep failed", "tenant_id", tenantID, "error", err)
		return
	}
	if moved > 0 {
		w.log.Warnw("moved exhausted outbox messages to DLQ", "tenant_id", tenantID, "count", moved)
	}
}

// loggingOutboxHandler delivers domain events to the log stream. Swap for a
// broker publisher when one is attached to the deployment.
type loggingOutboxHandler struct {
	log      *logger.Logger
	tenantID string
}

func (h *loggingOutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("domain event",
		"tenant_id", h.tenantID,
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID.String(),
	)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
