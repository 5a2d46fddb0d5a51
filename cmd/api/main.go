package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops_backend/internal/adapters"
	"fieldops_backend/internal/auth"
	"fieldops_backend/internal/calls"
	"fieldops_backend/internal/calls/ringcentral"
	callsvc "fieldops_backend/internal/calls/service"
	"fieldops_backend/internal/checklists"
	"fieldops_backend/internal/crm"
	"fieldops_backend/internal/equipment"
	"fieldops_backend/internal/events"
	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/internal/http/router"
	"fieldops_backend/internal/identity"
	"fieldops_backend/internal/integrations"
	"fieldops_backend/internal/inventory"
	"fieldops_backend/internal/notifications"
	"fieldops_backend/internal/schedule"
	"fieldops_backend/internal/storage"
	"fieldops_backend/migrations"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/db"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Object storage is optional; without it the checklist photo and call
	// recording features stay disabled.
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		svc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, svc, "checklist-photos", cfg.GetMinioBucketChecklistPhotos())
		ensureBucket(ctx, log, svc, "call-recordings", cfg.GetMinioBucketCallRecordings())
		storageSvc = svc
		log.Info("storage service initialized",
			"checklistPhotosBucket", cfg.GetMinioBucketChecklistPhotos(),
			"callRecordingsBucket", cfg.GetMinioBucketCallRecordings(),
		)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; photo and recording storage disabled")
	}

	var alertSender notifications.Sender
	if cfg.IsEmailEnabled() {
		alertSender = notifications.NewSMTPSender(cfg)
	} else {
		alertSender = notifications.NewNoopSender(log)
	}

	rcClient := ringcentral.New(cfg.GetRingCentralBaseURL())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	identityModule := identity.NewModule(pool, eventBus, log, val)
	authModule := auth.NewModule(pool, cfg, log, val)
	integrationsModule := integrations.NewModule(pool, cfg, val)
	crmModule := crm.NewModule(pool, integrationsModule.Service(), eventBus, cfg, log, val)

	var archiver callsvc.RecordingArchiver
	if storageSvc != nil {
		archiver = adapters.NewRecordingArchiver(rcClient, storageSvc, cfg.GetMinioBucketCallRecordings())
	}

	callsModule := calls.NewModule(
		pool,
		rcClient,
		integrationsModule.Service(),
		crmModule.Service(),
		archiver,
		eventBus,
		cfg,
		log,
		val,
	)

	inventoryModule := inventory.NewModule(pool, val)
	equipmentModule := equipment.NewModule(pool, val)
	scheduleModule := schedule.NewModule(pool, val)
	checklistsModule := checklists.NewModule(pool, storageSvc, cfg.GetMinioBucketChecklistPhotos(), eventBus, log, val)
	notificationsModule := notifications.NewModule(pool, alertSender, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			identityModule,
			integrationsModule,
			crmModule,
			callsModule,
			inventoryModule,
			equipmentModule,
			scheduleModule,
			checklistsModule,
			notificationsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
