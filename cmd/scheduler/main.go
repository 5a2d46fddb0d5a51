package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops_backend/internal/adapters"
	"fieldops_backend/internal/calls"
	"fieldops_backend/internal/calls/ringcentral"
	callsvc "fieldops_backend/internal/calls/service"
	"fieldops_backend/internal/crm"
	"fieldops_backend/internal/events"
	"fieldops_backend/internal/integrations"
	"fieldops_backend/internal/notifications"
	"fieldops_backend/internal/scheduler"
	"fieldops_backend/internal/storage"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/db"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	var alertSender notifications.Sender
	if cfg.IsEmailEnabled() {
		alertSender = notifications.NewSMTPSender(cfg)
	} else {
		alertSender = notifications.NewNoopSender(log)
	}
	_ = notifications.NewModule(pool, alertSender, eventBus, log)

	rcClient := ringcentral.New(cfg.GetRingCentralBaseURL())

	integrationsSvc := integrations.NewService(integrations.NewRepository(pool), cfg)
	crmSvc := crm.NewService(crm.NewRepository(pool), crm.NewHousecallClient(cfg.GetHousecallBaseURL()), integrationsSvc, eventBus, log)

	var archiver callsvc.RecordingArchiver
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		archiver = adapters.NewRecordingArchiver(rcClient, storageSvc, cfg.GetMinioBucketCallRecordings())
	}

	callsSvc := callsModuleService(pool, rcClient, integrationsSvc, crmSvc, archiver, eventBus, cfg, log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	// Cron fans the periodic syncs out to one asynq task per connected
	// organization; the worker below consumes them from the same queue.
	c := cron.New()

	if _, err := c.AddFunc(cfg.GetCallSyncCron(), func() {
		enqueueCallSyncs(ctx, client, integrationsSvc, log)
	}); err != nil {
		log.Error("invalid call sync cron expression", "error", err)
		panic("invalid call sync cron expression: " + err.Error())
	}

	if _, err := c.AddFunc(cfg.GetCRMRefreshCron(), func() {
		enqueueCRMRefreshes(ctx, client, integrationsSvc, log)
	}); err != nil {
		log.Error("invalid crm refresh cron expression", "error", err)
		panic("invalid crm refresh cron expression: " + err.Error())
	}

	c.Start()
	defer c.Stop()
	log.Info("cron schedules registered",
		"call_sync", cfg.GetCallSyncCron(),
		"crm_refresh", cfg.GetCRMRefreshCron(),
	)

	worker, err := scheduler.NewWorker(cfg, callsSvc, crmSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func callsModuleService(
	pool *pgxpool.Pool,
	rcClient *ringcentral.Client,
	tokens callsvc.TokenStore,
	refs callsvc.ReferenceLoader,
	archiver callsvc.RecordingArchiver,
	bus events.Bus,
	cfg config.CallSyncConfig,
	log *logger.Logger,
) *callsvc.Service {
	module := calls.NewModule(pool, rcClient, tokens, refs, archiver, bus, cfg, log, validator.New())
	return module.Service()
}

func enqueueCallSyncs(ctx context.Context, client *scheduler.Client, svc *integrations.Service, log *logger.Logger) {
	orgs, err := svc.ListConnectedOrganizations(ctx, integrations.ProviderRingCentral)
	if err != nil {
		log.Error("list organizations for call sync", "error", err)
		return
	}
	for _, orgID := range orgs {
		err := client.EnqueueCallSync(ctx, scheduler.CallSyncPayload{OrganizationID: orgID.String()})
		if err != nil {
			log.Error("enqueue call sync", "organization_id", orgID, "error", err)
		}
	}
	log.Info("call syncs enqueued", "organizations", len(orgs))
}

func enqueueCRMRefreshes(ctx context.Context, client *scheduler.Client, svc *integrations.Service, log *logger.Logger) {
	orgs, err := svc.ListConnectedOrganizations(ctx, integrations.ProviderHousecall)
	if err != nil {
		log.Error("list organizations for crm refresh", "error", err)
		return
	}
	for _, orgID := range orgs {
		err := client.EnqueueCRMMirrorRefresh(ctx, scheduler.CRMMirrorRefreshPayload{OrganizationID: orgID.String()})
		if err != nil {
			log.Error("enqueue crm refresh", "organization_id", orgID, "error", err)
		}
	}
	log.Info("crm refreshes enqueued", "organizations", len(orgs))
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
