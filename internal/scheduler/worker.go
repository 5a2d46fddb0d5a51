package scheduler

import (
	"context"
	"fmt"

	callsvc "fieldops_backend/internal/calls/service"
	"fieldops_backend/internal/calls/transport"
	"fieldops_backend/internal/crm"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	calls  *callsvc.Service
	crm    *crm.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, calls *callsvc.Service, crmSvc *crm.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		calls:  calls,
		crm:    crmSvc,
		log:    log,
	}

	mux.HandleFunc(TaskCallSync, w.handleCallSync)
	mux.HandleFunc(TaskCRMMirrorRefresh, w.handleCRMMirrorRefresh)

	return w, nil
}

func (w *Worker) handleCallSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCallSyncPayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	// Sync reports failures in its result rather than an error. Returning
	// the failure as an error lets asynq retry transient provider outages.
	result := w.calls.Sync(ctx, orgID, transport.SyncRequest{LocationID: payload.LocationID})
	if !result.Success {
		return fmt.Errorf("call sync for organization %s: %s", orgID, result.Error)
	}

	w.log.Info("scheduled call sync finished",
		"organization_id", orgID,
		"fetched", result.Fetched,
		"synced", result.Synced.Calls,
		"matched", result.Synced.Matched,
		"linked", result.Synced.Linked,
	)
	return nil
}

func (w *Worker) handleCRMMirrorRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMMirrorRefreshPayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	result, err := w.crm.RefreshMirror(ctx, orgID)
	if err != nil {
		return fmt.Errorf("crm mirror refresh for organization %s: %w", orgID, err)
	}

	w.log.Info("scheduled crm mirror refresh finished",
		"organization_id", orgID,
		"customers", result.Customers,
		"jobs", result.Jobs,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
