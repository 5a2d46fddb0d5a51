package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string { return c.redisURL }

func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }

func (c testSchedulerConfig) GetAsynqQueueName() string { return "fieldops" }

func (c testSchedulerConfig) GetAsynqConcurrency() int { return 1 }

func (c testSchedulerConfig) GetCallSyncCron() string { return "*/15 * * * *" }

func (c testSchedulerConfig) GetCRMRefreshCron() string { return "0 * * * *" }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error when redis url is empty")
	}
}

func TestClientEnqueuesTasks(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	err = client.EnqueueCallSync(ctx, CallSyncPayload{
		OrganizationID: "0b0d9337-8f7a-4bb3-9fd7-7a5e28a0c001",
		LocationID:     "main-office",
	})
	if err != nil {
		t.Fatalf("EnqueueCallSync() error: %v", err)
	}

	err = client.EnqueueCRMMirrorRefresh(ctx, CRMMirrorRefreshPayload{
		OrganizationID: "0b0d9337-8f7a-4bb3-9fd7-7a5e28a0c001",
	})
	if err != nil {
		t.Fatalf("EnqueueCRMMirrorRefresh() error: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("fieldops")
	if err != nil {
		t.Fatalf("ListPendingTasks() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(pending))
	}

	types := map[string]bool{}
	for _, task := range pending {
		types[task.Type] = true
	}
	if !types[TaskCallSync] || !types[TaskCRMMirrorRefresh] {
		t.Fatalf("missing expected task types, got %v", types)
	}
}

func TestCallSyncPayloadRoundTrip(t *testing.T) {
	task, err := NewCallSyncTask(CallSyncPayload{OrganizationID: "org-1", LocationID: "loc-1"})
	if err != nil {
		t.Fatalf("NewCallSyncTask() error: %v", err)
	}

	payload, err := ParseCallSyncPayload(task)
	if err != nil {
		t.Fatalf("ParseCallSyncPayload() error: %v", err)
	}
	if payload.OrganizationID != "org-1" || payload.LocationID != "loc-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
