package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fieldops_backend/internal/calls/match"
	"fieldops_backend/internal/calls/repository"
	"fieldops_backend/internal/calls/ringcentral"
	"fieldops_backend/internal/calls/transport"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/logger"
)

type fakeRepo struct {
	upserts   []repository.CallLog
	failOnID  string
	nextIndex int
}

func (f *fakeRepo) Upsert(_ context.Context, log repository.CallLog) (uuid.UUID, error) {
	if f.failOnID != "" && log.ExternalCallID == f.failOnID {
		return uuid.Nil, errors.New("db write failed")
	}
	f.upserts = append(f.upserts, log)
	return uuid.New(), nil
}

func (f *fakeRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*repository.CallLog, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) List(context.Context, uuid.UUID, repository.ListFilters) ([]repository.CallLog, int, error) {
	return nil, 0, errors.New("not implemented")
}

type fakeClient struct {
	refreshErr   error
	fetchErr     error
	records      []ringcentral.CallRecord
	rotatedTo    string
	refreshCalls int
	fetchFrom    time.Time
	fetchTo      time.Time
}

func (f *fakeClient) RefreshToken(_ context.Context, _, _, _ string) (*ringcentral.TokenResponse, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &ringcentral.TokenResponse{AccessToken: "access", RefreshToken: f.rotatedTo, ExpiresIn: 3600}, nil
}

func (f *fakeClient) FetchCallLog(_ context.Context, _ string, from, to time.Time, _, _ int) ([]ringcentral.CallRecord, error) {
	f.fetchFrom, f.fetchTo = from, to
	return f.records, f.fetchErr
}

type fakeTokens struct {
	creds      *Credentials
	credsErr   error
	saved      []string
	saveErr    error
	savedAfter bool
}

func (f *fakeTokens) GetRingCentralCredentials(context.Context, uuid.UUID) (*Credentials, error) {
	if f.credsErr != nil {
		return nil, f.credsErr
	}
	return f.creds, nil
}

func (f *fakeTokens) SaveRefreshToken(_ context.Context, _ uuid.UUID, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, token)
	return nil
}

type fakeRefs struct {
	customers []match.Customer
	jobs      []match.Job
}

func (f *fakeRefs) CustomersSnapshot(context.Context, uuid.UUID) ([]match.Customer, error) {
	return f.customers, nil
}

func (f *fakeRefs) JobsSnapshot(context.Context, uuid.UUID) ([]match.Job, error) {
	return f.jobs, nil
}

type fakeSyncConfig struct{}

func (fakeSyncConfig) GetRingCentralBaseURL() string { return "https://platform.ringcentral.com" }
func (fakeSyncConfig) GetSyncMaxPages() int          { return 20 }
func (fakeSyncConfig) GetSyncPageSize() int          { return 250 }
func (fakeSyncConfig) GetDefaultLookbackHours() int  { return 24 }

func intPtr(v int) *int { return &v }

func newTestService(repo *fakeRepo, client *fakeClient, tokens *fakeTokens, refs *fakeRefs) *Service {
	return New(repo, client, tokens, refs, nil, events.NewInMemoryBus(logger.New("test")), fakeSyncConfig{}, logger.New("test"))
}

func TestSync_EndToEnd(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()
	jobID := uuid.New()
	jobDate := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	client := &fakeClient{
		rotatedTo: "rotated-refresh",
		records: []ringcentral.CallRecord{
			{
				ID:              "call-1",
				Direction:       "inbound",
				StartTime:       time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
				DurationSeconds: intPtr(120),
				Result:          "Call connected",
				FromNumber:      "+16155550100",
				ToNumber:        "+16155559999",
			},
		},
	}
	tokens := &fakeTokens{creds: &Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "old"}}
	refs := &fakeRefs{
		customers: []match.Customer{{ID: customerID, Name: "Alvarez Cleaning", Phones: []string{"6155550100"}}},
		jobs:      []match.Job{{ID: jobID, CustomerID: customerID, ScheduledAt: &jobDate}},
	}

	svc := newTestService(repo, client, tokens, refs)
	resp := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if !resp.Success {
		t.Fatalf("sync failed: %s", resp.Error)
	}
	if resp.Fetched != 1 || resp.Synced.Calls != 1 || resp.Synced.Matched != 1 || resp.Synced.Linked != 1 {
		t.Fatalf("counts = %+v fetched=%d", resp.Synced, resp.Fetched)
	}

	if len(tokens.saved) != 1 || tokens.saved[0] != "rotated-refresh" {
		t.Fatalf("rotated refresh token not persisted: %v", tokens.saved)
	}

	if len(repo.upserts) != 1 {
		t.Fatalf("got %d upserts", len(repo.upserts))
	}
	log := repo.upserts[0]
	if log.MatchedCustomerID == nil || *log.MatchedCustomerID != customerID {
		t.Errorf("customer not matched")
	}
	if log.MatchConfidence != "exact" {
		t.Errorf("confidence = %q", log.MatchConfidence)
	}
	if log.LinkedJobID == nil || *log.LinkedJobID != jobID {
		t.Errorf("job not linked")
	}
	if log.Status != "completed" {
		t.Errorf("status = %q", log.Status)
	}
}

func TestSync_OutboundUsesToNumber(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()

	repo := &fakeRepo{}
	client := &fakeClient{
		rotatedTo: "r",
		records: []ringcentral.CallRecord{
			{
				ID:         "call-out",
				Direction:  "outbound",
				StartTime:  time.Now().UTC(),
				Result:     "Call connected",
				FromNumber: "+16155559999",
				ToNumber:   "+16155550100",
			},
		},
	}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}
	refs := &fakeRefs{customers: []match.Customer{{ID: customerID, Name: "C", Phones: []string{"6155550100"}}}}

	svc := newTestService(repo, client, tokens, refs)
	resp := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if resp.Synced.Matched != 1 {
		t.Fatalf("outbound call did not match on the dialed number: %+v", resp)
	}
}

func TestSync_RefreshFailureAbortsBeforeFetch(t *testing.T) {
	repo := &fakeRepo{}
	client := &fakeClient{refreshErr: errors.New("invalid_grant")}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}

	svc := newTestService(repo, client, tokens, &fakeRefs{})
	resp := svc.Sync(context.Background(), uuid.New(), transport.SyncRequest{})

	if resp.Success {
		t.Fatal("expected failure response")
	}
	if resp.Error == "" {
		t.Fatal("error message missing")
	}
	if len(tokens.saved) != 0 {
		t.Errorf("no token should be saved after failed refresh")
	}
	if len(repo.upserts) != 0 {
		t.Errorf("nothing should be persisted")
	}
}

func TestSync_SaveTokenFailureAborts(t *testing.T) {
	repo := &fakeRepo{}
	client := &fakeClient{rotatedTo: "rotated"}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}, saveErr: errors.New("db down")}

	svc := newTestService(repo, client, tokens, &fakeRefs{})
	resp := svc.Sync(context.Background(), uuid.New(), transport.SyncRequest{})

	if resp.Success {
		t.Fatal("expected failure when rotated token cannot be persisted")
	}
	if len(repo.upserts) != 0 {
		t.Errorf("nothing should be persisted")
	}
}

func TestSync_PerCallFailureSkipsAndContinues(t *testing.T) {
	orgID := uuid.New()
	now := time.Now().UTC()

	repo := &fakeRepo{failOnID: "bad"}
	client := &fakeClient{
		rotatedTo: "r",
		records: []ringcentral.CallRecord{
			{ID: "bad", Direction: "inbound", StartTime: now, Result: "Missed", FromNumber: "+16155550100"},
			{ID: "good", Direction: "inbound", StartTime: now, Result: "Missed", FromNumber: "+16155550101"},
		},
	}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}

	svc := newTestService(repo, client, tokens, &fakeRefs{})
	resp := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if !resp.Success {
		t.Fatalf("batch should still succeed: %s", resp.Error)
	}
	if resp.Fetched != 2 {
		t.Errorf("fetched = %d", resp.Fetched)
	}
	if resp.Synced.Calls != 1 {
		t.Errorf("synced calls = %d, want the surviving one", resp.Synced.Calls)
	}
	if len(repo.upserts) != 1 || repo.upserts[0].ExternalCallID != "good" {
		t.Errorf("wrong record persisted: %+v", repo.upserts)
	}
}

func TestSync_PartialFetchStillProcessed(t *testing.T) {
	orgID := uuid.New()
	repo := &fakeRepo{}
	client := &fakeClient{
		rotatedTo: "r",
		fetchErr:  errors.New("page 3 unavailable"),
		records: []ringcentral.CallRecord{
			{ID: "c1", Direction: "inbound", StartTime: time.Now().UTC(), Result: "Missed", FromNumber: "+16155550100"},
		},
	}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}

	svc := newTestService(repo, client, tokens, &fakeRefs{})
	resp := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if resp.Success {
		t.Fatal("partial fetch must not report full success")
	}
	if resp.Synced.Calls != 1 {
		t.Errorf("partial records should still be persisted, got %d", resp.Synced.Calls)
	}
	if resp.Error == "" {
		t.Error("error message missing")
	}
}

func TestSync_InvalidWindowRejected(t *testing.T) {
	repo := &fakeRepo{}
	client := &fakeClient{rotatedTo: "r"}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}

	svc := newTestService(repo, client, tokens, &fakeRefs{})

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := svc.Sync(context.Background(), uuid.New(), transport.SyncRequest{DateFrom: &from, DateTo: &to})

	if resp.Success {
		t.Fatal("expected validation failure")
	}
	if client.refreshCalls != 0 {
		t.Errorf("provider must not be touched on invalid input")
	}
}

func TestSync_LookbackWindow(t *testing.T) {
	tests := []struct {
		name string
		req  transport.SyncRequest
		want time.Duration
	}{
		{"defaults to configured lookback", transport.SyncRequest{}, 24 * time.Hour},
		{"hoursBack", transport.SyncRequest{HoursBack: intPtr(6)}, 6 * time.Hour},
		{"daysBack", transport.SyncRequest{DaysBack: intPtr(3)}, 3 * 24 * time.Hour},
		{"hoursBack wins over daysBack", transport.SyncRequest{HoursBack: intPtr(2), DaysBack: intPtr(5)}, 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{rotatedTo: "r"}
			tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}
			svc := newTestService(&fakeRepo{}, client, tokens, &fakeRefs{})

			resp := svc.Sync(context.Background(), uuid.New(), tt.req)
			if !resp.Success {
				t.Fatalf("sync failed: %s", resp.Error)
			}
			if got := client.fetchTo.Sub(client.fetchFrom); got != tt.want {
				t.Fatalf("fetch window = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSync_NonPositiveLookbackRejected(t *testing.T) {
	for _, req := range []transport.SyncRequest{
		{HoursBack: intPtr(0)},
		{HoursBack: intPtr(-4)},
		{DaysBack: intPtr(-1)},
	} {
		client := &fakeClient{rotatedTo: "r"}
		tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}
		svc := newTestService(&fakeRepo{}, client, tokens, &fakeRefs{})

		resp := svc.Sync(context.Background(), uuid.New(), req)
		if resp.Success {
			t.Fatalf("expected validation failure for %+v", req)
		}
		if client.refreshCalls != 0 {
			t.Errorf("provider must not be touched on invalid input")
		}
	}
}

func TestSync_Idempotent(t *testing.T) {
	// Running twice over the same window yields the same upsert payloads;
	// the repository's conflict target makes the second pass a no-op update.
	orgID := uuid.New()
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	records := []ringcentral.CallRecord{
		{ID: "c1", Direction: "inbound", StartTime: now, Result: "Missed", FromNumber: "+16155550100"},
	}

	repo := &fakeRepo{}
	client := &fakeClient{rotatedTo: "r", records: records}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}
	svc := newTestService(repo, client, tokens, &fakeRefs{})

	first := svc.Sync(context.Background(), orgID, transport.SyncRequest{})
	second := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if first.Synced != second.Synced {
		t.Fatalf("runs diverged: %+v vs %+v", first.Synced, second.Synced)
	}
	if len(repo.upserts) != 2 {
		t.Fatalf("expected an upsert per run, got %d", len(repo.upserts))
	}
	if repo.upserts[0].ExternalCallID != repo.upserts[1].ExternalCallID {
		t.Errorf("upsert keys differ between runs")
	}
}

func TestSync_UnmatchableNumberStillPersisted(t *testing.T) {
	orgID := uuid.New()
	repo := &fakeRepo{}
	client := &fakeClient{
		rotatedTo: "r",
		records: []ringcentral.CallRecord{
			{ID: "short", Direction: "inbound", StartTime: time.Now().UTC(), Result: "Missed", FromNumber: "555-0100"},
		},
	}
	tokens := &fakeTokens{creds: &Credentials{RefreshToken: "old"}}

	svc := newTestService(repo, client, tokens, &fakeRefs{
		customers: []match.Customer{{ID: uuid.New(), Name: "C", Phones: []string{"6155550100"}}},
	})
	resp := svc.Sync(context.Background(), orgID, transport.SyncRequest{})

	if resp.Synced.Calls != 1 || resp.Synced.Matched != 0 {
		t.Fatalf("counts = %+v", resp.Synced)
	}
	if repo.upserts[0].MatchConfidence != "none" {
		t.Errorf("confidence = %q", repo.upserts[0].MatchConfidence)
	}
}
