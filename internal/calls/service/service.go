// Package service orchestrates call log synchronization: provider token
// rotation, call log retrieval, customer matching, job linking, and
// persistence.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldops_backend/internal/calls/match"
	"fieldops_backend/internal/calls/repository"
	"fieldops_backend/internal/calls/ringcentral"
	"fieldops_backend/internal/calls/transport"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"
)

// Credentials is a decrypted RingCentral app credential set for one
// organization.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TokenStore provides provider credentials and persists rotated refresh
// tokens. RingCentral refresh tokens are single use: the rotated token must
// be saved before any further provider call, otherwise a later failure
// strands the integration with a dead token.
type TokenStore interface {
	GetRingCentralCredentials(ctx context.Context, organizationID uuid.UUID) (*Credentials, error)
	SaveRefreshToken(ctx context.Context, organizationID uuid.UUID, refreshToken string) error
}

// ProviderClient is the slice of the RingCentral client the sync needs.
type ProviderClient interface {
	RefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*ringcentral.TokenResponse, error)
	FetchCallLog(ctx context.Context, accessToken string, from, to time.Time, perPage, maxPages int) ([]ringcentral.CallRecord, error)
}

// ReferenceLoader supplies the correlation snapshots. Customers come back
// ordered by display name then id with phones already normalized, so match
// ties resolve the same way on every run.
type ReferenceLoader interface {
	CustomersSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Customer, error)
	JobsSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Job, error)
}

// RecordingArchiver copies a provider recording into durable storage and
// returns the object key. Archiving is best effort; a nil archiver disables
// it.
type RecordingArchiver interface {
	Archive(ctx context.Context, organizationID uuid.UUID, accessToken, recordingID string) (string, error)
}

type Service struct {
	repo     repository.Repository
	client   ProviderClient
	tokens   TokenStore
	refs     ReferenceLoader
	archiver RecordingArchiver
	bus      events.Bus
	cfg      config.CallSyncConfig
	log      *logger.Logger
}

func New(
	repo repository.Repository,
	client ProviderClient,
	tokens TokenStore,
	refs ReferenceLoader,
	archiver RecordingArchiver,
	bus events.Bus,
	cfg config.CallSyncConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		tokens:   tokens,
		refs:     refs,
		archiver: archiver,
		bus:      bus,
		cfg:      cfg,
		log:      log,
	}
}

// Sync runs one synchronization pass for an organization. It never returns
// an error: failures are reported inside the response so the transport can
// always answer 200, and a mid-run fetch failure still processes whatever
// pages arrived before it.
func (s *Service) Sync(ctx context.Context, organizationID uuid.UUID, req transport.SyncRequest) *transport.SyncResponse {
	from, to, err := s.resolveWindow(req)
	if err != nil {
		return s.failure(ctx, organizationID, req.LocationID, 0, err)
	}

	creds, err := s.tokens.GetRingCentralCredentials(ctx, organizationID)
	if err != nil {
		return s.failure(ctx, organizationID, req.LocationID, 0, err)
	}

	tokens, err := s.client.RefreshToken(ctx, creds.ClientID, creds.ClientSecret, creds.RefreshToken)
	if err != nil {
		return s.failure(ctx, organizationID, req.LocationID, 0, err)
	}

	// Persist the rotated refresh token before touching the provider again.
	if err := s.tokens.SaveRefreshToken(ctx, organizationID, tokens.RefreshToken); err != nil {
		return s.failure(ctx, organizationID, req.LocationID, 0, fmt.Errorf("save rotated refresh token: %w", err))
	}

	records, fetchErr := s.client.FetchCallLog(ctx, tokens.AccessToken, from, to, s.cfg.GetSyncPageSize(), s.cfg.GetSyncMaxPages())
	if fetchErr != nil && len(records) == 0 {
		return s.failure(ctx, organizationID, req.LocationID, 0, fetchErr)
	}

	customers, err := s.refs.CustomersSnapshot(ctx, organizationID)
	if err != nil {
		return s.failure(ctx, organizationID, req.LocationID, len(records), err)
	}
	jobs, err := s.refs.JobsSnapshot(ctx, organizationID)
	if err != nil {
		return s.failure(ctx, organizationID, req.LocationID, len(records), err)
	}

	counts := s.processRecords(ctx, organizationID, req.LocationID, tokens.AccessToken, records, customers, jobs)

	resp := &transport.SyncResponse{
		Success: fetchErr == nil,
		Synced:  counts,
		Fetched: len(records),
	}
	if fetchErr != nil {
		resp.Error = fetchErr.Error()
	}

	s.log.SyncRun("ringcentral", organizationID.String(), resp.Fetched, counts.Calls, counts.Matched, counts.Linked)
	s.bus.Publish(ctx, events.CallSyncCompleted{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		LocationID:     req.LocationID,
		Fetched:        resp.Fetched,
		Synced:         counts.Calls,
		Matched:        counts.Matched,
		Linked:         counts.Linked,
	})

	return resp
}

// processRecords correlates and persists the fetched calls one at a time.
// A failure on one call is logged and skipped; the rest of the batch still
// lands.
func (s *Service) processRecords(
	ctx context.Context,
	organizationID uuid.UUID,
	locationID string,
	accessToken string,
	records []ringcentral.CallRecord,
	customers []match.Customer,
	jobs []match.Job,
) transport.SyncCounts {
	var counts transport.SyncCounts

	for _, record := range records {
		log, matched, linked := s.correlate(organizationID, locationID, record, customers, jobs)

		if s.archiver != nil && record.RecordingID != "" {
			key, err := s.archiver.Archive(ctx, organizationID, accessToken, record.RecordingID)
			if err != nil {
				s.log.SyncError("ringcentral", organizationID.String(), fmt.Errorf("archive recording %s: %w", record.RecordingID, err))
			} else {
				log.RecordingKey = &key
			}
		}

		if _, err := s.repo.Upsert(ctx, log); err != nil {
			s.log.SyncError("ringcentral", organizationID.String(), fmt.Errorf("upsert call %s: %w", record.ID, err))
			continue
		}

		counts.Calls++
		if matched {
			counts.Matched++
		}
		if linked {
			counts.Linked++
		}
	}

	return counts
}

// correlate builds the persisted call log entry for a provider record:
// it picks the customer-side number by direction, matches a customer,
// links the nearest job, and maps the provider result to a status.
func (s *Service) correlate(
	organizationID uuid.UUID,
	locationID string,
	record ringcentral.CallRecord,
	customers []match.Customer,
	jobs []match.Job,
) (repository.CallLog, bool, bool) {
	counterparty := record.FromNumber
	if record.Direction == "outbound" {
		counterparty = record.ToNumber
	}

	var (
		matchedCustomerID *uuid.UUID
		linkedJobID       *uuid.UUID
		confidence        = match.ConfidenceNone
	)

	if normalized, ok := match.Normalize(counterparty); ok {
		customer, conf := match.MatchCustomer(normalized, customers)
		confidence = conf
		if customer != nil {
			id := customer.ID
			matchedCustomerID = &id
			if job := match.LinkJob(customer.ID, record.StartTime, jobs); job != nil {
				jobID := job.ID
				linkedJobID = &jobID
			}
		}
	}

	log := repository.CallLog{
		OrganizationID:    organizationID,
		ExternalCallID:    record.ID,
		Direction:         record.Direction,
		StartedAt:         record.StartTime,
		DurationSeconds:   record.DurationSeconds,
		ProviderResult:    record.Result,
		Status:            string(match.MapOutcome(record.Result)),
		MatchedCustomerID: matchedCustomerID,
		MatchConfidence:   string(confidence),
		LinkedJobID:       linkedJobID,
	}
	if locationID != "" {
		log.LocationID = &locationID
	}
	if record.FromNumber != "" {
		from := record.FromNumber
		log.FromNumber = &from
	}
	if record.ToNumber != "" {
		to := record.ToNumber
		log.ToNumber = &to
	}
	if record.RecordingID != "" {
		rec := record.RecordingID
		log.RecordingID = &rec
	}
	return log, matchedCustomerID != nil, linkedJobID != nil
}

func (s *Service) resolveWindow(req transport.SyncRequest) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	if req.DateTo != nil {
		to = req.DateTo.UTC()
	}

	lookback := time.Duration(s.cfg.GetDefaultLookbackHours()) * time.Hour
	switch {
	case req.HoursBack != nil:
		if *req.HoursBack <= 0 {
			return time.Time{}, time.Time{}, apperr.Validation("hoursBack must be positive")
		}
		lookback = time.Duration(*req.HoursBack) * time.Hour
	case req.DaysBack != nil:
		if *req.DaysBack <= 0 {
			return time.Time{}, time.Time{}, apperr.Validation("daysBack must be positive")
		}
		lookback = time.Duration(*req.DaysBack) * 24 * time.Hour
	}

	from := to.Add(-lookback)
	// Explicit dates override the relative lookback.
	if req.DateFrom != nil {
		from = req.DateFrom.UTC()
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, apperr.Validation("dateFrom must be before dateTo")
	}
	return from, to, nil
}

func (s *Service) failure(ctx context.Context, organizationID uuid.UUID, locationID string, fetched int, err error) *transport.SyncResponse {
	s.log.SyncError("ringcentral", organizationID.String(), err)
	s.bus.Publish(ctx, events.CallSyncFailed{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		LocationID:     locationID,
		Reason:         err.Error(),
	})
	return &transport.SyncResponse{
		Success: false,
		Fetched: fetched,
		Error:   err.Error(),
	}
}

// GetCallLog returns one correlated call scoped to the organization.
func (s *Service) GetCallLog(ctx context.Context, id, organizationID uuid.UUID) (*transport.CallLogResponse, error) {
	log, err := s.repo.GetByID(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	resp := toCallLogResponse(*log)
	return &resp, nil
}

// ListCallLogs returns correlated calls with optional filters.
func (s *Service) ListCallLogs(ctx context.Context, organizationID uuid.UUID, req transport.ListCallLogsRequest) (*transport.ListCallLogsResponse, error) {
	logs, total, err := s.repo.List(ctx, organizationID, repository.ListFilters{
		Direction:  req.Direction,
		Status:     req.Status,
		CustomerID: req.CustomerID,
		From:       req.From,
		To:         req.To,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.CallLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, toCallLogResponse(log))
	}
	return &transport.ListCallLogsResponse{Items: items, Total: total}, nil
}

func toCallLogResponse(log repository.CallLog) transport.CallLogResponse {
	return transport.CallLogResponse{
		ID:                log.ID,
		ExternalCallID:    log.ExternalCallID,
		LocationID:        log.LocationID,
		Direction:         log.Direction,
		StartedAt:         log.StartedAt,
		DurationSeconds:   log.DurationSeconds,
		Status:            log.Status,
		FromNumber:        log.FromNumber,
		ToNumber:          log.ToNumber,
		MatchedCustomerID: log.MatchedCustomerID,
		MatchConfidence:   log.MatchConfidence,
		LinkedJobID:       log.LinkedJobID,
		HasRecording:      log.RecordingID != nil,
		SyncedAt:          log.SyncedAt,
	}
}
