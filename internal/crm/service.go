// Package crm maintains a local mirror of the HouseCall Pro CRM: customers,
// their phone numbers, and scheduled jobs. The mirror feeds the call
// correlation snapshots and keeps matching off the provider's hot path.
package crm

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fieldops_backend/internal/calls/match"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/sanitize"
)

// mirrorMaxPages bounds a refresh the same way the call sync bounds its
// pagination.
const mirrorMaxPages = 50

// APIKeyProvider supplies the decrypted HouseCall Pro API key.
type APIKeyProvider interface {
	GetHousecallAPIKey(ctx context.Context, organizationID uuid.UUID) (string, error)
}

type Service struct {
	repo   *Repository
	client *HousecallClient
	keys   APIKeyProvider
	bus    events.Bus
	log    *logger.Logger
}

func NewService(repo *Repository, client *HousecallClient, keys APIKeyProvider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, client: client, keys: keys, bus: bus, log: log}
}

type RefreshResult struct {
	Customers int `json:"customers"`
	Phones    int `json:"phones"`
	Jobs      int `json:"jobs"`
}

// RefreshMirror fetches customers and jobs concurrently and replaces the
// organization's mirror in one transaction.
func (s *Service) RefreshMirror(ctx context.Context, organizationID uuid.UUID) (*RefreshResult, error) {
	apiKey, err := s.keys.GetHousecallAPIKey(ctx, organizationID)
	if err != nil {
		return nil, s.refreshFailed(ctx, organizationID, err)
	}

	var (
		rawCustomers []HousecallCustomer
		rawJobs      []HousecallJob
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rawCustomers, err = s.client.ListCustomers(groupCtx, apiKey, mirrorMaxPages)
		return err
	})
	group.Go(func() error {
		var err error
		rawJobs, err = s.client.ListJobs(groupCtx, apiKey, mirrorMaxPages)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, s.refreshFailed(ctx, organizationID, err)
	}

	customers, phoneCount := buildMirrorCustomers(rawCustomers)
	jobs := buildMirrorJobs(rawJobs)

	if err := s.repo.ReplaceMirror(ctx, organizationID, customers, jobs); err != nil {
		return nil, s.refreshFailed(ctx, organizationID, err)
	}

	result := &RefreshResult{Customers: len(customers), Phones: phoneCount, Jobs: len(jobs)}
	s.bus.Publish(ctx, events.CRMRefreshCompleted{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		Customers:      result.Customers,
		Jobs:           result.Jobs,
	})
	return result, nil
}

func (s *Service) refreshFailed(ctx context.Context, organizationID uuid.UUID, err error) error {
	s.log.SyncError("housecall", organizationID.String(), err)
	s.bus.Publish(ctx, events.CRMRefreshFailed{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		Reason:         err.Error(),
	})
	return err
}

// buildMirrorCustomers converts provider customers into mirror rows:
// display name assembled from person or company fields, phones normalized
// and deduplicated. Customers come back sorted by name then external id so
// repeated refreshes produce the same ordering.
func buildMirrorCustomers(raw []HousecallCustomer) ([]MirrorCustomer, int) {
	customers := make([]MirrorCustomer, 0, len(raw))
	phoneCount := 0

	for _, rc := range raw {
		if rc.ID == "" {
			continue
		}

		seen := make(map[string]struct{}, 3)
		phones := make([]string, 0, 3)
		for _, candidate := range []string{rc.MobileNumber, rc.HomeNumber, rc.WorkNumber} {
			normalized, ok := match.Normalize(candidate)
			if !ok {
				continue
			}
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
			phones = append(phones, normalized)
		}
		phoneCount += len(phones)

		customers = append(customers, MirrorCustomer{
			ExternalID:  rc.ID,
			DisplayName: displayName(rc),
			Phones:      phones,
		})
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].DisplayName != customers[j].DisplayName {
			return customers[i].DisplayName < customers[j].DisplayName
		}
		return customers[i].ExternalID < customers[j].ExternalID
	})

	return customers, phoneCount
}

func buildMirrorJobs(raw []HousecallJob) []MirrorJob {
	jobs := make([]MirrorJob, 0, len(raw))
	for _, rj := range raw {
		if rj.ID == "" || rj.Customer.ID == "" {
			continue
		}
		jobs = append(jobs, MirrorJob{
			ExternalID:         rj.ID,
			CustomerExternalID: rj.Customer.ID,
			Description:        sanitize.Text(rj.Description),
			ScheduledAt:        rj.Schedule.ScheduledStart,
		})
	}
	return jobs
}

func displayName(rc HousecallCustomer) string {
	full := strings.TrimSpace(strings.TrimSpace(rc.FirstName) + " " + strings.TrimSpace(rc.LastName))
	if full != "" {
		return full
	}
	if company := strings.TrimSpace(rc.Company); company != "" {
		return company
	}
	return rc.ID
}

// CustomersSnapshot and JobsSnapshot expose the correlation snapshots.
func (s *Service) CustomersSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Customer, error) {
	return s.repo.CustomersSnapshot(ctx, organizationID)
}

func (s *Service) JobsSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Job, error) {
	return s.repo.JobsSnapshot(ctx, organizationID)
}

func (s *Service) ListCustomers(ctx context.Context, organizationID uuid.UUID, search string, limit, offset int) ([]CustomerSummary, int, error) {
	return s.repo.ListCustomers(ctx, organizationID, sanitize.Text(search), limit, offset)
}

type CreateJobParams struct {
	CustomerID  uuid.UUID
	Description string
	ScheduledAt *time.Time
}

type CreatedJob struct {
	ID          uuid.UUID  `json:"id"`
	ExternalID  string     `json:"externalId"`
	Description string     `json:"description"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// CreateJob creates a job in HouseCall Pro for a mirrored customer and
// stores it locally so it is linkable before the next full refresh.
func (s *Service) CreateJob(ctx context.Context, organizationID uuid.UUID, params CreateJobParams) (*CreatedJob, error) {
	externalCustomerID, err := s.repo.GetCustomerExternalID(ctx, organizationID, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if externalCustomerID == "" {
		return nil, apperr.NotFound("customer not found in CRM mirror")
	}

	apiKey, err := s.keys.GetHousecallAPIKey(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	description := sanitize.Text(params.Description)
	created, err := s.client.CreateJob(ctx, apiKey, CreateHousecallJobParams{
		CustomerID:  externalCustomerID,
		Description: description,
		ScheduledAt: params.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	id, err := s.repo.UpsertJob(ctx, organizationID, MirrorJob{
		ExternalID:         created.ID,
		CustomerExternalID: externalCustomerID,
		Description:        description,
		ScheduledAt:        params.ScheduledAt,
	}, params.CustomerID)
	if err != nil {
		return nil, err
	}

	return &CreatedJob{
		ID:          id,
		ExternalID:  created.ID,
		Description: description,
		ScheduledAt: params.ScheduledAt,
	}, nil
}
