package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/internal/calls/match"
)

// MirrorCustomer is a customer staged for the local CRM mirror. Phones are
// already normalized.
type MirrorCustomer struct {
	ExternalID  string
	DisplayName string
	Phones      []string
}

// MirrorJob is a job staged for the local CRM mirror.
type MirrorJob struct {
	ExternalID         string
	CustomerExternalID string
	Description        string
	ScheduledAt        *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ReplaceMirror swaps the organization's CRM mirror for a freshly fetched
// one inside a single transaction, so the correlation snapshots never see a
// half-written mirror.
func (r *Repository) ReplaceMirror(ctx context.Context, organizationID uuid.UUID, customers []MirrorCustomer, jobs []MirrorJob) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mirror transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM crm_customers WHERE organization_id = $1`, organizationID); err != nil {
		return fmt.Errorf("clear customer mirror: %w", err)
	}

	customerIDs := make(map[string]uuid.UUID, len(customers))
	for _, customer := range customers {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO crm_customers (organization_id, external_id, display_name)
			VALUES ($1, $2, $3)
			RETURNING id
		`, organizationID, customer.ExternalID, customer.DisplayName).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert mirror customer %s: %w", customer.ExternalID, err)
		}
		customerIDs[customer.ExternalID] = id

		for _, phone := range customer.Phones {
			if _, err := tx.Exec(ctx, `
				INSERT INTO crm_customer_phones (customer_id, phone_normalized)
				VALUES ($1, $2)
			`, id, phone); err != nil {
				return fmt.Errorf("insert mirror phone: %w", err)
			}
		}
	}

	for _, job := range jobs {
		customerID, ok := customerIDs[job.CustomerExternalID]
		if !ok {
			// Job references a customer the provider did not return; skip it.
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO crm_jobs (organization_id, external_id, customer_id, description, scheduled_at)
			VALUES ($1, $2, $3, $4, $5)
		`, organizationID, job.ExternalID, customerID, job.Description, job.ScheduledAt); err != nil {
			return fmt.Errorf("insert mirror job %s: %w", job.ExternalID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit mirror transaction: %w", err)
	}
	return nil
}

// CustomersSnapshot loads the correlation snapshot ordered by display name
// then id so matching ties resolve the same way on every run.
func (r *Repository) CustomersSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.display_name, COALESCE(array_agg(p.phone_normalized) FILTER (WHERE p.phone_normalized IS NOT NULL), '{}')
		FROM crm_customers c
		LEFT JOIN crm_customer_phones p ON p.customer_id = c.id
		WHERE c.organization_id = $1
		GROUP BY c.id, c.display_name
		ORDER BY c.display_name ASC, c.id ASC
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("load customer snapshot: %w", err)
	}
	defer rows.Close()

	customers := make([]match.Customer, 0)
	for rows.Next() {
		var customer match.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Phones); err != nil {
			return nil, fmt.Errorf("scan customer snapshot: %w", err)
		}
		customers = append(customers, customer)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return customers, nil
}

// JobsSnapshot loads the job snapshot for call-to-job linking.
func (r *Repository) JobsSnapshot(ctx context.Context, organizationID uuid.UUID) ([]match.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, scheduled_at
		FROM crm_jobs
		WHERE organization_id = $1
		ORDER BY scheduled_at ASC NULLS LAST, id ASC
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("load job snapshot: %w", err)
	}
	defer rows.Close()

	jobs := make([]match.Job, 0)
	for rows.Next() {
		var job match.Job
		if err := rows.Scan(&job.ID, &job.CustomerID, &job.ScheduledAt); err != nil {
			return nil, fmt.Errorf("scan job snapshot: %w", err)
		}
		jobs = append(jobs, job)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

type CustomerSummary struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"externalId"`
	DisplayName string    `json:"displayName"`
	Phones      []string  `json:"phones"`
	SyncedAt    time.Time `json:"syncedAt"`
}

func (r *Repository) ListCustomers(ctx context.Context, organizationID uuid.UUID, search string, limit, offset int) ([]CustomerSummary, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM crm_customers
		WHERE organization_id = $1 AND ($2 = '' OR display_name ILIKE '%' || $2 || '%')
	`, organizationID, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mirror customers: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.external_id, c.display_name, c.synced_at,
			COALESCE(array_agg(p.phone_normalized) FILTER (WHERE p.phone_normalized IS NOT NULL), '{}')
		FROM crm_customers c
		LEFT JOIN crm_customer_phones p ON p.customer_id = c.id
		WHERE c.organization_id = $1 AND ($2 = '' OR c.display_name ILIKE '%' || $2 || '%')
		GROUP BY c.id, c.external_id, c.display_name, c.synced_at
		ORDER BY c.display_name ASC, c.id ASC
		LIMIT $3 OFFSET $4
	`, organizationID, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list mirror customers: %w", err)
	}
	defer rows.Close()

	customers := make([]CustomerSummary, 0)
	for rows.Next() {
		var customer CustomerSummary
		if err := rows.Scan(&customer.ID, &customer.ExternalID, &customer.DisplayName, &customer.SyncedAt, &customer.Phones); err != nil {
			return nil, 0, fmt.Errorf("scan mirror customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return customers, total, nil
}

// GetCustomerExternalID maps a mirror customer id back to the provider id.
func (r *Repository) GetCustomerExternalID(ctx context.Context, organizationID, customerID uuid.UUID) (string, error) {
	var externalID string
	err := r.pool.QueryRow(ctx, `
		SELECT external_id FROM crm_customers
		WHERE id = $1 AND organization_id = $2
	`, customerID, organizationID).Scan(&externalID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get customer external id: %w", err)
	}
	return externalID, nil
}

// UpsertJob stores a single provider job, used after creating a job through
// the API so it is linkable before the next full refresh.
func (r *Repository) UpsertJob(ctx context.Context, organizationID uuid.UUID, job MirrorJob, customerID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO crm_jobs (organization_id, external_id, customer_id, description, scheduled_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organization_id, external_id) DO UPDATE SET
			description = EXCLUDED.description,
			scheduled_at = EXCLUDED.scheduled_at,
			synced_at = now()
		RETURNING id
	`, organizationID, job.ExternalID, customerID, job.Description, job.ScheduledAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert mirror job: %w", err)
	}
	return id, nil
}
