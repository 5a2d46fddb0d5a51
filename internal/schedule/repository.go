package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/platform/apperr"
)

type Technician struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Visit struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	TechnicianID   *uuid.UUID `json:"technicianId,omitempty"`
	CRMCustomerID  *string    `json:"crmCustomerId,omitempty"`
	CRMJobID       *string    `json:"crmJobId,omitempty"`
	Summary        string     `json:"summary"`
	ScheduledStart time.Time  `json:"scheduledStart"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const technicianColumns = `id, organization_id, name, phone, email, is_active, created_at, updated_at`

func (r *Repository) CreateTechnician(ctx context.Context, organizationID uuid.UUID, name string, phone, email *string) (*Technician, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO technicians (organization_id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+technicianColumns+`
	`, organizationID, name, phone, email)

	tech, err := scanTechnician(row)
	if err != nil {
		return nil, fmt.Errorf("create technician: %w", err)
	}
	return tech, nil
}

func (r *Repository) GetTechnician(ctx context.Context, id, organizationID uuid.UUID) (*Technician, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+technicianColumns+`
		FROM technicians
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)

	tech, err := scanTechnician(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("technician not found")
		}
		return nil, fmt.Errorf("get technician: %w", err)
	}
	return tech, nil
}

func (r *Repository) ListTechnicians(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Technician, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+technicianColumns+`
		FROM technicians
		WHERE organization_id = $1 AND ($2 = false OR is_active = true)
		ORDER BY name ASC
	`, organizationID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	techs := make([]Technician, 0)
	for rows.Next() {
		tech, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		techs = append(techs, *tech)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return techs, nil
}

type UpdateTechnicianParams struct {
	Name     *string
	Phone    *string
	Email    *string
	IsActive *bool
}

func (r *Repository) UpdateTechnician(ctx context.Context, id, organizationID uuid.UUID, params UpdateTechnicianParams) (*Technician, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE technicians SET
			name = COALESCE($3, name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+technicianColumns+`
	`, id, organizationID, params.Name, params.Phone, params.Email, params.IsActive)

	tech, err := scanTechnician(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("technician not found")
		}
		return nil, fmt.Errorf("update technician: %w", err)
	}
	return tech, nil
}

const visitColumns = `id, organization_id, technician_id, crm_customer_id, crm_job_id, summary, scheduled_start, scheduled_end, status, created_at, updated_at`

type CreateVisitParams struct {
	OrganizationID uuid.UUID
	TechnicianID   *uuid.UUID
	CRMCustomerID  *string
	CRMJobID       *string
	Summary        string
	ScheduledStart time.Time
	ScheduledEnd   *time.Time
}

func (r *Repository) CreateVisit(ctx context.Context, params CreateVisitParams) (*Visit, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO visits (organization_id, technician_id, crm_customer_id, crm_job_id, summary, scheduled_start, scheduled_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+visitColumns+`
	`, params.OrganizationID, params.TechnicianID, params.CRMCustomerID, params.CRMJobID,
		params.Summary, params.ScheduledStart, params.ScheduledEnd)

	visit, err := scanVisit(row)
	if err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	return visit, nil
}

func (r *Repository) GetVisit(ctx context.Context, id, organizationID uuid.UUID) (*Visit, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)

	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("visit not found")
		}
		return nil, fmt.Errorf("get visit: %w", err)
	}
	return visit, nil
}

type ListVisitsParams struct {
	OrganizationID uuid.UUID
	TechnicianID   *uuid.UUID
	Status         string
	From           *time.Time
	To             *time.Time
}

func (r *Repository) ListVisits(ctx context.Context, params ListVisitsParams) ([]Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE organization_id = $1`
	args := []any{params.OrganizationID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if params.TechnicianID != nil {
		addArg(" AND technician_id = $%d", *params.TechnicianID)
	}
	if params.Status != "" {
		addArg(" AND status = $%d", params.Status)
	}
	if params.From != nil {
		addArg(" AND scheduled_start >= $%d", *params.From)
	}
	if params.To != nil {
		addArg(" AND scheduled_start < $%d", *params.To)
	}
	query += " ORDER BY scheduled_start ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	visits := make([]Visit, 0)
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, *visit)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return visits, nil
}

type UpdateVisitParams struct {
	TechnicianID   *uuid.UUID
	Summary        *string
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Status         *string
}

func (r *Repository) UpdateVisit(ctx context.Context, id, organizationID uuid.UUID, params UpdateVisitParams) (*Visit, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE visits SET
			technician_id = COALESCE($3, technician_id),
			summary = COALESCE($4, summary),
			scheduled_start = COALESCE($5, scheduled_start),
			scheduled_end = COALESCE($6, scheduled_end),
			status = COALESCE($7, status),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+visitColumns+`
	`, id, organizationID, params.TechnicianID, params.Summary, params.ScheduledStart, params.ScheduledEnd, params.Status)

	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("visit not found")
		}
		return nil, fmt.Errorf("update visit: %w", err)
	}
	return visit, nil
}

func (r *Repository) DeleteVisit(ctx context.Context, id, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM visits WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("visit not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTechnician(row rowScanner) (*Technician, error) {
	var tech Technician
	err := row.Scan(
		&tech.ID, &tech.OrganizationID, &tech.Name, &tech.Phone, &tech.Email,
		&tech.IsActive, &tech.CreatedAt, &tech.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tech, nil
}

func scanVisit(row rowScanner) (*Visit, error) {
	var visit Visit
	err := row.Scan(
		&visit.ID, &visit.OrganizationID, &visit.TechnicianID, &visit.CRMCustomerID,
		&visit.CRMJobID, &visit.Summary, &visit.ScheduledStart, &visit.ScheduledEnd,
		&visit.Status, &visit.CreatedAt, &visit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &visit, nil
}
