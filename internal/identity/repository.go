package identity

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

type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Location struct {
	ID                    uuid.UUID `json:"id"`
	OrganizationID        uuid.UUID `json:"organizationId"`
	Name                  string    `json:"name"`
	Address               *string   `json:"address,omitempty"`
	RingCentralLocationID *string   `json:"ringcentralLocationId,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateOrganizationWithAdmin provisions an organization and its first admin
// user in one transaction.
func (r *Repository) CreateOrganizationWithAdmin(ctx context.Context, name, adminEmail, adminPasswordHash, adminDisplayName string) (*Organization, uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("begin provisioning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var org Organization
	err = tx.QueryRow(ctx, `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, name).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("insert organization: %w", err)
	}

	var adminID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO users (organization_id, email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, 'admin')
		RETURNING id
	`, org.ID, adminEmail, adminPasswordHash, adminDisplayName).Scan(&adminID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("insert admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, uuid.Nil, fmt.Errorf("commit provisioning transaction: %w", err)
	}
	return &org, adminID, nil
}

func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("organization not found")
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

func (r *Repository) UpdateOrganizationName(ctx context.Context, id uuid.UUID, name string) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `
		UPDATE organizations SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, id, name).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("organization not found")
		}
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return &org, nil
}

func (r *Repository) CreateLocation(ctx context.Context, organizationID uuid.UUID, name string, address, ringcentralLocationID *string) (*Location, error) {
	var loc Location
	err := r.pool.QueryRow(ctx, `
		INSERT INTO locations (organization_id, name, address, ringcentral_location_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, organization_id, name, address, ringcentral_location_id, created_at, updated_at
	`, organizationID, name, address, ringcentralLocationID).Scan(
		&loc.ID, &loc.OrganizationID, &loc.Name, &loc.Address, &loc.RingCentralLocationID, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return &loc, nil
}

func (r *Repository) ListLocations(ctx context.Context, organizationID uuid.UUID) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, address, ringcentral_location_id, created_at, updated_at
		FROM locations
		WHERE organization_id = $1
		ORDER BY name ASC
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]Location, 0)
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.OrganizationID, &loc.Name, &loc.Address, &loc.RingCentralLocationID, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return locations, nil
}

func (r *Repository) DeleteLocation(ctx context.Context, organizationID, locationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM locations WHERE id = $1 AND organization_id = $2
	`, locationID, organizationID)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("location not found")
	}
	return nil
}
