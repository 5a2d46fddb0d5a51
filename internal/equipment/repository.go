package equipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/platform/apperr"
)

type Equipment struct {
	ID                   uuid.UUID  `json:"id"`
	OrganizationID       uuid.UUID  `json:"organizationId"`
	Name                 string     `json:"name"`
	SerialNumber         *string    `json:"serialNumber,omitempty"`
	Status               string     `json:"status"`
	AssignedTechnicianID *uuid.UUID `json:"assignedTechnicianId,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const equipmentColumns = `id, organization_id, name, serial_number, status, assigned_technician_id, notes, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, organizationID uuid.UUID, name string, serialNumber, notes *string) (*Equipment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO equipment (organization_id, name, serial_number, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+equipmentColumns+`
	`, organizationID, name, serialNumber, notes)

	eq, err := scanEquipment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("equipment with this serial number already exists")
		}
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return eq, nil
}

func (r *Repository) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*Equipment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)

	eq, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("equipment not found")
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return eq, nil
}

func (r *Repository) List(ctx context.Context, organizationID uuid.UUID, status string) ([]Equipment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE organization_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY name ASC
	`, organizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	items := make([]Equipment, 0)
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		items = append(items, *eq)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, status string, technicianID *uuid.UUID) (*Equipment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE equipment SET status = $3, assigned_technician_id = $4, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+equipmentColumns+`
	`, id, organizationID, status, technicianID)

	eq, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("equipment not found")
		}
		return nil, fmt.Errorf("update equipment status: %w", err)
	}
	return eq, nil
}

func (r *Repository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM equipment WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("equipment not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row rowScanner) (*Equipment, error) {
	var eq Equipment
	err := row.Scan(
		&eq.ID, &eq.OrganizationID, &eq.Name, &eq.SerialNumber, &eq.Status,
		&eq.AssignedTechnicianID, &eq.Notes, &eq.CreatedAt, &eq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}
