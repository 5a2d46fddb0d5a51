package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/platform/apperr"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const itemColumns = `id, organization_id, name, sku, unit, quantity, reorder_level, storage_location, notes, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, params CreateItemParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (organization_id, name, sku, unit, quantity, reorder_level, storage_location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+itemColumns+`
	`, params.OrganizationID, params.Name, params.SKU, params.Unit, params.Quantity, params.ReorderLevel, params.StorageLocation, params.Notes)

	item, err := scanItem(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("an item with this SKU already exists")
		}
		return nil, fmt.Errorf("create inventory item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("inventory item not found")
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) List(ctx context.Context, organizationID uuid.UUID, search string, lowStockOnly bool, limit, offset int) ([]Item, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	where := "organization_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')"
	if lowStockOnly {
		where += " AND quantity <= reorder_level"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items WHERE `+where, organizationID, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE `+where+`
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`, organizationID, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return items, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, organizationID uuid.UUID, params UpdateItemParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE inventory_items SET
			name = COALESCE($3, name),
			unit = COALESCE($4, unit),
			reorder_level = COALESCE($5, reorder_level),
			storage_location = COALESCE($6, storage_location),
			notes = COALESCE($7, notes),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+itemColumns+`
	`, id, organizationID, params.Name, params.Unit, params.ReorderLevel, params.StorageLocation, params.Notes)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("inventory item not found")
		}
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM inventory_items WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inventory item not found")
	}
	return nil
}

func (r *PostgresRepository) AdjustStock(ctx context.Context, id, organizationID uuid.UUID, delta int, reason string, adjustedBy *uuid.UUID) (*Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stock adjustment: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE inventory_items SET quantity = quantity + $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND quantity + $3 >= 0
		RETURNING `+itemColumns+`
	`, id, organizationID, delta)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the item is missing or the delta would go negative.
			if _, getErr := r.GetByID(ctx, id, organizationID); getErr != nil {
				return nil, getErr
			}
			return nil, apperr.Validation("adjustment would make quantity negative")
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_adjustments (organization_id, item_id, delta, reason, adjusted_by)
		VALUES ($1, $2, $3, $4, $5)
	`, organizationID, id, delta, reason, adjustedBy); err != nil {
		return nil, fmt.Errorf("record stock adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock adjustment: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListAdjustments(ctx context.Context, itemID, organizationID uuid.UUID, limit int) ([]Adjustment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, item_id, delta, reason, adjusted_by, created_at
		FROM inventory_adjustments
		WHERE item_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, itemID, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make([]Adjustment, 0)
	for rows.Next() {
		var adj Adjustment
		if err := rows.Scan(&adj.ID, &adj.ItemID, &adj.Delta, &adj.Reason, &adj.AdjustedBy, &adj.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return adjustments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.OrganizationID, &item.Name, &item.SKU, &item.Unit, &item.Quantity,
		&item.ReorderLevel, &item.StorageLocation, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
