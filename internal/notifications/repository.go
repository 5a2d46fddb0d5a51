package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AdminEmails returns the addresses of active admins in an organization.
func (r *Repository) AdminEmails(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email
		FROM users
		WHERE organization_id = $1 AND role = 'admin' AND is_active = true
		ORDER BY email
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list admin emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan admin email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
