package integrations

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

// ProviderIntegration is a stored provider connection. Secret columns hold
// AES-GCM ciphertext, never plaintext.
type ProviderIntegration struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Provider        string
	IsConnected     bool
	ClientID        *string
	ClientSecretEnc *string
	RefreshTokenEnc *string
	APIKeyEnc       *string
	TokenRotatedAt  *time.Time
	DisconnectedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const integrationColumns = `id, organization_id, provider, is_connected, client_id, client_secret_enc,
	refresh_token_enc, api_key_enc, token_rotated_at, disconnected_at, created_at, updated_at`

func (r *Repository) GetByProvider(ctx context.Context, organizationID uuid.UUID, provider string) (*ProviderIntegration, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+integrationColumns+`
		FROM provider_integrations
		WHERE organization_id = $1 AND provider = $2
	`, organizationID, provider)

	var pi ProviderIntegration
	err := row.Scan(
		&pi.ID, &pi.OrganizationID, &pi.Provider, &pi.IsConnected, &pi.ClientID, &pi.ClientSecretEnc,
		&pi.RefreshTokenEnc, &pi.APIKeyEnc, &pi.TokenRotatedAt, &pi.DisconnectedAt, &pi.CreatedAt, &pi.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider integration: %w", err)
	}
	return &pi, nil
}

func (r *Repository) Upsert(ctx context.Context, pi ProviderIntegration) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO provider_integrations (
			organization_id, provider, is_connected, client_id, client_secret_enc,
			refresh_token_enc, api_key_enc, disconnected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		ON CONFLICT (organization_id, provider) DO UPDATE SET
			is_connected = EXCLUDED.is_connected,
			client_id = EXCLUDED.client_id,
			client_secret_enc = EXCLUDED.client_secret_enc,
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			api_key_enc = EXCLUDED.api_key_enc,
			disconnected_at = NULL,
			updated_at = now()
	`,
		pi.OrganizationID, pi.Provider, pi.IsConnected, pi.ClientID, pi.ClientSecretEnc,
		pi.RefreshTokenEnc, pi.APIKeyEnc,
	)
	if err != nil {
		return fmt.Errorf("upsert provider integration: %w", err)
	}
	return nil
}

// SaveRefreshToken replaces the stored refresh token ciphertext and stamps
// the rotation time.
func (r *Repository) SaveRefreshToken(ctx context.Context, organizationID uuid.UUID, provider, refreshTokenEnc string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE provider_integrations
		SET refresh_token_enc = $3, token_rotated_at = now(), updated_at = now()
		WHERE organization_id = $1 AND provider = $2
	`, organizationID, provider, refreshTokenEnc)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider integration not found")
	}
	return nil
}

// ListConnectedOrganizations returns the IDs of organizations with an
// active integration for the given provider. The background sync enumerates
// these to fan out per-organization work.
func (r *Repository) ListConnectedOrganizations(ctx context.Context, provider string) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT organization_id
		FROM provider_integrations
		WHERE provider = $1 AND is_connected = true
		ORDER BY organization_id
	`, provider)
	if err != nil {
		return nil, fmt.Errorf("list connected organizations: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) Disconnect(ctx context.Context, organizationID uuid.UUID, provider string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE provider_integrations
		SET is_connected = false, disconnected_at = now(), updated_at = now()
		WHERE organization_id = $1 AND provider = $2
	`, organizationID, provider)
	if err != nil {
		return fmt.Errorf("disconnect provider integration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider integration not found")
	}
	return nil
}
