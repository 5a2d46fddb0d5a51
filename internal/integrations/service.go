// Package integrations manages provider connections for an organization:
// RingCentral OAuth credentials and the HouseCall Pro API key. Secrets are
// encrypted at rest and only decrypted on the way to a provider call.
package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	callsvc "fieldops_backend/internal/calls/service"
	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/secrets"
)

const (
	ProviderRingCentral = "ringcentral"
	ProviderHousecall   = "housecall"
)

type Service struct {
	repo *Repository
	key  []byte
}

func NewService(repo *Repository, cfg config.IntegrationsConfig) *Service {
	return &Service{repo: repo, key: cfg.GetIntegrationSecretKey()}
}

// TokenStore is satisfied for the call sync pipeline.
var _ callsvc.TokenStore = (*Service)(nil)

type ConnectRingCentralParams struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (s *Service) ConnectRingCentral(ctx context.Context, organizationID uuid.UUID, params ConnectRingCentralParams) error {
	secretEnc, err := secrets.Encrypt(params.ClientSecret, s.key)
	if err != nil {
		return fmt.Errorf("encrypt client secret: %w", err)
	}
	tokenEnc, err := secrets.Encrypt(params.RefreshToken, s.key)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	return s.repo.Upsert(ctx, ProviderIntegration{
		OrganizationID:  organizationID,
		Provider:        ProviderRingCentral,
		IsConnected:     true,
		ClientID:        &params.ClientID,
		ClientSecretEnc: &secretEnc,
		RefreshTokenEnc: &tokenEnc,
	})
}

func (s *Service) ConnectHousecall(ctx context.Context, organizationID uuid.UUID, apiKey string) error {
	keyEnc, err := secrets.Encrypt(apiKey, s.key)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}

	return s.repo.Upsert(ctx, ProviderIntegration{
		OrganizationID: organizationID,
		Provider:       ProviderHousecall,
		IsConnected:    true,
		APIKeyEnc:      &keyEnc,
	})
}

func (s *Service) Disconnect(ctx context.Context, organizationID uuid.UUID, provider string) error {
	if provider != ProviderRingCentral && provider != ProviderHousecall {
		return apperr.BadRequest("unsupported provider")
	}
	return s.repo.Disconnect(ctx, organizationID, provider)
}

type ProviderStatus struct {
	Provider       string     `json:"provider"`
	IsConnected    bool       `json:"isConnected"`
	ConnectedAt    *time.Time `json:"connectedAt,omitempty"`
	TokenRotatedAt *time.Time `json:"tokenRotatedAt,omitempty"`
}

func (s *Service) Status(ctx context.Context, organizationID uuid.UUID, provider string) (*ProviderStatus, error) {
	if provider != ProviderRingCentral && provider != ProviderHousecall {
		return nil, apperr.BadRequest("unsupported provider")
	}

	integration, err := s.repo.GetByProvider(ctx, organizationID, provider)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return &ProviderStatus{Provider: provider, IsConnected: false}, nil
	}

	return &ProviderStatus{
		Provider:       provider,
		IsConnected:    integration.IsConnected,
		ConnectedAt:    &integration.UpdatedAt,
		TokenRotatedAt: integration.TokenRotatedAt,
	}, nil
}

// GetRingCentralCredentials decrypts the stored OAuth credential set.
func (s *Service) GetRingCentralCredentials(ctx context.Context, organizationID uuid.UUID) (*callsvc.Credentials, error) {
	integration, err := s.repo.GetByProvider(ctx, organizationID, ProviderRingCentral)
	if err != nil {
		return nil, err
	}
	if integration == nil || !integration.IsConnected {
		return nil, apperr.BadRequest("ringcentral is not connected")
	}
	if integration.ClientID == nil || integration.ClientSecretEnc == nil || integration.RefreshTokenEnc == nil {
		return nil, apperr.BadRequest("ringcentral credentials are incomplete")
	}

	clientSecret, err := secrets.Decrypt(*integration.ClientSecretEnc, s.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt client secret: %w", err)
	}
	refreshToken, err := secrets.Decrypt(*integration.RefreshTokenEnc, s.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	return &callsvc.Credentials{
		ClientID:     *integration.ClientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
	}, nil
}

// SaveRefreshToken encrypts and stores a rotated refresh token.
func (s *Service) SaveRefreshToken(ctx context.Context, organizationID uuid.UUID, refreshToken string) error {
	tokenEnc, err := secrets.Encrypt(refreshToken, s.key)
	if err != nil {
		return fmt.Errorf("encrypt rotated refresh token: %w", err)
	}
	return s.repo.SaveRefreshToken(ctx, organizationID, ProviderRingCentral, tokenEnc)
}

// ListConnectedOrganizations returns organizations with an active
// integration for the given provider.
func (s *Service) ListConnectedOrganizations(ctx context.Context, provider string) ([]uuid.UUID, error) {
	return s.repo.ListConnectedOrganizations(ctx, provider)
}

// GetHousecallAPIKey decrypts the stored HouseCall Pro API key.
func (s *Service) GetHousecallAPIKey(ctx context.Context, organizationID uuid.UUID) (string, error) {
	integration, err := s.repo.GetByProvider(ctx, organizationID, ProviderHousecall)
	if err != nil {
		return "", err
	}
	if integration == nil || !integration.IsConnected || integration.APIKeyEnc == nil {
		return "", apperr.BadRequest("housecall is not connected")
	}
	return secrets.Decrypt(*integration.APIKeyEnc, s.key)
}
