// Package identity owns organizations, their locations, and tenant
// provisioning. Creating an organization publishes an event so other
// modules can seed per-tenant defaults.
package identity

import (
	"context"

	"github.com/google/uuid"

	"fieldops_backend/internal/auth"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/sanitize"
)

type Service struct {
	repo *Repository
	bus  events.Bus
	log  *logger.Logger
}

func NewService(repo *Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

type ProvisionParams struct {
	Name             string
	AdminEmail       string
	AdminPassword    string
	AdminDisplayName string
}

type ProvisionResult struct {
	Organization *Organization `json:"organization"`
	AdminUserID  uuid.UUID     `json:"adminUserId"`
}

// Provision creates an organization with its first admin and announces the
// new tenant on the event bus.
func (s *Service) Provision(ctx context.Context, params ProvisionParams) (*ProvisionResult, error) {
	passwordHash, err := auth.HashPassword(params.AdminPassword)
	if err != nil {
		return nil, err
	}

	name := sanitize.Text(params.Name)
	org, adminID, err := s.repo.CreateOrganizationWithAdmin(ctx, name, params.AdminEmail, passwordHash, sanitize.Text(params.AdminDisplayName))
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.OrganizationCreated{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: org.ID,
		Name:           org.Name,
	})

	return &ProvisionResult{Organization: org, AdminUserID: adminID}, nil
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}

func (s *Service) RenameOrganization(ctx context.Context, id uuid.UUID, name string) (*Organization, error) {
	return s.repo.UpdateOrganizationName(ctx, id, sanitize.Text(name))
}

func (s *Service) CreateLocation(ctx context.Context, organizationID uuid.UUID, name string, address, ringcentralLocationID *string) (*Location, error) {
	return s.repo.CreateLocation(ctx, organizationID, sanitize.Text(name), sanitize.TextPtr(address), ringcentralLocationID)
}

func (s *Service) ListLocations(ctx context.Context, organizationID uuid.UUID) ([]Location, error) {
	return s.repo.ListLocations(ctx, organizationID)
}

func (s *Service) DeleteLocation(ctx context.Context, organizationID, locationID uuid.UUID) error {
	return s.repo.DeleteLocation(ctx, organizationID, locationID)
}
