// Package equipment tracks shared tools and machines: availability status
// and assignment to technicians.
package equipment

import (
	"context"

	"github.com/google/uuid"

	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/sanitize"
)

const (
	StatusAvailable   = "available"
	StatusAssigned    = "assigned"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, name string, serialNumber, notes *string) (*Equipment, error) {
	return s.repo.Create(ctx, organizationID, sanitize.Text(name), sanitize.TextPtr(serialNumber), sanitize.TextPtr(notes))
}

func (s *Service) Get(ctx context.Context, id, organizationID uuid.UUID) (*Equipment, error) {
	return s.repo.GetByID(ctx, id, organizationID)
}

func (s *Service) List(ctx context.Context, organizationID uuid.UUID, status string) ([]Equipment, error) {
	return s.repo.List(ctx, organizationID, status)
}

// Assign hands a piece of equipment to a technician.
func (s *Service) Assign(ctx context.Context, id, organizationID, technicianID uuid.UUID) (*Equipment, error) {
	eq, err := s.repo.GetByID(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if eq.Status == StatusRetired {
		return nil, apperr.Validation("retired equipment cannot be assigned")
	}
	return s.repo.UpdateStatus(ctx, id, organizationID, StatusAssigned, &technicianID)
}

// Release returns assigned equipment to the available pool.
func (s *Service) Release(ctx context.Context, id, organizationID uuid.UUID) (*Equipment, error) {
	return s.repo.UpdateStatus(ctx, id, organizationID, StatusAvailable, nil)
}

// SetStatus moves equipment into maintenance or retirement.
func (s *Service) SetStatus(ctx context.Context, id, organizationID uuid.UUID, status string) (*Equipment, error) {
	switch status {
	case StatusAvailable, StatusMaintenance, StatusRetired:
	default:
		return nil, apperr.Validation("invalid equipment status")
	}
	return s.repo.UpdateStatus(ctx, id, organizationID, status, nil)
}

func (s *Service) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	return s.repo.Delete(ctx, id, organizationID)
}
