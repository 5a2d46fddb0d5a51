// Package schedule manages technicians and their visit assignments.
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/phone"
	"fieldops_backend/platform/sanitize"
)

const (
	VisitStatusScheduled  = "scheduled"
	VisitStatusInProgress = "in_progress"
	VisitStatusCompleted  = "completed"
	VisitStatusCancelled  = "cancelled"
)

// validVisitTransitions describes which status moves are allowed. Completed
// and cancelled visits are terminal.
var validVisitTransitions = map[string][]string{
	VisitStatusScheduled:  {VisitStatusInProgress, VisitStatusCompleted, VisitStatusCancelled},
	VisitStatusInProgress: {VisitStatusCompleted, VisitStatusCancelled},
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateTechnician(ctx context.Context, organizationID uuid.UUID, name string, phone, email *string) (*Technician, error) {
	return s.repo.CreateTechnician(ctx, organizationID, sanitize.Text(name), normalizePhone(phone), sanitize.TextPtr(email))
}

// normalizePhone stores technician numbers in E.164 so they line up with
// dialer exports and are unambiguous across regions.
func normalizePhone(raw *string) *string {
	cleaned := sanitize.TextPtr(raw)
	if cleaned == nil {
		return nil
	}
	formatted := phone.FormatE164(*cleaned)
	return &formatted
}

func (s *Service) GetTechnician(ctx context.Context, id, organizationID uuid.UUID) (*Technician, error) {
	return s.repo.GetTechnician(ctx, id, organizationID)
}

func (s *Service) ListTechnicians(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Technician, error) {
	return s.repo.ListTechnicians(ctx, organizationID, activeOnly)
}

func (s *Service) UpdateTechnician(ctx context.Context, id, organizationID uuid.UUID, params UpdateTechnicianParams) (*Technician, error) {
	params.Name = sanitize.TextPtr(params.Name)
	params.Phone = normalizePhone(params.Phone)
	params.Email = sanitize.TextPtr(params.Email)
	return s.repo.UpdateTechnician(ctx, id, organizationID, params)
}

func (s *Service) CreateVisit(ctx context.Context, params CreateVisitParams) (*Visit, error) {
	if params.ScheduledEnd != nil && !params.ScheduledEnd.After(params.ScheduledStart) {
		return nil, apperr.Validation("scheduled end must be after scheduled start")
	}
	if params.TechnicianID != nil {
		tech, err := s.repo.GetTechnician(ctx, *params.TechnicianID, params.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !tech.IsActive {
			return nil, apperr.Validation("technician is not active")
		}
	}
	params.Summary = sanitize.Text(params.Summary)
	return s.repo.CreateVisit(ctx, params)
}

func (s *Service) GetVisit(ctx context.Context, id, organizationID uuid.UUID) (*Visit, error) {
	return s.repo.GetVisit(ctx, id, organizationID)
}

func (s *Service) ListVisits(ctx context.Context, params ListVisitsParams) ([]Visit, error) {
	return s.repo.ListVisits(ctx, params)
}

// ListVisitsForDay returns visits whose scheduled start falls on the given
// calendar day in the supplied location.
func (s *Service) ListVisitsForDay(ctx context.Context, organizationID uuid.UUID, day time.Time, technicianID *uuid.UUID) ([]Visit, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	return s.repo.ListVisits(ctx, ListVisitsParams{
		OrganizationID: organizationID,
		TechnicianID:   technicianID,
		From:           &start,
		To:             &end,
	})
}

func (s *Service) UpdateVisit(ctx context.Context, id, organizationID uuid.UUID, params UpdateVisitParams) (*Visit, error) {
	if params.Status != nil {
		current, err := s.repo.GetVisit(ctx, id, organizationID)
		if err != nil {
			return nil, err
		}
		if *params.Status != current.Status && !transitionAllowed(current.Status, *params.Status) {
			return nil, apperr.Validation("cannot move visit from " + current.Status + " to " + *params.Status)
		}
	}
	params.Summary = sanitize.TextPtr(params.Summary)
	return s.repo.UpdateVisit(ctx, id, organizationID, params)
}

func (s *Service) DeleteVisit(ctx context.Context, id, organizationID uuid.UUID) error {
	return s.repo.DeleteVisit(ctx, id, organizationID)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validVisitTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
