package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/internal/events"
	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/logger"
)

type Module struct {
	repo   *Repository
	sender Sender
	log    *logger.Logger
}

func NewModule(pool *pgxpool.Pool, sender Sender, bus events.Bus, log *logger.Logger) *Module {
	m := &Module{
		repo:   NewRepository(pool),
		sender: sender,
		log:    log,
	}

	bus.Subscribe(events.CallSyncFailed{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			failed, ok := event.(events.CallSyncFailed)
			if !ok {
				return nil
			}
			return m.alertAdmins(ctx, failed.OrganizationID, SyncFailureData{
				Title:      "Call sync failed",
				Heading:    "Call sync failed",
				SyncKind:   "call log",
				Provider:   "RingCentral",
				Reason:     failed.Reason,
				OccurredAt: failed.OccurredAt().UTC().Format(time.RFC1123),
			})
		}))

	bus.Subscribe(events.CRMRefreshFailed{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			failed, ok := event.(events.CRMRefreshFailed)
			if !ok {
				return nil
			}
			return m.alertAdmins(ctx, failed.OrganizationID, SyncFailureData{
				Title:      "CRM refresh failed",
				Heading:    "CRM refresh failed",
				SyncKind:   "customer mirror",
				Provider:   "HouseCall Pro",
				Reason:     failed.Reason,
				OccurredAt: failed.OccurredAt().UTC().Format(time.RFC1123),
			})
		}))

	return m
}

func (m *Module) Name() string {
	return "notifications"
}

// RegisterRoutes is a no-op. The module only reacts to events.
func (m *Module) RegisterRoutes(_ *apphttp.RouterContext) {}

func (m *Module) alertAdmins(ctx context.Context, organizationID uuid.UUID, data SyncFailureData) error {
	emails, err := m.repo.AdminEmails(ctx, organizationID)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		m.log.Warn("no admin emails for sync failure alert", "organization_id", organizationID)
		return nil
	}

	for _, email := range emails {
		if err := m.sender.SendSyncFailureEmail(ctx, email, data); err != nil {
			// Keep trying the remaining admins.
			m.log.Error("send sync failure alert", "to", email, "error", err)
		}
	}
	return nil
}
