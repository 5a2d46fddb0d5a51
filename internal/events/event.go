// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"fieldops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Identity Domain Events
// =============================================================================

// OrganizationCreated is published when a new organization is provisioned.
// Subscribers seed per-organization defaults (e.g., checklist templates).
type OrganizationCreated struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
}

func (e OrganizationCreated) EventName() string { return "identity.organization.created" }

// =============================================================================
// Call Sync Domain Events
// =============================================================================

// CallSyncCompleted is published after a call-log sync run finishes successfully.
type CallSyncCompleted struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	LocationID     string    `json:"locationId"`
	Fetched        int       `json:"fetched"`
	Synced         int       `json:"synced"`
	Matched        int       `json:"matched"`
	Linked         int       `json:"linked"`
}

func (e CallSyncCompleted) EventName() string { return "calls.sync.completed" }

// CallSyncFailed is published when a call-log sync run reports an error.
type CallSyncFailed struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	LocationID     string    `json:"locationId"`
	Reason         string    `json:"reason"`
}

func (e CallSyncFailed) EventName() string { return "calls.sync.failed" }

// =============================================================================
// CRM Mirror Domain Events
// =============================================================================

// CRMRefreshCompleted is published after the HouseCall Pro mirror refresh succeeds.
type CRMRefreshCompleted struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Customers      int       `json:"customers"`
	Jobs           int       `json:"jobs"`
}

func (e CRMRefreshCompleted) EventName() string { return "crm.refresh.completed" }

// CRMRefreshFailed is published when the HouseCall Pro mirror refresh fails.
type CRMRefreshFailed struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Reason         string    `json:"reason"`
}

func (e CRMRefreshFailed) EventName() string { return "crm.refresh.failed" }
