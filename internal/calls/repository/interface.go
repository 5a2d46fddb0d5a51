package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CallLog is a persisted, correlated call record.
type CallLog struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	ExternalCallID    string
	LocationID        *string
	Direction         string
	StartedAt         time.Time
	DurationSeconds   *int
	ProviderResult    string
	Status            string
	FromNumber        *string
	ToNumber          *string
	RecordingID       *string
	RecordingKey      *string
	MatchedCustomerID *uuid.UUID
	MatchConfidence   string
	LinkedJobID       *uuid.UUID
	SyncedAt          time.Time
}

// ListFilters narrows a call log listing. Zero values mean no filter.
type ListFilters struct {
	Direction  string
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	// Upsert inserts the call or, when the (organization, external call id)
	// pair already exists, refreshes the mutable fields.
	Upsert(ctx context.Context, log CallLog) (uuid.UUID, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (*CallLog, error)
	List(ctx context.Context, organizationID uuid.UUID, filters ListFilters) ([]CallLog, int, error)
}
