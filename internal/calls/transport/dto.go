package transport

import (
	"time"

	"github.com/google/uuid"
)

// SyncRequest triggers a call log sync. The window is either explicit
// dates, a relative lookback in hours or days ending now, or the
// configured default lookback.
type SyncRequest struct {
	LocationID string     `json:"locationId"`
	HoursBack  *int       `json:"hoursBack"`
	DaysBack   *int       `json:"daysBack"`
	DateFrom   *time.Time `json:"dateFrom"`
	DateTo     *time.Time `json:"dateTo"`
}

// SyncCounts breaks down what a sync run accomplished.
type SyncCounts struct {
	Calls   int `json:"calls"`
	Matched int `json:"matched"`
	Linked  int `json:"linked"`
}

// SyncResponse is always returned with HTTP 200; failures surface through
// Success=false and Error rather than an error status.
type SyncResponse struct {
	Success bool       `json:"success"`
	Synced  SyncCounts `json:"synced"`
	Fetched int        `json:"fetched"`
	Error   string     `json:"error,omitempty"`
}

type CallLogResponse struct {
	ID                uuid.UUID  `json:"id"`
	ExternalCallID    string     `json:"externalCallId"`
	LocationID        *string    `json:"locationId,omitempty"`
	Direction         string     `json:"direction"`
	StartedAt         time.Time  `json:"startedAt"`
	DurationSeconds   *int       `json:"durationSeconds,omitempty"`
	Status            string     `json:"status"`
	FromNumber        *string    `json:"fromNumber,omitempty"`
	ToNumber          *string    `json:"toNumber,omitempty"`
	MatchedCustomerID *uuid.UUID `json:"matchedCustomerId,omitempty"`
	MatchConfidence   string     `json:"matchConfidence"`
	LinkedJobID       *uuid.UUID `json:"linkedJobId,omitempty"`
	HasRecording      bool       `json:"hasRecording"`
	SyncedAt          time.Time  `json:"syncedAt"`
}

type ListCallLogsRequest struct {
	Direction  string     `form:"direction" binding:"omitempty,oneof=inbound outbound"`
	Status     string     `form:"status" binding:"omitempty,oneof=completed missed voicemail rejected busy"`
	CustomerID *uuid.UUID `form:"customerId"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}

type ListCallLogsResponse struct {
	Items []CallLogResponse `json:"items"`
	Total int               `json:"total"`
}
