package match

import (
	"time"

	"github.com/google/uuid"
)

// Confidence is the tier of a customer match.
type Confidence string

const (
	// ConfidenceExact means a normalized number was identical to a stored one.
	ConfidenceExact Confidence = "exact"
	// ConfidencePartial means only the trailing 7 digits agreed.
	ConfidencePartial Confidence = "partial"
	// ConfidenceNone means no customer matched.
	ConfidenceNone Confidence = "none"
)

// Customer is a reference-snapshot customer. Phones must already be
// normalized by the snapshot loader.
type Customer struct {
	ID     uuid.UUID
	Name   string
	Phones []string
}

// Job is a reference-snapshot scheduled job.
type Job struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	ScheduledAt *time.Time
}

// MatchCustomer finds the customer owning the candidate phone number.
// Two passes over the snapshot: an exact pass (identical normalized number)
// takes priority over a partial pass (same trailing 7 digits). Within a
// pass, the first customer in iteration order wins; snapshot loaders order
// customers by display name then id, so ties resolve deterministically.
// An empty candidate never matches.
func MatchCustomer(candidate string, customers []Customer) (*Customer, Confidence) {
	if candidate == "" {
		return nil, ConfidenceNone
	}

	for i := range customers {
		for _, phone := range customers[i].Phones {
			if phone == candidate {
				return &customers[i], ConfidenceExact
			}
		}
	}

	candidateTail := lastSeven(candidate)
	for i := range customers {
		for _, phone := range customers[i].Phones {
			if lastSeven(phone) == candidateTail {
				return &customers[i], ConfidencePartial
			}
		}
	}

	return nil, ConfidenceNone
}
