package match

import "strings"

// Status is the normalized outcome of a call.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
	StatusVoicemail Status = "voicemail"
	StatusRejected  Status = "rejected"
	StatusBusy      Status = "busy"
)

// outcomeTable maps lowercased provider result strings to statuses.
// Anything absent from the table is treated as a completed call.
var outcomeTable = map[string]Status{
	"call connected": StatusCompleted,
	"accepted":       StatusCompleted,
	"completed":      StatusCompleted,
	"missed":         StatusMissed,
	"no answer":      StatusMissed,
	"voicemail":      StatusVoicemail,
	"voice mail":     StatusVoicemail,
	"rejected":       StatusRejected,
	"declined":       StatusRejected,
	"busy":           StatusBusy,
}

// MapOutcome translates a free-text provider result into a Status.
// Matching is case-insensitive; unrecognized results default to completed.
func MapOutcome(providerResult string) Status {
	if status, ok := outcomeTable[strings.ToLower(strings.TrimSpace(providerResult))]; ok {
		return status
	}
	return StatusCompleted
}
