package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapOutcome(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"Call connected", StatusCompleted},
		{"Accepted", StatusCompleted},
		{"Completed", StatusCompleted},
		{"Missed", StatusMissed},
		{"No Answer", StatusMissed},
		{"Voicemail", StatusVoicemail},
		{"Voice Mail", StatusVoicemail},
		{"Rejected", StatusRejected},
		{"Declined", StatusRejected},
		{"Busy", StatusBusy},
		{"Something Unrecognized", StatusCompleted},
		{"", StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MapOutcome(tt.input))
		})
	}
}
