package schedule

import "testing"

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"scheduled to in_progress", VisitStatusScheduled, VisitStatusInProgress, true},
		{"scheduled to completed", VisitStatusScheduled, VisitStatusCompleted, true},
		{"scheduled to cancelled", VisitStatusScheduled, VisitStatusCancelled, true},
		{"in_progress to completed", VisitStatusInProgress, VisitStatusCompleted, true},
		{"in_progress to scheduled", VisitStatusInProgress, VisitStatusScheduled, false},
		{"completed is terminal", VisitStatusCompleted, VisitStatusInProgress, false},
		{"cancelled is terminal", VisitStatusCancelled, VisitStatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transitionAllowed(tt.from, tt.to); got != tt.want {
				t.Fatalf("transitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
