package match

import (
	"time"

	"github.com/google/uuid"
)

// LinkWindow is the maximum distance between a call and a job's scheduled
// date for the job to be considered related.
const LinkWindow = 7 * 24 * time.Hour

// LinkJob returns the customer's job most relevant to a call at callTime,
// or nil when no job falls within the window.
//
// Candidates are the customer's jobs with a scheduled date within LinkWindow
// of the call. Jobs scheduled at or after the call (upcoming) are preferred
// over past ones: past jobs have the full window added to their distance
// before comparison, so any upcoming candidate beats any past one.
func LinkJob(customerID uuid.UUID, callTime time.Time, jobs []Job) *Job {
	var best *Job
	var bestScore time.Duration

	for i := range jobs {
		job := &jobs[i]
		if job.CustomerID != customerID || job.ScheduledAt == nil {
			continue
		}

		offset := job.ScheduledAt.Sub(callTime)
		distance := offset
		if distance < 0 {
			distance = -distance
		}
		if distance > LinkWindow {
			continue
		}

		score := distance
		if offset < 0 {
			score += LinkWindow
		}

		if best == nil || score < bestScore {
			best = job
			bestScore = score
		}
	}

	return best
}
