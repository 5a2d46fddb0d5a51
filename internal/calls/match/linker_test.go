package match

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t time.Time) *time.Time { return &t }

func TestLinkJob_EightDaysOutNeverLinks(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	jobs := []Job{
		{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(8 * 24 * time.Hour))},
	}

	assert.Nil(t, LinkJob(customerID, callTime, jobs))
}

func TestLinkJob_SixDaysOutLinks(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	job := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(6 * 24 * time.Hour))}

	got := LinkJob(customerID, callTime, []Job{job})
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
}

func TestLinkJob_ExactlySevenDaysIsInside(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	job := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(LinkWindow))}

	got := LinkJob(customerID, callTime, []Job{job})
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
}

func TestLinkJob_UpcomingPreferredOverCloserPast(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	past := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(-2 * 24 * time.Hour))}
	upcoming := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(3 * 24 * time.Hour))}

	got := LinkJob(customerID, callTime, []Job{past, upcoming})
	require.NotNil(t, got)
	assert.Equal(t, upcoming.ID, got.ID, "upcoming job should win even though the past one is numerically closer")
}

func TestLinkJob_ClosestUpcomingWins(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	near := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(24 * time.Hour))}
	far := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(5 * 24 * time.Hour))}

	got := LinkJob(customerID, callTime, []Job{far, near})
	require.NotNil(t, got)
	assert.Equal(t, near.ID, got.ID)
}

func TestLinkJob_PastJobLinksWhenNoUpcoming(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	past := Job{ID: uuid.New(), CustomerID: customerID, ScheduledAt: ts(callTime.Add(-3 * 24 * time.Hour))}

	got := LinkJob(customerID, callTime, []Job{past})
	require.NotNil(t, got)
	assert.Equal(t, past.ID, got.ID)
}

func TestLinkJob_IgnoresOtherCustomersAndUnscheduled(t *testing.T) {
	customerID := uuid.New()
	callTime := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	jobs := []Job{
		{ID: uuid.New(), CustomerID: uuid.New(), ScheduledAt: ts(callTime.Add(24 * time.Hour))},
		{ID: uuid.New(), CustomerID: customerID, ScheduledAt: nil},
	}

	assert.Nil(t, LinkJob(customerID, callTime, jobs))
}
