package match

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCustomer_ExactBeatsPartial(t *testing.T) {
	// Customer B appears first but only shares the trailing 7 digits;
	// customer A holds the number verbatim and must win with exact confidence.
	customerA := Customer{ID: uuid.New(), Name: "Alvarez Cleaning", Phones: []string{"6155550100"}}
	customerB := Customer{ID: uuid.New(), Name: "Baker Restoration", Phones: []string{"9315550100"}}

	got, conf := MatchCustomer("6155550100", []Customer{customerB, customerA})

	require.NotNil(t, got)
	assert.Equal(t, customerA.ID, got.ID)
	assert.Equal(t, ConfidenceExact, conf)
}

func TestMatchCustomer_PartialOnTrailingSeven(t *testing.T) {
	customer := Customer{ID: uuid.New(), Name: "Chen Services", Phones: []string{"9315550100"}}

	got, conf := MatchCustomer("6155550100", []Customer{customer})

	require.NotNil(t, got)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, ConfidencePartial, conf)
}

func TestMatchCustomer_NoMatch(t *testing.T) {
	customer := Customer{ID: uuid.New(), Name: "Davis Carpet", Phones: []string{"6155550199"}}

	got, conf := MatchCustomer("4155550123", []Customer{customer})

	assert.Nil(t, got)
	assert.Equal(t, ConfidenceNone, conf)
}

func TestMatchCustomer_EmptyCandidate(t *testing.T) {
	customer := Customer{ID: uuid.New(), Name: "Davis Carpet", Phones: []string{"6155550199"}}

	got, conf := MatchCustomer("", []Customer{customer})

	assert.Nil(t, got)
	assert.Equal(t, ConfidenceNone, conf)
}

func TestMatchCustomer_FirstInIterationOrderWins(t *testing.T) {
	// Two customers sharing the same number: iteration order decides.
	first := Customer{ID: uuid.New(), Name: "First", Phones: []string{"6155550100"}}
	second := Customer{ID: uuid.New(), Name: "Second", Phones: []string{"6155550100"}}

	got, conf := MatchCustomer("6155550100", []Customer{first, second})

	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, ConfidenceExact, conf)
}

func TestMatchCustomer_DuplicateFormatsInPhoneList(t *testing.T) {
	// Snapshot loaders normalize phones, so duplicates collapse to the same
	// digits; the matcher must still handle repeated entries.
	customer := Customer{ID: uuid.New(), Name: "Evans Flood", Phones: []string{"6155550100", "6155550100"}}

	got, conf := MatchCustomer("6155550100", []Customer{customer})

	require.NotNil(t, got)
	assert.Equal(t, ConfidenceExact, conf)
}
