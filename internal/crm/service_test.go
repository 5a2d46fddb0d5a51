package crm

import (
	"testing"
	"time"
)

func TestBuildMirrorCustomers(t *testing.T) {
	raw := []HousecallCustomer{
		{ID: "c2", FirstName: "Zoe", LastName: "Young", MobileNumber: "+1 (615) 555-0100", HomeNumber: "(615) 555-0100"},
		{ID: "c1", Company: "Acme Restoration", WorkNumber: "931.555.0199"},
		{ID: "c3", FirstName: "", LastName: "", MobileNumber: "555-0100"},
		{ID: ""},
	}

	customers, phoneCount := buildMirrorCustomers(raw)

	if len(customers) != 3 {
		t.Fatalf("got %d customers, want 3", len(customers))
	}
	// Sorted by display name then external id.
	if customers[0].DisplayName != "Acme Restoration" {
		t.Errorf("first customer = %q", customers[0].DisplayName)
	}
	if customers[1].DisplayName != "Zoe Young" {
		t.Errorf("second customer = %q", customers[1].DisplayName)
	}
	// Nameless customer falls back to its external id and sorts last here.
	if customers[2].DisplayName != "c3" {
		t.Errorf("fallback display name = %q", customers[2].DisplayName)
	}

	// Mobile and home resolve to the same digits; only one survives.
	if len(customers[1].Phones) != 1 || customers[1].Phones[0] != "6155550100" {
		t.Errorf("phones = %v, want deduplicated normalized number", customers[1].Phones)
	}
	// Seven-digit number is unusable and dropped.
	if len(customers[2].Phones) != 0 {
		t.Errorf("short number should be dropped, got %v", customers[2].Phones)
	}
	if phoneCount != 2 {
		t.Errorf("phoneCount = %d, want 2", phoneCount)
	}
}

func TestBuildMirrorCustomers_DeterministicOrder(t *testing.T) {
	raw := []HousecallCustomer{
		{ID: "b", FirstName: "Sam", LastName: "Lee"},
		{ID: "a", FirstName: "Sam", LastName: "Lee"},
	}

	customers, _ := buildMirrorCustomers(raw)
	if customers[0].ExternalID != "a" || customers[1].ExternalID != "b" {
		t.Errorf("same-name customers should order by external id: %v", customers)
	}
}

func TestBuildMirrorJobs(t *testing.T) {
	scheduled := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)
	raw := []HousecallJob{
		{ID: "j1", Description: "Water heater swap"},
		{ID: "", Description: "no id"},
	}
	raw[0].Customer.ID = "c1"
	raw[0].Schedule.ScheduledStart = &scheduled

	jobs := buildMirrorJobs(raw)

	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].ExternalID != "j1" || jobs[0].CustomerExternalID != "c1" {
		t.Errorf("job ids wrong: %+v", jobs[0])
	}
	if jobs[0].ScheduledAt == nil || !jobs[0].ScheduledAt.Equal(scheduled) {
		t.Errorf("scheduled time not carried over")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   HousecallCustomer
		want string
	}{
		{"person", HousecallCustomer{ID: "x", FirstName: "Ana", LastName: "Diaz"}, "Ana Diaz"},
		{"company fallback", HousecallCustomer{ID: "x", Company: "Acme"}, "Acme"},
		{"id fallback", HousecallCustomer{ID: "x"}, "x"},
		{"first name only", HousecallCustomer{ID: "x", FirstName: "Ana"}, "Ana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.in); got != tt.want {
				t.Errorf("displayName = %q, want %q", got, tt.want)
			}
		})
	}
}
