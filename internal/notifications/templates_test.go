package notifications

import (
	"strings"
	"testing"
)

func TestRenderSyncFailureTemplate(t *testing.T) {
	content, err := renderEmailTemplate("sync_failure.html", SyncFailureData{
		Title:      "Call sync failed",
		Heading:    "Call sync failed",
		SyncKind:   "call log",
		Provider:   "RingCentral",
		Reason:     "token refresh rejected",
		OccurredAt: "Mon, 05 Aug 2024 09:00:00 UTC",
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate() error: %v", err)
	}

	for _, want := range []string{"Call sync failed", "RingCentral", "token refresh rejected", "call log"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	if _, err := renderEmailTemplate("missing.html", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
