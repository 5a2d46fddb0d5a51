package ringcentral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRefreshToken_RotatesPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tokenEndpointPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("basic auth not forwarded")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	tokens, err := client.RefreshToken(context.Background(), "client-id", "client-secret", "old-refresh")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if tokens.AccessToken != "new-access" {
		t.Errorf("access token = %q", tokens.AccessToken)
	}
	if tokens.RefreshToken != "new-refresh" {
		t.Errorf("refresh token = %q", tokens.RefreshToken)
	}
}

func TestRefreshToken_FallsBackToOldRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new-access",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	tokens, err := client.RefreshToken(context.Background(), "id", "secret", "old-refresh")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if tokens.RefreshToken != "old-refresh" {
		t.Errorf("refresh token = %q, want old-refresh carried forward", tokens.RefreshToken)
	}
}

func TestRefreshToken_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.RefreshToken(context.Background(), "id", "secret", "bad"); err == nil {
		t.Fatal("expected error for rejected refresh token")
	}
}

func callLogPage(page, totalPages int, ids ...string) map[string]any {
	records := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		records = append(records, map[string]any{
			"id":        id,
			"direction": "Inbound",
			"startTime": "2024-01-10T09:00:00Z",
			"duration":  42,
			"result":    "Call connected",
			"from":      map[string]any{"phoneNumber": "+16155550100"},
			"to":        map[string]any{"phoneNumber": "+16155559999"},
		})
	}
	return map[string]any{
		"records": records,
		"paging":  map[string]any{"page": page, "totalPages": totalPages},
	}
}

func TestFetchCallLog_PagesUntilLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			json.NewEncoder(w).Encode(callLogPage(1, 2, "a", "b"))
		case "2":
			json.NewEncoder(w).Encode(callLogPage(2, 2, "c"))
		default:
			t.Errorf("unexpected page request %s", page)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)
	records, err := client.FetchCallLog(context.Background(), "token", time.Now().Add(-time.Hour), time.Now(), 250, 20)
	if err != nil {
		t.Fatalf("FetchCallLog: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].ID != "a" || records[2].ID != "c" {
		t.Errorf("record order wrong: %v", records)
	}
	if records[0].Direction != "inbound" {
		t.Errorf("direction not lowercased: %q", records[0].Direction)
	}
	if records[0].DurationSeconds == nil || *records[0].DurationSeconds != 42 {
		t.Errorf("duration not parsed")
	}
}

func TestFetchCallLog_StopsAtPageCap(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		// Provider claims many more pages than the cap allows.
		json.NewEncoder(w).Encode(callLogPage(pagesServed, 100, fmt.Sprintf("call-%d", pagesServed)))
	}))
	defer srv.Close()

	client := New(srv.URL)
	records, err := client.FetchCallLog(context.Background(), "token", time.Now().Add(-time.Hour), time.Now(), 1, 3)
	if err != nil {
		t.Fatalf("FetchCallLog: %v", err)
	}
	if pagesServed != 3 {
		t.Errorf("served %d pages, want cap of 3", pagesServed)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestFetchCallLog_PartialResultsOnMidPaginationError(t *testing.T) {
	var page int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			json.NewEncoder(w).Encode(callLogPage(1, 3, "a", "b"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL)
	records, err := client.FetchCallLog(context.Background(), "token", time.Now().Add(-time.Hour), time.Now(), 2, 20)
	if err == nil {
		t.Fatal("expected error from failing second page")
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want the 2 fetched before the failure", len(records))
	}
}

func TestFetchCallLog_SkipsUnparseableRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{"id": "bad", "direction": "Inbound", "startTime": "not-a-time"},
				{"id": "good", "direction": "Inbound", "startTime": "2024-01-10T09:00:00Z", "result": "Missed",
					"from": map[string]any{"phoneNumber": "+16155550100"},
					"to":   map[string]any{"phoneNumber": "+16155559999"}},
			},
			"paging": map[string]any{"page": 1, "totalPages": 1},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	records, err := client.FetchCallLog(context.Background(), "token", time.Now().Add(-time.Hour), time.Now(), 10, 5)
	if err != nil {
		t.Fatalf("FetchCallLog: %v", err)
	}
	if len(records) != 1 || records[0].ID != "good" {
		t.Fatalf("records = %+v, want only the parseable one", records)
	}
}
