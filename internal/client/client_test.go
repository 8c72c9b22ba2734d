package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/murph/internal/models"
	"github.com/google/uuid"
)

func sampleRow() models.MurphRow {
	start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	row := models.MurphRow{
		ID:                uuid.New(),
		StartTime:         start,
		FirstRunDistance:  models.RunFullMile,
		FirstRunEndTime:   start.Add(10 * time.Minute),
		Pullups:           100,
		Pushups:           200,
		Squats:            300,
		ExercisesEndTime:  start.Add(38 * time.Minute),
		SecondRunDistance: models.RunFullMile,
		SecondRunEndTime:  start.Add(47 * time.Minute),
	}
	row.Finalize()
	return row
}

// TestSubmitMurphSendsHeaders verifies the POST carries the API key and
// content type and the body decodes to the submitted record.
func TestSubmitMurphSendsHeaders(t *testing.T) {
	row := sampleRow()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/murphs" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("api key = %q, want %q", got, "test-key")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var received models.MurphRow
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if received.ID != row.ID {
			t.Errorf("id = %v, want %v", received.ID, row.ID)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if err := c.SubmitMurph(context.Background(), row); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

// TestSubmitMurphNoRetryOn4xx verifies a client error fails immediately
// instead of burning retries on a request that cannot succeed.
func TestSubmitMurphNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad session"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	err := c.SubmitMurph(context.Background(), sampleRow())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

// TestSubmitMurphRetriesServerError verifies a 5xx is retried and a later
// success clears the error.
func TestSubmitMurphRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":"transient"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if err := c.SubmitMurph(context.Background(), sampleRow()); err != nil {
		t.Fatalf("submit should succeed on retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

// TestSubmitMurphContextCancel verifies a cancelled context stops the
// retry loop during backoff.
func TestSubmitMurphContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := New(srv.URL, "test-key")
	err := c.SubmitMurph(ctx, sampleRow())
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}

// TestHistoryDecodes verifies history fetch and decoding.
func TestHistoryDecodes(t *testing.T) {
	rows := []models.MurphRow{sampleRow(), sampleRow()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/murphs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	got, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != rows[0].ID || got[0].MurphType != models.MurphFull {
		t.Errorf("row = %+v, want %+v", got[0], rows[0])
	}
}

// TestMetricsDecodes verifies the aggregate report fetch, including the
// nullable fastest time.
func TestMetricsDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/metrics" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_distance":3.5,"total_pullups":150,"total_murphs":1.75,"fastest_murph_ms":2310000,"longest_streak":4}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	report, err := c.Metrics(context.Background())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if report.TotalDistance != 3.5 || report.TotalPullups != 150 {
		t.Errorf("totals = %v/%d", report.TotalDistance, report.TotalPullups)
	}
	if report.FastestMurph == nil || *report.FastestMurph != 2310000 {
		t.Errorf("fastest = %v, want 2310000", report.FastestMurph)
	}
	if report.LongestStreak != 4 {
		t.Errorf("streak = %d, want 4", report.LongestStreak)
	}
}

// TestGetJSONErrorStatus verifies non-200 responses surface as errors with
// the body included.
func TestGetJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if _, err := c.Leaderboard(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
