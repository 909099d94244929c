package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"badgectl/protocol"
	"badgectl/session"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, rr.Code)
	}
	return rr
}

func TestMetricsHandler(t *testing.T) {
	m := New(nil)
	m.Observe(&session.Session{Code: protocol.EntryOk, Waited: 120 * time.Millisecond})
	m.Observe(&session.Session{Code: protocol.EntryOk, Waited: 40 * time.Millisecond})
	m.Observe(&session.Session{Code: protocol.TimedOut, Waited: 3 * time.Second})

	body := get(t, m.Router(), "/metrics").Body.String()
	for _, want := range []string{
		"badgectl_scans_total 3",
		`badgectl_responses_total{code="entry_ok"} 2`,
		`badgectl_responses_total{code="timed_out"} 1`,
		"badgectl_response_seconds_count 3",
		`badgectl_response_seconds_bucket{le="0.05"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics body missing %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	rr := get(t, New(nil).Router(), "/healthz")
	if strings.TrimSpace(rr.Body.String()) != "OK" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestStatus(t *testing.T) {
	m := New(func() session.Snapshot {
		return session.Snapshot{State: session.AwaitResponse, SessionID: "abc", Credential: "04 A3"}
	})
	rr := get(t, m.Router(), "/status")

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
	var body statusBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.State != "await_response" || body.SessionID != "abc" || body.Credential != "04 A3" {
		t.Errorf("status = %+v", body)
	}

	rr = get(t, New(nil).Router(), "/status")
	if !strings.Contains(rr.Body.String(), `"state":"idle"`) {
		t.Errorf("default status = %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req, _ := http.NewRequest("POST", "/status", nil)
	rr := httptest.NewRecorder()
	New(nil).Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /status = %d", rr.Code)
	}
}

func TestServeDisabled(t *testing.T) {
	if err := New(nil).Serve(context.Background(), Config{}); err != nil {
		t.Errorf("Serve without address: %v", err)
	}
}
