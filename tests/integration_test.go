//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// INTEGRATION TEST SUITE
//
// These tests validate the service end-to-end:
//
//   Client → HTTP API → Auth → Postgres → Analytics → Response
//
// The service must already be running (for example via docker compose).
// Run with: go test -tags integration ./tests/...
//
// Optional environment overrides:
//
//   BASE_URL    default http://localhost:8080
//   TENANT1_KEY default tenant-key-123
//   TENANT2_KEY default tenant-key-456
//
////////////////////////////////////////////////////////////////////////////////

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// tenant1Key returns the default API key for tenant1.
func tenant1Key() string {
	if v := os.Getenv("TENANT1_KEY"); v != "" {
		return v
	}
	return "tenant-key-123"
}

// tenant2Key returns the default API key for tenant2.
func tenant2Key() string {
	if v := os.Getenv("TENANT2_KEY"); v != "" {
		return v
	}
	return "tenant-key-456"
}

// unique generates a unique string so tests never collide with previous runs.
// Personas built from it scope every KPI query to the rows a test wrote.
func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

////////////////////////////////////////////////////////////////////////////////
// SERVICE READINESS HELPER
//
// waitReady polls /ready until DB + server are ready.
// Prevents flaky failures when containers are still booting.
////////////////////////////////////////////////////////////////////////////////

func waitReady(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL() + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(300 * time.Millisecond)
	}

	t.Fatalf("service not ready after 30s")
}

////////////////////////////////////////////////////////////////////////////////
// GENERIC HTTP HELPERS
////////////////////////////////////////////////////////////////////////////////

// httpGet performs a GET request with optional API key.
func httpGet(t *testing.T, apiKey string, path string) (int, []byte) {
	t.Helper()

	req, _ := http.NewRequest("GET", baseURL()+path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

// postJSON performs a POST with JSON body and optional idempotency key.
func postJSON(t *testing.T, apiKey, idemKey, path string, payload any) (int, []byte) {
	t.Helper()

	b, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL()+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// postEvent is a convenience wrapper for POST /events.
func postEvent(t *testing.T, apiKey, idemKey, persona string, ts time.Time, opened, clicked int) (int, []byte) {
	payload := map[string]any{
		"contact_id": unique("c"),
		"event_dt":   ts.UTC().Format(time.RFC3339),
		"channel":    "email",
		"persona":    persona,
		"opened":     opened,
		"clicked":    clicked,
	}
	return postJSON(t, apiKey, idemKey, "/events", payload)
}

// getKPIs queries the raw KPI snapshot for one persona.
func getKPIs(t *testing.T, apiKey, persona string) kpis {
	t.Helper()

	q := url.Values{}
	q.Set("persona", persona)
	q.Set("ai", "false")

	s, b := httpGet(t, apiKey, "/kpis?"+q.Encode())
	if s != http.StatusOK {
		t.Fatalf("kpis expected 200 got %d: %s", s, b)
	}

	var r struct {
		Raw kpis `json:"raw"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("invalid kpis JSON: %v", err)
	}
	return r.Raw
}

type kpis struct {
	Sends    *int64   `json:"sends"`
	OpenRate *float64 `json:"open_rate"`
	CTOR     *float64 `json:"ctor"`
}

func sends(k kpis) int64 {
	if k.Sends == nil {
		return 0
	}
	return *k.Sends
}

////////////////////////////////////////////////////////////////////////////////
// HEALTH & READINESS TESTS
////////////////////////////////////////////////////////////////////////////////

// Health endpoint = liveness check (server process running).
func TestHealth_ReturnsOK(t *testing.T) {
	s, _ := httpGet(t, "", "/health")
	if s != http.StatusOK {
		t.Fatalf("health expected 200 got %d", s)
	}
}

// Ready endpoint = dependency readiness (DB reachable).
func TestReady_ReturnsOK(t *testing.T) {
	waitReady(t)
	s, _ := httpGet(t, "", "/ready")
	if s != http.StatusOK {
		t.Fatalf("ready expected 200 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// EVENTS CONTRACT TESTS
////////////////////////////////////////////////////////////////////////////////

// Request without API key must be rejected.
func TestEvents_UnauthorizedWithoutAPIKey(t *testing.T) {
	waitReady(t)

	s, _ := postEvent(t, "", unique("x"), "Analyst", time.Now(), 0, 0)
	if s != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", s)
	}
}

// Missing event_dt should return 400.
func TestEvents_BadRequestOnInvalidPayload(t *testing.T) {
	waitReady(t)

	payload := map[string]any{"contact_id": "C1"}
	s, _ := postJSON(t, tenant1Key(), unique("x"), "/events", payload)

	if s != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// CORE SYSTEM BEHAVIOR TESTS
////////////////////////////////////////////////////////////////////////////////

// Duplicate events must not increase sends.
func TestIdempotency_DuplicateDoesNotIncreaseSends(t *testing.T) {
	waitReady(t)

	persona := unique("idem")
	key := unique("k")
	ts := time.Now().UTC()

	s1, _ := postEvent(t, tenant1Key(), key, persona, ts, 1, 0)
	s2, _ := postEvent(t, tenant1Key(), key, persona, ts, 1, 0)
	if s1 != http.StatusCreated || s2 != http.StatusOK {
		t.Fatalf("expected 201 then 200 got %d then %d", s1, s2)
	}

	if got := sends(getKPIs(t, tenant1Key(), persona)); got != 1 {
		t.Fatalf("duplicate increased sends to %d", got)
	}
}

// Each tenant must see only its own data.
func TestTenantIsolation_TenantsDoNotSeeEachOthersEvents(t *testing.T) {
	waitReady(t)

	persona := unique("iso")
	ts := time.Now().UTC()

	postEvent(t, tenant1Key(), unique("a"), persona, ts, 1, 1)
	postEvent(t, tenant2Key(), unique("b"), persona, ts, 0, 0)

	k1 := getKPIs(t, tenant1Key(), persona)
	k2 := getKPIs(t, tenant2Key(), persona)

	if sends(k1) != 1 || sends(k2) != 1 {
		t.Fatal("tenant isolation failed")
	}
	if *k1.OpenRate != 1 || *k2.OpenRate != 0 {
		t.Fatalf("tenant isolation leaked rates: %v %v", *k1.OpenRate, *k2.OpenRate)
	}
}

// KPIs over the rows a test wrote match the expected ratios.
func TestKPIs_RatesOverPersonaSlice(t *testing.T) {
	waitReady(t)

	persona := unique("kpi")
	ts := time.Now().UTC()
	postEvent(t, tenant1Key(), unique("e"), persona, ts, 1, 1)
	postEvent(t, tenant1Key(), unique("e"), persona, ts, 1, 0)
	postEvent(t, tenant1Key(), unique("e"), persona, ts, 0, 0)
	postEvent(t, tenant1Key(), unique("e"), persona, ts, 0, 0)

	k := getKPIs(t, tenant1Key(), persona)
	if sends(k) != 4 || *k.OpenRate != 0.5 || *k.CTOR != 0.5 {
		t.Fatalf("unexpected kpis: sends=%d open=%v ctor=%v", sends(k), *k.OpenRate, *k.CTOR)
	}
}

// Unknown personas produce an undefined snapshot, not zeros.
func TestKPIs_EmptySliceIsNull(t *testing.T) {
	waitReady(t)

	k := getKPIs(t, tenant1Key(), unique("nobody"))
	if k.Sends != nil || k.OpenRate != nil {
		t.Fatal("expected null kpis for empty slice")
	}
}

// The brief downloads as Markdown when asked.
func TestBrief_Markdown(t *testing.T) {
	waitReady(t)

	s, b := httpGet(t, tenant1Key(), "/brief?format=md")
	if s != http.StatusOK {
		t.Fatalf("brief expected 200 got %d", s)
	}
	if !strings.HasPrefix(string(b), "# Weekly Executive Brief") {
		t.Fatalf("unexpected brief: %.80s", b)
	}
}
