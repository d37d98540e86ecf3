package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/genotools/genovae/internal/metrics"
)

func newTestServer(t *testing.T) (*echo.Echo, *metrics.Ring) {
	t.Helper()
	ring := metrics.NewRing(16, "run-abc")
	e := echo.New()
	NewServer(ring).Register(e)
	return e, ring
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doGet(t, e, "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["run"] != "run-abc" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLatestEmpty(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doGet(t, e, "/metrics/latest")

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var body struct {
		Run     string           `json:"run"`
		Records []metrics.Record `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Records == nil || len(body.Records) != 0 {
		t.Fatalf("expected empty records array, got %v", body.Records)
	}
}

func TestLatestReturnsRecent(t *testing.T) {
	e, ring := newTestServer(t)
	for i := 0; i < 5; i++ {
		ring.Emit("elbo", float64(-i), i)
	}

	rec := doGet(t, e, "/metrics/latest?n=2")
	var body struct {
		Records []metrics.Record `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(body.Records))
	}
	if body.Records[0].Step != 3 || body.Records[1].Step != 4 {
		t.Fatalf("unexpected steps: %+v", body.Records)
	}
}

func TestLatestRejectsBadCount(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doGet(t, e, "/metrics/latest?n=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
