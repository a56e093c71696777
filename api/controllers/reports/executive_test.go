package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oaklinehq/insights-backend/internal/report"
)

type stubBuilder struct {
	doc    *report.Report
	err    error
	params report.Params
	called bool
}

func (s *stubBuilder) Build(ctx context.Context, p report.Params) (*report.Report, error) {
	s.called = true
	s.params = p
	return s.doc, s.err
}

func get(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestExecutiveReturnsDocument(t *testing.T) {
	stub := &stubBuilder{doc: &report.Report{OK: true}}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=7d")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("body.ok = %v", body["ok"])
	}
	if !stub.called || stub.params.Preset != "7d" {
		t.Fatalf("builder params = %+v", stub.params)
	}
}

func TestExecutiveRejectsUnknownPreset(t *testing.T) {
	stub := &stubBuilder{doc: &report.Report{OK: true}}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=33d")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if stub.called {
		t.Fatal("builder must not run on invalid input")
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["ok"] != false {
		t.Fatalf("body.ok = %v, want false", body["ok"])
	}
	if body["error"] == "" || body["error"] == nil {
		t.Fatal("error message missing")
	}
}

func TestExecutiveCustomPresetRequiresBounds(t *testing.T) {
	stub := &stubBuilder{}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=custom")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if stub.called {
		t.Fatal("builder must not run without bounds")
	}
}

func TestExecutiveBareBoundsPromoteToCustom(t *testing.T) {
	stub := &stubBuilder{doc: &report.Report{OK: true}}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?start=2026-01-01&end=2026-02-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.params.Preset != "custom" {
		t.Fatalf("preset = %q, want promoted to custom", stub.params.Preset)
	}
	if stub.params.StartRaw != "2026-01-01" || stub.params.EndRaw != "2026-02-01" {
		t.Fatalf("bounds = %q..%q", stub.params.StartRaw, stub.params.EndRaw)
	}
}

func TestExecutiveForceAndAdsRange(t *testing.T) {
	stub := &stubBuilder{doc: &report.Report{OK: true}}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=28d&adsRange=7d&force=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !stub.params.Force {
		t.Fatal("force flag not parsed")
	}
	if stub.params.AdsPreset != "7d" {
		t.Fatalf("adsPreset = %q", stub.params.AdsPreset)
	}
}

func TestExecutiveRejectsCustomAdsRange(t *testing.T) {
	stub := &stubBuilder{}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=7d&adsRange=custom")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (adsRange has no custom bounds)", rec.Code)
	}
}

func TestExecutiveServiceFailureIs5xx(t *testing.T) {
	stub := &stubBuilder{err: errors.New("assembly exploded")}
	rec := get(t, Executive(stub, nil), "/api/v1/reports/executive?preset=7d")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["ok"] != false {
		t.Fatalf("body.ok = %v", body["ok"])
	}
	// Internal details never leak.
	if msg, _ := body["error"].(string); msg == "assembly exploded" {
		t.Fatal("internal error message leaked to the client")
	}
}
