package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/oaklinehq/insights-backend/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return body
}

func TestWriteSuccessPassesDocumentThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]any{"ok": true, "executive": map[string]any{}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	body := decode(t, rec)
	// The document is not wrapped in a data envelope.
	if _, wrapped := body["data"]; wrapped {
		t.Fatal("document wrapped in data envelope")
	}
	if body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestWriteErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "unknown range preset: 33d")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode(t, rec)
	if body["ok"] != false {
		t.Fatalf("body.ok = %v", body["ok"])
	}
	// Validation messages are safe to show verbatim.
	if body["error"] != "unknown range preset: 33d" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestWriteErrorInternalHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("pg: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode(t, rec)
	if msg, _ := body["error"].(string); msg != "internal server error" {
		t.Fatalf("error = %q, internal detail must not leak", msg)
	}
}

func TestWriteErrorDependency(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New("dial tcp: timeout")
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "sources wave failed"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body := decode(t, rec)
	if body["code"] != string(pkgerrors.CodeDependency) {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"preset": "must be one of: today 7d"})
	WriteError(context.Background(), nil, rec, err)

	body := decode(t, rec)
	details, ok := body["details"].(map[string]any)
	if !ok {
		t.Fatalf("details = %v", body["details"])
	}
	if details["preset"] != "must be one of: today 7d" {
		t.Fatalf("details.preset = %v", details["preset"])
	}
}
