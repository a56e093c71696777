package report

import (
	"testing"
	"time"

	"github.com/oaklinehq/insights-backend/internal/sources"
)

func TestIsSuccessfulTransaction(t *testing.T) {
	for _, status := range []string{
		"succeeded", "Paid", "payment_completed", "APPROVED", "completed-manual",
	} {
		if !IsSuccessfulTransaction(status) {
			t.Fatalf("IsSuccessfulTransaction(%q) = false", status)
		}
	}
	for _, status := range []string{"failed", "refunded", "pending", ""} {
		if IsSuccessfulTransaction(status) {
			t.Fatalf("IsSuccessfulTransaction(%q) = true", status)
		}
	}
}

func TestIsMissedCallIsExactMatch(t *testing.T) {
	if !IsMissedCall("no-answer") || !IsMissedCall("Voicemail") {
		t.Fatal("exact telephony statuses must match")
	}
	// Substrings must not match; only the exact vocabulary counts.
	for _, status := range []string{"no-answer-retry", "left voicemail", "completed"} {
		if IsMissedCall(status) {
			t.Fatalf("IsMissedCall(%q) = true", status)
		}
	}
}

func TestIsCancelled(t *testing.T) {
	for _, status := range []string{"cancelled", "canceled", "CANCELLED_BY_CUSTOMER", "late cancel"} {
		if !IsCancelled(status) {
			t.Fatalf("IsCancelled(%q) = false", status)
		}
	}
	if IsCancelled("confirmed") {
		t.Fatal("IsCancelled(confirmed) = true")
	}
}

func TestIsNoShow(t *testing.T) {
	for _, status := range []string{"no-show", "no_show", "noshow", "marked noshow"} {
		if !IsNoShow(status) {
			t.Fatalf("IsNoShow(%q) = false", status)
		}
	}
	if IsNoShow("showed") {
		t.Fatal("IsNoShow(showed) = true")
	}
}

func TestNormalizeRowResolvesFields(t *testing.T) {
	row := sources.Row{
		"createdAtMs": float64(1760000000000),
		"state":       "  new york ",
		"city":        "Buffalo",
		"contactId":   "c-1",
		"amount":      "149.995",
		"status":      "confirmed",
		"source":      "google",
		"phone":       "+1 555 0100",
	}
	n := NormalizeRow(row)

	if n.TimestampMs != 1760000000000 {
		t.Fatalf("timestamp = %d", n.TimestampMs)
	}
	if n.Geo.State != "New York" {
		t.Fatalf("state = %q, want New York", n.Geo.State)
	}
	if n.ContactID != "c-1" {
		t.Fatalf("contact = %q", n.ContactID)
	}
	if n.Amount != 150.00 {
		t.Fatalf("amount = %v, want 150.00 after cent rounding", n.Amount)
	}
	if n.Source != "google" || n.Phone != "+1 555 0100" {
		t.Fatalf("source/phone = %q/%q", n.Source, n.Phone)
	}
}

func TestNormalizeRowSentinels(t *testing.T) {
	n := NormalizeRow(sources.Row{"status": "confirmed"})
	if n.Geo.State != UnknownGeo {
		t.Fatalf("state = %q, want %q", n.Geo.State, UnknownGeo)
	}
	if n.ContactID != NoIdentity {
		t.Fatalf("contact = %q, want %q", n.ContactID, NoIdentity)
	}
	if n.TimestampMs != 0 {
		t.Fatalf("timestamp = %d, want 0 for unresolvable", n.TimestampMs)
	}
}

func TestResolveTimestampFallsBackToDateStrings(t *testing.T) {
	want := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC).UnixMilli()
	cases := []sources.Row{
		{"timestamp": "2026-02-10T14:30:00Z"},
		{"createdAt": "2026-02-10 14:30:00"},
		{"date": "2026-02-10T14:30:00"},
	}
	for _, row := range cases {
		if got := resolveTimestamp(row); got != want {
			t.Fatalf("resolveTimestamp(%v) = %d, want %d", row, got, want)
		}
	}
}

func TestResolveTimestampSecondsHeuristic(t *testing.T) {
	// Epoch-second values are promoted to milliseconds.
	row := sources.Row{"timestamp": float64(1760000000)}
	if got := resolveTimestamp(row); got != 1760000000000 {
		t.Fatalf("seconds value = %d, want promoted to ms", got)
	}
	row = sources.Row{"timestamp": float64(1760000000000)}
	if got := resolveTimestamp(row); got != 1760000000000 {
		t.Fatalf("ms value = %d, want passthrough", got)
	}
}

func TestResolveAmountStringAndNumber(t *testing.T) {
	if got := resolveAmount(sources.Row{"amount": "120.00"}); got != 120 {
		t.Fatalf("string amount = %v", got)
	}
	if got := resolveAmount(sources.Row{"value": float64(99.999)}); got != 100 {
		t.Fatalf("float amount = %v, want 100 after cent rounding", got)
	}
	if got := resolveAmount(sources.Row{"amount": "not-money", "value": "45.50"}); got != 45.5 {
		t.Fatalf("fallback amount = %v, want 45.5", got)
	}
	if got := resolveAmount(sources.Row{}); got != 0 {
		t.Fatalf("missing amount = %v, want 0", got)
	}
}

func TestNormalizeRowOpenFlag(t *testing.T) {
	for _, status := range []string{"open", "Pending", "new"} {
		n := NormalizeRow(sources.Row{"status": status})
		if !n.Open {
			t.Fatalf("status %q should mark the row open", status)
		}
	}
	if NormalizeRow(sources.Row{"status": "lost"}).Open {
		t.Fatal("lost row marked open")
	}
}
