package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oaklinehq/insights-backend/internal/sources"
)

// UnknownGeo is the sentinel bucket name for rows without a resolvable
// state. Such rows group here rather than being dropped.
const UnknownGeo = "unknown"

// NoIdentity is the sentinel contact id for rows without one.
const NoIdentity = "no identity"

// GeoRef is the canonical geography of a row.
type GeoRef struct {
	State  string `json:"state"`
	County string `json:"county"`
	City   string `json:"city"`
}

// NormalizedRow is the canonical view of any source row. TimestampMs is 0
// when no timestamp could be resolved; the row is then excluded from time
// buckets but still counted in source totals.
type NormalizedRow struct {
	TimestampMs int64
	Geo         GeoRef
	ContactID   string
	Amount      float64
	Status      string
	Channel     string
	Source      string
	Phone       string
	Open        bool
}

// Classification keyword lists. Upstream vocabulary drifts; these are
// deliberately lenient substring matches, kept as named constants so each
// predicate is independently testable.
var (
	successKeywords   = []string{"succeed", "paid", "complete", "approved"}
	missedCallValues  = []string{"no-answer", "voicemail"}
	cancelKeyword     = "cancel"
	noShowKeywords    = []string{"no-show", "no_show", "noshow"}
	openStatusValues  = []string{"open", "pending", "new"}
	timestampMsFields = []string{"timestampMs", "createdAtMs", "dateAddedMs", "epochMs"}
	timestampFields   = []string{"timestamp", "createdAt", "dateAdded", "date", "startTime", "created"}
	stateFields       = []string{"state", "region", "province"}
	countyFields      = []string{"county"}
	cityFields        = []string{"city", "town"}
	contactFields     = []string{"contactId", "contact_id", "customerId", "leadId"}
	amountFields      = []string{"amount", "value", "monetaryValue", "price", "potentialValue"}
	statusFields      = []string{"status", "callStatus", "appointmentStatus", "outcome"}
	channelFields     = []string{"channel", "medium", "type"}
	sourceFields      = []string{"source", "attributionSource", "utmSource", "leadSource"}
	phoneFields       = []string{"phone", "phoneNumber", "contactPhone"}
)

// IsSuccessfulTransaction reports whether status marks a won, collected
// transaction.
func IsSuccessfulTransaction(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, kw := range successKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IsMissedCall matches the exact upstream telephony statuses for an
// unanswered call. This one is an exact match, not a substring scan.
func IsMissedCall(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, v := range missedCallValues {
		if s == v {
			return true
		}
	}
	return false
}

// IsCancelled reports whether the status marks a cancellation.
func IsCancelled(status string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(status)), cancelKeyword)
}

// IsNoShow reports whether an appointment status marks a no-show.
func IsNoShow(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, kw := range noShowKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IsOpenOpportunity reports whether a lost-booking row is still open
// (qualified but not yet resolved) rather than definitively lost.
func IsOpenOpportunity(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, v := range openStatusValues {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeRows resolves every row of one source payload into the
// canonical view.
func NormalizeRows(rows []sources.Row) []NormalizedRow {
	out := make([]NormalizedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeRow(row))
	}
	return out
}

// NormalizeRow extracts the canonical fields from one heterogeneous row.
func NormalizeRow(row sources.Row) NormalizedRow {
	n := NormalizedRow{
		TimestampMs: resolveTimestamp(row),
		Geo: GeoRef{
			State:  normalizeGeoValue(firstString(row, stateFields)),
			County: strings.TrimSpace(firstString(row, countyFields)),
			City:   strings.TrimSpace(firstString(row, cityFields)),
		},
		ContactID: resolveContactID(row),
		Amount:    resolveAmount(row),
		Status:    strings.TrimSpace(firstString(row, statusFields)),
		Channel:   strings.TrimSpace(firstString(row, channelFields)),
		Source:    strings.TrimSpace(firstString(row, sourceFields)),
		Phone:     strings.TrimSpace(firstString(row, phoneFields)),
	}
	n.Open = IsOpenOpportunity(n.Status)
	return n
}

// resolveTimestamp prefers a precomputed numeric epoch and falls back to
// parsing date-like fields. 0 means unresolvable.
func resolveTimestamp(row sources.Row) int64 {
	for _, field := range timestampMsFields {
		if v, ok := row[field]; ok {
			if ms := numericValue(v); ms > 0 {
				return int64(ms)
			}
		}
	}
	for _, field := range timestampFields {
		v, ok := row[field]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if ms := parseTimestampString(t); ms > 0 {
				return ms
			}
		case float64:
			if t > 0 {
				// Heuristic: values this small are epoch seconds.
				if t < 1e12 {
					return int64(t * 1000)
				}
				return int64(t)
			}
		}
	}
	return 0
}

var rowTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestampString(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	for _, layout := range rowTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func normalizeGeoValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UnknownGeo
	}
	return titleCase(trimmed)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func resolveContactID(row sources.Row) string {
	id := strings.TrimSpace(firstString(row, contactFields))
	if id == "" {
		return NoIdentity
	}
	return id
}

// resolveAmount parses string-or-number amount fields through decimal so
// upstream "120.00" strings and float payloads land on the same cents.
func resolveAmount(row sources.Row) float64 {
	for _, field := range amountFields {
		v, ok := row[field]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return roundCents(decimal.NewFromFloat(t))
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(t))
			if err != nil {
				continue
			}
			return roundCents(d)
		case int:
			return float64(t)
		}
	}
	return 0
}

func roundCents(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func firstString(row sources.Row, fields []string) string {
	for _, field := range fields {
		if v, ok := row[field]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func numericValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
