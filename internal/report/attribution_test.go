package report

import (
	"fmt"
	"testing"
)

func TestAttributeSourcesUsesLeadRecordsOnly(t *testing.T) {
	leads := []NormalizedRow{
		{ContactID: "c-1", Source: "google"},
		{ContactID: "c-1", Source: "facebook"}, // first assignment wins
		{ContactID: "c-2", Source: ""},
		{ContactID: NoIdentity, Source: "yelp"},
	}
	got := AttributeSources(leads)

	if got["c-1"] != "google" {
		t.Fatalf("c-1 source = %q, want google", got["c-1"])
	}
	if _, ok := got["c-2"]; ok {
		t.Fatal("sourceless lead must stay unassigned")
	}
	if _, ok := got[NoIdentity]; ok {
		t.Fatal("no-identity contacts must not be attributed")
	}
}

func TestRollupAttributionCountersAndRates(t *testing.T) {
	leads := []NormalizedRow{
		{ContactID: "g1", Source: "google"},
		{ContactID: "g2", Source: "google"},
		{ContactID: "y1", Source: "yelp"},
		{ContactID: "stray"},
	}
	rows := RollupAttribution(AttributionInputs{
		Leads:        leads,
		Calls:        []NormalizedRow{{ContactID: "g1"}, {ContactID: "y1"}},
		Appointments: []NormalizedRow{{ContactID: "g1"}},
		Transactions: []NormalizedRow{
			{ContactID: "g1", Status: "paid", Amount: 500},
			{ContactID: "y1", Status: "paid", Amount: 900},
			{ContactID: "g2", Status: "refunded", Amount: 9999},
		},
	})

	if len(rows) != 3 {
		t.Fatalf("row count = %d, want google, yelp, unattributed", len(rows))
	}
	// Sorted by revenue descending.
	if rows[0].Source != "yelp" || rows[0].Revenue != 900 {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	google := rows[1]
	if google.Source != "google" {
		t.Fatalf("rows[1] = %+v", google)
	}
	if google.Leads != 2 || google.Calls != 1 || google.Appointments != 1 {
		t.Fatalf("google counters = %+v", google)
	}
	if google.Revenue != 500 {
		t.Fatalf("google revenue = %v, refunded tx must not count", google.Revenue)
	}
	if google.LeadToAppointmentRate == nil || *google.LeadToAppointmentRate != 50 {
		t.Fatalf("leadToAppointmentRate = %v, want 50", google.LeadToAppointmentRate)
	}
	if google.LeadToRevenue == nil || *google.LeadToRevenue != 250 {
		t.Fatalf("leadToRevenue = %v, want 250", google.LeadToRevenue)
	}
	if rows[2].Source != attributionUnknown || rows[2].Leads != 1 {
		t.Fatalf("rows[2] = %+v, want the unattributed stray lead", rows[2])
	}
}

func TestRollupAttributionTiesBreakBySourceName(t *testing.T) {
	leads := []NormalizedRow{
		{ContactID: "a", Source: "bing"},
		{ContactID: "b", Source: "ads"},
	}
	rows := RollupAttribution(AttributionInputs{Leads: leads})
	if rows[0].Source != "ads" || rows[1].Source != "bing" {
		t.Fatalf("tie order = %q, %q; want alphabetical", rows[0].Source, rows[1].Source)
	}
}

func TestRollupAttributionCapsRowCount(t *testing.T) {
	var leads []NormalizedRow
	for i := 0; i < 15; i++ {
		leads = append(leads, NormalizedRow{
			ContactID: fmt.Sprintf("c-%d", i),
			Source:    fmt.Sprintf("source-%d", i),
		})
	}
	rows := RollupAttribution(AttributionInputs{Leads: leads})
	if len(rows) != attributionTopN {
		t.Fatalf("row count = %d, want capped at %d", len(rows), attributionTopN)
	}
}
