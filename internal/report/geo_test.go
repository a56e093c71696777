package report

import "testing"

func TestObserveContactDeduplicates(t *testing.T) {
	var agg GeoAggregate
	agg.observeContact("c-1")
	agg.observeContact("c-1")
	if agg.UniqueContacts != 1 {
		t.Fatalf("uniqueContacts = %d, want 1", agg.UniqueContacts)
	}
	agg.observeContact("c-2")
	if agg.UniqueContacts != 2 {
		t.Fatalf("uniqueContacts = %d, want 2", agg.UniqueContacts)
	}
}

func TestObserveContactSkipsIdentityless(t *testing.T) {
	var agg GeoAggregate
	agg.observeContact("")
	agg.observeContact(NoIdentity)
	if agg.UniqueContacts != 0 {
		t.Fatalf("uniqueContacts = %d, want 0", agg.UniqueContacts)
	}
}

func TestGeoTableGroupsStatelessRowsUnderUnknown(t *testing.T) {
	table := newGeoTable()

	table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}, ContactID: "c-1"}).Leads++
	table.at(NormalizedRow{ContactID: "c-2"}).Leads++
	table.at(NormalizedRow{Geo: GeoRef{State: UnknownGeo}, ContactID: "c-3"}).Leads++

	unknown, ok := table.aggregates[UnknownGeo]
	if !ok {
		t.Fatal("stateless rows were dropped instead of grouped under unknown")
	}
	if unknown.Leads != 2 {
		t.Fatalf("unknown leads = %d, want 2", unknown.Leads)
	}
	if unknown.UniqueContacts != 2 {
		t.Fatalf("unknown uniqueContacts = %d, want 2", unknown.UniqueContacts)
	}
	if len(table.all()) != 2 {
		t.Fatalf("aggregate count = %d, want 2", len(table.all()))
	}
}

func TestGeoTableTracksContactsPerGeo(t *testing.T) {
	table := newGeoTable()

	// Same contact surfacing twice in one geo and once in another.
	table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}, ContactID: "c-1"})
	table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}, ContactID: "c-1"})
	table.at(NormalizedRow{Geo: GeoRef{State: "Ohio"}, ContactID: "c-1"})

	if got := table.aggregates["Texas"].UniqueContacts; got != 1 {
		t.Fatalf("texas uniqueContacts = %d, want 1", got)
	}
	if got := table.aggregates["Ohio"].UniqueContacts; got != 1 {
		t.Fatalf("ohio uniqueContacts = %d, want 1", got)
	}
}

func TestAllSortsByName(t *testing.T) {
	table := newGeoTable()
	table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}})
	table.at(NormalizedRow{Geo: GeoRef{State: "Ohio"}})
	table.at(NormalizedRow{Geo: GeoRef{State: "Georgia"}})

	want := []string{"Georgia", "Ohio", "Texas"}
	for i, agg := range table.all() {
		if agg.Name != want[i] {
			t.Fatalf("all()[%d] = %q, want %q", i, agg.Name, want[i])
		}
	}
}

func TestRankedByLostValueOrdersDescending(t *testing.T) {
	table := newGeoTable()

	tx := table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}})
	tx.LostCount = 1
	tx.LostValue = 250

	oh := table.at(NormalizedRow{Geo: GeoRef{State: "Ohio"}})
	oh.LostCount = 3
	oh.LostValue = 900

	ga := table.at(NormalizedRow{Geo: GeoRef{State: "Georgia"}})
	ga.LostCount = 2
	ga.LostValue = 400

	want := []string{"Ohio", "Georgia", "Texas"}
	for i, agg := range table.rankedByLostValue() {
		if agg.Name != want[i] {
			t.Fatalf("ranked[%d] = %q, want %q", i, agg.Name, want[i])
		}
	}
}

func TestRankedByLostValueBreaksTiesByCount(t *testing.T) {
	table := newGeoTable()

	tx := table.at(NormalizedRow{Geo: GeoRef{State: "Texas"}})
	tx.LostCount = 1
	tx.LostValue = 500

	oh := table.at(NormalizedRow{Geo: GeoRef{State: "Ohio"}})
	oh.LostCount = 4
	oh.LostValue = 500

	ranked := table.rankedByLostValue()
	if ranked[0].Name != "Ohio" || ranked[1].Name != "Texas" {
		t.Fatalf("tie order = %q, %q; want Ohio, Texas", ranked[0].Name, ranked[1].Name)
	}
}
