package report

import "sort"

// GeoAggregate extends the Bucket counters with a per-geo identity set.
// UniqueContacts only grows as rows are added.
type GeoAggregate struct {
	Bucket
	Name           string `json:"name"`
	UniqueContacts int    `json:"uniqueContacts"`

	contacts map[string]struct{}
}

func (g *GeoAggregate) observeContact(contactID string) {
	if contactID == "" || contactID == NoIdentity {
		return
	}
	if g.contacts == nil {
		g.contacts = make(map[string]struct{})
	}
	if _, seen := g.contacts[contactID]; seen {
		return
	}
	g.contacts[contactID] = struct{}{}
	g.UniqueContacts++
}

// geoTable is the request-scoped ordered table of geography aggregates,
// keyed by normalized state name. Rows without a state land on the
// "unknown" sentinel, never dropped.
type geoTable struct {
	aggregates map[string]*GeoAggregate
	names      []string
}

func newGeoTable() *geoTable {
	return &geoTable{aggregates: make(map[string]*GeoAggregate)}
}

func (t *geoTable) at(row NormalizedRow) *GeoAggregate {
	name := row.Geo.State
	if name == "" {
		name = UnknownGeo
	}
	agg, ok := t.aggregates[name]
	if !ok {
		agg = &GeoAggregate{Name: name}
		agg.Key = name
		agg.Label = name
		t.aggregates[name] = agg
		t.names = append(t.names, name)
	}
	agg.observeContact(row.ContactID)
	return agg
}

// all returns the aggregates sorted by name for stable output.
func (t *geoTable) all() []*GeoAggregate {
	sort.Strings(t.names)
	out := make([]*GeoAggregate, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.aggregates[name])
	}
	return out
}

// rankedByLostValue returns the aggregates ordered by descending lost
// value, ties broken by lost count, for the geography opportunity section.
func (t *geoTable) rankedByLostValue() []*GeoAggregate {
	out := t.all()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LostValue != out[j].LostValue {
			return out[i].LostValue > out[j].LostValue
		}
		return out[i].LostCount > out[j].LostCount
	})
	return out
}
