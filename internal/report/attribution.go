package report

import "sort"

// AttributionRow is the per-source rollup of funnel counters and revenue.
type AttributionRow struct {
	Source                string   `json:"source"`
	Leads                 int      `json:"leads"`
	Calls                 int      `json:"calls"`
	Conversations         int      `json:"conversations"`
	Appointments          int      `json:"appointments"`
	Revenue               float64  `json:"revenue"`
	LeadToAppointmentRate *float64 `json:"leadToAppointmentRate"`
	LeadToRevenue         *float64 `json:"leadToRevenue"`
}

const (
	attributionUnknown = "unattributed"
	attributionTopN    = 10
)

// AttributeSources assigns each contact the first non-empty source from
// its own lead records. Later-observed touches are never consulted, so a
// contact without a lead-record source stays unattributed even when later
// activity carries a signal.
func AttributeSources(leads []NormalizedRow) map[string]string {
	bySource := make(map[string]string)
	for _, lead := range leads {
		if lead.ContactID == NoIdentity {
			continue
		}
		if _, assigned := bySource[lead.ContactID]; assigned {
			continue
		}
		if lead.Source != "" {
			bySource[lead.ContactID] = lead.Source
		}
	}
	return bySource
}

// AttributionInputs are the counters rolled up per contact source.
type AttributionInputs struct {
	Leads         []NormalizedRow
	Calls         []NormalizedRow
	Conversations []NormalizedRow
	Appointments  []NormalizedRow
	Transactions  []NormalizedRow
}

// RollupAttribution aggregates per-source funnel counters and emits the
// top rows by revenue.
func RollupAttribution(in AttributionInputs) []AttributionRow {
	contactSource := AttributeSources(in.Leads)

	sourceFor := func(contactID string) string {
		if src, ok := contactSource[contactID]; ok {
			return src
		}
		return attributionUnknown
	}

	type acc struct {
		leads, calls, conversations, appointments int
		revenue                                   float64
	}
	rollup := make(map[string]*acc)
	at := func(source string) *acc {
		a, ok := rollup[source]
		if !ok {
			a = &acc{}
			rollup[source] = a
		}
		return a
	}

	for _, r := range in.Leads {
		at(sourceFor(r.ContactID)).leads++
	}
	for _, r := range in.Calls {
		at(sourceFor(r.ContactID)).calls++
	}
	for _, r := range in.Conversations {
		at(sourceFor(r.ContactID)).conversations++
	}
	for _, r := range in.Appointments {
		at(sourceFor(r.ContactID)).appointments++
	}
	for _, r := range in.Transactions {
		if IsSuccessfulTransaction(r.Status) {
			at(sourceFor(r.ContactID)).revenue += r.Amount
		}
	}

	rows := make([]AttributionRow, 0, len(rollup))
	for source, a := range rollup {
		rows = append(rows, AttributionRow{
			Source:                source,
			Leads:                 a.leads,
			Calls:                 a.calls,
			Conversations:         a.conversations,
			Appointments:          a.appointments,
			Revenue:               round2(a.revenue),
			LeadToAppointmentRate: ratioPct(float64(a.appointments), float64(a.leads)),
			LeadToRevenue:         ratio(a.revenue, float64(a.leads)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Source < rows[j].Source
	})

	if len(rows) > attributionTopN {
		rows = rows[:attributionTopN]
	}
	return rows
}
