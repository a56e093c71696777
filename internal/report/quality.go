package report

// CoverageRatio is one named data-quality coverage figure.
type CoverageRatio struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Covered int     `json:"covered"`
	Total   int     `json:"total"`
	Pct     float64 `json:"pct"`
}

// DataQuality is the coverage section: eight ratios and their unweighted
// mean. Score is 100 when every input is fully populated.
type DataQuality struct {
	Score  float64         `json:"score"`
	Ratios []CoverageRatio `json:"ratios"`
}

// QualityInputs are the raw row sets the scorer inspects.
type QualityInputs struct {
	Leads         []NormalizedRow
	Calls         []NormalizedRow
	Conversations []NormalizedRow
	Appointments  []NormalizedRow
	Transactions  []NormalizedRow
	LostBookings  []NormalizedRow
}

// ScoreDataQuality computes the eight coverage ratios. An empty source
// counts as fully covered: missing data upstream is a gateway/module
// problem, not a field-coverage one.
func ScoreDataQuality(in QualityInputs) DataQuality {
	ratios := []CoverageRatio{
		coverage("contactPhone", "Contacts with phone", in.Leads, func(r NormalizedRow) bool {
			return r.Phone != ""
		}),
		coverage("contactSource", "Contacts with attribution source", in.Leads, func(r NormalizedRow) bool {
			return r.Source != ""
		}),
		coverage("leadTimestamp", "Leads with creation timestamp", in.Leads, func(r NormalizedRow) bool {
			return r.TimestampMs > 0
		}),
		coverage("callGeo", "Calls with state", in.Calls, hasState),
		coverage("conversationGeo", "Conversations mapped to state", in.Conversations, hasState),
		coverage("appointmentContact", "Appointments linked to contact", in.Appointments, hasContact),
		coverage("transactionContact", "Transactions linked to contact", in.Transactions, hasContact),
		coverage("lostBookingValue", "Lost bookings with dollar value", in.LostBookings, func(r NormalizedRow) bool {
			return r.Amount > 0
		}),
	}

	pcts := make([]float64, 0, len(ratios))
	for _, r := range ratios {
		pcts = append(pcts, r.Pct)
	}

	return DataQuality{
		Score:  round1(clamp100(mean(pcts))),
		Ratios: ratios,
	}
}

func hasState(r NormalizedRow) bool {
	return r.Geo.State != "" && r.Geo.State != UnknownGeo
}

func hasContact(r NormalizedRow) bool {
	return r.ContactID != "" && r.ContactID != NoIdentity
}

func coverage(key, label string, rows []NormalizedRow, covered func(NormalizedRow) bool) CoverageRatio {
	ratio := CoverageRatio{Key: key, Label: label, Total: len(rows)}
	for _, r := range rows {
		if covered(r) {
			ratio.Covered++
		}
	}
	if ratio.Total == 0 {
		ratio.Pct = 100
		return ratio
	}
	ratio.Pct = round1(clamp100(float64(ratio.Covered) / float64(ratio.Total) * 100))
	return ratio
}
