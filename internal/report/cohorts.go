package report

import (
	"sort"
	"time"
)

// CohortRow groups contacts by first-observed-touch month.
type CohortRow struct {
	Cohort    string   `json:"cohort"`
	Contacts  int      `json:"contacts"`
	Buyers    int      `json:"buyers"`
	BuyerRate *float64 `json:"buyerRate"`
	Revenue   float64  `json:"revenue"`
	LTV       float64  `json:"ltv"`
}

// Retention summarizes repeat behavior across the whole period. The
// 30/60/90-day rebooking rates are a heuristic proxy derived from the
// repeat ratio with fixed bumps, not a survival curve; treat them as
// approximate.
type Retention struct {
	RepeatContacts   int      `json:"repeatContacts"`
	RepeatBuyers     int      `json:"repeatBuyers"`
	RepeatRatePct    *float64 `json:"repeatRatePct"`
	Rebooking30dPct  float64  `json:"rebooking30dPct"`
	Rebooking60dPct  float64  `json:"rebooking60dPct"`
	Rebooking90dPct  float64  `json:"rebooking90dPct"`
	RatesApproximate bool     `json:"ratesApproximate"`
}

// Cohorts is the assembled cohort section.
type Cohorts struct {
	Rows      []CohortRow `json:"rows"`
	Retention Retention   `json:"retention"`
}

const (
	rebooking60Bump = 6.0
	rebooking90Bump = 10.0
)

// AnalyzeCohorts builds monthly first-touch cohorts from every touch
// source (not just lead creation) and derives the retention summary.
// transactions drive buyer and revenue attribution per contact.
func AnalyzeCohorts(transactions []NormalizedRow, touchSets ...[]NormalizedRow) Cohorts {
	firstTouch := make(map[string]int64)
	touchCounts := make(map[string]int)
	for _, rows := range touchSets {
		for _, row := range rows {
			if row.TimestampMs <= 0 || row.ContactID == NoIdentity {
				continue
			}
			touchCounts[row.ContactID]++
			if prev, ok := firstTouch[row.ContactID]; !ok || row.TimestampMs < prev {
				firstTouch[row.ContactID] = row.TimestampMs
			}
		}
	}

	purchases := make(map[string]int)
	revenueByContact := make(map[string]float64)
	for _, tx := range transactions {
		if tx.ContactID == NoIdentity || !IsSuccessfulTransaction(tx.Status) {
			continue
		}
		purchases[tx.ContactID]++
		revenueByContact[tx.ContactID] += tx.Amount
	}

	type cohortAcc struct {
		contacts int
		buyers   int
		revenue  float64
	}
	cohorts := make(map[string]*cohortAcc)
	for contactID, ts := range firstTouch {
		month := time.UnixMilli(ts).Format("2006-01")
		acc, ok := cohorts[month]
		if !ok {
			acc = &cohortAcc{}
			cohorts[month] = acc
		}
		acc.contacts++
		if purchases[contactID] > 0 {
			acc.buyers++
			acc.revenue += revenueByContact[contactID]
		}
	}

	months := make([]string, 0, len(cohorts))
	for month := range cohorts {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := make([]CohortRow, 0, len(months))
	for _, month := range months {
		acc := cohorts[month]
		ltvBase := acc.buyers
		if ltvBase == 0 {
			ltvBase = acc.contacts
		}
		if ltvBase < 1 {
			ltvBase = 1
		}
		rows = append(rows, CohortRow{
			Cohort:    month,
			Contacts:  acc.contacts,
			Buyers:    acc.buyers,
			BuyerRate: ratioPct(float64(acc.buyers), float64(acc.contacts)),
			Revenue:   round2(acc.revenue),
			LTV:       round2(acc.revenue / float64(ltvBase)),
		})
	}

	return Cohorts{
		Rows:      rows,
		Retention: retentionFrom(touchCounts, purchases),
	}
}

func retentionFrom(touchCounts map[string]int, purchases map[string]int) Retention {
	var ret Retention
	for _, n := range touchCounts {
		if n >= 2 {
			ret.RepeatContacts++
		}
	}
	for _, n := range purchases {
		if n >= 2 {
			ret.RepeatBuyers++
		}
	}

	total := len(touchCounts)
	ret.RepeatRatePct = ratioPct(float64(ret.RepeatContacts), float64(total))

	base := 0.0
	if ret.RepeatRatePct != nil {
		base = *ret.RepeatRatePct
	}
	ret.Rebooking30dPct = round1(clamp100(base))
	ret.Rebooking60dPct = round1(clamp100(base + rebooking60Bump))
	ret.Rebooking90dPct = round1(clamp100(base + rebooking90Bump))
	ret.RatesApproximate = true
	return ret
}
