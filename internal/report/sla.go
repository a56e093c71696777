package report

import "time"

// SLATiers counts first-touch lags by response band.
type SLATiers struct {
	Within15m int `json:"within15m"`
	Within60m int `json:"within60m"`
	Breached  int `json:"breached"`
	NoTouch   int `json:"noTouch"`
}

// PipelineSLA is the lead-response SLA section: how fast leads created in
// the window got their first recorded interaction on any channel.
type PipelineSLA struct {
	Contacts       int      `json:"contacts"`
	Touched        int      `json:"touched"`
	MedianMinutes  *float64 `json:"medianMinutes"`
	P90Minutes     *float64 `json:"p90Minutes"`
	Tiers          SLATiers `json:"tiers"`
	Within15mRate  *float64 `json:"within15mRate"`
	Within60mRate  *float64 `json:"within60mRate"`
	BreachedRate   *float64 `json:"breachedRate"`
	Aging          Aging    `json:"aging"`
}

// Aging summarizes how long open lost-opportunity rows have been sitting.
type Aging struct {
	OpenCount int      `json:"openCount"`
	MeanDays  *float64 `json:"meanDays"`
	P90Days   *float64 `json:"p90Days"`
	Over7d    int      `json:"over7d"`
	Over14d   int      `json:"over14d"`
}

const (
	slaTier1 = 15 * time.Minute
	slaTier2 = 60 * time.Minute
)

// AnalyzeSLA computes first-touch lags for every contact with a resolvable
// creation timestamp. touches maps contact id to the earliest touch across
// calls, conversations, appointments, and transactions.
func AnalyzeSLA(leads []NormalizedRow, touches map[string]int64, openOpportunities []NormalizedRow, now time.Time) PipelineSLA {
	var out PipelineSLA
	var lags []float64

	for _, lead := range leads {
		if lead.TimestampMs <= 0 || lead.ContactID == NoIdentity {
			continue
		}
		out.Contacts++

		touchMs, ok := touches[lead.ContactID]
		if !ok {
			out.Tiers.NoTouch++
			continue
		}
		out.Touched++

		lagMs := touchMs - lead.TimestampMs
		if lagMs < 0 {
			lagMs = 0
		}
		lagMinutes := float64(lagMs) / float64(time.Minute.Milliseconds())
		lags = append(lags, lagMinutes)

		lag := time.Duration(lagMs) * time.Millisecond
		switch {
		case lag <= slaTier1:
			out.Tiers.Within15m++
		case lag <= slaTier2:
			out.Tiers.Within60m++
		default:
			out.Tiers.Breached++
		}
	}

	if len(lags) > 0 {
		med := round1(median(lags))
		p90 := round1(nearestRank(lags, 90))
		out.MedianMinutes = &med
		out.P90Minutes = &p90
	}

	touched := float64(out.Touched)
	out.Within15mRate = ratioPct(float64(out.Tiers.Within15m), touched)
	out.Within60mRate = ratioPct(float64(out.Tiers.Within15m+out.Tiers.Within60m), touched)
	out.BreachedRate = ratioPct(float64(out.Tiers.Breached), touched)

	out.Aging = analyzeAging(openOpportunities, now)
	return out
}

func analyzeAging(open []NormalizedRow, now time.Time) Aging {
	var aging Aging
	var ages []float64

	nowMs := now.UnixMilli()
	for _, row := range open {
		if row.TimestampMs <= 0 {
			continue
		}
		aging.OpenCount++
		days := float64(nowMs-row.TimestampMs) / float64(24*time.Hour.Milliseconds())
		if days < 0 {
			days = 0
		}
		ages = append(ages, days)
		if days > 7 {
			aging.Over7d++
		}
		if days > 14 {
			aging.Over14d++
		}
	}

	if len(ages) > 0 {
		m := round1(mean(ages))
		p90 := round1(nearestRank(ages, 90))
		aging.MeanDays = &m
		aging.P90Days = &p90
	}
	return aging
}

// EarliestTouches folds every touch source into one contact→earliest
// timestamp index.
func EarliestTouches(rowSets ...[]NormalizedRow) map[string]int64 {
	touches := make(map[string]int64)
	for _, rows := range rowSets {
		for _, row := range rows {
			if row.TimestampMs <= 0 || row.ContactID == NoIdentity {
				continue
			}
			if prev, ok := touches[row.ContactID]; !ok || row.TimestampMs < prev {
				touches[row.ContactID] = row.TimestampMs
			}
		}
	}
	return touches
}
