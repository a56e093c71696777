package report

import "fmt"

// Playbook is one prioritized action-center recommendation.
type Playbook struct {
	ID                string   `json:"id"`
	Priority          int      `json:"priority"`
	Owner             string   `json:"owner"`
	Module            string   `json:"module"`
	Title             string   `json:"title"`
	Why               string   `json:"why"`
	ExpectedImpactUSD float64  `json:"expectedImpactUsd"`
	TriggerMetric     string   `json:"triggerMetric"`
	Steps             []string `json:"steps"`
}

// ActionSignals are the already-computed figures the synthesizer reads.
type ActionSignals struct {
	CancellationRatePct float64
	NoShowRatePct       float64
	RevenueDeltaPct     *float64
	DataQualityScore    float64
	ForecastGapPct      *float64
	Revenue             float64
	LostBookingValue    float64
	Appointments        int
}

const (
	actionsCancellationThreshold = 25.0
	actionsNoShowThreshold       = 15.0
	actionsRevenueDropThreshold  = -15.0
	actionsQualityThreshold      = 70.0
	actionsForecastGapThreshold  = -10.0
)

// SynthesizeActions converts threshold breaches into fixed playbook
// templates. Rules are order-independent; the output order is the fixed
// rule order. The list is never empty: a default playbook covers the
// no-findings case.
func SynthesizeActions(s ActionSignals) []Playbook {
	var playbooks []Playbook

	if s.CancellationRatePct >= actionsCancellationThreshold {
		playbooks = append(playbooks, Playbook{
			ID:                "reduce-cancellations",
			Priority:          1,
			Owner:             "Operations",
			Module:            "appointments",
			Title:             "Reduce appointment cancellations",
			Why:               fmt.Sprintf("%.0f%% of appointments were cancelled this period.", s.CancellationRatePct),
			ExpectedImpactUSD: impactEstimate(s.Revenue, 0.10),
			TriggerMetric:     "cancellationRatePct",
			Steps: []string{
				"Enable automated confirmation reminders at 24h and 2h.",
				"Call every cancellation within one business day to rebook.",
				"Track cancellation reasons for two weeks and fix the top one.",
			},
		})
	}

	if s.NoShowRatePct >= actionsNoShowThreshold {
		playbooks = append(playbooks, Playbook{
			ID:                "cut-no-shows",
			Priority:          2,
			Owner:             "Front Desk",
			Module:            "appointments",
			Title:             "Cut no-show losses",
			Why:               fmt.Sprintf("%.0f%% of appointments ended as no-shows.", s.NoShowRatePct),
			ExpectedImpactUSD: impactEstimate(s.Revenue, 0.06),
			TriggerMetric:     "noShowRatePct",
			Steps: []string{
				"Require phone confirmation for first-time bookings.",
				"Offer one-tap rescheduling in the reminder message.",
				"Overbook the worst-hit time slots by one appointment.",
			},
		})
	}

	if s.RevenueDeltaPct != nil && *s.RevenueDeltaPct <= actionsRevenueDropThreshold {
		playbooks = append(playbooks, Playbook{
			ID:                "recover-revenue",
			Priority:          1,
			Owner:             "Sales",
			Module:            "transactions",
			Title:             "Recover the revenue drop",
			Why:               fmt.Sprintf("Revenue fell %.0f%% versus the previous period.", -*s.RevenueDeltaPct),
			ExpectedImpactUSD: impactEstimate(s.LostBookingValue, 0.30),
			TriggerMetric:     "revenueDeltaPct",
			Steps: []string{
				"Work every open lost opportunity above $250 this week.",
				"Re-run the best-performing offer from the previous period.",
				"Review pricing changes made in the last 60 days.",
			},
		})
	}

	if s.DataQualityScore < actionsQualityThreshold {
		playbooks = append(playbooks, Playbook{
			ID:                "fix-data-quality",
			Priority:          3,
			Owner:             "Admin",
			Module:            "dataQuality",
			Title:             "Fix data capture gaps",
			Why:               fmt.Sprintf("Data-quality score is %.0f; reporting is flying partially blind.", s.DataQualityScore),
			ExpectedImpactUSD: 0,
			TriggerMetric:     "dataQualityScore",
			Steps: []string{
				"Make phone and state required fields on every intake form.",
				"Backfill contact links on this month's appointments.",
				"Audit each source's field mapping against the report coverage table.",
			},
		})
	}

	if s.ForecastGapPct != nil && *s.ForecastGapPct <= actionsForecastGapThreshold {
		playbooks = append(playbooks, Playbook{
			ID:                "close-forecast-gap",
			Priority:          2,
			Owner:             "Sales",
			Module:            "forecast",
			Title:             "Close the forecast gap",
			Why:               fmt.Sprintf("The run-rate projection trails the previous period by %.0f%%.", -*s.ForecastGapPct),
			ExpectedImpactUSD: impactEstimate(s.Revenue, 0.15),
			TriggerMetric:     "forecastGapPct",
			Steps: []string{
				"Pull forward appointments already booked for next period.",
				"Launch a limited-time offer to leads without an appointment.",
				"Add one extra follow-up touch to every open conversation.",
			},
		})
	}

	if len(playbooks) == 0 {
		playbooks = append(playbooks, Playbook{
			ID:                "maintain-momentum",
			Priority:          3,
			Owner:             "Operations",
			Module:            "executive",
			Title:             "Maintain momentum",
			Why:               "No threshold breaches this period.",
			ExpectedImpactUSD: 0,
			TriggerMetric:     "none",
			Steps: []string{
				"Keep current follow-up cadences unchanged.",
				"Spot-check five recent leads for response time.",
				"Revisit the action center after the next reporting window.",
			},
		})
	}

	return playbooks
}

// impactEstimate is a deliberately rough dollar figure: a fixed share of
// the relevant base, rounded to whole dollars.
func impactEstimate(base, share float64) float64 {
	if base <= 0 {
		return 0
	}
	v := base * share
	return float64(int(v))
}
