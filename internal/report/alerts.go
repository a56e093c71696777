package report

import "fmt"

// Alert is one threshold breach surfaced to the dashboard.
type Alert struct {
	ID        string  `json:"id"`
	Severity  string  `json:"severity"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Action    string  `json:"action"`
}

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// AlertSignals are the precomputed KPI values the engine evaluates. The
// engine itself holds no state and reads nothing else.
type AlertSignals struct {
	RevenueDeltaPct     *float64
	CancellationRatePct float64
	NoShowRatePct       float64
	ConversationGeoPct  float64
	Conversations       int
	LostBookingValue    float64
	CompositeScore      int
}

const (
	revenueDropThreshold      = -15.0
	cancellationRateThreshold = 25.0
	noShowRateThreshold       = 15.0
	conversationGeoThreshold  = 70.0
	lostValueThreshold        = 1000.0
	scoreCriticalThreshold    = 60
	scoreInfoThreshold        = 75
)

// EvaluateAlerts runs every rule on every invocation; rules never
// short-circuit each other and the emitted order is fixed.
func EvaluateAlerts(s AlertSignals) []Alert {
	var alerts []Alert

	if s.RevenueDeltaPct != nil && *s.RevenueDeltaPct <= revenueDropThreshold {
		alerts = append(alerts, Alert{
			ID:        "revenue-drop",
			Severity:  SeverityCritical,
			Title:     "Revenue is dropping",
			Message:   fmt.Sprintf("Revenue is down %.1f%% versus the previous period.", -*s.RevenueDeltaPct),
			Metric:    "revenueDeltaPct",
			Value:     round1(*s.RevenueDeltaPct),
			Threshold: revenueDropThreshold,
			Action:    "Review lost bookings and re-engage recent non-converting leads.",
		})
	}

	if s.CancellationRatePct >= cancellationRateThreshold {
		alerts = append(alerts, Alert{
			ID:        "cancellation-rate",
			Severity:  SeverityCritical,
			Title:     "High cancellation rate",
			Message:   fmt.Sprintf("%.1f%% of appointments were cancelled this period.", s.CancellationRatePct),
			Metric:    "cancellationRatePct",
			Value:     round1(s.CancellationRatePct),
			Threshold: cancellationRateThreshold,
			Action:    "Add confirmation reminders 24h and 2h before each appointment.",
		})
	}

	if s.NoShowRatePct >= noShowRateThreshold {
		alerts = append(alerts, Alert{
			ID:        "no-show-rate",
			Severity:  SeverityWarning,
			Title:     "Elevated no-show rate",
			Message:   fmt.Sprintf("%.1f%% of appointments ended as no-shows.", s.NoShowRatePct),
			Metric:    "noShowRatePct",
			Value:     round1(s.NoShowRatePct),
			Threshold: noShowRateThreshold,
			Action:    "Require a deposit or call-ahead confirmation for new bookings.",
		})
	}

	if s.Conversations > 0 && s.ConversationGeoPct < conversationGeoThreshold {
		alerts = append(alerts, Alert{
			ID:        "conversation-geo-mapping",
			Severity:  SeverityWarning,
			Title:     "Conversations missing geography",
			Message:   fmt.Sprintf("Only %.1f%% of conversations map to a state.", s.ConversationGeoPct),
			Metric:    "conversationGeoPct",
			Value:     round1(s.ConversationGeoPct),
			Threshold: conversationGeoThreshold,
			Action:    "Fix location capture in the conversation intake flow.",
		})
	}

	if s.LostBookingValue >= lostValueThreshold {
		alerts = append(alerts, Alert{
			ID:        "lost-booking-value",
			Severity:  SeverityWarning,
			Title:     "Significant lost booking value",
			Message:   fmt.Sprintf("$%.0f of qualified bookings did not convert.", s.LostBookingValue),
			Metric:    "lostBookingValue",
			Value:     round2(s.LostBookingValue),
			Threshold: lostValueThreshold,
			Action:    "Run a win-back sequence on lost opportunities over $250.",
		})
	}

	switch {
	case s.CompositeScore < scoreCriticalThreshold:
		alerts = append(alerts, Alert{
			ID:        "business-score-low",
			Severity:  SeverityCritical,
			Title:     "Business score is critical",
			Message:   fmt.Sprintf("Composite business score is %d.", s.CompositeScore),
			Metric:    "businessScore",
			Value:     float64(s.CompositeScore),
			Threshold: scoreCriticalThreshold,
			Action:    "Work the action center playbooks top to bottom this week.",
		})
	case s.CompositeScore < scoreInfoThreshold:
		alerts = append(alerts, Alert{
			ID:        "business-score-watch",
			Severity:  SeverityInfo,
			Title:     "Business score needs attention",
			Message:   fmt.Sprintf("Composite business score is %d.", s.CompositeScore),
			Metric:    "businessScore",
			Value:     float64(s.CompositeScore),
			Threshold: scoreInfoThreshold,
			Action:    "Review the weakest score component and its playbook.",
		})
	}

	return alerts
}
