package report

import "math"

// ScoreComponents are the five sub-scores of the composite business score,
// each clamped to [0,100].
type ScoreComponents struct {
	Volume             float64 `json:"volume"`
	Revenue            float64 `json:"revenue"`
	AppointmentQuality float64 `json:"appointmentQuality"`
	Coverage           float64 `json:"coverage"`
	LossHealth         float64 `json:"lossHealth"`
}

// BusinessScore is the 0-100 composite health metric for one aggregate.
type BusinessScore struct {
	Score      int             `json:"score"`
	Grade      string          `json:"grade"`
	Components ScoreComponents `json:"components"`
}

// Baselines normalize volume and revenue against the best sibling
// aggregate in the same scoring pass. Both are floored at 1.
type Baselines struct {
	MaxActivity float64
	MaxRevenue  float64
}

// BaselinesFor computes the sibling maxima for a set of aggregates.
func BaselinesFor(buckets []Bucket) Baselines {
	activities := make([]float64, 0, len(buckets))
	revenues := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		activities = append(activities, activity(b))
		revenues = append(revenues, b.SuccessfulRevenue)
	}
	return Baselines{
		MaxActivity: maxFloored(activities),
		MaxRevenue:  maxFloored(revenues),
	}
}

func activity(b Bucket) float64 {
	return float64(b.Leads) + 0.6*float64(b.Calls) + 0.4*float64(b.Conversations)
}

const (
	weightVolume             = 0.20
	weightRevenue            = 0.25
	weightAppointmentQuality = 0.20
	weightCoverage           = 0.20
	weightLossHealth         = 0.15
)

// Score computes the composite business score for one aggregate. Pure and
// deterministic: identical inputs always produce identical output.
func Score(b Bucket, base Baselines) BusinessScore {
	maxActivity := base.MaxActivity
	if maxActivity < 1 {
		maxActivity = 1
	}
	maxRevenue := base.MaxRevenue
	if maxRevenue < 1 {
		maxRevenue = 1
	}

	volume := clamp100(100 * activity(b) / maxActivity)
	revenue := clamp100(100 * b.SuccessfulRevenue / maxRevenue)

	appointmentQuality := 100.0
	if b.Appointments > 0 {
		appointmentQuality = clamp100(100 * (1 - float64(b.CancelledAppointments)/float64(b.Appointments)))
	}

	// The lead denominator floors at 1 so zero-lead periods read as full
	// coverage of nothing rather than poisoning the score.
	leadsFloor := math.Max(1, float64(b.Leads))
	coverage := clamp100(45*float64(b.Calls)/leadsFloor + 55*float64(b.Appointments)/leadsFloor)

	lossDenomValue := b.SuccessfulRevenue + b.LostValue
	if lossDenomValue < 1 {
		lossDenomValue = 1
	}
	lossDenomCount := float64(b.Appointments + b.LostCount)
	if lossDenomCount < 1 {
		lossDenomCount = 1
	}
	lossPressure := clamp100(0.7*100*b.LostValue/lossDenomValue + 0.3*100*float64(b.LostCount)/lossDenomCount)
	lossHealth := 100 - lossPressure

	components := ScoreComponents{
		Volume:             round1(volume),
		Revenue:            round1(revenue),
		AppointmentQuality: round1(appointmentQuality),
		Coverage:           round1(coverage),
		LossHealth:         round1(lossHealth),
	}

	composite := weightVolume*volume +
		weightRevenue*revenue +
		weightAppointmentQuality*appointmentQuality +
		weightCoverage*coverage +
		weightLossHealth*lossHealth

	score := int(clamp100(math.Round(composite)))

	return BusinessScore{
		Score:      score,
		Grade:      gradeFor(score),
		Components: components,
	}
}

func gradeFor(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// PeriodScore computes the whole-period score as the mean of the per-bucket
// composites. The previous period is deliberately scored differently (one
// synthetic whole-period aggregate); see SyntheticScore.
func PeriodScore(buckets []Bucket) BusinessScore {
	if len(buckets) == 0 {
		return Score(Bucket{}, Baselines{MaxActivity: 1, MaxRevenue: 1})
	}
	base := BaselinesFor(buckets)

	scores := make([]float64, 0, len(buckets))
	var components ScoreComponents
	for _, b := range buckets {
		s := Score(b, base)
		scores = append(scores, float64(s.Score))
		components.Volume += s.Components.Volume
		components.Revenue += s.Components.Revenue
		components.AppointmentQuality += s.Components.AppointmentQuality
		components.Coverage += s.Components.Coverage
		components.LossHealth += s.Components.LossHealth
	}

	n := float64(len(buckets))
	score := int(clamp100(math.Round(mean(scores))))
	return BusinessScore{
		Score: score,
		Grade: gradeFor(score),
		Components: ScoreComponents{
			Volume:             round1(components.Volume / n),
			Revenue:            round1(components.Revenue / n),
			AppointmentQuality: round1(components.AppointmentQuality / n),
			Coverage:           round1(components.Coverage / n),
			LossHealth:         round1(components.LossHealth / n),
		},
	}
}

// SyntheticScore scores one whole-period aggregate against itself. Used
// for the previous period, where only totals are collected. The asymmetry
// against PeriodScore is observed legacy behavior and preserved on purpose:
// "fixing" it would silently change what the reported delta means.
func SyntheticScore(totals Bucket) BusinessScore {
	return Score(totals, BaselinesFor([]Bucket{totals}))
}
