package report

import "github.com/oaklinehq/insights-backend/internal/timerange"

// Report is the one consolidated executive document. It is built fresh per
// request from that request's collaborator responses and discarded at
// response time; nothing here survives a request.
type Report struct {
	OK                  bool                    `json:"ok"`
	Range               timerange.TimeRange     `json:"range"`
	PrevRange           *timerange.TimeRange    `json:"prevRange"`
	Executive           Executive               `json:"executive"`
	BusinessScore       ScoreSection            `json:"businessScore"`
	NorthStar           NorthStar               `json:"northStar"`
	Funnel              Funnel                  `json:"funnel"`
	Forecast            Forecast                `json:"forecast"`
	GeoBusinessScore    []GeoScore              `json:"geoBusinessScore"`
	PipelineSLA         PipelineSLA             `json:"pipelineSla"`
	DataQuality         DataQuality             `json:"dataQuality"`
	Cohorts             Cohorts                 `json:"cohorts"`
	Attribution         []AttributionRow        `json:"attribution"`
	ActionCenter        []Playbook              `json:"actionCenter"`
	TopOpportunitiesGeo []GeoOpportunity        `json:"topOpportunitiesGeo"`
	Alerts              []Alert                 `json:"alerts"`
	Modules             map[string]ModuleStatus `json:"modules"`
}

// KPI is one executive summary card.
type KPI struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Value    float64  `json:"value"`
	Prev     float64  `json:"prev"`
	DeltaPct *float64 `json:"deltaPct"`
}

// Executive is the KPI card section.
type Executive struct {
	KPIs        []KPI    `json:"kpis"`
	MissRatePct *float64 `json:"missRatePct"`
	Buckets     []Bucket `json:"buckets"`
}

// BucketScore pairs a time bucket with its composite score for the trend
// strip.
type BucketScore struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// ScoreSection carries the whole-period composite score, its comparison
// value, and the per-bucket trend.
type ScoreSection struct {
	Current  BusinessScore `json:"current"`
	Previous BusinessScore `json:"previous"`
	Delta    int           `json:"delta"`
	Trend    []BucketScore `json:"trend"`
}

// SeriesPoint is one value of a bucketed series.
type SeriesPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// NorthStar tracks the primary metric (collected revenue) with its
// comparison value and bucketed series.
type NorthStar struct {
	Metric   string        `json:"metric"`
	Current  float64       `json:"current"`
	Previous float64       `json:"previous"`
	DeltaPct *float64      `json:"deltaPct"`
	Series   []SeriesPoint `json:"series"`
}

// GeoScore is one geography's business score entry.
type GeoScore struct {
	Name           string        `json:"name"`
	UniqueContacts int           `json:"uniqueContacts"`
	Leads          int           `json:"leads"`
	Calls          int           `json:"calls"`
	Appointments   int           `json:"appointments"`
	Revenue        float64       `json:"revenue"`
	Score          BusinessScore `json:"score"`
}

// GeoOpportunity is one geography's lost/open opportunity entry, ranked by
// value at stake.
type GeoOpportunity struct {
	Name           string  `json:"name"`
	LostCount      int     `json:"lostCount"`
	LostValue      float64 `json:"lostValue"`
	UniqueContacts int     `json:"uniqueContacts"`
}

// ModuleStatus reports one collaborator's contribution. Error, when set,
// is authoritative for that section's degradation; the rest of the report
// renders normally.
type ModuleStatus struct {
	OK    bool   `json:"ok"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}
