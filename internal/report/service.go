package report

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/oaklinehq/insights-backend/internal/sources"
	"github.com/oaklinehq/insights-backend/internal/timerange"
	pkgerrors "github.com/oaklinehq/insights-backend/pkg/errors"
	"github.com/oaklinehq/insights-backend/pkg/logger"
	"github.com/oaklinehq/insights-backend/pkg/metrics"
	"github.com/oaklinehq/insights-backend/pkg/redis"
)

// Params are the validated inbound query parameters of one report request.
type Params struct {
	Preset    string
	StartRaw  string
	EndRaw    string
	AdsPreset string
	Force     bool
}

// Gateway is the outbound collaborator surface the service depends on.
type Gateway interface {
	FetchAll(ctx context.Context, cur, prev timerange.TimeRange, hasPrev bool, opts sources.FetchOptions) sources.Snapshot
}

// Cache is the assembled-report cache surface. A nil cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ReportKey(parts ...string) string
}

// Service builds the consolidated executive report.
type Service struct {
	gateway  Gateway
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
	metrics  *metrics.SourceMetrics
	now      func() time.Time
}

// ServiceParams wires the service.
type ServiceParams struct {
	Gateway  Gateway
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.SourceMetrics
	Now      func() time.Time
}

// NewService validates wiring and returns the report service.
func NewService(p ServiceParams) (*Service, error) {
	if p.Gateway == nil {
		return nil, errors.New("report service requires a gateway")
	}
	now := p.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		gateway:  p.Gateway,
		cache:    p.Cache,
		cacheTTL: p.CacheTTL,
		logg:     p.Logger,
		metrics:  p.Metrics,
		now:      now,
	}, nil
}

// Build resolves the window, fetches every collaborator, and assembles the
// full document. It fails only on invalid range input; collaborator
// failures degrade their sections and the build continues.
func (s *Service) Build(ctx context.Context, p Params) (*Report, error) {
	buildStart := time.Now()
	now := s.now()

	cur, err := timerange.Resolve(p.Preset, p.StartRaw, p.EndRaw, now)
	if err != nil {
		return nil, err
	}
	prev, hasPrev := timerange.Comparison(cur)
	granularity := timerange.ResolveGranularity(p.Preset, cur)

	opts := sources.FetchOptions{}
	if p.AdsPreset != "" {
		adsRange, err := timerange.Resolve(p.AdsPreset, "", "", now)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid adsRange preset")
		}
		opts.AdsRange = &adsRange
	}

	if s.logg != nil {
		ctx = s.logg.WithRange(ctx, cur.Start, cur.End)
	}

	cacheKey := s.cacheKey(p, cur)
	if cached := s.fromCache(ctx, cacheKey, p.Force); cached != nil {
		return cached, nil
	}

	snap := s.gateway.FetchAll(ctx, cur, prev, hasPrev, opts)

	doc := s.assemble(cur, prev, hasPrev, granularity, snap, now)

	s.toCache(ctx, cacheKey, doc)
	s.metrics.ObserveBuild(time.Since(buildStart))
	return doc, nil
}

// periodRows are one window's normalized rows per source.
type periodRows struct {
	calls         []NormalizedRow
	leads         []NormalizedRow
	conversations []NormalizedRow
	transactions  []NormalizedRow
	appointments  []NormalizedRow
	lostBookings  []NormalizedRow
}

func normalizeWindow(results map[string]sources.Result) periodRows {
	tx := results[sources.SourceTransactions]
	return periodRows{
		calls:         NormalizeRows(results[sources.SourceCalls].Payload.Rows),
		leads:         NormalizeRows(results[sources.SourceLeads].Payload.Rows),
		conversations: NormalizeRows(results[sources.SourceConversations].Payload.Rows),
		transactions:  NormalizeRows(tx.Payload.Rows),
		appointments:  NormalizeRows(results[sources.SourceAppointments].Payload.Rows),
		lostBookings:  NormalizeRows(tx.Payload.LostBookings),
	}
}

// periodTotals fold a window's rows into whole-period counters. Rows
// without a resolvable timestamp still count here even though they are
// excluded from time buckets.
type periodTotals struct {
	Bucket
	MissedCalls          int
	NoShows              int
	SuccessfulTx         int
	ConversationsWithGeo int
}

func computeTotals(rows periodRows) periodTotals {
	var t periodTotals
	t.Leads = len(rows.leads)
	t.Calls = len(rows.calls)
	t.Conversations = len(rows.conversations)
	t.Appointments = len(rows.appointments)

	for _, r := range rows.calls {
		if IsMissedCall(r.Status) {
			t.MissedCalls++
		}
	}
	for _, r := range rows.conversations {
		if hasState(r) {
			t.ConversationsWithGeo++
		}
	}
	for _, r := range rows.appointments {
		if IsCancelled(r.Status) {
			t.CancelledAppointments++
		}
		if IsNoShow(r.Status) {
			t.NoShows++
		}
	}
	for _, r := range rows.transactions {
		if IsSuccessfulTransaction(r.Status) {
			t.SuccessfulRevenue += r.Amount
			t.SuccessfulTx++
		}
	}
	for _, r := range rows.lostBookings {
		t.LostCount++
		t.LostValue += r.Amount
	}
	return t
}

func (s *Service) assemble(cur, prev timerange.TimeRange, hasPrev bool, granularity timerange.Granularity, snap sources.Snapshot, now time.Time) *Report {
	curRows := normalizeWindow(snap.Current)
	prevRows := normalizeWindow(snap.Previous)

	curTotals := computeTotals(curRows)
	prevTotals := computeTotals(prevRows)

	table := newBucketTable(cur, granularity)
	geoBusiness := newGeoTable()
	geoOpportunity := newGeoTable()
	fillAggregates(table, geoBusiness, geoOpportunity, curRows)

	buckets := table.sorted()
	currentScore := PeriodScore(buckets)
	previousScore := SyntheticScore(prevTotals.Bucket)

	doc := &Report{
		OK:            true,
		Range:         cur,
		Executive:     buildExecutive(curTotals, prevTotals, buckets),
		BusinessScore: buildScoreSection(buckets, currentScore, previousScore),
		NorthStar:     buildNorthStar(curTotals, prevTotals, buckets),
		Forecast:      BuildForecast(cur, curTotals.SuccessfulRevenue, prevTotals.SuccessfulRevenue, now),
		DataQuality: ScoreDataQuality(QualityInputs{
			Leads:         curRows.leads,
			Calls:         curRows.calls,
			Conversations: curRows.conversations,
			Appointments:  curRows.appointments,
			Transactions:  curRows.transactions,
			LostBookings:  curRows.lostBookings,
		}),
		Cohorts: AnalyzeCohorts(curRows.transactions,
			curRows.leads, curRows.calls, curRows.conversations,
			curRows.appointments, curRows.transactions),
		Attribution: RollupAttribution(AttributionInputs{
			Leads:         curRows.leads,
			Calls:         curRows.calls,
			Conversations: curRows.conversations,
			Appointments:  curRows.appointments,
			Transactions:  curRows.transactions,
		}),
		Modules: buildModules(snap),
	}
	if hasPrev {
		doc.PrevRange = &prev
	}

	doc.Funnel = BuildFunnel(
		funnelInputs(curTotals, snap.Current),
		funnelInputs(prevTotals, snap.Previous),
	)

	doc.GeoBusinessScore = buildGeoScores(geoBusiness)
	doc.TopOpportunitiesGeo = buildGeoOpportunities(geoOpportunity)

	touches := EarliestTouches(curRows.calls, curRows.conversations, curRows.appointments, curRows.transactions)
	openOpportunities := make([]NormalizedRow, 0)
	for _, row := range curRows.lostBookings {
		if row.Open {
			openOpportunities = append(openOpportunities, row)
		}
	}
	doc.PipelineSLA = AnalyzeSLA(curRows.leads, touches, openOpportunities, now)

	revenueDelta := finiteDelta(curTotals.SuccessfulRevenue, prevTotals.SuccessfulRevenue)
	cancellationRate := pctOrZero(float64(curTotals.CancelledAppointments), float64(curTotals.Appointments))
	noShowRate := pctOrZero(float64(curTotals.NoShows), float64(curTotals.Appointments))
	conversationGeoRate := pctOrZero(float64(curTotals.ConversationsWithGeo), float64(curTotals.Conversations))

	doc.Alerts = EvaluateAlerts(AlertSignals{
		RevenueDeltaPct:     revenueDelta,
		CancellationRatePct: cancellationRate,
		NoShowRatePct:       noShowRate,
		ConversationGeoPct:  conversationGeoRate,
		Conversations:       curTotals.Conversations,
		LostBookingValue:    curTotals.LostValue,
		CompositeScore:      currentScore.Score,
	})

	doc.ActionCenter = SynthesizeActions(ActionSignals{
		CancellationRatePct: cancellationRate,
		NoShowRatePct:       noShowRate,
		RevenueDeltaPct:     revenueDelta,
		DataQualityScore:    doc.DataQuality.Score,
		ForecastGapPct:      doc.Forecast.GapVsPreviousPct,
		Revenue:             curTotals.SuccessfulRevenue,
		LostBookingValue:    curTotals.LostValue,
		Appointments:        curTotals.Appointments,
	})

	return doc
}

// fillAggregates walks every normalized row once per aggregate dimension.
// Time buckets take only timestamp-resolvable rows; the geo tables take
// everything.
func fillAggregates(table *bucketTable, geoBusiness, geoOpportunity *geoTable, rows periodRows) {
	forBucket := func(r NormalizedRow, apply func(*Bucket)) {
		if r.TimestampMs > 0 {
			apply(table.at(r.TimestampMs))
		}
		apply(&geoBusiness.at(r).Bucket)
	}

	for _, r := range rows.leads {
		forBucket(r, func(b *Bucket) { b.Leads++ })
	}
	for _, r := range rows.calls {
		forBucket(r, func(b *Bucket) { b.Calls++ })
	}
	for _, r := range rows.conversations {
		forBucket(r, func(b *Bucket) { b.Conversations++ })
	}
	for _, r := range rows.appointments {
		cancelled := IsCancelled(r.Status)
		forBucket(r, func(b *Bucket) {
			b.Appointments++
			if cancelled {
				b.CancelledAppointments++
			}
		})
	}
	for _, r := range rows.transactions {
		if !IsSuccessfulTransaction(r.Status) {
			continue
		}
		amount := r.Amount
		forBucket(r, func(b *Bucket) { b.SuccessfulRevenue += amount })
	}
	for _, r := range rows.lostBookings {
		amount := r.Amount
		forBucket(r, func(b *Bucket) {
			b.LostCount++
			b.LostValue += amount
		})
		opp := geoOpportunity.at(r)
		opp.LostCount++
		opp.LostValue += amount
	}
}

func buildExecutive(cur, prev periodTotals, buckets []Bucket) Executive {
	kpi := func(key, label string, now, before float64) KPI {
		return KPI{
			Key:      key,
			Label:    label,
			Value:    round2(now),
			Prev:     round2(before),
			DeltaPct: finiteDelta(now, before),
		}
	}
	return Executive{
		KPIs: []KPI{
			kpi("leads", "Leads", float64(cur.Leads), float64(prev.Leads)),
			kpi("calls", "Calls", float64(cur.Calls), float64(prev.Calls)),
			kpi("missedCalls", "Missed calls", float64(cur.MissedCalls), float64(prev.MissedCalls)),
			kpi("conversations", "Conversations", float64(cur.Conversations), float64(prev.Conversations)),
			kpi("appointments", "Appointments", float64(cur.Appointments), float64(prev.Appointments)),
			kpi("cancelledAppointments", "Cancellations", float64(cur.CancelledAppointments), float64(prev.CancelledAppointments)),
			kpi("revenue", "Collected revenue", cur.SuccessfulRevenue, prev.SuccessfulRevenue),
			kpi("lostValue", "Lost booking value", cur.LostValue, prev.LostValue),
		},
		MissRatePct: ratioPct(float64(cur.MissedCalls), float64(cur.Calls)),
		Buckets:     buckets,
	}
}

func buildScoreSection(buckets []Bucket, current, previous BusinessScore) ScoreSection {
	base := BaselinesFor(buckets)
	trend := make([]BucketScore, 0, len(buckets))
	for _, b := range buckets {
		trend = append(trend, BucketScore{
			Key:   b.Key,
			Label: b.Label,
			Score: Score(b, base).Score,
		})
	}
	return ScoreSection{
		Current:  current,
		Previous: previous,
		Delta:    current.Score - previous.Score,
		Trend:    trend,
	}
}

func buildNorthStar(cur, prev periodTotals, buckets []Bucket) NorthStar {
	series := make([]SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, SeriesPoint{Key: b.Key, Value: round2(b.SuccessfulRevenue)})
	}
	return NorthStar{
		Metric:   "revenue",
		Current:  round2(cur.SuccessfulRevenue),
		Previous: round2(prev.SuccessfulRevenue),
		DeltaPct: finiteDelta(cur.SuccessfulRevenue, prev.SuccessfulRevenue),
		Series:   series,
	}
}

func funnelInputs(totals periodTotals, results map[string]sources.Result) FunnelInputs {
	return FunnelInputs{
		Impressions:   kpiValue(results, sources.SourceSearchConsole, "impressions") + kpiValue(results, sources.SourceAds, "impressions"),
		Clicks:        kpiValue(results, sources.SourceSearchConsole, "clicks") + kpiValue(results, sources.SourceAds, "clicks"),
		Leads:         float64(totals.Leads),
		Conversations: float64(totals.Conversations),
		Appointments:  float64(totals.Appointments),
		Revenue:       totals.SuccessfulRevenue,
		Transactions:  float64(totals.SuccessfulTx),
	}
}

func kpiValue(results map[string]sources.Result, source, key string) float64 {
	res, ok := results[source]
	if !ok || !res.OK || res.Payload.KPIs == nil {
		return 0
	}
	return res.Payload.KPIs[key]
}

const geoScoreTopN = 15

func buildGeoScores(t *geoTable) []GeoScore {
	aggs := t.all()
	siblings := make([]Bucket, 0, len(aggs))
	for _, a := range aggs {
		siblings = append(siblings, a.Bucket)
	}
	base := BaselinesFor(siblings)

	out := make([]GeoScore, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, GeoScore{
			Name:           a.Name,
			UniqueContacts: a.UniqueContacts,
			Leads:          a.Leads,
			Calls:          a.Calls,
			Appointments:   a.Appointments,
			Revenue:        round2(a.SuccessfulRevenue),
			Score:          Score(a.Bucket, base),
		})
	}
	// Rank before truncating so the cut keeps the strongest geographies,
	// not the alphabetically earliest.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.Score != out[j].Score.Score {
			return out[i].Score.Score > out[j].Score.Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > geoScoreTopN {
		out = out[:geoScoreTopN]
	}
	return out
}

const geoOpportunityTopN = 10

func buildGeoOpportunities(t *geoTable) []GeoOpportunity {
	ranked := t.rankedByLostValue()
	out := make([]GeoOpportunity, 0, len(ranked))
	for _, a := range ranked {
		if a.LostCount == 0 && a.LostValue == 0 {
			continue
		}
		out = append(out, GeoOpportunity{
			Name:           a.Name,
			LostCount:      a.LostCount,
			LostValue:      round2(a.LostValue),
			UniqueContacts: a.UniqueContacts,
		})
	}
	if len(out) > geoOpportunityTopN {
		out = out[:geoOpportunityTopN]
	}
	return out
}

func buildModules(snap sources.Snapshot) map[string]ModuleStatus {
	modules := make(map[string]ModuleStatus, len(snap.Current))
	for _, source := range []string{
		sources.SourceCalls,
		sources.SourceLeads,
		sources.SourceConversations,
		sources.SourceTransactions,
		sources.SourceAppointments,
		sources.SourceSearchConsole,
		sources.SourceSearchPerformance,
		sources.SourceAnalytics,
		sources.SourceAds,
	} {
		res := snap.Cur(source)
		modules[source] = ModuleStatus{
			OK:    res.OK,
			Total: res.Payload.Total,
			Error: res.Err,
		}
	}
	return modules
}

func pctOrZero(num, den float64) float64 {
	if p := ratioPct(num, den); p != nil {
		return *p
	}
	return 0
}

func (s *Service) cacheKey(p Params, cur timerange.TimeRange) string {
	if s.cache == nil {
		return ""
	}
	preset := p.Preset
	if preset == "" {
		preset = timerange.DefaultPreset
	}
	return s.cache.ReportKey("exec", preset,
		cur.Start.UTC().Format(time.RFC3339),
		cur.End.UTC().Format(time.RFC3339))
}

func (s *Service) fromCache(ctx context.Context, key string, force bool) *Report {
	if s.cache == nil || force || key == "" {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "report cache read failed")
		}
		return nil
	}
	var doc Report
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "report cache entry corrupt")
		}
		return nil
	}
	return &doc
}

func (s *Service) toCache(ctx context.Context, key string, doc *Report) {
	if s.cache == nil || key == "" || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "report cache write failed")
	}
}
