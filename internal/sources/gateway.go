package sources

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/oaklinehq/insights-backend/internal/timerange"
	"github.com/oaklinehq/insights-backend/pkg/config"
	"github.com/oaklinehq/insights-backend/pkg/logger"
	"github.com/oaklinehq/insights-backend/pkg/metrics"
)

// Gateway issues every outbound collaborator call for one report build.
//
// Wave one dispatches the independent row sources fully concurrently. Wave
// two walks the rate-limit-sensitive external joins strictly sequentially
// with a fixed inter-call delay. The sequencing in wave two is a
// correctness requirement against upstream throttling, not a performance
// choice.
type Gateway struct {
	client  *Client
	cfg     config.SourcesConfig
	logg    *logger.Logger
	metrics *metrics.SourceMetrics
}

// FetchOptions carries per-build overrides.
type FetchOptions struct {
	// AdsRange, when set, replaces the current window for the ads join only.
	AdsRange *timerange.TimeRange
}

// NewGateway wires the gateway.
func NewGateway(client *Client, cfg config.SourcesConfig, logg *logger.Logger, m *metrics.SourceMetrics) *Gateway {
	if client == nil {
		client = NewClient()
	}
	return &Gateway{client: client, cfg: cfg, logg: logg, metrics: m}
}

type fetchJob struct {
	source   string
	url      string
	window   timerange.TimeRange
	dest     *Result
	previous bool
}

// FetchAll resolves one Result per (source, window). It never returns an
// error: every failure is captured inside the Snapshot.
func (g *Gateway) FetchAll(ctx context.Context, cur timerange.TimeRange, prev timerange.TimeRange, hasPrev bool, opts FetchOptions) Snapshot {
	snap := Snapshot{
		Current:  make(map[string]Result),
		Previous: make(map[string]Result),
	}

	firstWave := []struct {
		source string
		url    string
	}{
		{SourceCalls, g.cfg.CallsURL},
		{SourceLeads, g.cfg.LeadsURL},
		{SourceConversations, g.cfg.ConversationsURL},
		{SourceTransactions, g.cfg.TransactionsURL},
		{SourceAppointments, g.cfg.AppointmentsURL},
	}

	// Each job owns a disjoint destination slot, so the group needs no lock.
	var jobs []fetchJob
	for _, s := range firstWave {
		jobs = append(jobs, fetchJob{source: s.source, url: s.url, window: cur, dest: new(Result), previous: false})
		if hasPrev {
			jobs = append(jobs, fetchJob{source: s.source, url: s.url, window: prev, dest: new(Result), previous: true})
		}
	}

	var group errgroup.Group
	var waveErr error
	for i := range jobs {
		job := jobs[i]
		group.Go(func() error {
			*job.dest = g.fetchOne(ctx, job.source, job.url, job.window)
			return nil
		})
	}
	// Goroutines never return an error; failures land on job.dest and are
	// folded into waveErr below.
	_ = group.Wait()

	for _, job := range jobs {
		if job.previous {
			snap.Previous[job.source] = *job.dest
		} else {
			snap.Current[job.source] = *job.dest
		}
		if !job.dest.OK {
			waveErr = multierr.Append(waveErr, fmt.Errorf("%s: %s", job.source, job.dest.Err))
		}
	}
	if waveErr != nil {
		g.warnWave(ctx, "wave1", waveErr)
	}

	g.secondWave(ctx, snap, cur, prev, hasPrev, opts)

	return snap
}

func (g *Gateway) secondWave(ctx context.Context, snap Snapshot, cur, prev timerange.TimeRange, hasPrev bool, opts FetchOptions) {
	delay := g.cfg.SecondWaveDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	adsCur := cur
	if opts.AdsRange != nil {
		adsCur = *opts.AdsRange
	}

	secondWave := []struct {
		source string
		url    string
		cur    timerange.TimeRange
	}{
		{SourceSearchConsole, g.cfg.SearchConsoleURL, cur},
		{SourceSearchPerformance, g.cfg.SearchPerformanceURL, cur},
		{SourceAnalytics, g.cfg.AnalyticsURL, cur},
		{SourceAds, g.cfg.AdsURL, adsCur},
	}

	var waveErr error
	for _, s := range secondWave {
		if err := limiter.Wait(ctx); err != nil {
			snap.Current[s.source] = Failed(0, fmt.Sprintf("pacing interrupted: %v", err))
			continue
		}
		res := g.fetchSecondWaveSource(ctx, s.source, s.url, s.cur)
		snap.Current[s.source] = res
		if !res.OK {
			waveErr = multierr.Append(waveErr, fmt.Errorf("%s: %s", s.source, res.Err))
		}

		if !hasPrev {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			snap.Previous[s.source] = Failed(0, fmt.Sprintf("pacing interrupted: %v", err))
			continue
		}
		prevRes := g.fetchOne(ctx, s.source, s.url, prev)
		snap.Previous[s.source] = prevRes
		if !prevRes.OK {
			waveErr = multierr.Append(waveErr, fmt.Errorf("%s (prev): %s", s.source, prevRes.Err))
		}
	}
	if waveErr != nil {
		g.warnWave(ctx, "wave2", waveErr)
	}
}

// fetchSecondWaveSource handles the search-performance special cases: the
// side sync triggers fire first, and a not-ok first attempt earns exactly
// one retry. No other collaborator is retried.
func (g *Gateway) fetchSecondWaveSource(ctx context.Context, source, url string, window timerange.TimeRange) Result {
	if source != SourceSearchPerformance {
		return g.fetchOne(ctx, source, url, window)
	}

	for _, syncURL := range g.cfg.SearchIndexSyncURLs {
		if err := g.client.Trigger(ctx, syncURL); err != nil && g.logg != nil {
			g.logg.Warn(g.logg.WithField(ctx, "sync_url", syncURL), "search index sync trigger failed")
		}
	}

	res := g.fetchOne(ctx, source, url, window)
	if res.OK {
		return res
	}
	if g.logg != nil {
		g.logg.Warn(g.logg.WithSource(ctx, source), "retrying search performance join")
	}
	return g.fetchOne(ctx, source, url, window)
}

func (g *Gateway) fetchOne(ctx context.Context, source, url string, window timerange.TimeRange) Result {
	start := time.Now()
	res := g.client.Fetch(ctx, url, window)
	g.metrics.ObserveCall(source, time.Since(start))
	if res.OK {
		g.metrics.IncSuccess(source)
	} else {
		g.metrics.IncFailure(source)
	}
	return res
}

func (g *Gateway) warnWave(ctx context.Context, wave string, err error) {
	if g.logg == nil || err == nil {
		return
	}
	ctx = g.logg.WithFields(ctx, map[string]any{
		"wave":  wave,
		"error": err.Error(),
	})
	g.logg.Warn(ctx, "collaborator wave completed with failures")
}
