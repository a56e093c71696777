package report

import (
	"sort"
	"time"

	"github.com/oaklinehq/insights-backend/internal/timerange"
)

// Bucket is a time- or geo-keyed counter aggregate.
type Bucket struct {
	Key                   string  `json:"key"`
	Label                 string  `json:"label"`
	Leads                 int     `json:"leads"`
	Calls                 int     `json:"calls"`
	Conversations         int     `json:"conversations"`
	Appointments          int     `json:"appointments"`
	CancelledAppointments int     `json:"cancelledAppointments"`
	SuccessfulRevenue     float64 `json:"successfulRevenue"`
	LostCount             int     `json:"lostCount"`
	LostValue             float64 `json:"lostValue"`
}

// bucketTable is an explicit, request-scoped ordered table of time buckets.
// It is built fresh per request, never escapes it, and needs no locking.
type bucketTable struct {
	granularity timerange.Granularity
	buckets     map[int64]*Bucket
	starts      []int64
}

// newBucketTable prefills one bucket per granularity-aligned interval
// covering [r.Start, r.End), so the final series is contiguous even when a
// bucket collects no rows.
func newBucketTable(r timerange.TimeRange, g timerange.Granularity) *bucketTable {
	t := &bucketTable{
		granularity: g,
		buckets:     make(map[int64]*Bucket),
	}
	for cursor := bucketStart(r.Start, g); cursor.Before(r.End); cursor = nextBucket(cursor, g) {
		t.ensure(cursor.UnixMilli())
	}
	return t
}

// at returns the bucket owning the given row timestamp, creating it on
// first use for rows that fall outside the prefilled window.
func (t *bucketTable) at(timestampMs int64) *Bucket {
	start := bucketStart(time.UnixMilli(timestampMs), t.granularity).UnixMilli()
	return t.ensure(start)
}

func (t *bucketTable) ensure(startMs int64) *Bucket {
	if b, ok := t.buckets[startMs]; ok {
		return b
	}
	start := time.UnixMilli(startMs)
	b := &Bucket{
		Key:   bucketKey(start, t.granularity),
		Label: bucketLabel(start, t.granularity),
	}
	t.buckets[startMs] = b
	t.starts = append(t.starts, startMs)
	return b
}

// sorted returns the buckets ascending by key.
func (t *bucketTable) sorted() []Bucket {
	sort.Slice(t.starts, func(i, j int) bool { return t.starts[i] < t.starts[j] })
	out := make([]Bucket, 0, len(t.starts))
	for _, s := range t.starts {
		out = append(out, *t.buckets[s])
	}
	return out
}

// bucketStart aligns t to its bucket boundary: local midnight for days,
// the preceding Monday for weeks, the first of the month for months.
func bucketStart(t time.Time, g timerange.Granularity) time.Time {
	switch g {
	case timerange.GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // Monday-aligned
		return day.AddDate(0, 0, -offset)
	case timerange.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func nextBucket(t time.Time, g timerange.Granularity) time.Time {
	switch g {
	case timerange.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case timerange.GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketKey(start time.Time, g timerange.Granularity) string {
	if g == timerange.GranularityMonth {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

func bucketLabel(start time.Time, g timerange.Granularity) string {
	switch g {
	case timerange.GranularityWeek:
		return "Week of " + start.Format("Jan 2")
	case timerange.GranularityMonth:
		return start.Format("January 2006")
	default:
		return start.Format("Jan 2")
	}
}
