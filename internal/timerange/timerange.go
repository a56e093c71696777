package timerange

import (
	"strings"
	"time"

	pkgerrors "github.com/oaklinehq/insights-backend/pkg/errors"
)

// TimeRange is an absolute reporting window. End is exclusive and must sit
// strictly after Start.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsZero reports whether the range carries no bounds.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Granularity is the bucket time unit chosen from the requested range.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	PresetToday  = "today"
	Preset7d     = "7d"
	Preset14d    = "14d"
	Preset28d    = "28d"
	Preset90d    = "90d"
	Preset180d   = "180d"
	Preset365d   = "365d"
	PresetCustom = "custom"

	// DefaultPreset is applied when the request names no preset.
	DefaultPreset = Preset28d
)

var presetDays = map[string]int{
	Preset7d:   7,
	Preset14d:  14,
	Preset28d:  28,
	Preset90d:  90,
	Preset180d: 180,
	Preset365d: 365,
}

// KnownPreset reports whether the token names a supported shortcut.
func KnownPreset(preset string) bool {
	if preset == PresetToday || preset == PresetCustom {
		return true
	}
	_, ok := presetDays[preset]
	return ok
}

var boundLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve turns a preset token (plus optional explicit bounds for "custom")
// into an absolute window ending at now. Malformed custom bounds are an
// input error; nothing is computed from them.
func Resolve(preset, startRaw, endRaw string, now time.Time) (TimeRange, error) {
	preset = strings.TrimSpace(strings.ToLower(preset))
	if preset == "" {
		preset = DefaultPreset
	}

	switch {
	case preset == PresetToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return TimeRange{Start: start, End: now}, nil
	case preset == PresetCustom:
		return resolveCustom(startRaw, endRaw)
	default:
		days, ok := presetDays[preset]
		if !ok {
			return TimeRange{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown range preset: "+preset)
		}
		return TimeRange{Start: now.AddDate(0, 0, -days), End: now}, nil
	}
}

func resolveCustom(startRaw, endRaw string) (TimeRange, error) {
	start, ok := parseBound(startRaw)
	if !ok {
		return TimeRange{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid start timestamp")
	}
	end, ok := parseBound(endRaw)
	if !ok {
		return TimeRange{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid end timestamp")
	}
	if !end.After(start) {
		return TimeRange{}, pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return TimeRange{Start: start, End: end}, nil
}

func parseBound(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Comparison returns the window of identical duration ending exactly at
// r.Start. ok is false (an empty marker, not an error) when the range
// cannot anchor a comparison.
func Comparison(r TimeRange) (TimeRange, bool) {
	if !r.End.After(r.Start) {
		return TimeRange{}, false
	}
	d := r.Duration()
	return TimeRange{Start: r.Start.Add(-d), End: r.Start}, true
}

const (
	maxDayGranularitySpan  = 45 * 24 * time.Hour
	maxWeekGranularitySpan = 180 * 24 * time.Hour
)

// ResolveGranularity picks the bucket unit as a pure function of
// (preset, start, end).
func ResolveGranularity(preset string, r TimeRange) Granularity {
	switch preset {
	case PresetToday, Preset7d, Preset14d, Preset28d:
		return GranularityDay
	case Preset90d, Preset180d:
		return GranularityWeek
	case Preset365d:
		return GranularityMonth
	}

	span := r.Duration()
	switch {
	case span <= maxDayGranularitySpan:
		return GranularityDay
	case span <= maxWeekGranularitySpan:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}
