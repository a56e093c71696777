package reports

import (
	"net/http"
	"strings"

	"github.com/oaklinehq/insights-backend/api/validators"
	"github.com/oaklinehq/insights-backend/internal/report"
	pkgerrors "github.com/oaklinehq/insights-backend/pkg/errors"
)

// executiveQuery is the validated inbound query surface.
type executiveQuery struct {
	Preset   string `json:"preset" validate:"omitempty,oneof=today 7d 14d 28d 90d 180d 365d custom"`
	Start    string `json:"start"`
	End      string `json:"end"`
	AdsRange string `json:"adsRange" validate:"omitempty,oneof=today 7d 14d 28d 90d 180d 365d"`
	Force    bool   `json:"force"`
}

func parseExecutiveParams(r *http.Request) (report.Params, error) {
	query := r.URL.Query()
	q := executiveQuery{
		Preset:   strings.ToLower(strings.TrimSpace(query.Get("preset"))),
		Start:    strings.TrimSpace(query.Get("start")),
		End:      strings.TrimSpace(query.Get("end")),
		AdsRange: strings.ToLower(strings.TrimSpace(query.Get("adsRange"))),
		Force:    validators.ParseQueryBool(r, "force"),
	}

	if err := validators.ValidateStruct(&q); err != nil {
		return report.Params{}, err
	}

	// Custom presets must carry both bounds; the reverse also holds so a
	// stray start/end cannot silently shadow a preset window.
	hasBounds := q.Start != "" || q.End != ""
	if q.Preset == "custom" && !hasBounds {
		return report.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "custom preset requires start and end")
	}
	if q.Preset != "custom" && hasBounds {
		q.Preset = "custom"
	}

	return report.Params{
		Preset:    q.Preset,
		StartRaw:  q.Start,
		EndRaw:    q.End,
		AdsPreset: q.AdsRange,
		Force:     q.Force,
	}, nil
}
