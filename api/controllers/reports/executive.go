package reports

import (
	"context"
	"net/http"

	"github.com/oaklinehq/insights-backend/api/responses"
	"github.com/oaklinehq/insights-backend/internal/report"
	"github.com/oaklinehq/insights-backend/pkg/logger"
)

// Builder is the report-service surface this controller depends on.
type Builder interface {
	Build(ctx context.Context, p report.Params) (*report.Report, error)
}

// Executive serves the consolidated executive report.
func Executive(service Builder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := parseExecutiveParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		doc, err := service.Build(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}
