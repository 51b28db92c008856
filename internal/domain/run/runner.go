package run

import (
	"context"
	"fmt"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

// Runner runs a set of listings one after another
type Runner struct {
	svc    Service
	logger *logging.Logger
}

// NewRunner wraps svc
func NewRunner(svc Service, logger *logging.Logger) (*Runner, error) {
	if svc == nil {
		return nil, fmt.Errorf("run.Runner: service is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{svc: svc, logger: logger}, nil
}

// RunAll stops at the first failing listing and returns the reports gathered so far
func (r *Runner) RunAll(ctx context.Context, listings []domain.Listing) ([]domain.RunReport, error) {
	reports := make([]domain.RunReport, 0, len(listings))

	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		rep, err := r.svc.Run(ctx, l)
		if err != nil {
			r.logger.Error("listing run failed", "listing", l.Code, "err", err)
			return reports, err
		}
		reports = append(reports, rep)
	}

	return reports, nil
}
