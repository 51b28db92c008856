package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/run"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

// RunListingParams defines the arguments for the run_listing tool
type RunListingParams struct {
	Code string `json:"code" jsonschema:"Code of the configured listing to crawl"`
}

// RunListingResult summarises one run
type RunListingResult struct {
	RunID        string    `json:"run_id"`
	Listing      string    `json:"listing"`
	Pages        int       `json:"pages"`
	Records      int       `json:"records"`
	Truncated    bool      `json:"truncated" jsonschema:"The page cap stopped the crawl early"`
	Bootstrapped bool      `json:"bootstrapped" jsonschema:"No previous snapshot existed; nothing was diffed"`
	Rotated      bool      `json:"rotated" jsonschema:"The previous snapshot was advanced"`
	NewJobs      []JobView `json:"new_jobs"`
	DurationMS   int64     `json:"duration_ms"`
}

type runListingTool struct {
	svc      run.Service
	listings []domain.Listing
	logger   *logging.Logger

	// snapshot slots assume a single writer, so runs never overlap
	mu *sync.Mutex
}

// WithRunListing registers the run_listing tool
func WithRunListing(svc run.Service, listings []domain.Listing) Option {
	return func(reg *registry) {
		t := runListingTool{
			svc:      svc,
			listings: listings,
			logger:   reg.logger,
			mu:       &sync.Mutex{},
		}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "run_listing",
			Description: "Crawl one configured listing, diff it against the previous snapshot and report new jobs",
		}, t.handle)
	}
}

func (t runListingTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params RunListingParams) (*sdkmcp.CallToolResult, RunListingResult, error) {
	code := strings.TrimSpace(params.Code)
	if code == "" {
		return nil, RunListingResult{}, fmt.Errorf("code is required")
	}

	listing, ok := findListing(t.listings, code)
	if !ok {
		return nil, RunListingResult{}, fmt.Errorf("unknown listing %q", code)
	}

	if t.svc == nil {
		return nil, RunListingResult{}, fmt.Errorf("run service not configured")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Info("run_listing request", "listing", code)

	rep, err := t.svc.Run(ctx, listing)
	if err != nil {
		t.logger.Error("run_listing: run failed", "listing", code, "err", err)
		return nil, RunListingResult{}, fmt.Errorf("run %s: %w", code, err)
	}

	result := RunListingResult{
		RunID:        rep.RunID.String(),
		Listing:      rep.Listing,
		Pages:        rep.Pages,
		Records:      rep.Records,
		Truncated:    rep.Truncated,
		Bootstrapped: rep.Bootstrapped,
		Rotated:      rep.Rotated,
		NewJobs:      jobViews(rep.NewJobs),
		DurationMS:   rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond).Milliseconds(),
	}

	msg := fmt.Sprintf("[run_listing] %s: %d page(s), %d record(s), %d new job(s)",
		code, result.Pages, result.Records, len(result.NewJobs))
	switch {
	case result.Bootstrapped:
		msg += "; baseline created"
	case result.Truncated:
		msg += "; page cap reached, results may be incomplete"
	}

	return textResult(msg), result, nil
}

func findListing(listings []domain.Listing, code string) (domain.Listing, bool) {
	for _, l := range listings {
		if l.Code == code {
			return l, true
		}
	}
	return domain.Listing{}, false
}
