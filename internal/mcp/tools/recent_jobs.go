package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

const maxRecentJobs = 200

// JobReader loads persisted jobs
type JobReader interface {
	FindByListing(ctx context.Context, code string, limit int) ([]domain.Job, error)
}

// RecentJobsParams defines the arguments for the recent_jobs tool
type RecentJobsParams struct {
	Code  string `json:"code" jsonschema:"Listing code"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of jobs, newest first (default 20)"`
}

type RecentJobsResult struct {
	Jobs []JobView `json:"jobs"`
}

type recentJobsTool struct {
	reader JobReader
}

// WithRecentJobs registers the recent_jobs tool; a nil reader registers nothing
func WithRecentJobs(reader JobReader) Option {
	if reader == nil {
		return nil
	}
	return func(reg *registry) {
		t := recentJobsTool{reader: reader}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "recent_jobs",
			Description: "Read the most recently discovered jobs of a listing from the graph store",
		}, t.handle)
	}
}

func (t recentJobsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params RecentJobsParams) (*sdkmcp.CallToolResult, RecentJobsResult, error) {
	code := strings.TrimSpace(params.Code)
	if code == "" {
		return nil, RecentJobsResult{}, fmt.Errorf("code is required")
	}

	limit := params.Limit
	if limit > maxRecentJobs {
		limit = maxRecentJobs
	}

	jobs, err := t.reader.FindByListing(ctx, code, limit)
	if err != nil {
		return nil, RecentJobsResult{}, fmt.Errorf("failed to load jobs: %w", err)
	}

	result := RecentJobsResult{Jobs: jobViews(jobs)}
	return textResult(fmt.Sprintf("[recent_jobs] %d job(s) for %s", len(result.Jobs), code)), result, nil
}
