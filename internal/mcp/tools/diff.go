package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/snapshot"
)

// DiffSnapshotsParams defines the arguments for the diff_snapshots tool
type DiffSnapshotsParams struct {
	Previous string `json:"previous" jsonschema:"Baseline snapshot text, one canonical line per job"`
	Latest   string `json:"latest" jsonschema:"Newer snapshot text"`
}

type DiffSnapshotsResult struct {
	Added []domain.JobRecord `json:"added"`
	Hunks int                `json:"hunks" jsonschema:"Number of inserted hunks found by the line diff"`
}

type diffSnapshotsTool struct {
	codec snapshot.Codec
}

// WithDiffSnapshots registers the diff_snapshots tool
func WithDiffSnapshots(codec snapshot.Codec) Option {
	return func(reg *registry) {
		t := diffSnapshotsTool{codec: codec}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "diff_snapshots",
			Description: "Return the jobs present in the latest snapshot but not in the previous one; line order is ignored",
		}, t.handle)
	}
}

func (t diffSnapshotsTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params DiffSnapshotsParams) (*sdkmcp.CallToolResult, DiffSnapshotsResult, error) {
	hunks := t.codec.AddedHunks(params.Previous, params.Latest)
	result := DiffSnapshotsResult{
		Added: t.codec.HunkRecords(hunks),
		Hunks: len(hunks),
	}
	if result.Added == nil {
		result.Added = []domain.JobRecord{}
	}

	return textResult(fmt.Sprintf("[diff_snapshots] %d added record(s) in %d hunk(s)", len(result.Added), result.Hunks)), result, nil
}
