package tools

import (
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// JobView is the wire form of a persisted job
type JobView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Href         string `json:"href"`
	Domain       string `json:"domain,omitempty"`
	Grade        string `json:"grade,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Location     string `json:"location,omitempty"`
	Deadline     string `json:"deadline,omitempty"`
	ListingCode  string `json:"listing_code"`
	PositionType string `json:"position_type,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func jobViews(jobs []domain.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		v := JobView{
			ID:           j.ID.String(),
			Title:        j.Title,
			Href:         j.Href,
			Domain:       j.Domain,
			Grade:        j.Grade,
			Institution:  j.Institution,
			Location:     j.Location,
			Deadline:     j.Deadline,
			ListingCode:  j.ListingCode,
			PositionType: string(j.PositionType),
		}
		if !j.CreatedAt.IsZero() {
			v.CreatedAt = j.CreatedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out
}
