package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// ListListingsParams takes no arguments
type ListListingsParams struct{}

// ListingView describes one configured listing
type ListingView struct {
	Code         string            `json:"code"`
	Name         string            `json:"name,omitempty"`
	URL          string            `json:"url,omitempty"`
	PositionType string            `json:"position_type,omitempty"`
	Query        map[string]string `json:"query,omitempty"`
}

type ListListingsResult struct {
	Listings []ListingView `json:"listings"`
}

// WithListListings registers the list_listings tool
func WithListListings(listings []domain.Listing) Option {
	return func(reg *registry) {
		result := ListListingsResult{Listings: make([]ListingView, 0, len(listings))}
		for _, l := range listings {
			result.Listings = append(result.Listings, ListingView{
				Code:         l.Code,
				Name:         l.Name,
				URL:          l.URL,
				PositionType: string(l.PositionType),
				Query:        l.Query,
			})
		}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_listings",
			Description: "List the listing categories this server watches",
		}, func(context.Context, *sdkmcp.CallToolRequest, ListListingsParams) (*sdkmcp.CallToolResult, ListListingsResult, error) {
			return textResult(fmt.Sprintf("[list_listings] %d listing(s) configured", len(result.Listings))), result, nil
		})
	}
}
