// Package epso adapts the EU careers client and parser to the crawl interfaces.
package epso

import (
	"context"
	"fmt"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
	"github.com/honeycarbs/listing-watch/pkg/epso"
)

// PageClient is the subset of *epso.Client the source needs
type PageClient interface {
	FetchPage(ctx context.Context, target epso.Target, page int) (string, error)
}

// Source binds listings to page fetchers
type Source struct {
	client PageClient
}

// NewSource wraps client
func NewSource(client PageClient) (*Source, error) {
	if client == nil {
		return nil, fmt.Errorf("epso.Source: client is required")
	}
	return &Source{client: client}, nil
}

// Name identifies the source
func (s *Source) Name() string {
	return "epso"
}

// Fetcher returns a crawl.Fetcher bound to the listing's URL and query
func (s *Source) Fetcher(listing domain.Listing) crawl.Fetcher {
	return &fetcher{
		client: s.client,
		target: epso.Target{URL: listing.URL, Query: listing.Query},
	}
}

type fetcher struct {
	client PageClient
	target epso.Target
}

func (f *fetcher) Fetch(ctx context.Context, page int) (string, error) {
	return f.client.FetchPage(ctx, f.target, page)
}

// Parser adapts *epso.Parser to crawl.Parser
type Parser struct {
	p *epso.Parser
}

// NewParser wraps p, falling back to the default selectors when p is nil
func NewParser(p *epso.Parser) *Parser {
	if p == nil {
		p = epso.NewParser(epso.DefaultParserConfig())
	}
	return &Parser{p: p}
}

func (p *Parser) HasResultsTable(raw string) bool {
	return p.p.HasResultsTable(raw)
}

func (p *Parser) Parse(raw string) (crawl.Document, error) {
	page, err := p.p.Parse(raw)
	if err != nil {
		return nil, err
	}
	return document{page: page}, nil
}

type document struct {
	page *epso.Page
}

func (d document) HasNextPageLink() bool {
	return d.page.HasNextPageLink()
}

func (d document) ExtractRecords() ([]domain.JobRecord, error) {
	rows, err := d.page.ExtractRows()
	if err != nil {
		return nil, err
	}

	records := make([]domain.JobRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, toRecord(r))
	}
	return records, nil
}

func toRecord(r epso.Row) domain.JobRecord {
	return domain.JobRecord{
		Title:       r.Title,
		Href:        r.Href,
		Domain:      r.Domain,
		Grade:       r.Grade,
		Institution: r.Institution,
		Location:    r.Location,
		Deadline:    r.Deadline,
	}
}
