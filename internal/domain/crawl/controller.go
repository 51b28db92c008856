// Package crawl walks a paginated listing until it runs out of results.
package crawl

import (
	"context"
	"fmt"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

// DefaultMaxPages bounds a crawl against a source that never stops offering a next page
const DefaultMaxPages = 100

// Fetcher downloads one page of a listing that is already bound to its target
type Fetcher interface {
	Fetch(ctx context.Context, page int) (string, error)
}

// Parser inspects raw page markup
type Parser interface {
	// HasResultsTable is a cheap check on the raw markup, done before parsing
	HasResultsTable(raw string) bool

	Parse(raw string) (Document, error)
}

// Document is one parsed page
type Document interface {
	HasNextPageLink() bool
	ExtractRecords() ([]domain.JobRecord, error)
}

// PageHook observes every fetched page before it is inspected
type PageHook func(ctx context.Context, page int, raw string)

// Result is everything gathered by one crawl
type Result struct {
	Records   []domain.JobRecord
	Pages     int  // pages fetched
	Truncated bool // the page cap stopped the crawl
}

// Option configures Controller
type Option func(*Controller)

// WithMaxPages lowers the page cap; values above DefaultMaxPages are clamped to it
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		switch {
		case n > DefaultMaxPages:
			c.maxPages = DefaultMaxPages
		case n > 0:
			c.maxPages = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPageHook registers a hook called with every fetched page
func WithPageHook(hook PageHook) Option {
	return func(c *Controller) {
		c.hook = hook
	}
}

// Controller drives a Fetcher and Parser across increasing page indices
type Controller struct {
	parser   Parser
	maxPages int
	logger   *logging.Logger
	hook     PageHook
}

// NewController builds a Controller around parser
func NewController(parser Parser, opts ...Option) (*Controller, error) {
	if parser == nil {
		return nil, fmt.Errorf("crawl.Controller: parser is required")
	}

	c := &Controller{
		parser:   parser,
		maxPages: DefaultMaxPages,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MaxPages returns the configured page cap
func (c *Controller) MaxPages() int {
	return c.maxPages
}

// Crawl fetches pages starting at 0 until a page has no results table, a page
// has no next link, or the page cap is reached. Pages are visited strictly in
// order since each page decides whether another one exists.
func (c *Controller) Crawl(ctx context.Context, fetcher Fetcher) (Result, error) {
	if fetcher == nil {
		return Result{}, fmt.Errorf("crawl: fetcher is required")
	}

	var res Result

	for page := 0; ; page++ {
		if page >= c.maxPages {
			c.logger.Warn("page cap reached, results may be incomplete",
				"max_pages", c.maxPages,
				"records", len(res.Records),
			)
			res.Truncated = true
			break
		}

		raw, err := fetcher.Fetch(ctx, page)
		if err != nil {
			return Result{}, fmt.Errorf("crawl: fetch page %d: %w", page, err)
		}
		res.Pages++

		if c.hook != nil {
			c.hook(ctx, page, raw)
		}

		if !c.parser.HasResultsTable(raw) {
			c.logger.Debug("no results table, stopping", "page", page)
			break
		}

		doc, err := c.parser.Parse(raw)
		if err != nil {
			return Result{}, fmt.Errorf("crawl: parse page %d: %w", page, err)
		}

		records, err := doc.ExtractRecords()
		if err != nil {
			return Result{}, fmt.Errorf("crawl: extract page %d: %w", page, err)
		}
		res.Records = append(res.Records, records...)

		c.logger.Debug("page crawled", "page", page, "records", len(records))

		if !doc.HasNextPageLink() {
			break
		}
	}

	return res, nil
}
