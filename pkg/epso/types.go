package epso

import (
	"fmt"
	"net/http"
)

// Config defines listing client settings
type Config struct {
	BaseURL    string
	PageParam  string
	UserAgent  string
	HTTPClient *http.Client
}

// Client fetches listing pages over HTTP
type Client struct {
	baseURL    string
	pageParam  string
	userAgent  string
	httpClient *http.Client
}

// Target selects one listing: an optional URL override plus its category query
type Target struct {
	URL   string
	Query map[string]string
}

// StatusError is returned when the listing site answers with a non-2xx status
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("epso: unexpected status %d for %s", e.StatusCode, e.URL)
}

// ParserConfig holds the selectors describing the listing markup
type ParserConfig struct {
	TableMarker      string // cheap textual check for a results table
	RowSelector      string
	TitleSelector    string // link cell; its text is the title and href the link
	DomainSelector   string
	GradeSelector    string
	InstitutionSel   string
	LocationSelector string
	DeadlineSelector string
	NextSelectors    []string
}

// Row is one result row as it appears on the page
type Row struct {
	Title       string
	Href        string
	Domain      string
	Grade       string
	Institution string
	Location    string
	Deadline    string
}

// FieldError reports a result row that is missing an expected column
type FieldError struct {
	Row   int
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("epso: row %d: missing %s", e.Row, e.Field)
}
