package epso

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultBaseURL   = "https://eu-careers.europa.eu/en/job-opportunities/open-for-application"
	defaultPageParam = "page"
	defaultUserAgent = "listing-watch/1.0"
)

// NewClient instantiates a listing page client
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("epso: parse base url: %w", err)
	}

	pageParam := cfg.PageParam
	if pageParam == "" {
		pageParam = defaultPageParam
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		pageParam:  pageParam,
		userAgent:  userAgent,
		httpClient: httpClient,
	}, nil
}

// FetchPage downloads one page of the target listing. Any non-2xx status is
// returned as *StatusError; there is no retry.
func (c *Client) FetchPage(ctx context.Context, target Target, page int) (string, error) {
	if c == nil {
		return "", fmt.Errorf("epso: client is nil")
	}
	if page < 0 {
		return "", fmt.Errorf("epso: negative page index %d", page)
	}

	u, err := c.PageURL(target, page)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("epso: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("epso: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("epso: read body: %w", err)
	}

	return string(body), nil
}

// PageURL merges the target query and page index into the listing URL
func (c *Client) PageURL(target Target, page int) (string, error) {
	raw := c.baseURL
	if target.URL != "" {
		raw = target.URL
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("epso: parse listing url: %w", err)
	}

	values := u.Query()
	for k, v := range target.Query {
		values.Set(k, v)
	}
	values.Set(c.pageParam, strconv.Itoa(page))

	u.RawQuery = values.Encode()
	return u.String(), nil
}
