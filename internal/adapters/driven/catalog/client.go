// Package catalog talks to the central learning platform's internal APIs.
// It is the data source the payload builder normalizes from.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DataSource = (*Client)(nil)

// Client provides catalog and learner-progress reads from the platform API.
type Client struct {
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	baseURL       string
	maxRetries    int
}

// NewClient creates a new platform API client.
func NewClient(tokenProvider driven.TokenProvider, baseURL string) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		maxRetries:    3,
	}
}

// page is the platform's standard paginated envelope.
type page[T any] struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

// FetchContentCatalog returns the customer's exportable catalog items.
func (c *Client) FetchContentCatalog(ctx context.Context, customerID string) ([]*domain.ContentRecord, error) {
	path := fmt.Sprintf("/api/v1/customers/%s/catalog/?page_size=100", url.PathEscape(customerID))

	var records []*domain.ContentRecord
	for path != "" {
		resp, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return nil, err
		}

		var pg page[*domain.ContentRecord]
		err = json.NewDecoder(resp.Body).Decode(&pg)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode catalog page: %w", err)
		}

		records = append(records, pg.Results...)
		path, err = relativize(pg.Next)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// FetchLearnerProgress returns learner progress events modified since the
// given time. A zero time means all events.
func (c *Client) FetchLearnerProgress(ctx context.Context, customerID string, since time.Time) ([]*domain.ProgressRecord, error) {
	path := fmt.Sprintf("/api/v1/customers/%s/learner-progress/?page_size=100", url.PathEscape(customerID))
	if !since.IsZero() {
		path += "&modified_since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}

	var records []*domain.ProgressRecord
	for path != "" {
		resp, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return nil, err
		}

		var pg page[*domain.ProgressRecord]
		err = json.NewDecoder(resp.Body).Decode(&pg)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode progress page: %w", err)
		}

		records = append(records, pg.Results...)
		path, err = relativize(pg.Next)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// relativize turns the API's absolute "next" URL into a path for doRequest.
// An empty next means the last page.
func relativize(next string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse next page URL: %w", err)
	}
	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	token, err := c.tokenProvider.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	var resp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		// Success or non-retryable error
		if resp.StatusCode < 500 {
			break
		}

		// Server error - retry with exponential backoff
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("platform API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
