package canvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChannelClient = (*Client)(nil)

// Client talks to the Canvas REST API for one configuration. Canvas accepts
// one course or one grade override per request, so a chunk is transmitted
// item by item and the outcome carries per-item granularity.
type Client struct {
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	baseURL       string
	accountID     string
}

// NewClient creates a Canvas client scoped to one configuration and run.
func NewClient(config *domain.ChannelConfiguration, tokenProvider driven.TokenProvider) *Client {
	accountID := config.Extra["account_id"]
	if accountID == "" {
		accountID = "self"
	}
	return &Client{
		tokenProvider: tokenProvider,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       strings.TrimSuffix(config.BaseURL, "/"),
		accountID:     accountID,
	}
}

// Code returns the channel code this client talks to.
func (c *Client) Code() domain.ChannelCode {
	return domain.ChannelCodeCanvas
}

// Send transmits one chunk item by item. Transport and auth errors fail the
// remaining items with the same detail; per-item rejections fail only that
// item. Every item in the chunk appears in the outcome.
func (c *Client) Send(ctx context.Context, unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
	path, err := c.endpoint(unitType)
	if err != nil {
		return nil, err
	}

	outcome := domain.NewChunkOutcome()
	for i, unit := range chunk.Units {
		key := unit.Unit.ItemKey

		status, body, err := c.post(ctx, path, unit.Payload)
		if err != nil {
			detail := fmt.Sprintf("canvas request failed: %v", err)
			c.failRemaining(outcome, chunk, i, detail)
			return outcome, nil
		}

		switch {
		case status < 300:
			outcome.Succeeded[key] = true
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			detail := fmt.Sprintf("canvas rejected credentials (%d): %s", status, truncate(body))
			c.failRemaining(outcome, chunk, i, detail)
			return outcome, nil
		default:
			outcome.Failed[key] = fmt.Sprintf("canvas returned %d: %s", status, truncate(body))
		}
	}

	return outcome, nil
}

// failRemaining fails the units from index from onward with the same detail.
func (c *Client) failRemaining(outcome *domain.ChunkOutcome, chunk *domain.TransmissionChunk, from int, detail string) {
	for _, unit := range chunk.Units[from:] {
		outcome.Failed[unit.Unit.ItemKey] = detail
	}
}

func (c *Client) endpoint(unitType domain.UnitType) (string, error) {
	switch unitType {
	case domain.UnitTypeContentMetadata:
		return fmt.Sprintf("/api/v1/accounts/%s/courses", c.accountID), nil
	case domain.UnitTypeLearnerData:
		return fmt.Sprintf("/api/v1/accounts/%s/grade_overrides", c.accountID), nil
	default:
		return "", fmt.Errorf("%w: unit type %q", domain.ErrUnsupportedOperation, unitType)
	}
}

// Heartbeat validates credentials with the cheapest authenticated read.
func (c *Client) Heartbeat(ctx context.Context) error {
	token, err := c.tokenProvider.GetAccessToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailure) {
			return err
		}
		return fmt.Errorf("canvas heartbeat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/accounts/"+c.accountID, nil)
	if err != nil {
		return fmt.Errorf("canvas heartbeat: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("canvas heartbeat: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: canvas returned %d", domain.ErrAuthFailure, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("canvas heartbeat returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (int, string, error) {
	token, err := c.tokenProvider.GetAccessToken(ctx)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}

func truncate(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
