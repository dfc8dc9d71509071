package xapi

import (
	"bytes"
	"context"
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

// Client posts xAPI statements to a Learning Record Store over basic auth.
// Statements are posted one per request so the outcome carries per-item
// granularity.
type Client struct {
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	baseURL       string
}

// NewClient creates an LRS client scoped to one configuration and run.
func NewClient(config *domain.ChannelConfiguration, tokenProvider driven.TokenProvider) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       strings.TrimSuffix(config.BaseURL, "/"),
	}
}

// Code returns the channel code this client talks to.
func (c *Client) Code() domain.ChannelCode {
	return domain.ChannelCodeGeneric
}

// Send posts each statement in the chunk. Transport and auth errors fail
// the remaining items; a rejected statement fails only that item.
func (c *Client) Send(ctx context.Context, unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
	if unitType != domain.UnitTypeLearnerData {
		return nil, fmt.Errorf("%w: unit type %q", domain.ErrUnsupportedOperation, unitType)
	}

	creds, err := c.tokenProvider.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load LRS credentials: %w", err)
	}

	outcome := domain.NewChunkOutcome()
	for i, unit := range chunk.Units {
		key := unit.Unit.ItemKey

		status, body, err := c.post(ctx, creds, unit.Payload)
		if err != nil {
			detail := fmt.Sprintf("LRS request failed: %v", err)
			for _, rest := range chunk.Units[i:] {
				outcome.Failed[rest.Unit.ItemKey] = detail
			}
			return outcome, nil
		}

		switch {
		case status < 300:
			outcome.Succeeded[key] = true
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			detail := fmt.Sprintf("LRS rejected credentials (%d)", status)
			for _, rest := range chunk.Units[i:] {
				outcome.Failed[rest.Unit.ItemKey] = detail
			}
			return outcome, nil
		default:
			outcome.Failed[key] = fmt.Sprintf("LRS returned %d: %s", status, body)
		}
	}

	return outcome, nil
}

// Heartbeat validates credentials with a minimal statements query.
func (c *Client) Heartbeat(ctx context.Context) error {
	creds, err := c.tokenProvider.GetCredentials(ctx)
	if err != nil {
		return fmt.Errorf("LRS heartbeat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/xAPI/statements?limit=1", nil)
	if err != nil {
		return fmt.Errorf("LRS heartbeat: %w", err)
	}
	c.setHeaders(req, creds)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LRS heartbeat: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: LRS returned %d", domain.ErrAuthFailure, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("LRS heartbeat returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, creds *domain.Credentials, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/xAPI/statements", bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, creds)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, string(body), nil
}

func (c *Client) setHeaders(req *http.Request, creds *domain.Credentials) {
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("X-Experience-API-Version", "1.0.3")
}
