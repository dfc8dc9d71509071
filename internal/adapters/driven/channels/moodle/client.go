package moodle

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
var _ driven.ChannelClient = (*Client)(nil)

const wsPath = "/webservice/rest/server.php"

// Client talks to the Moodle webservice API for one configuration. Moodle
// answers a batched function call with a single result, so a chunk succeeds
// or fails as a whole.
type Client struct {
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	baseURL       string
	courseFn      string
	completionFn  string
}

// NewClient creates a Moodle client scoped to one configuration and run.
// The webservice function names default to the core course API but can be
// overridden for sites with a custom sync plugin.
func NewClient(config *domain.ChannelConfiguration, tokenProvider driven.TokenProvider) *Client {
	courseFn := config.Extra["course_function"]
	if courseFn == "" {
		courseFn = "core_course_create_courses"
	}
	completionFn := config.Extra["completion_function"]
	if completionFn == "" {
		completionFn = "core_completion_update_activity_completion_status_manually"
	}
	return &Client{
		tokenProvider: tokenProvider,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       strings.TrimSuffix(config.BaseURL, "/"),
		courseFn:      courseFn,
		completionFn:  completionFn,
	}
}

// Code returns the channel code this client talks to.
func (c *Client) Code() domain.ChannelCode {
	return domain.ChannelCodeMoodle
}

// Send transmits one chunk as a single webservice call. Moodle gives no
// per-item response, so the whole chunk succeeds or every item fails with
// the same detail.
func (c *Client) Send(ctx context.Context, unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
	var fn, collection string
	switch unitType {
	case domain.UnitTypeContentMetadata:
		fn, collection = c.courseFn, "courses"
	case domain.UnitTypeLearnerData:
		fn, collection = c.completionFn, "completions"
	default:
		return nil, fmt.Errorf("%w: unit type %q", domain.ErrUnsupportedOperation, unitType)
	}

	params, err := chunkParams(chunk, collection)
	if err != nil {
		return nil, err
	}

	outcome := domain.NewChunkOutcome()

	wsErr, err := c.call(ctx, fn, params)
	if err != nil {
		outcome.FailAll(chunk, fmt.Sprintf("moodle request failed: %v", err))
		return outcome, nil
	}
	if wsErr != "" {
		outcome.FailAll(chunk, wsErr)
		return outcome, nil
	}

	outcome.SucceedAll(chunk)
	return outcome, nil
}

// chunkParams expands each unit's flat field object into Moodle's indexed
// form parameters, e.g. courses[0][fullname].
func chunkParams(chunk *domain.TransmissionChunk, collection string) (url.Values, error) {
	params := url.Values{}
	for i, unit := range chunk.Units {
		var fields map[string]string
		if err := json.Unmarshal(unit.Payload, &fields); err != nil {
			return nil, &domain.SerializationError{ItemKey: unit.Unit.ItemKey, Reason: err.Error()}
		}
		for field, value := range fields {
			params.Set(fmt.Sprintf("%s[%d][%s]", collection, i, field), value)
		}
	}
	return params, nil
}

// Heartbeat validates the webservice token with a site-info call.
func (c *Client) Heartbeat(ctx context.Context) error {
	wsErr, err := c.call(ctx, "core_webservice_get_site_info", url.Values{})
	if err != nil {
		return fmt.Errorf("moodle heartbeat: %w", err)
	}
	if wsErr != "" {
		if strings.Contains(wsErr, "invalidtoken") || strings.Contains(wsErr, "accessexception") {
			return fmt.Errorf("%w: %s", domain.ErrAuthFailure, wsErr)
		}
		return fmt.Errorf("moodle heartbeat: %s", wsErr)
	}
	return nil
}

// wsError is Moodle's error envelope. Errors come back with HTTP 200, so the
// body has to be inspected.
type wsError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// call performs one webservice function call. It returns a non-empty string
// for a Moodle-level error and err for transport failures.
func (c *Client) call(ctx context.Context, fn string, params url.Values) (string, error) {
	token, err := c.tokenProvider.GetAccessToken(ctx)
	if err != nil {
		return "", err
	}

	params.Set("wstoken", token)
	params.Set("wsfunction", fn)
	params.Set("moodlewsrestformat", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+wsPath,
		strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("moodle returned %d", resp.StatusCode)
	}

	var werr wsError
	if json.Unmarshal(body, &werr) == nil && werr.Exception != "" {
		return fmt.Sprintf("moodle error %s: %s", werr.ErrorCode, werr.Message), nil
	}
	return "", nil
}
