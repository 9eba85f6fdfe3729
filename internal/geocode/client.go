// Package geocode wraps the practice's address-validation collaborator.
// Validation failure is never fatal to callers: the matcher proceeds in a
// string-only degraded mode when no coordinates come back.
package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harborvet/portal-api/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Client calls the address-validation collaborator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	minLevel   string
	logger     *logging.Logger
}

// NewClient constructs an address-validation client. minLevel is the
// weakest match precision the collaborator may return (e.g. "street").
func NewClient(baseURL, minLevel string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(minLevel) == "" {
		minLevel = "street"
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		minLevel:   minLevel,
		logger:     logger,
	}
}

// Result is a successfully validated address with coordinates.
type Result struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

type validateRequest struct {
	AddressText string `json:"addressText"`
	MinLevel    string `json:"minLevel"`
}

type validateResponse struct {
	OK      bool    `json:"ok"`
	Result  *Result `json:"result,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Validate resolves a free-text address to coordinates and a canonical
// string. A nil Result with a nil error means the collaborator could not
// validate the address; callers proceed with the raw text.
func (c *Client) Validate(ctx context.Context, addressText string) (*Result, error) {
	if strings.TrimSpace(addressText) == "" {
		return nil, nil
	}

	payload, err := json.Marshal(validateRequest{AddressText: addressText, MinLevel: c.minLevel})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("geocode API returned %d: %s", resp.StatusCode, msg)
	}

	var out validateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.OK || out.Result == nil {
		c.logger.Debug("address validation declined", "message", out.Message)
		return nil, nil
	}
	return out.Result, nil
}
