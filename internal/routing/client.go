// Package routing is the client for the practice's routing engine, the
// scheduling backend used for authenticated clients. It answers with a
// winner/alternates structure rather than a flat slot list.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client calls the routing engine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
}

// NewClient constructs a routing engine client.
func NewClient(baseURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name identifies this backend in logs and metrics.
func (c *Client) Name() string { return "routing" }

type newApptRequest struct {
	ServiceMinutes int      `json:"serviceMinutes"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	Address        string   `json:"address,omitempty"`
}

type routeRequest struct {
	DoctorID  string         `json:"doctorId"`
	StartDate string         `json:"startDate"`
	NumDays   int            `json:"numDays"`
	NewAppt   newApptRequest `json:"newAppt"`
}

// FindSlots asks the routing engine for a recommended start plus alternates.
func (c *Client) FindSlots(ctx context.Context, q scheduling.Query) (*scheduling.Response, error) {
	body := routeRequest{
		DoctorID:  q.DoctorID,
		StartDate: q.StartDate,
		NumDays:   q.NumDays,
		NewAppt: newApptRequest{
			ServiceMinutes: q.ServiceMinutes,
			Lat:            q.Lat,
			Lon:            q.Lon,
		},
	}
	// Coordinates take precedence; the address string is only sent in
	// degraded mode when validation produced none.
	if q.Lat == nil || q.Lon == nil {
		body.NewAppt.Address = q.Address
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/route", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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
		c.logger.Warn("routing engine non-2xx response", "status", resp.StatusCode, "body", msg)
		return nil, fmt.Errorf("routing engine returned %d: %s", resp.StatusCode, msg)
	}

	var out scheduling.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
