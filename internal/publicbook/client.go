// Package publicbook is the client for the public availability backend used
// when the portal session is unauthenticated. It answers with a flat slot
// list, though mixed responses carrying winner/alternates have been seen.
package publicbook

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

// Client calls the public availability backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs a public availability client.
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Name identifies this backend in logs and metrics.
func (c *Client) Name() string { return "publicbook" }

type availabilityRequest struct {
	PracticeID        string `json:"practiceId"`
	StartDate         string `json:"startDate"`
	NumDays           int    `json:"numDays"`
	ServiceMinutes    int    `json:"serviceMinutes"`
	Address           string `json:"address,omitempty"`
	DoctorID          string `json:"doctorId,omitempty"`
	AllowOtherDoctors bool   `json:"allowOtherDoctors"`
}

// FindSlots queries public availability for the practice.
func (c *Client) FindSlots(ctx context.Context, q scheduling.Query) (*scheduling.Response, error) {
	body := availabilityRequest{
		PracticeID:        q.PracticeID,
		StartDate:         q.StartDate,
		NumDays:           q.NumDays,
		ServiceMinutes:    q.ServiceMinutes,
		Address:           q.Address,
		DoctorID:          q.DoctorID,
		AllowOtherDoctors: q.AllowOtherDoctors,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/availability", bytes.NewReader(payload))
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
		c.logger.Warn("public availability non-2xx response", "status", resp.StatusCode, "body", msg)
		return nil, fmt.Errorf("public availability returned %d: %s", resp.StatusCode, msg)
	}

	var out scheduling.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
