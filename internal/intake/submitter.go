package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harborvet/portal-api/pkg/logging"
)

const submitTimeout = 30 * time.Second

// Submitter delivers the assembled request to the practice's submission
// endpoint.
type Submitter struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *logging.Logger
}

// NewSubmitter constructs a submission client.
func NewSubmitter(url, apiKey string, logger *logging.Logger) *Submitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Submitter{
		httpClient: &http.Client{Timeout: submitTimeout},
		url:        url,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Submit posts the payload. The returned error's message is what the
// client sees, so the endpoint's own message is kept when it sends one.
func (s *Submitter) Submit(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	msg := string(respBody)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	s.logger.Warn("submission endpoint non-2xx response", "status", resp.StatusCode, "body", msg)

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &apiErr); err == nil {
		if m := strings.TrimSpace(apiErr.Message); m != "" {
			return errors.New(m)
		}
		if m := strings.TrimSpace(apiErr.Error); m != "" {
			return errors.New(m)
		}
	}
	return fmt.Errorf("submission endpoint returned %d", resp.StatusCode)
}
