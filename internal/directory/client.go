// Package directory wraps the practice-management (PIMS) directory for
// authenticated clients and the public veterinarian directory for everyone
// else. Both produce providers in the same shape so the resolver does not
// care which universe it is matching against.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harborvet/portal-api/internal/providers"
	"github.com/harborvet/portal-api/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client calls the authenticated PIMS directory.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
}

// NewClient constructs a PIMS directory client.
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

// GetProfile fetches the client record for a logged-in portal client.
func (c *Client) GetProfile(ctx context.Context, clientID string) (*ClientProfile, error) {
	var profile ClientProfile
	path := fmt.Sprintf("/clients/%s", url.PathEscape(clientID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// ListPets returns the pets owned by the client.
func (c *Client) ListPets(ctx context.Context, clientID string) ([]Pet, error) {
	var wrapped struct {
		Pets []Pet `json:"pets"`
	}
	path := fmt.Sprintf("/clients/%s/pets", url.PathEscape(clientID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return wrapped.Pets, nil
}

// GetPetAlerts fetches the alert text for one pet. An empty string means
// no alerts on file.
func (c *Client) GetPetAlerts(ctx context.Context, petID string) (string, error) {
	var wrapped struct {
		Alerts string `json:"alerts"`
	}
	path := fmt.Sprintf("/pets/%s/alerts", url.PathEscape(petID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wrapped); err != nil {
		return "", fmt.Errorf("get pet alerts: %w", err)
	}
	return wrapped.Alerts, nil
}

// ListProviders returns the authenticated provider directory.
func (c *Client) ListProviders(ctx context.Context) ([]providers.Provider, error) {
	var wrapped struct {
		Providers []providers.Provider `json:"providers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/providers", nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return wrapped.Providers, nil
}

// CheckEmail probes whether an email address already belongs to a client of
// the practice.
func (c *Client) CheckEmail(ctx context.Context, email, practiceID string) (*EmailCheck, error) {
	body := map[string]string{"email": email, "practiceId": practiceID}
	var check EmailCheck
	if err := c.doJSON(ctx, http.MethodPost, "/clients/email-check", body, &check); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	return &check, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("directory API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return fmt.Errorf("directory API returned %d: %s", resp.StatusCode, msg)
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
