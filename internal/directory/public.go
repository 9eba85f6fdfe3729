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

	"github.com/harborvet/portal-api/internal/providers"
	"github.com/harborvet/portal-api/pkg/logging"
)

// PublicClient calls the public veterinarian directory, which needs no
// client credentials and filters by service address.
type PublicClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewPublicClient constructs a public directory client.
func NewPublicClient(baseURL string, logger *logging.Logger) *PublicClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &PublicClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type publicVet struct {
	ID       string `json:"id"`
	PimsID   string `json:"pimsId,omitempty"`
	FullName string `json:"fullName"`
}

// ListVeterinarians returns the public directory mapped into the shared
// provider shape, optionally filtered by the client's address.
func (c *PublicClient) ListVeterinarians(ctx context.Context, address string) ([]providers.Provider, error) {
	q := url.Values{}
	if strings.TrimSpace(address) != "" {
		q.Set("address", address)
	}
	path := "/public/veterinarians"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var wrapped struct {
		Veterinarians []publicVet `json:"veterinarians"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list veterinarians: %w", err)
	}

	out := make([]providers.Provider, 0, len(wrapped.Veterinarians))
	for _, v := range wrapped.Veterinarians {
		out = append(out, providers.Provider{ID: v.ID, PimsID: v.PimsID, Name: v.FullName})
	}
	return out, nil
}

func (c *PublicClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
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
		c.logger.Warn("public directory non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return fmt.Errorf("public directory returned %d: %s", resp.StatusCode, msg)
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
