package licensesdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the licensing service. The zero value is not usable; use
// NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Admin returns a client for the admin surface authenticated with token,
// either an admin JWT or a service token.
func (c *Client) Admin(token string) *AdminClient {
	return &AdminClient{client: c, token: token}
}

// Verify checks a license key without binding it.
func (c *Client) Verify(ctx context.Context, licenseKey string) (*LicenseResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/license/verify", "", VerifyRequest{LicenseKey: licenseKey})
	if err != nil {
		return nil, err
	}

	var out LicenseResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Activate binds a license to deviceID on first use.
func (c *Client) Activate(ctx context.Context, req ActivateRequest) (*LicenseResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/license/activate", "", req)
	if err != nil {
		return nil, err
	}

	var out LicenseResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
