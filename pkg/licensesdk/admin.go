package licensesdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AdminClient performs authenticated admin operations.
type AdminClient struct {
	client *Client
	token  string
}

// ListLicenses returns all records, or only those with one of statuses.
func (a *AdminClient) ListLicenses(ctx context.Context, statuses ...string) ([]License, error) {
	path := "/api/admin/licenses"
	if len(statuses) > 0 {
		path += "?status=" + url.QueryEscape(strings.Join(statuses, ","))
	}

	resp, err := a.client.doRequest(ctx, http.MethodGet, path, a.token, nil)
	if err != nil {
		return nil, err
	}

	var out LicenseListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Licenses, nil
}

// RegisterLicense imports an issued key.
func (a *AdminClient) RegisterLicense(ctx context.Context, licenseKey string) (*License, error) {
	resp, err := a.client.doJSON(ctx, http.MethodPost, "/api/admin/licenses", a.token, RegisterRequest{LicenseKey: licenseKey})
	if err != nil {
		return nil, err
	}
	return decodeLicense(resp, http.StatusCreated)
}

func (a *AdminClient) GetLicense(ctx context.Context, licenseKey string) (*License, error) {
	resp, err := a.client.doRequest(ctx, http.MethodGet, licensePath(licenseKey, ""), a.token, nil)
	if err != nil {
		return nil, err
	}
	return decodeLicense(resp, http.StatusOK)
}

func (a *AdminClient) Block(ctx context.Context, licenseKey string) (*License, error) {
	return a.transition(ctx, licenseKey, "block", nil)
}

func (a *AdminClient) Unblock(ctx context.Context, licenseKey string) (*License, error) {
	return a.transition(ctx, licenseKey, "unblock", nil)
}

// Reset clears the device binding.
func (a *AdminClient) Reset(ctx context.Context, licenseKey string) (*License, error) {
	return a.transition(ctx, licenseKey, "reset", nil)
}

func (a *AdminClient) Extend(ctx context.Context, licenseKey string, expiresAt time.Time) (*License, error) {
	return a.transition(ctx, licenseKey, "extend", ExtendRequest{ExpiresAt: expiresAt})
}

func (a *AdminClient) transition(ctx context.Context, licenseKey, op string, body any) (*License, error) {
	resp, err := a.client.doJSON(ctx, http.MethodPost, licensePath(licenseKey, op), a.token, body)
	if err != nil {
		return nil, err
	}
	return decodeLicense(resp, http.StatusOK)
}

// RecentActivity returns up to limit audit entries, newest first. A zero
// limit uses the server default.
func (a *AdminClient) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	path := "/api/admin/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := a.client.doRequest(ctx, http.MethodGet, path, a.token, nil)
	if err != nil {
		return nil, err
	}

	var out ActivityResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Monitor returns the anomaly detector windows.
func (a *AdminClient) Monitor(ctx context.Context) (*MonitorResponse, error) {
	resp, err := a.client.doRequest(ctx, http.MethodGet, "/api/admin/monitor", a.token, nil)
	if err != nil {
		return nil, err
	}

	var out MonitorResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func licensePath(licenseKey, op string) string {
	p := "/api/admin/licenses/" + url.PathEscape(strings.TrimSpace(licenseKey))
	if op != "" {
		p += "/" + op
	}
	return p
}

func decodeLicense(resp *http.Response, expected int) (*License, error) {
	var out AdminLicenseResponse
	if err := decodeJSON(resp, &out, expected); err != nil {
		return nil, err
	}
	return &out.License, nil
}
