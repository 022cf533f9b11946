// Package ibr implements the background-check vendor client. The vendor
// exposes an XML-over-HTTP API keyed by account credentials; status codes
// come back as free-form text mapped by the pipeline domain.
package ibr

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hirecrest/talentline/internal/platform/timeouts"
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
)

// Config carries the vendor account settings.
type Config struct {
	BaseURL  string
	Username string
	Password string
}

// Client talks to the vendor API. It implements both the case-submission and
// status-polling sides of the pipeline contract.
type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
}

// NewClient validates credentials up front so a misconfigured deployment
// fails at startup instead of silently skipping every candidate.
func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vendor base url is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, domain.ErrVendorNotConfigured
	}
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse vendor base url: %w", err)
	}

	return &Client{
		baseURL:  baseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeouts.VendorRequest,
		},
	}, nil
}

type submitRequest struct {
	XMLName  xml.Name `xml:"BackgroundCheckRequest"`
	Username string   `xml:"Account>Username"`
	Password string   `xml:"Account>Password"`
	Name     string   `xml:"Subject>Name"`
	Email    string   `xml:"Subject>Email"`
	Phone    string   `xml:"Subject>Phone"`
	Location string   `xml:"Subject>Location"`
}

type submitResponse struct {
	XMLName xml.Name `xml:"BackgroundCheckResponse"`
	CaseID  string   `xml:"CaseId"`
	Error   string   `xml:"Error"`
}

type statusRequest struct {
	XMLName  xml.Name `xml:"StatusRequest"`
	Username string   `xml:"Account>Username"`
	Password string   `xml:"Account>Password"`
	CaseID   string   `xml:"CaseId"`
}

type statusResponse struct {
	XMLName xml.Name `xml:"StatusResponse"`
	CaseID  string   `xml:"CaseId"`
	Status  string   `xml:"Status"`
	Error   string   `xml:"Error"`
}

// Submit opens one vendor case for a candidate and returns the case id.
func (c *Client) Submit(ctx context.Context, candidate domain.Candidate) (string, error) {
	if c == nil {
		return "", domain.ErrVendorNotConfigured
	}
	payload := submitRequest{
		Username: c.username,
		Password: c.password,
		Name:     candidate.Name,
		Email:    candidate.Email,
		Phone:    candidate.Phone,
		Location: candidate.Location,
	}

	var resp submitResponse
	if err := c.post(ctx, "/cases", payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", domain.Permanent(fmt.Errorf("vendor rejected submission: %s", resp.Error))
	}
	caseID := strings.TrimSpace(resp.CaseID)
	if caseID == "" {
		return "", fmt.Errorf("vendor response missing case id")
	}
	return caseID, nil
}

// PollStatus fetches the current vendor status code for one case. Network
// and auth failures come back as transient errors: the reconciliation loop
// retries them on its next run.
func (c *Client) PollStatus(ctx context.Context, caseID string) (string, error) {
	if c == nil {
		return "", domain.ErrVendorNotConfigured
	}
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return "", domain.Permanent(fmt.Errorf("case id is required"))
	}

	payload := statusRequest{
		Username: c.username,
		Password: c.password,
		CaseID:   caseID,
	}

	var resp statusResponse
	if err := c.post(ctx, "/cases/status", payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("vendor status query failed: %s", resp.Error)
	}
	return strings.TrimSpace(resp.Status), nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := xml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal vendor request: %w", err)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build vendor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vendor request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Auth hiccups are treated as transient: credentials rotate on the
		// vendor side and recover without a redeploy.
		return fmt.Errorf("vendor auth failed: status %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return domain.Permanent(fmt.Errorf("vendor rejected request: status %d", resp.StatusCode))
	default:
		return fmt.Errorf("vendor request failed: status %d", resp.StatusCode)
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode vendor response: %w", err)
	}
	return nil
}
