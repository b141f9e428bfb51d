package profileapi

// Package profileapi reads and writes profile records through the identity
// platform's REST API. This is the default profile backend; the platform owns
// the records, the edge only relays them.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
)

// Config holds configuration for the profile API client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // default 10s when zero
	// HTTPClient is optional and overrides Timeout when set.
	HTTPClient *http.Client
}

// Client implements ports.ProfileStore and ports.SessionRevoker against the
// platform API.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewClient validates config and constructs a profile API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("profile API base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid profile API base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:   u.String(),
		apiKey: cfg.APIKey,
		http:   httpClient,
	}, nil
}

// profileRecord is the platform's wire shape for a profile.
type profileRecord struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	CompanyName   string    `json:"company_name"`
	ContactNumber string    `json:"contact_number"`
	Approved      bool      `json:"approved"`
	IsOperator    bool      `json:"is_operator"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r profileRecord) toDomain() domainauth.Profile {
	return domainauth.Profile{
		UID:           r.UID,
		Email:         r.Email,
		Role:          domainauth.Role(r.Role),
		CompanyName:   r.CompanyName,
		ContactNumber: r.ContactNumber,
		Approved:      r.Approved,
		IsOperator:    r.IsOperator,
		CreatedAt:     r.CreatedAt,
	}
}

// Get fetches the profile record for uid.
func (c *Client) Get(ctx context.Context, uid string) (domainauth.Profile, error) {
	if uid == "" {
		return domainauth.Profile{}, apperrors.Validation("uid is required")
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(uid), nil)
	if err != nil {
		return domainauth.Profile{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var record profileRecord
		if decodeErr := json.NewDecoder(resp.Body).Decode(&record); decodeErr != nil {
			return domainauth.Profile{}, apperrors.Wrap(decodeErr, apperrors.ErrCodeUpstream, "decode profile")
		}
		return record.toDomain(), nil
	case http.StatusNotFound:
		return domainauth.Profile{}, apperrors.NotFoundf("profile %q not found", uid)
	default:
		return domainauth.Profile{}, apperrors.Upstream(fmt.Sprintf("profile API returned status %d", resp.StatusCode))
	}
}

// Create stores a new profile record. The platform enforces uniqueness on uid.
func (c *Client) Create(ctx context.Context, profile domainauth.Profile) error {
	record := profileRecord{
		UID:           profile.UID,
		Email:         profile.Email,
		Role:          string(profile.Role),
		CompanyName:   profile.CompanyName,
		ContactNumber: profile.ContactNumber,
		Approved:      profile.Approved,
		IsOperator:    profile.IsOperator,
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/profiles", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusConflict:
		return apperrors.Conflict("profile already exists")
	default:
		return apperrors.Upstream(fmt.Sprintf("profile API returned status %d", resp.StatusCode))
	}
}

// SetApproval flips the operator approval flag for uid.
func (c *Client) SetApproval(ctx context.Context, uid string, approved bool) error {
	body, err := json.Marshal(map[string]bool{"approved": approved})
	if err != nil {
		return fmt.Errorf("marshal approval: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPatch, "/v1/profiles/"+url.PathEscape(uid)+"/approval", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apperrors.NotFoundf("profile %q not found", uid)
	default:
		return apperrors.Upstream(fmt.Sprintf("profile API returned status %d", resp.StatusCode))
	}
}

// Revoke ends the platform session for uid (sign-out).
func (c *Client) Revoke(ctx context.Context, uid string) error {
	if uid == "" {
		return nil
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(uid)+"/revoke", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.Upstream(fmt.Sprintf("session revoke returned status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		reqBody = body
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "call profile API")
	}
	return resp, nil
}
