package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vbonduro/venueadmin/internal/domain"
	"github.com/vbonduro/venueadmin/internal/requestid"
)

const DefaultBaseURL = "https://stg.dhunjam.in"

// HTTPClient is the subset of *http.Client the API client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote account-admin API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Login exchanges credentials for an identity.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	const op = "login"
	env, err := c.do(ctx, op, http.MethodPost, "/account/admin/login", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return nil, err
	}

	var data identityData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%s: decode identity: %w: %w", op, ErrInvalidResponse, err)
		}
	}
	if data.ID == "" {
		return nil, fmt.Errorf("%s: identity has no id: %w", op, ErrInvalidResponse)
	}
	return &domain.Identity{ID: string(data.ID), Name: data.Name}, nil
}

// GetVenue fetches the pricing record addressed by id.
func (c *Client) GetVenue(ctx context.Context, id string) (*domain.VenuePricing, error) {
	const op = "get venue"
	env, err := c.do(ctx, op, http.MethodGet, venuePath(id), nil)
	if err != nil {
		return nil, err
	}

	var data venueData
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%s: empty data: %w", op, ErrInvalidResponse)
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%s: decode venue: %w: %w", op, ErrInvalidResponse, err)
	}
	if data.Amount == nil {
		return nil, fmt.Errorf("%s: venue has no amount: %w", op, ErrInvalidResponse)
	}

	venueID := string(data.ID)
	if venueID == "" {
		venueID = id
	}
	return &domain.VenuePricing{
		ID:              venueID,
		Name:            data.Name,
		Location:        data.Location,
		ChargeCustomers: data.ChargeCustomers,
		Amount:          data.Amount.tiers(),
	}, nil
}

// UpdateAmounts writes the five tiers of the record addressed by id.
func (c *Client) UpdateAmounts(ctx context.Context, id string, tiers domain.Tiers) error {
	_, err := c.do(ctx, "update amounts", http.MethodPut, venuePath(id), updateRequest{
		Amount: tiersToWire(tiers),
	})
	return err
}

func venuePath(id string) string {
	return "/account/admin/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", "op", op, "error", cerr)
		}
	}()

	c.logger.Debug("account-admin API response", "op", op, "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w: %w", op, ErrRejected, err)
	}
	if !env.ok() {
		return nil, fmt.Errorf("%s: response %q: %w", op, env.Response, ErrRejected)
	}
	return &env, nil
}
