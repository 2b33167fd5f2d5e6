package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
)

// APIError is a non-2xx answer from the portal.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal answered %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the portal HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type list[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in model.RegisterInput) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/register", in, &u)
	return u, err
}

// SignIn opens a session and keeps its token for later calls.
func (c *Client) SignIn(ctx context.Context, email string) error {
	var sess struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", model.SignInInput{Email: email}, &sess); err != nil {
		return err
	}
	c.token = sess.Token
	return nil
}

// CreateVenue posts a venue.
func (c *Client) CreateVenue(ctx context.Context, in model.VenueInput) (model.Venue, error) {
	var v model.Venue
	err := c.do(ctx, http.MethodPost, "/venues", in, &v)
	return v, err
}

// CreateBand posts a band.
func (c *Client) CreateBand(ctx context.Context, in model.BandInput) (model.Band, error) {
	var b model.Band
	err := c.do(ctx, http.MethodPost, "/bands", in, &b)
	return b, err
}

// CreateSetlist posts a setlist.
func (c *Client) CreateSetlist(ctx context.Context, in model.SetlistInput) (model.Setlist, error) {
	var s model.Setlist
	err := c.do(ctx, http.MethodPost, "/setlists", in, &s)
	return s, err
}

// CreatePerformance posts a performance.
func (c *Client) CreatePerformance(ctx context.Context, in model.PerformanceInput) (model.Performance, error) {
	var p model.Performance
	err := c.do(ctx, http.MethodPost, "/performances", in, &p)
	return p, err
}

// ListPerformances fetches the enriched listing for status.
func (c *Client) ListPerformances(ctx context.Context, status model.Status) ([]model.PerformanceView, error) {
	var out list[model.PerformanceView]
	path := "/performances?status=" + url.QueryEscape(string(status))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// DeletePerformance soft deletes a performance.
func (c *Client) DeletePerformance(ctx context.Context, performanceID string) (model.MutationResult, error) {
	var res model.MutationResult
	err := c.do(ctx, http.MethodDelete, "/performances/"+url.PathEscape(performanceID), nil, &res)
	return res, err
}
