package gateway

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

	"github.com/charmbracelet/log"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/models"
)

const maxErrorBody = 4 << 10

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	log        *log.Logger
}

type Option func(*Client)

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying client. nil keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. It applies to a copy of the HTTP client, so
// a shared client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client for the API rooted at baseURL (e.g. http://host/api).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		log:        logger.Component("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]models.Activity, error) {
	var wire []WireActivity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &wire); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(wire))
	for _, w := range wire {
		a, err := FromWire(w)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (c *Client) Details(ctx context.Context, id string) (models.Activity, error) {
	var wire WireActivity
	if err := c.do(ctx, http.MethodGet, "/activities/"+url.PathEscape(id), nil, &wire); err != nil {
		return models.Activity{}, err
	}
	return FromWire(wire)
}

func (c *Client) Create(ctx context.Context, activity models.Activity) error {
	return c.do(ctx, http.MethodPost, "/activities", ToWire(activity), nil)
}

func (c *Client) Update(ctx context.Context, activity models.Activity) error {
	return c.do(ctx, http.MethodPut, "/activities/"+url.PathEscape(activity.ID), ToWire(activity), nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/activities/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	c.log.Debug("request", "method", method, "path", path, "status", res.StatusCode, "elapsed", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   res.StatusCode,
			Body:   readErrorBody(res.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// readErrorBody extracts the message from a {"code","message"} error payload,
// falling back to the raw (truncated) body.
func readErrorBody(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
