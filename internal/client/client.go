// Package client provides an HTTP client for a running factory monitor.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

// StatusError is returned when the server replies with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// apiError mirrors the server's error body.
type apiError struct {
	Error string `json:"error"`
}

// Export is a downloaded report.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client talks to the factory monitor REST API.
type Client struct {
	endpoint   string
	timeout    time.Duration
	retry      config.RetryConfig
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewClient creates a new API client.
func NewClient(cfg *config.ClientConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	retry := cfg.Retry
	if retry.BaseDelay == 0 {
		retry.BaseDelay = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8).
		AddRetryCondition(retryCondition)

	return &Client{
		endpoint:   cfg.Endpoint,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "api-client").Logger(),
	}
}

// retryCondition retries on transport errors and 5xx responses only.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

// Analytics fetches the combined snapshot.
func (c *Client) Analytics(ctx context.Context) (*model.BroadcastSnapshot, error) {
	var snap model.BroadcastSnapshot
	if err := c.getJSON(ctx, "/api/analytics", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Alerts lists active alerts, or all alerts when all is set.
func (c *Client) Alerts(ctx context.Context, all bool) ([]model.Alert, error) {
	var alerts []model.Alert
	params := map[string]string{}
	if all {
		params["all"] = strconv.FormatBool(all)
	}
	if err := c.getJSON(ctx, "/api/alerts", params, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Acknowledge acknowledges an alert.
func (c *Client) Acknowledge(ctx context.Context, id string) (*model.Alert, error) {
	return c.transition(ctx, id, "acknowledge")
}

// Resolve resolves an alert.
func (c *Client) Resolve(ctx context.Context, id string) (*model.Alert, error) {
	return c.transition(ctx, id, "resolve")
}

// Export downloads a report of the current snapshot in the given format.
func (c *Client) Export(ctx context.Context, format string) (*Export, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		Get("/api/export/" + url.PathEscape(format))
	if err != nil {
		c.logger.Error().Err(err).Str("format", format).Msg("failed to export report")
		return nil, fmt.Errorf("failed to export report: %w", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	return &Export{
		Filename:    attachmentName(resp.Header().Get("Content-Disposition")),
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

func (c *Client) transition(ctx context.Context, id, action string) (*model.Alert, error) {
	var alert model.Alert
	path := fmt.Sprintf("/api/alerts/%s/%s", url.PathEscape(id), action)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&alert).
		Post(path)
	if err != nil {
		c.logger.Error().Err(err).Str("alert_id", id).Str("action", action).Msg("request failed")
		return nil, fmt.Errorf("failed to %s alert %s: %w", action, id, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	c.logger.Debug().Str("path", path).Msg("requesting")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("request failed")
		return fmt.Errorf("failed to request %s: %w", path, err)
	}
	return c.checkStatus(resp)
}

func (c *Client) checkStatus(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	msg := string(resp.Body())
	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode()).
		Str("message", msg).
		Msg("server returned non-2xx status")
	return &StatusError{StatusCode: resp.StatusCode(), Message: msg}
}

// attachmentName extracts the filename from a Content-Disposition header.
func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
