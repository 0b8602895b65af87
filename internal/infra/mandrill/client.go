// Package mandrill is a minimal client for the Mandrill reject-list and
// message-search endpoints.
package mandrill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/conf"
	"github.com/DevRickLin/reject-console/internal/metrics"
)

// Operation names, used as metric labels
const (
	OpListRejects    = "rejects_list"
	OpDeleteReject   = "rejects_delete"
	OpSearchMessages = "messages_search"
)

// HTTPDoer executes HTTP requests; *http.Client satisfies it
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Mandrill API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     *zap.Logger
}

// NewClient creates a new Mandrill API client
func NewClient(cfg conf.MandrillConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger.Named("mandrill"),
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(doer HTTPDoer) *Client {
	c.httpClient = doer
	return c
}

// APIError is the error envelope Mandrill returns on failure
type APIError struct {
	Status     string `json:"status"`
	Code       int    `json:"code"`
	Name       string `json:"name"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

// IsAPIError reports whether err carries a provider error envelope
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type listRejectsRequest struct {
	Key            string `json:"key"`
	Email          string `json:"email,omitempty"`
	IncludeExpired bool   `json:"include_expired"`
}

type deleteRejectRequest struct {
	Key   string `json:"key"`
	Email string `json:"email"`
}

type searchMessagesRequest struct {
	Key   string `json:"key"`
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// ListRejects lists reject entries. An empty email lists every entry.
func (c *Client) ListRejects(ctx context.Context, email string, includeExpired bool) ([]domain.RejectEntry, error) {
	req := listRejectsRequest{Key: c.apiKey, Email: email, IncludeExpired: includeExpired}

	var entries []domain.RejectEntry
	if err := c.call(ctx, OpListRejects, "/rejects/list.json", req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteReject removes an address from the reject list
func (c *Client) DeleteReject(ctx context.Context, email string) (*domain.DeleteResult, error) {
	req := deleteRejectRequest{Key: c.apiKey, Email: email}

	var result domain.DeleteResult
	if err := c.call(ctx, OpDeleteReject, "/rejects/delete.json", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchMessages searches recently sent messages for a recipient address
func (c *Client) SearchMessages(ctx context.Context, email string, limit int) ([]domain.MessageEntry, error) {
	req := searchMessagesRequest{Key: c.apiKey, Query: "full_email:" + email, Limit: limit}

	var messages []domain.MessageEntry
	if err := c.call(ctx, OpSearchMessages, "/messages/search.json", req, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// call posts a JSON body and decodes the response, recording metrics per operation
func (c *Client) call(ctx context.Context, op, path string, body, out interface{}) error {
	start := time.Now()
	respBody, err := c.doRequest(ctx, path, body)
	metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil {
		if err = json.Unmarshal(respBody, out); err != nil {
			err = fmt.Errorf("parsing %s response: %w", op, err)
		}
	}

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(op, metrics.OutcomeError).Inc()
		c.logger.Warn("provider call failed", zap.String("operation", op), zap.Error(err))
		return err
	}

	metrics.ProviderRequestsTotal.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
	c.logger.Debug("provider call", zap.String("operation", op), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// doRequest makes a POST request to the Mandrill API
func (c *Client) doRequest(ctx context.Context, path string, body interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// parseError converts a non-2xx response into an error, preferring the
// provider's envelope message when present
func parseError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Status == "error" {
		apiErr.HTTPStatus = status
		return &apiErr
	}
	return fmt.Errorf("API error (status %d): %s", status, string(body))
}
