package bangumi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// maxErrorMessage caps the raw body text carried in an APIError message
const maxErrorMessage = 200

// Client represents a Bangumi API client. All operations of one client
// share a single rate limiter and search cache.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *Limiter
	cache      *searchCache
	logger     zerolog.Logger
}

// NewClient creates a new Bangumi client
func NewClient(token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	if u, err := url.Parse(baseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrInvalidConfig, o.baseURL)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if o.insecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		}
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		limiter:    NewLimiter(o.minInterval, o.clock),
		cache:      newSearchCache(o.cacheTTL, o.cacheSize, o.clock),
		logger:     logger,
	}, nil
}

// doRequest waits for the limiter, performs one authenticated request and
// classifies the answer.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body any) ([]byte, error) {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Msg("Making Bangumi API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error().Err(err).Str("url", requestURL).Msg("Bangumi API request failed")
		return nil, &APIError{Message: "network", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: "network", Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if err := classifyResponse(resp.StatusCode, respBody); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("url", requestURL).
				Str("message", apiErr.Message).
				Msg("Bangumi API error")
		}
		return nil, err
	}

	return respBody, nil
}

// classifyResponse maps an HTTP status to the error taxonomy.
// Only 200 is success.
func classifyResponse(status int, body []byte) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			StatusCode: status,
			Message:    errorMessage(body),
			Body:       string(body),
		}
	}
}

// errorMessage extracts a message from an error body, preferring the JSON
// fields the API uses and falling back to the raw text.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, field := range []string{"description", "title", "message", "error"} {
			if v := doc.Get(field); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	if r := []rune(text); len(r) > maxErrorMessage {
		text = string(r[:maxErrorMessage]) + "..."
	}
	return text
}

// getEntity fetches and wraps a single JSON object
func (c *Client) getEntity(ctx context.Context, endpoint string) (Entity, error) {
	body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return Entity{}, err
	}
	if !gjson.ValidBytes(body) {
		return Entity{}, fmt.Errorf("failed to parse response from %s: invalid JSON", endpoint)
	}
	return NewEntity(body), nil
}

// MinInterval returns the spacing enforced between request starts
func (c *Client) MinInterval() time.Duration {
	return c.limiter.Interval()
}

// Me returns the user owning the access token; used to test the connection
func (c *Client) Me(ctx context.Context) (Entity, error) {
	return c.getEntity(ctx, "/v0/me")
}
