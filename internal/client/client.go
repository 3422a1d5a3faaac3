// Package client is the typed wrapper around the Manga Factory backend API.
//
// Auth, captcha and project routes answer with the common
// {code, message, data} envelope; the generation routes (text, visual,
// scene, image) answer with bare JSON objects. Both shapes are handled here
// so callers only ever see typed results or errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/logger"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
	"github.com/TTboyi/manga-factory/internal/transport"
)

// Generation calls run LLM and image models server side, so the default
// timeout has to be generous
const DefaultTimeout = 5 * time.Minute

type Config struct {
	BaseURL string
	Store   tokenstore.Store
	Logger  logger.Logger

	// Overall per-request timeout. DefaultTimeout if zero.
	Timeout time.Duration

	// Base transport for all calls, http.DefaultTransport if nil.
	// Tests swap it for an httptest transport.
	Base http.RoundTripper

	// Forwarded to the auth transport, see transport.Config.
	OnSessionExpired func()
}

type Client struct {
	baseURL string
	logger  logger.Logger

	// All regular calls go through the auth transport
	http *http.Client

	// The explicit-auth calls (manual refresh) skip token attachment and
	// the reactive refresh entirely
	plain *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url must not be empty")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("token store must not be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	authTransport, err := transport.New(transport.Config{
		BaseURL:          cfg.BaseURL,
		Base:             base,
		Store:            cfg.Store,
		Logger:           log,
		OnSessionExpired: cfg.OnSessionExpired,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating auth transport. Err: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  log,
		http:    &http.Client{Transport: authTransport, Timeout: timeout},
		plain:   &http.Client{Transport: base, Timeout: timeout},
	}, nil
}

// envelope is the common reply wrapper used by auth, captcha and project
// routes. code is 0 on success.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method string, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s. Err: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method string, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error encoding request for %s. Err: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	return c.newRequest(ctx, method, path, body, "application/json")
}

// do sends the request and decodes a bare JSON reply into out.
func (c *Client) do(httpClient *http.Client, req *http.Request, out any) error {
	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request to %s. Err: %w", req.URL.Path, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	c.logger.Debug("backend call finished",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
		"request_id", req.Header.Get("X-Request-Id"),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response from %s. Err: %w", req.URL.Path, err)
	}
	return nil
}

// doEnvelope sends the request, unwraps the {code, message, data} envelope
// and decodes data into out. Returns the server message.
func (c *Client) doEnvelope(httpClient *http.Client, req *http.Request, out any) (string, error) {
	var env envelope
	if err := c.do(httpClient, req, &env); err != nil {
		return "", err
	}

	if env.Code != 0 {
		return env.Message, &apperrors.APIError{Status: http.StatusOK, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("error decoding response data from %s. Err: %w", req.URL.Path, err)
		}
	}
	return env.Message, nil
}

// apiError turns a non-2xx reply into an APIError, taking code and message
// from the envelope if the body carries one.
func apiError(resp *http.Response) error {
	apiErr := &apperrors.APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
		return apiErr
	}

	// Some routes report errors as {"error": "..."} without the envelope
	var alt struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &alt); err == nil && alt.Error != "" {
		apiErr.Message = alt.Error
	}
	return apiErr
}
