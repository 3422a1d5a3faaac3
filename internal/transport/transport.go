// Package transport implements the authenticated http.RoundTripper shared by
// every backend call.
//
// Outbound it attaches the stored access token as a Bearer header. Inbound it
// watches for 401: the first 401 of a request triggers one token refresh and
// one replay of the original request. Concurrent 401s share a single refresh
// flight. A refresh that cannot be done (no refresh token) or is rejected
// ends the session: tokens are cleared and the session-expired hook fires.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/logger"
	"github.com/TTboyi/manga-factory/internal/models"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
)

const (
	refreshPath    = "/auth/refresh"
	refreshTimeout = 15 * time.Second
)

type Config struct {
	// Backend origin, e.g. "http://127.0.0.1:8000". Used to build the
	// refresh request only; regular requests carry their own URL.
	BaseURL string

	// Base transport to issue requests with. http.DefaultTransport if nil.
	Base http.RoundTripper

	Store  tokenstore.Store
	Logger logger.Logger

	// Called after the session could not be recovered: refresh rejected or
	// no refresh token stored. Fires at most once per failed refresh flight.
	// The shell translates it into user facing messaging; the transport
	// itself has no UI concerns.
	OnSessionExpired func()
}

type Auth struct {
	base       http.RoundTripper
	refreshURL string
	store      tokenstore.Store
	logger     logger.Logger
	onExpired  func()

	// Coalesces concurrent refresh attempts into one in-flight call so two
	// requests failing together cannot invalidate each other's tokens
	group singleflight.Group
}

func New(cfg Config) (*Auth, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("token store must not be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url must not be empty")
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Auth{
		base:       base,
		refreshURL: cfg.BaseURL + refreshPath,
		store:      cfg.Store,
		logger:     log,
		onExpired:  cfg.OnSessionExpired,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *Auth) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTripper contract: the request must not be mutated
	out := req.Clone(req.Context())

	// Attach the access token unless the caller authenticated explicitly
	// (the refresh endpoint signs with the refresh token itself)
	if out.Header.Get("Authorization") == "" {
		if access, ok := t.store.Access(); ok {
			out.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// 401: the access token is stale or the session is gone. If there is no
	// refresh token the original 401 is surfaced as is and the session ends.
	if _, ok := t.store.Refresh(); !ok {
		t.logger.Warn("got 401 without a stored refresh token, ending session")
		t.store.Clear()
		t.expire()
		return resp, nil
	}

	pair, err := t.refresh()
	if err != nil {
		closeBody(resp)
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	// A request without GetBody cannot be replayed. The refreshed pair is
	// already stored, so the caller may simply repeat the call itself.
	if req.Body != nil && req.GetBody == nil {
		t.logger.Warn("request body is not replayable, returning original 401",
			"method", req.Method, "url", req.URL.String())
		return resp, nil
	}
	closeBody(resp)

	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+pair.Access)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("error rewinding request body for retry. Err: %w", err)
		}
		retry.Body = body
	}

	t.logger.Debug("replaying request with refreshed token", "method", retry.Method, "url", retry.URL.String())

	// Replay goes straight to the base transport, so a second 401 cannot
	// trigger another refresh: at most one retry per logical request
	return t.base.RoundTrip(retry)
}

// refresh obtains a new token pair through the shared flight. All concurrent
// 401 handlers receive the same pair or the same failure.
func (t *Auth) refresh() (models.TokenPair, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		pair, err := t.doRefresh()
		if err != nil {
			// One failed flight ends the session exactly once, no matter
			// how many requests were waiting on it
			t.store.Clear()
			t.expire()
			return models.TokenPair{}, err
		}

		t.store.Set(pair.Access, pair.Refresh)
		return pair, nil
	})
	if err != nil {
		return models.TokenPair{}, err
	}
	return v.(models.TokenPair), nil
}

func (t *Auth) doRefresh() (models.TokenPair, error) {
	refresh, ok := t.store.Refresh()
	if !ok {
		return models.TokenPair{}, apperrors.ErrNoRefreshToken
	}

	// Own timeout, detached from the callers: a canceled waiter must not
	// abort the flight other requests depend on
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, nil)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error creating refresh request. Err: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+refresh)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error sending refresh request. Err: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("refresh rejected", "status", resp.StatusCode)
		return models.TokenPair{}, fmt.Errorf("refresh rejected with status %d: %w", resp.StatusCode, apperrors.ErrAuthExpired)
	}

	var envelope struct {
		Code    int              `json:"code"`
		Message string           `json:"message"`
		Data    models.TokenPair `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return models.TokenPair{}, fmt.Errorf("error decoding refresh response. Err: %w", err)
	}
	if envelope.Data.Access == "" {
		return models.TokenPair{}, fmt.Errorf("refresh response carried no access token: %w", apperrors.ErrAuthExpired)
	}

	t.logger.Debug("token pair refreshed")
	return envelope.Data, nil
}

func (t *Auth) expire() {
	if t.onExpired != nil {
		t.onExpired()
	}
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
