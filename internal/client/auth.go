package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/models"
)

// Register creates a new account. The backend reports conflicts and weak
// input through the envelope, surfaced here as APIError.
func (c *Client) Register(ctx context.Context, nickname string, password string) (string, error) {
	payload := map[string]string{"nickname": nickname, "password": password}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/register", payload)
	if err != nil {
		return "", err
	}
	return c.doEnvelope(c.http, req, nil)
}

// Login exchanges credentials for a token pair. It does not persist the
// pair, that is the session's job.
func (c *Client) Login(ctx context.Context, nickname string, password string) (models.TokenPair, error) {
	payload := map[string]string{"nickname": nickname, "password": password}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if _, err := c.doEnvelope(c.http, req, &pair); err != nil {
		return models.TokenPair{}, err
	}
	if pair.Access == "" {
		// Transport said ok but no token granted
		return models.TokenPair{}, apperrors.ErrAuthRejected
	}
	return pair, nil
}

// Refresh trades the given refresh token for a fresh pair. The call signs
// with the refresh token itself and bypasses the auth transport, so the
// stored pair is left untouched: reactive refresh inside the transport is
// the only place that persists rotated tokens.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return models.TokenPair{}, err
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	var pair models.TokenPair
	if _, err := c.doEnvelope(c.plain, req, &pair); err != nil {
		return models.TokenPair{}, err
	}
	if pair.Access == "" {
		return models.TokenPair{}, apperrors.ErrAuthRejected
	}
	return pair, nil
}

// Logout invalidates the current access token server side.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	if _, err := c.doEnvelope(c.http, req, nil); err != nil {
		return fmt.Errorf("error logging out. Err: %w", err)
	}
	return nil
}

// UserInfo returns the account behind the current access token.
func (c *Client) UserInfo(ctx context.Context) (models.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/auth/user/info", nil)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if _, err := c.doEnvelope(c.http, req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SendEmailCaptcha asks the backend to mail a login code. The backend rate
// limits per address, surfaced as APIError.
func (c *Client) SendEmailCaptcha(ctx context.Context, email string) (string, error) {
	payload := map[string]string{"email": email}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/captcha/send_email", payload)
	if err != nil {
		return "", err
	}
	return c.doEnvelope(c.http, req, nil)
}

// LoginWithEmailCaptcha logs in with a mailed code, registering the account
// on first use. Same granting contract as Login.
func (c *Client) LoginWithEmailCaptcha(ctx context.Context, email string, code string) (models.TokenPair, error) {
	payload := map[string]string{"email": email, "code": code}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/captcha/login_email", payload)
	if err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if _, err := c.doEnvelope(c.http, req, &pair); err != nil {
		return models.TokenPair{}, err
	}
	if pair.Access == "" {
		return models.TokenPair{}, apperrors.ErrAuthRejected
	}
	return pair, nil
}
