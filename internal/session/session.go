// Package session implements the user facing auth operations on top of the
// API client: login flows persist granted tokens, logout always ends the
// local session, and input is validated before any network call.
package session

import (
	"context"
	"fmt"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/logger"
	"github.com/TTboyi/manga-factory/internal/models"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
)

type Session struct {
	client *client.Client
	store  tokenstore.Store
	logger logger.Logger
}

func New(c *client.Client, store tokenstore.Store, log logger.Logger) (*Session, error) {
	if c == nil || store == nil {
		return nil, fmt.Errorf("client and store must not be nil")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Session{
		client: c,
		store:  store,
		logger: log,
	}, nil
}

// Register creates an account. Nothing is persisted: the backend does not
// grant tokens on registration, the user logs in afterwards.
func (s *Session) Register(ctx context.Context, nickname string, password string) (string, error) {
	form := registerForm{Nickname: nickname, Password: password}
	if err := validateForm(form); err != nil {
		return "", err
	}

	return s.client.Register(ctx, nickname, password)
}

// Login exchanges credentials for a token pair and persists it. A reply
// without a token is ErrAuthRejected and leaves the store untouched.
func (s *Session) Login(ctx context.Context, nickname string, password string) error {
	form := loginForm{Nickname: nickname, Password: password}
	if err := validateForm(form); err != nil {
		return err
	}

	pair, err := s.client.Login(ctx, nickname, password)
	if err != nil {
		return err
	}

	s.store.Set(pair.Access, pair.Refresh)
	s.logger.Info("logged in", "nickname", nickname)
	return nil
}

// SendEmailCaptcha asks the backend to mail a login code.
func (s *Session) SendEmailCaptcha(ctx context.Context, email string) (string, error) {
	form := emailForm{Email: email}
	if err := validateForm(form); err != nil {
		return "", err
	}

	return s.client.SendEmailCaptcha(ctx, email)
}

// LoginWithEmailCaptcha logs in with a mailed code. Same persistence
// contract as Login.
func (s *Session) LoginWithEmailCaptcha(ctx context.Context, email string, code string) error {
	form := captchaLoginForm{Email: email, Code: code}
	if err := validateForm(form); err != nil {
		return err
	}

	pair, err := s.client.LoginWithEmailCaptcha(ctx, email, code)
	if err != nil {
		return err
	}

	s.store.Set(pair.Access, pair.Refresh)
	s.logger.Info("logged in via email captcha", "email", email)
	return nil
}

// Refresh trades the stored refresh token for a fresh pair and returns it
// without persisting. The auth transport is the single writer for reactive
// rotation; callers wanting to adopt the pair call the store themselves.
func (s *Session) Refresh(ctx context.Context) (models.TokenPair, error) {
	refresh, ok := s.store.Refresh()
	if !ok {
		return models.TokenPair{}, apperrors.ErrNoRefreshToken
	}

	return s.client.Refresh(ctx, refresh)
}

// Logout ends the session. The backend call is best effort: its failure is
// logged, never returned, and the local tokens are cleared in every case.
func (s *Session) Logout(ctx context.Context) {
	if _, ok := s.store.Access(); ok {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed, clearing local session anyway", "error", err)
		}
	}

	s.store.Clear()
	s.logger.Info("logged out")
}

// IsLoggedIn reports whether an access token is stored. Freshness is not
// checked: a stale token is discovered by the first 401.
func (s *Session) IsLoggedIn() bool {
	_, ok := s.store.Access()
	return ok
}

// UserInfo returns the account behind the session.
func (s *Session) UserInfo(ctx context.Context) (models.User, error) {
	return s.client.UserInfo(ctx)
}
