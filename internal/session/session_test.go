package session

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/testutil"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
)

func newTestSession(t *testing.T, backend *testutil.FakeBackend) (*Session, *tokenstore.Memory) {
	t.Helper()

	store := tokenstore.NewMemory()
	c, err := client.New(client.Config{
		BaseURL: backend.URL(),
		Store:   store,
	})
	require.NoError(t, err)

	s, err := New(c, store, nil)
	require.NoError(t, err)
	return s, store
}

func TestSession_Login(t *testing.T) {
	t.Parallel()

	t.Run("persists granted pair", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		backend.AddUser("bob", "secret123")
		s, store := newTestSession(t, backend)

		err := s.Login(t.Context(), "bob", "secret123")

		require.NoError(t, err)
		access, ok := store.Access()
		require.True(t, ok, "access token should be persisted after login")
		require.NotEmpty(t, access)
		refresh, ok := store.Refresh()
		require.True(t, ok, "refresh token should be persisted after login")
		require.NotEmpty(t, refresh)
		require.True(t, s.IsLoggedIn())
	})

	t.Run("rejected login leaves store untouched", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		backend.AddUser("bob", "secret123")
		s, store := newTestSession(t, backend)

		err := s.Login(t.Context(), "bob", "wrong")

		require.Error(t, err)
		_, ok := store.Access()
		require.False(t, ok, "no tokens should be stored on rejected login")
		require.False(t, s.IsLoggedIn())
	})

	t.Run("empty fields never reach the backend", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		err := s.Login(t.Context(), "", "")

		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs, "bad input should fail validation")
		require.Equal(t, 0, backend.Calls("/auth/login"), "no network call expected for invalid input")
	})
}

func TestSession_Register(t *testing.T) {
	t.Parallel()

	t.Run("register then login", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, store := newTestSession(t, backend)

		_, err := s.Register(t.Context(), "alice", "secret123")
		require.NoError(t, err)

		_, ok := store.Access()
		require.False(t, ok, "registration alone does not open a session")

		require.NoError(t, s.Login(t.Context(), "alice", "secret123"))
		require.True(t, s.IsLoggedIn())
	})

	t.Run("short password fails validation", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		_, err := s.Register(t.Context(), "alice", "abc")

		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		require.Equal(t, 0, backend.Calls("/auth/register"))
	})
}

func TestSession_EmailCaptcha(t *testing.T) {
	t.Parallel()

	t.Run("captcha login persists pair", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, store := newTestSession(t, backend)

		_, err := s.SendEmailCaptcha(t.Context(), "bob@example.com")
		require.NoError(t, err)

		err = s.LoginWithEmailCaptcha(t.Context(), "bob@example.com", testutil.EmailCaptchaCode)
		require.NoError(t, err)

		_, ok := store.Access()
		require.True(t, ok)
		require.True(t, s.IsLoggedIn())
	})

	t.Run("malformed email fails before any call", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		_, err := s.SendEmailCaptcha(t.Context(), "not-an-email")

		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		require.Equal(t, 0, backend.Calls("/captcha/send_email"))
	})

	t.Run("non numeric code fails before any call", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		err := s.LoginWithEmailCaptcha(t.Context(), "bob@example.com", "abcdef")

		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		require.Equal(t, 0, backend.Calls("/captcha/login_email"))
	})
}

func TestSession_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("returns fresh pair without persisting", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		backend.AddUser("bob", "secret123")
		s, store := newTestSession(t, backend)
		require.NoError(t, s.Login(t.Context(), "bob", "secret123"))

		before, _ := store.Access()

		pair, err := s.Refresh(t.Context())

		require.NoError(t, err)
		require.NotEmpty(t, pair.Access)
		require.NotEqual(t, before, pair.Access)

		after, _ := store.Access()
		require.Equal(t, before, after, "manual refresh must not persist the pair")
	})

	t.Run("without refresh token", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		_, err := s.Refresh(t.Context())

		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	})
}

func TestSession_Logout(t *testing.T) {
	t.Parallel()

	t.Run("clears tokens and calls backend", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		backend.AddUser("bob", "secret123")
		s, store := newTestSession(t, backend)
		require.NoError(t, s.Login(t.Context(), "bob", "secret123"))

		s.Logout(t.Context())

		_, ok := store.Access()
		require.False(t, ok)
		require.False(t, s.IsLoggedIn())
		require.Equal(t, 1, backend.Calls("/auth/logout"))
	})

	t.Run("clears tokens even when backend rejects the call", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, store := newTestSession(t, backend)

		// A pair the backend does not recognize: the logout call fails,
		// the local session must end anyway
		store.Set("bogus-access", "bogus-refresh")

		s.Logout(t.Context())

		_, ok := store.Access()
		require.False(t, ok, "tokens must be cleared even on backend failure")
		_, ok = store.Refresh()
		require.False(t, ok)
	})

	t.Run("logout without session skips the backend", func(t *testing.T) {
		backend := testutil.NewFakeBackend(t)
		s, _ := newTestSession(t, backend)

		s.Logout(t.Context())

		require.Equal(t, 0, backend.Calls("/auth/logout"))
	})
}

func TestSession_UserInfo(t *testing.T) {
	t.Parallel()

	backend := testutil.NewFakeBackend(t)
	backend.AddUser("bob", "secret123")
	s, _ := newTestSession(t, backend)
	require.NoError(t, s.Login(t.Context(), "bob", "secret123"))

	user, err := s.UserInfo(t.Context())

	require.NoError(t, err)
	require.Equal(t, "tester", user.Nickname)
}
