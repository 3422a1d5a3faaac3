package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/tests/integration"
)

func Test_SessionFlow(t *testing.T) {
	t.Parallel()

	t.Run("login then authorized call", func(t *testing.T) {
		env := integration.Setup(t)
		env.Backend.AddUser("nk", "StrongEnoughPassword")

		err := env.Session.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)
		require.True(t, env.Session.IsLoggedIn())

		projects, err := env.Client.ListMyProjects(t.Context())
		require.NoError(t, err, "authorized call should pass with the stored token")
		require.Empty(t, projects)
		require.Equal(t, 0, env.Backend.Calls("/auth/refresh"), "fresh token should need no refresh")
	})

	t.Run("stale access token refreshed and rotated pair stored", func(t *testing.T) {
		env := integration.Setup(t)
		env.Backend.AddUser("nk", "StrongEnoughPassword")

		require.NoError(t, env.Session.Login(t.Context(), "nk", "StrongEnoughPassword"))
		staleAccess, _ := env.Store.Access()
		oldRefresh, _ := env.Store.Refresh()

		env.Backend.RevokeAllAccess()

		_, err := env.Client.ListMyProjects(t.Context())
		require.NoError(t, err, "stale token should be refreshed behind the call")
		require.Equal(t, 1, env.Backend.Calls("/auth/refresh"))

		newAccess, ok := env.Store.Access()
		require.True(t, ok)
		require.NotEqual(t, staleAccess, newAccess, "access token should be replaced after refresh")
		newRefresh, ok := env.Store.Refresh()
		require.True(t, ok)
		require.NotEqual(t, oldRefresh, newRefresh, "refresh token should be rolled after refresh")
		require.Equal(t, 0, env.ExpiredCount())
	})

	t.Run("refresh token single use", func(t *testing.T) {
		env := integration.Setup(t)
		env.Backend.AddUser("nk", "StrongEnoughPassword")
		require.NoError(t, env.Session.Login(t.Context(), "nk", "StrongEnoughPassword"))

		oldRefresh, _ := env.Store.Refresh()

		first, err := env.Client.Refresh(t.Context(), oldRefresh)
		require.NoError(t, err)
		require.NotEmpty(t, first.Access)

		_, err = env.Client.Refresh(t.Context(), oldRefresh)
		require.Error(t, err, "used refresh token should be rejected")
	})

	t.Run("dead refresh token expires the session once", func(t *testing.T) {
		env := integration.Setup(t)
		env.Backend.AddUser("nk", "StrongEnoughPassword")
		require.NoError(t, env.Session.Login(t.Context(), "nk", "StrongEnoughPassword"))

		env.Backend.RevokeAllAccess()
		env.Backend.RefreshFails = true

		_, err := env.Client.ListMyProjects(t.Context())
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrAuthExpired)
		require.Equal(t, 1, env.ExpiredCount(), "session should be declared dead exactly once")
		require.False(t, env.Session.IsLoggedIn(), "dead session should not keep tokens")
	})

	t.Run("logout drops tokens and further calls fail", func(t *testing.T) {
		env := integration.Setup(t)
		env.Backend.AddUser("nk", "StrongEnoughPassword")
		require.NoError(t, env.Session.Login(t.Context(), "nk", "StrongEnoughPassword"))

		env.Session.Logout(t.Context())
		require.False(t, env.Session.IsLoggedIn())

		_, err := env.Client.ListMyProjects(t.Context())
		require.Error(t, err, "call without any session should fail")
		require.True(t, apperrors.IsUnauthorized(err))
	})
}
