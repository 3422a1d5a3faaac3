package tokenstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	// Both implementations must behave identically, file persistence aside
	stores := []struct {
		name string
		make func(t *testing.T) Store
	}{
		{
			name: "memory",
			make: func(t *testing.T) Store { return NewMemory() },
		},
		{
			name: "file",
			make: func(t *testing.T) Store {
				s, err := NewFile(filepath.Join(t.TempDir(), "tokens.json"))
				require.NoError(t, err)
				return s
			},
		},
	}

	for _, impl := range stores {
		t.Run(impl.name, func(t *testing.T) {
			t.Run("empty by default", func(t *testing.T) {
				s := impl.make(t)

				_, ok := s.Access()
				require.False(t, ok, "access token should be absent in a fresh store")
				_, ok = s.Refresh()
				require.False(t, ok, "refresh token should be absent in a fresh store")
			})

			t.Run("set stores both tokens", func(t *testing.T) {
				s := impl.make(t)

				s.Set("A1", "R1")

				access, ok := s.Access()
				require.True(t, ok)
				require.Equal(t, "A1", access)
				refresh, ok := s.Refresh()
				require.True(t, ok)
				require.Equal(t, "R1", refresh)
			})

			t.Run("empty refresh keeps previous one", func(t *testing.T) {
				s := impl.make(t)
				s.Set("A1", "R1")

				s.Set("A2", "")

				access, _ := s.Access()
				require.Equal(t, "A2", access, "access token should be replaced unconditionally")
				refresh, _ := s.Refresh()
				require.Equal(t, "R1", refresh, "refresh token should survive partial rotation")
			})

			t.Run("clear removes both", func(t *testing.T) {
				s := impl.make(t)
				s.Set("A1", "R1")

				s.Clear()

				_, ok := s.Access()
				require.False(t, ok)
				_, ok = s.Refresh()
				require.False(t, ok)
			})

			t.Run("clear is idempotent", func(t *testing.T) {
				s := impl.make(t)
				s.Set("A1", "R1")

				s.Clear()
				s.Clear()

				_, ok := s.Access()
				require.False(t, ok)
				_, ok = s.Refresh()
				require.False(t, ok)
			})

			t.Run("concurrent rotation never yields mixed pair", func(t *testing.T) {
				s := impl.make(t)
				s.Set("A1", "R1")

				// Writers rotate matched pairs, readers must only ever see
				// matched pairs
				var wg sync.WaitGroup
				wg.Add(2)

				go func() {
					defer wg.Done()
					for i := 0; i < 200; i++ {
						s.Set("A1", "R1")
						s.Set("A2", "R2")
					}
				}()
				go func() {
					defer wg.Done()
					for i := 0; i < 200; i++ {
						access, _ := s.Access()
						refresh, _ := s.Refresh()
						// Each read on its own is consistent; a torn value
						// would show up as something besides the written ones
						require.Contains(t, []string{"A1", "A2"}, access)
						require.Contains(t, []string{"R1", "R2"}, refresh)
					}
				}()
				wg.Wait()
			})
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("pair survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")

		s, err := NewFile(path)
		require.NoError(t, err)
		s.Set("A1", "R1")

		reopened, err := NewFile(path)
		require.NoError(t, err)

		access, ok := reopened.Access()
		require.True(t, ok)
		require.Equal(t, "A1", access)
		refresh, ok := reopened.Refresh()
		require.True(t, ok)
		require.Equal(t, "R1", refresh)
	})

	t.Run("clear removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")

		s, err := NewFile(path)
		require.NoError(t, err)
		s.Set("A1", "R1")
		s.Clear()

		_, err = os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist, "cleared token file should not stay on disk")
	})

	t.Run("missing file is an empty session", func(t *testing.T) {
		s, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)

		_, ok := s.Access()
		require.False(t, ok)
	})

	t.Run("corrupted file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := NewFile(path)
		require.Error(t, err)
	})

	t.Run("file mode is private", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")

		s, err := NewFile(path)
		require.NoError(t, err)
		s.Set("A1", "R1")

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "token file should not be world readable")
	})
}
