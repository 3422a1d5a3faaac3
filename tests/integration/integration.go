package integration

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/logger"
	"github.com/TTboyi/manga-factory/internal/session"
	"github.com/TTboyi/manga-factory/internal/testutil"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
)

// Env is a fully wired client stack talking to a fake backend: token
// store, authenticated client and session, as the CLI assembles them.
type Env struct {
	Backend *testutil.FakeBackend
	Store   *tokenstore.Memory
	Client  *client.Client
	Session *session.Session

	expired atomic.Int32
}

// ExpiredCount reports how many times the stack declared the session dead.
func (e *Env) ExpiredCount() int {
	return int(e.expired.Load())
}

func Setup(t *testing.T) *Env {
	t.Helper()

	env := &Env{
		Backend: testutil.NewFakeBackend(t),
		Store:   tokenstore.NewMemory(),
	}

	c, err := client.New(client.Config{
		BaseURL:          env.Backend.URL(),
		Store:            env.Store,
		Logger:           logger.NewNoOpLogger(),
		OnSessionExpired: func() { env.expired.Add(1) },
	})
	require.NoError(t, err, "client should be created without errors")
	env.Client = c

	s, err := session.New(c, env.Store, logger.NewNoOpLogger())
	require.NoError(t, err, "session should be created without errors")
	env.Session = s

	return env
}
