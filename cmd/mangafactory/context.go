package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/logger"
	"github.com/TTboyi/manga-factory/internal/session"
	"github.com/TTboyi/manga-factory/internal/tokenstore"
)

// commandContext wires config, logger, token store, client and session
// lazily so commands only pay for what they use.
type commandContext struct {
	cfg *Config

	initOnce sync.Once
	initErr  error

	logger  logger.Logger
	store   tokenstore.Store
	client  *client.Client
	session *session.Session
}

func newCommandContext(cfg *Config) *commandContext {
	return &commandContext{cfg: cfg}
}

func (c *commandContext) init() error {
	c.initOnce.Do(func() {
		if err := c.cfg.Validate(); err != nil {
			c.initErr = err
			return
		}

		log, err := logger.New(c.cfg.Environment, c.cfg.LogLevel)
		if err != nil {
			c.initErr = fmt.Errorf("error initializing logger. Err: %w", err)
			return
		}
		c.logger = log

		tokenFile := c.cfg.TokenFile
		if tokenFile == "" {
			tokenFile, err = tokenstore.DefaultPath()
			if err != nil {
				c.initErr = err
				return
			}
		}
		store, err := tokenstore.NewFile(tokenFile)
		if err != nil {
			c.initErr = err
			return
		}
		c.store = store

		apiClient, err := client.New(client.Config{
			BaseURL: c.cfg.BaseURL,
			Store:   store,
			Logger:  log,
			Timeout: c.cfg.Timeout,
			OnSessionExpired: func() {
				fmt.Fprintln(os.Stderr, "Session expired. Run 'mangafactory login' to sign in again.")
			},
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.client = apiClient

		c.session, c.initErr = session.New(apiClient, store, log)
	})
	return c.initErr
}

func (c *commandContext) ensureClient() (*client.Client, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return c.client, nil
}

func (c *commandContext) ensureSession() (*session.Session, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return c.session, nil
}

func (c *commandContext) ensureStore() (tokenstore.Store, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return c.store, nil
}
