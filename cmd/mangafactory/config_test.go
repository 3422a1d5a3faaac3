package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/TTboyi/manga-factory/internal/client"
)

func TestConfig(t *testing.T) {
	t.Run("set default option", func(t *testing.T) {
		c := NewConfig()

		require.Equal(t, "http://127.0.0.1:8000", c.BaseURL, "default backend address not set")
		require.Equal(t, "warn", c.LogLevel, "default log level not set")
		require.Equal(t, "dev", c.Environment, "default environment not set")
		require.Equal(t, client.DefaultTimeout, c.Timeout, "default timeout not set")
		require.Equal(t, "", c.TokenFile, "token file should be empty by default")
	})

	t.Run("load env", func(t *testing.T) {
		c := NewConfig()
		getenv := func(key string) string {
			switch key {
			case "MANGA_API_URL":
				return "https://manga.example"
			case "MANGA_TOKEN_FILE":
				return "/tmp/tokens.json"
			case "MANGA_LOG_LEVEL":
				return "debug"
			case "MANGA_TIMEOUT":
				return "30s"
			case "MANGA_ENVIRONMENT":
				return "prod"
			default:
				return ""
			}
		}

		c.LoadEnv(getenv)

		require.Equal(t, "https://manga.example", c.BaseURL)
		require.Equal(t, "/tmp/tokens.json", c.TokenFile)
		require.Equal(t, "debug", c.LogLevel)
		require.Equal(t, 30*time.Second, c.Timeout)
		require.Equal(t, "prod", c.Environment)
	})

	t.Run("empty env keeps defaults", func(t *testing.T) {
		c := NewConfig()

		c.LoadEnv(func(string) string { return "" })

		require.Equal(t, "http://127.0.0.1:8000", c.BaseURL)
		require.Equal(t, "warn", c.LogLevel)
	})

	t.Run("bad timeout value ignored", func(t *testing.T) {
		c := NewConfig()
		getenv := func(key string) string {
			if key == "MANGA_TIMEOUT" {
				return "not-a-duration"
			}
			return ""
		}

		c.LoadEnv(getenv)

		require.Equal(t, client.DefaultTimeout, c.Timeout, "unparsable timeout must keep the default")
	})

	t.Run("parse flags", func(t *testing.T) {
		tests := []struct {
			name  string
			flags []string
		}{
			{
				name: "short",
				flags: []string{
					"-a", "https://manga.example",
					"-l", "debug",
					"-e", "prod",
					"--token-file", "/tmp/tokens.json",
					"--timeout", "30s",
				},
			},
			{
				name: "long",
				flags: []string{
					"--api", "https://manga.example",
					"--log-level", "debug",
					"--environment", "prod",
					"--token-file", "/tmp/tokens.json",
					"--timeout", "30s",
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := NewConfig()
				fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
				c.RegisterFlags(fs)

				err := fs.Parse(tt.flags)

				require.NoError(t, err, "correct flags must parse without error")
				require.Equal(t, "https://manga.example", c.BaseURL)
				require.Equal(t, "debug", c.LogLevel)
				require.Equal(t, "prod", c.Environment)
				require.Equal(t, "/tmp/tokens.json", c.TokenFile)
				require.Equal(t, 30*time.Second, c.Timeout)
			})
		}

		t.Run("invalid flags", func(t *testing.T) {
			c := NewConfig()
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			c.RegisterFlags(fs)

			err := fs.Parse([]string{"--invalid-flag", "value"})

			require.Error(t, err, "invalid flag should return an error")
		})
	})

	t.Run("validate", func(t *testing.T) {
		c := NewConfig()
		require.NoError(t, c.Validate())

		c.BaseURL = ""
		require.Error(t, c.Validate(), "empty backend address must be rejected")

		c = NewConfig()
		c.Timeout = 0
		require.Error(t, c.Validate(), "zero timeout must be rejected")
	})
}
