package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/logger"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8000"
	defaultLogLevel    = logger.LevelWarn
	defaultEnvironment = logger.EnvDevelopment
	defaultTimeout     = client.DefaultTimeout
)

type Config struct {
	// Default logging level
	LogLevel string

	// Backend origin to connect to
	BaseURL string

	// Token file location. Empty means the per-user default path
	TokenFile string

	// Overall per-request timeout. Generation calls are slow, keep it long
	Timeout time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLogLevel,
		BaseURL:     defaultBaseURL,
		Timeout:     defaultTimeout,
		Environment: defaultEnvironment,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			if d, err := time.ParseDuration(value); err == nil {
				*o = d
			}
		}
	}

	envMap := map[string]func(string){
		"MANGA_API_URL":     setString(&c.BaseURL),
		"MANGA_TOKEN_FILE":  setString(&c.TokenFile),
		"MANGA_LOG_LEVEL":   setString(&c.LogLevel),
		"MANGA_TIMEOUT":     setDuration(&c.Timeout),
		"MANGA_ENVIRONMENT": setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

// RegisterFlags binds the options to the given flag set with the current
// values as defaults, so parsed flags win over environment and defaults.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.BaseURL, "api", "a", c.BaseURL, "Backend API address")
	fs.StringVar(&c.TokenFile, "token-file", c.TokenFile, "Token file path (default: per-user config dir)")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Request timeout")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("backend API address must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
