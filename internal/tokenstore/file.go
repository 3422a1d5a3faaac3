package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File persists the pair as a JSON file so the session survives between
// CLI invocations. Tokens are bearer credentials, hence 0600.
type File struct {
	mu   sync.Mutex
	path string

	access  string
	refresh string
}

type fileFormat struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// NewFile loads the pair stored at path. A missing file is a valid empty
// session, any other read or decode error is returned.
func NewFile(path string) (*File, error) {
	s := &File{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("error reading token file %q. Err: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error decoding token file %q. Err: %w", path, err)
	}

	s.access = f.AccessToken
	s.refresh = f.RefreshToken
	return s, nil
}

// DefaultPath returns the token file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error resolving user config dir. Err: %w", err)
	}
	return filepath.Join(dir, "manga-factory", "tokens.json"), nil
}

func (s *File) Access() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.access != ""
}

func (s *File) Refresh() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, s.refresh != ""
}

func (s *File) Set(access string, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	s.persist()
}

func (s *File) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""

	// Removing the file entirely keeps Clear idempotent and leaves no
	// stale credentials on disk
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Best effort: memory state is already cleared
		_ = err
	}
}

// persist writes the pair under the held lock. Write goes through a temp
// file and rename so a crash never leaves a truncated token file.
func (s *File) persist() {
	data, err := json.MarshalIndent(fileFormat{AccessToken: s.access, RefreshToken: s.refresh}, "", "  ")
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
