package tokenstore

import "sync"

// Memory keeps the pair in process memory only. Used in tests and for
// one-shot commands where persisting the session is not wanted.
type Memory struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Access() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.access != ""
}

func (s *Memory) Refresh() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, s.refresh != ""
}

func (s *Memory) Set(access string, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
}

func (s *Memory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
}
