package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"thali/internal/kv"
)

// Store keeps entries in a map. Nothing survives Close or process exit.
type Store struct {
	mu      sync.Mutex
	entries map[string][]byte
	version uint64
}

var _ kv.Medium = (*Store)(nil)

func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// NewWithEntries seeds the store, e.g. with a dump of an older install.
func NewWithEntries(entries map[string][]byte) *Store {
	s := New()
	for k, v := range entries {
		s.entries[k] = append([]byte(nil), v...)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) SetIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = append([]byte(nil), value...)
	s.version++
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false, nil
	}
	delete(s.entries, key)
	s.version++
	return true, nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Version(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, nil
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored entries across all prefixes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
