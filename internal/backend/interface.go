package backend

import (
	"context"
	"time"

	"thali/internal/kv"
	"thali/internal/store"
	"thali/internal/tracker"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is a ready tracker over an open medium. Cleanup closes the
// publisher and the medium, in that order.
type BackendResult struct {
	Medium  kv.Medium
	Store   *store.Store
	Tracker *tracker.Tracker
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Badger specific
	BadgerPath string

	KeyPrefix string

	// Events; an empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	BadgerBackend BackendType = "badger"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, BadgerBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
