// Package state persists the visitor's consent decision across page loads.
// It is the Go model of the browser-side store the generated artifact
// embeds: a single fixed localStorage key holding "yes", "no", or nothing.
package state

import (
	"log/slog"

	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// Storage is the minimal persistence surface the store needs. In the browser
// this is window.localStorage; tests and the headless engine use an
// in-memory implementation. Implementations may fail (private browsing,
// quota exceeded); the store degrades to unset rather than propagating.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Store reads and writes the consent decision through a Storage backend.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

// NewStore creates a consent store over the given storage backend.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger.With("component", "consent_store"),
	}
}

// State returns the current consent decision. Storage failures and
// unrecognized stored values are treated as unset; callers re-read rather
// than subscribing to changes.
func (s *Store) State() domain.ConsentState {
	value, err := s.storage.Get(domain.ConsentStorageKey)
	if err != nil {
		s.logger.Warn("consent storage read failed, treating as unset", "error", err)
		return domain.ConsentUnset
	}
	switch value {
	case domain.ConsentValueGranted:
		return domain.ConsentGranted
	case domain.ConsentValueDenied:
		return domain.ConsentDenied
	default:
		return domain.ConsentUnset
	}
}

// SetState persists a new consent decision synchronously. Invalid
// transitions are rejected without touching storage; a storage write failure
// is logged and reported but leaves the previous value in place.
func (s *Store) SetState(next domain.ConsentState) error {
	current := s.State()
	if current == next {
		return nil
	}
	if !current.CanTransition(next) {
		s.logger.Warn("ignoring invalid consent transition", "from", string(current), "to", string(next))
		return nil
	}

	var value string
	switch next {
	case domain.ConsentGranted:
		value = domain.ConsentValueGranted
	case domain.ConsentDenied:
		value = domain.ConsentValueDenied
	default:
		return nil
	}

	if err := s.storage.Set(domain.ConsentStorageKey, value); err != nil {
		s.logger.Warn("consent storage write failed", "error", err)
		return err
	}
	return nil
}

// MemoryStorage is an in-memory Storage used by tests and the headless
// engine. The zero value is ready to use.
type MemoryStorage struct {
	values map[string]string
}

func (m *MemoryStorage) Get(key string) (string, error) {
	return m.values[key], nil
}

func (m *MemoryStorage) Set(key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}
