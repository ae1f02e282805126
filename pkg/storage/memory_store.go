package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/Sriram-PR/webdumper/pkg/models"
)

// MemoryStore is the default VisitedStore: a mutex-guarded map that lives for one run.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]models.PageDBEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.PageDBEntry)}
}

// TryClaim implements the VisitedStore interface
func (s *MemoryStore) TryClaim(url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[url]; exists {
		return false, nil
	}
	s.entries[url] = models.PageDBEntry{Status: models.PageStatusClaimed, LastAttempt: time.Now()}
	return true, nil
}

// CheckPageStatus implements the VisitedStore interface
func (s *MemoryStore) CheckPageStatus(url string) (models.PageStatus, *models.PageDBEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[url]
	if !ok {
		return models.PageStatusUnclaimed, nil, nil
	}
	return entry.Status, &entry, nil
}

// UpdatePageStatus implements the VisitedStore interface
func (s *MemoryStore) UpdatePageStatus(url string, entry *models.PageDBEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.entries[url].Status
	if !current.CanTransitionTo(entry.Status) {
		return fmt.Errorf("%w: '%s' %s -> %s", ErrInvalidTransition, url, current, entry.Status)
	}
	s.entries[url] = *entry
	return nil
}

// GetVisitedCount implements the VisitedStore interface
func (s *MemoryStore) GetVisitedCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Close implements the VisitedStore interface. The map is kept so counts remain readable.
func (s *MemoryStore) Close() error { return nil }
