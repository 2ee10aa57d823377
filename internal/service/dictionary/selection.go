package dictionary

import (
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// Selection is the entry a caller currently has open. It is owned by the
// caller and only changes through its methods; the service never touches it.
// Safe for concurrent use.
type Selection struct {
	mu      sync.RWMutex
	current *domain.StoredEntry
}

// Change describes what happened to a stored entry. A nil Entry means the
// entry with ID was deleted.
type Change struct {
	ID    uuid.UUID
	Entry *domain.StoredEntry
}

// Select makes e the current entry.
func (s *Selection) Select(e *domain.StoredEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = e
}

// Current returns the selected entry, if any.
func (s *Selection) Current() (*domain.StoredEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Apply updates the selection after c. Changes to other entries are ignored.
func (s *Selection) Apply(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != c.ID {
		return
	}
	s.current = c.Entry
}
