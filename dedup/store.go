package dedup

import (
	"sync"
	"time"
)

// Clock supplies the current time. Tests inject a deterministic one.
type Clock func() time.Time

// Store records which URL fingerprints have been seen recently.
type Store interface {
	// SeenOrMark reports whether the fingerprint was already recorded,
	// marking it as seen if it was not. The check-and-write is atomic.
	SeenOrMark(fingerprint string) bool
	// Seen reports whether the fingerprint is recorded, without marking.
	Seen(fingerprint string) bool
	// Mark records the fingerprint as seen now.
	Mark(fingerprint string)
	// Len returns the number of live entries.
	Len() int
}

// MemoryStore is a process-local TTL store. History is lost on restart,
// so dedup is at-least-once, never exactly-once. Expired entries are
// removed lazily before each lookup rather than by a background timer;
// the sweep is O(size) and is paid by whichever request triggers it.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[string]time.Time
}

func NewMemoryStore(ttl time.Duration, clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]time.Time),
	}
}

func (s *MemoryStore) SeenOrMark(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if _, ok := s.entries[fingerprint]; ok {
		return true
	}
	s.entries[fingerprint] = s.now()
	return false
}

func (s *MemoryStore) Seen(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	_, ok := s.entries[fingerprint]
	return ok
}

func (s *MemoryStore) Mark(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[fingerprint]; !ok {
		s.entries[fingerprint] = s.now()
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	return len(s.entries)
}

// sweepLocked drops every entry strictly older than the TTL. Caller
// holds the mutex.
func (s *MemoryStore) sweepLocked() {
	t := s.now()
	for fp, firstSeen := range s.entries {
		if t.Sub(firstSeen) > s.ttl {
			delete(s.entries, fp)
		}
	}
}
