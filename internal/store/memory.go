package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot matches the request.
	ErrNotFound = errors.New("no snapshot found")
)

// MemoryStore is a concurrency-safe in-memory snapshot history for one
// config entry. Entries never share a store.
type MemoryStore struct {
	mu sync.RWMutex

	snapshots []*weather.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots (0 = unlimited)
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new snapshot and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot *weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.snapshots) > s.maxHistory {
		over := len(s.snapshots) - s.maxHistory
		s.snapshots = s.snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.snapshots); i++ {
			if s.snapshots[i].FetchedAt.After(cutoff) || s.snapshots[i].FetchedAt.Equal(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.snapshots) {
			s.snapshots = s.snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot.
func (s *MemoryStore) GetLatest() (*weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

// GetRange returns all snapshots fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]*weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []*weather.Snapshot
	for _, snap := range s.snapshots {
		if (snap.FetchedAt.Equal(from) || snap.FetchedAt.After(from)) &&
			(snap.FetchedAt.Equal(to) || snap.FetchedAt.Before(to)) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Len reports the number of retained snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
