package render

import (
	"sync"

	"logtail-dashboard/internal/model"
)

// Renderer consumes the ordered snapshot produced by one poll tick.
// Implementations must not retain or mutate the snapshot's rows.
type Renderer interface {
	Render(snap model.Snapshot)
}

// SnapshotStore keeps the latest rendered snapshot for HTTP readers.
// A tick replaces the snapshot as a whole, so readers never observe a
// partially written result.
type SnapshotStore struct {
	mu     sync.RWMutex
	latest model.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Render(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
}

func (s *SnapshotStore) Latest() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
