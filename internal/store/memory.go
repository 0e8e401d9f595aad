package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
)

type memoryEntry struct {
	snapshot  []byte
	updatedAt time.Time
}

// MemoryStore keeps encoded snapshots in a map, so a loaded
// snapshot never aliases one that is still stored.
type MemoryStore struct {
	ttl      time.Duration
	sessions map[string]memoryEntry
	mu       sync.RWMutex
	now      func() time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	initMapSize := 10

	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry, initMapSize),
		now:      time.Now,
	}
}

func (ms *MemoryStore) Save(_ context.Context, sessionId string, snapshot mb.Snapshot) bool {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("failed to encode session %s: %s\n", sessionId, err)
		return false
	}

	ms.mu.Lock()
	ms.sessions[sessionId] = memoryEntry{snapshot: encoded, updatedAt: ms.now()}
	ms.mu.Unlock()
	return true
}

func (ms *MemoryStore) Load(_ context.Context, sessionId string) (mb.Snapshot, bool) {
	ms.mu.RLock()
	entry, prs := ms.sessions[sessionId]
	ms.mu.RUnlock()
	if !prs {
		return mb.Snapshot{}, false
	}

	var snapshot mb.Snapshot
	if err := json.Unmarshal(entry.snapshot, &snapshot); err != nil {
		log.Printf("failed to decode session %s: %s\n", sessionId, err)
		return mb.Snapshot{}, false
	}
	return snapshot, true
}

func (ms *MemoryStore) Remove(_ context.Context, sessionId string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, prs := ms.sessions[sessionId]; !prs {
		return false
	}
	delete(ms.sessions, sessionId)
	return true
}

func (ms *MemoryStore) CleanUpPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms.removeStale()
		}
	}
}

func (ms *MemoryStore) removeStale() int {
	assumedStaleSessions := 10
	toDelete := make([]string, 0, assumedStaleSessions)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for id, entry := range ms.sessions {
		if ms.now().Sub(entry.updatedAt) > ms.ttl {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(ms.sessions, id)
		log.Printf("removed stale session: %s", id)
	}
	return len(toDelete)
}
