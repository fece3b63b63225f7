package chatclient

import (
	"sort"
	"sync"
)

// PresenceTracker mirrors the server's online set. It changes only on
// explicit push events; there is no client-side timeout or heartbeat
// inference, so a participant stays online until the server says
// otherwise.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[uint]struct{}
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		online: make(map[uint]struct{}),
	}
}

// SetOnline replaces the set with a server snapshot.
func (t *PresenceTracker) SetOnline(ids []uint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.online = make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		t.online[id] = struct{}{}
	}
}

func (t *PresenceTracker) Joined(id uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online[id] = struct{}{}
}

func (t *PresenceTracker) Left(id uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.online, id)
}

func (t *PresenceTracker) IsOnline(id uint) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.online[id]
	return ok
}

func (t *PresenceTracker) Online() []uint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uint, 0, len(t.online))
	for id := range t.online {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
