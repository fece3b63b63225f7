package chat

import (
	"sort"
	"sync"
)

// PresenceSet is the authoritative online set. It changes only when a
// connection registers or unregisters; there is no heartbeat or
// timeout-based eviction, so an unclean disconnect keeps a user online
// until the read pump notices the dead connection.
type PresenceSet struct {
	mu     sync.RWMutex
	online map[uint]struct{}
}

func NewPresenceSet() *PresenceSet {
	return &PresenceSet{
		online: make(map[uint]struct{}),
	}
}

func (p *PresenceSet) Add(userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = struct{}{}
}

func (p *PresenceSet) Remove(userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

func (p *PresenceSet) IsOnline(userID uint) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

func (p *PresenceSet) Online() []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]uint, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
