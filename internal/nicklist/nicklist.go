// Package nicklist tracks member display names per community, used to pick
// a disguise name when talking to the external engine.
package nicklist

import (
	"math/rand"
	"sync"
)

// Registry maps community id to the member names seen at join time.
type Registry struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func New() *Registry {
	return &Registry{lists: map[string][]string{}}
}

// Replace swaps in the current member names for a community.
func (r *Registry) Replace(communityID string, names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]string, len(names))
	copy(list, names)
	r.lists[communityID] = list
}

// Remove drops a community's list entirely.
func (r *Registry) Remove(communityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, communityID)
}

// Random returns a random member name for the community. ok is false when
// the community has no names; callers must skip the nickname switch in that
// case rather than divide by zero.
func (r *Registry) Random(communityID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.lists[communityID]
	if len(list) == 0 {
		return "", false
	}
	return list[rand.Intn(len(list))], true
}

// Len reports how many names a community has.
func (r *Registry) Len(communityID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lists[communityID])
}

// Communities reports how many communities have a roster.
func (r *Registry) Communities() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lists)
}
