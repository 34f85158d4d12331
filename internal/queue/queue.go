// Package queue provides the FIFO queues between message ingestion, the
// external engine bridge, and chat delivery.
package queue

import (
	"sync"

	"github.com/google/uuid"
)

// Item is one queued utterance or reply. Tombstoned items stay in the queue
// (positions of in-flight iteration stay valid) but must never produce
// delivered output.
type Item struct {
	ID          string
	Text        string
	Username    string
	ChannelID   string
	CommunityID string
	Addressed   bool
	Tombstoned  bool
}

// NewItem builds a queue item with a fresh id.
func NewItem(text, username, channelID, communityID string, addressed bool) *Item {
	return &Item{
		ID:          uuid.New().String(),
		Text:        text,
		Username:    username,
		ChannelID:   channelID,
		CommunityID: communityID,
		Addressed:   addressed,
	}
}

// Stats is a point-in-time snapshot of a queue.
type Stats struct {
	Depth int    `json:"depth"`
	Shed  uint64 `json:"shed"`
}

// Queue is a mutex-guarded FIFO of items. Enqueue never blocks: when a
// capacity is set and reached, the oldest non-tombstoned item is shed
// instead. Capacity 0 means unbounded.
type Queue struct {
	mu       sync.Mutex
	items    []*Item
	capacity int
	shed     uint64
}

func New(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Push appends an item, shedding the oldest live item first when full.
func (q *Queue) Push(item *Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && q.live() >= q.capacity {
		for i, it := range q.items {
			if !it.Tombstoned {
				q.items = append(q.items[:i], q.items[i+1:]...)
				q.shed++
				break
			}
		}
	}
	q.items = append(q.items, item)
}

// Pop removes and returns the oldest live item, skipping over tombstoned
// entries. Returns nil when the queue holds nothing deliverable.
func (q *Queue) Pop() *Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		if item.Tombstoned {
			continue
		}
		return item
	}
	return nil
}

// Tombstone marks every queued item belonging to a community, in place.
func (q *Queue) Tombstone(communityID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, item := range q.items {
		if item.CommunityID == communityID {
			item.Tombstoned = true
			n++
		}
	}
	return n
}

// Len reports how many items are queued, tombstoned ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stats returns the current depth and total shed count.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{Depth: len(q.items), Shed: q.shed}
}

// live counts non-tombstoned items; callers hold the lock.
func (q *Queue) live() int {
	n := 0
	for _, it := range q.items {
		if !it.Tombstoned {
			n++
		}
	}
	return n
}
