// Package usercache mirrors chat users seen in messages to a database table
// for external tooling, written out by a background queue so the ingestion
// path never waits on the database.
package usercache

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CachedUser is one mirrored chat user.
type CachedUser struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
	SeenAt   int64  `json:"seen_at"`
}

func (CachedUser) TableName() string {
	return "cached_users"
}

// Writer drains a queue of seen users into the database.
type Writer struct {
	db *gorm.DB

	// Pacing, overridable in tests
	BusyDelay time.Duration
	IdleDelay time.Duration

	mu        sync.Mutex
	pending   []CachedUser
	terminate chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{
		db:        db,
		BusyDelay: time.Millisecond,
		IdleDelay: time.Second,
		terminate: make(chan struct{}),
	}
}

// Enqueue queues one user for the writer. Never blocks.
func (w *Writer) Enqueue(u CachedUser) {
	w.mu.Lock()
	w.pending = append(w.pending, u)
	w.mu.Unlock()
}

// Depth reports how many users are waiting to be written.
func (w *Writer) Depth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Start launches the writer goroutine.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
}

// Stop signals the writer and waits for the current item to finish.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() { close(w.terminate) })
	w.wg.Wait()
}

func (w *Writer) run() {
	lastReport := time.Now()
	for {
		select {
		case <-w.terminate:
			return
		default:
		}

		w.mu.Lock()
		var u *CachedUser
		if len(w.pending) > 0 {
			item := w.pending[0]
			w.pending = w.pending[1:]
			u = &item
		}
		depth := len(w.pending)
		w.mu.Unlock()

		if u != nil {
			if err := w.save(*u); err != nil {
				log.Printf("[UserCache] ERROR: saving user %s: %v", u.ID, err)
			}
			if !w.sleep(w.BusyDelay) {
				return
			}
		} else {
			if !w.sleep(w.IdleDelay) {
				return
			}
		}

		if time.Since(lastReport) > time.Minute {
			if depth > 0 {
				log.Printf("[UserCache] User queue size: %d objects", depth)
			}
			lastReport = time.Now()
		}
	}
}

func (w *Writer) save(u CachedUser) error {
	if u.SeenAt == 0 {
		u.SeenAt = time.Now().Unix()
	}
	return w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "bot", "seen_at"}),
	}).Create(&u).Error
}

func (w *Writer) sleep(d time.Duration) bool {
	select {
	case <-w.terminate:
		return false
	case <-time.After(d):
		return true
	}
}
