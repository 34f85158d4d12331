// Package presence periodically records operational counters so that
// dashboards and the status endpoint can report on the bot without
// touching the live pipeline.
package presence

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-infobot/internal/fact"
)

// Counters is the single-row snapshot refreshed by the worker.
type Counters struct {
	ID               uint  `json:"id" gorm:"primaryKey"`
	Communities      int   `json:"communities"`
	Channels         int   `json:"channels"`
	Users            int   `json:"users"`
	MessagesReceived int64 `json:"messages_received"`
	RepliesSent      int64 `json:"replies_sent"`
	Phrases          int64 `json:"phrases"`
	MemoryKB         int64 `json:"memory_kb"`
	UpdatedAt        int64 `json:"updated_at"`
}

func (Counters) TableName() string {
	return "presence_counters"
}

// Sample reports live totals from whoever owns the chat connection.
type Sample struct {
	Communities int
	Channels    int
	Users       int
	Received    uint64
	Sent        uint64
}

// Worker snapshots counters on a fixed cadence.
type Worker struct {
	db    *gorm.DB
	facts fact.Provider

	// Sampler supplies live totals; ResetCounters zeroes the message
	// counters after each reset window so rates stay per-window.
	Sampler       func() Sample
	ResetCounters func()

	// Cadence, overridable in tests
	Interval   time.Duration
	ResetEvery time.Duration

	terminate chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewWorker(db *gorm.DB, facts fact.Provider, sampler func() Sample) *Worker {
	return &Worker{
		db:         db,
		facts:      facts,
		Sampler:    sampler,
		Interval:   30 * time.Second,
		ResetEvery: 10 * time.Minute,
		terminate:  make(chan struct{}),
	}
}

// Start launches the snapshot goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
}

// Stop signals the worker and waits for it to exit.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.terminate) })
	w.wg.Wait()
}

func (w *Worker) run() {
	lastReset := time.Now()
	for {
		select {
		case <-w.terminate:
			return
		case <-time.After(w.Interval):
		}

		if err := w.Snapshot(); err != nil {
			log.Printf("[Presence] ERROR: writing counters: %v", err)
		}

		if time.Since(lastReset) >= w.ResetEvery {
			if w.ResetCounters != nil {
				w.ResetCounters()
			}
			lastReset = time.Now()
		}
	}
}

// Snapshot writes one counters row immediately.
func (w *Worker) Snapshot() error {
	var s Sample
	if w.Sampler != nil {
		s = w.Sampler()
	}
	phrases, err := w.facts.Count()
	if err != nil {
		log.Printf("[Presence] WARNING: counting phrases: %v", err)
	}
	row := Counters{
		ID:               1,
		Communities:      s.Communities,
		Channels:         s.Channels,
		Users:            s.Users,
		MessagesReceived: int64(s.Received),
		RepliesSent:      int64(s.Sent),
		Phrases:          phrases,
		MemoryKB:         GetRSS(),
		UpdatedAt:        time.Now().Unix(),
	}
	return w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// GetRSS reads the resident set size in kilobytes, or 0 where
// /proc is unavailable.
func GetRSS() int64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb
	}
	return 0
}
