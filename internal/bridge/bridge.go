package bridge

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-infobot/internal/config"
	"go-infobot/internal/nicklist"
	"go-infobot/internal/queue"
)

// Deliverer is the outbound chat collaborator.
type Deliverer interface {
	Send(channelID, communityID, text string) error
}

// Policy answers whether a channel has learning enabled.
type Policy interface {
	LearningEnabled(channelID, communityID string) bool
}

// Worker connection states.
const (
	StateDisconnected  = "disconnected"
	StateConnecting    = "connecting"
	StateAuthenticated = "authenticated"
	StateServing       = "serving"
)

// Common question prefixes, stripped so "What is x" is treated like "x?".
var questionPrefixes = []string{
	"what is a",
	"whats",
	"whos",
	"whats up with",
	"whats going off with",
	"what is",
	"tell me about",
	"who is",
	"what are",
	"who are",
	"wtf is",
	"tell me",
	"can someone help me with",
	"can you help me with",
	"can you help me",
	"can someone help me",
	"can i ask about",
	"can i ask",
	"do you",
	"can you",
	"will you",
	"wont you",
	"won't you",
	"how do i",
}

// CleanPrefixes strips the leading question prefixes from a message.
func CleanPrefixes(message string) string {
	for _, p := range questionPrefixes {
		if len(message) >= len(p) && strings.EqualFold(strings.TrimSpace(message[:len(p)]), p) {
			message = strings.TrimSpace(message[len(p):])
		}
	}
	return message
}

// Bridge runs the two pipeline workers: inbound (queue → engine → output
// queue) and outbound (output queue → delivery).
type Bridge struct {
	addr     string
	username string
	password string

	inputs  *queue.Queue
	outputs *queue.Queue
	nicks   *nicklist.Registry
	policy  Policy
	deliver Deliverer

	// Backoff and pacing, overridable in tests
	ReconnectDelay time.Duration
	BusyDelay      time.Duration
	IdleDelay      time.Duration
	DialTimeout    time.Duration

	state atomic.Value // one of the State* strings

	received atomic.Uint64
	sent     atomic.Uint64

	mu        sync.Mutex
	client    *Client
	stopped   bool
	terminate chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func New(cfg *config.Config, inputs, outputs *queue.Queue, nicks *nicklist.Registry, policy Policy, deliver Deliverer) *Bridge {
	b := &Bridge{
		addr:           fmt.Sprintf("%s:%d", cfg.Engine.Host, cfg.Engine.Port),
		username:       cfg.Engine.Username,
		password:       cfg.Engine.Password,
		inputs:         inputs,
		outputs:        outputs,
		nicks:          nicks,
		policy:         policy,
		deliver:        deliver,
		ReconnectDelay: 5 * time.Second,
		BusyDelay:      10 * time.Millisecond,
		IdleDelay:      500 * time.Millisecond,
		DialTimeout:    5 * time.Second,
		terminate:      make(chan struct{}),
	}
	b.state.Store(StateDisconnected)
	return b
}

// Start launches the inbound and outbound workers.
func (b *Bridge) Start() {
	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		b.inputWorker()
	}()
	go func() {
		defer b.wg.Done()
		b.outputWorker()
	}()
}

// Stop signals both workers and abandons any in-flight engine connection so
// a worker blocked in I/O gets unstuck.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.terminate)
		b.mu.Lock()
		b.stopped = true
		if b.client != nil {
			_ = b.client.Close()
		}
		b.mu.Unlock()
	})
	b.wg.Wait()
}

// State reports the inbound worker's connection state.
func (b *Bridge) State() string {
	return b.state.Load().(string)
}

// OnMessage enqueues one already-cleaned chat utterance.
func (b *Bridge) OnMessage(text, username, channelID, communityID string, addressed bool) {
	b.received.Add(1)
	b.inputs.Push(queue.NewItem(text, username, channelID, communityID, addressed))
}

// OnCommunityJoin replaces the community's nickname list.
func (b *Bridge) OnCommunityJoin(communityID string, memberNames []string) {
	b.nicks.Replace(communityID, memberNames)
}

// OnCommunityDelete tombstones all queued items for the community, in both
// queues, and drops its nickname list.
func (b *Bridge) OnCommunityDelete(communityID string) {
	in := b.inputs.Tombstone(communityID)
	out := b.outputs.Tombstone(communityID)
	b.nicks.Remove(communityID)
	if in+out > 0 {
		log.Printf("[Bridge] Tombstoned %d queued items for departed community %s", in+out, communityID)
	}
}

// QueueStats snapshots both queues for the status surface.
func (b *Bridge) QueueStats() (in, out queue.Stats) {
	return b.inputs.Stats(), b.outputs.Stats()
}

// Counters returns messages received from ingestion and delivered to chat.
func (b *Bridge) Counters() (received, sent uint64) {
	return b.received.Load(), b.sent.Load()
}

// ResetCounters zeroes the message counters (the presence worker does this
// every ten minutes).
func (b *Bridge) ResetCounters() {
	b.received.Store(0)
	b.sent.Store(0)
}

func (b *Bridge) stopping() bool {
	select {
	case <-b.terminate:
		return true
	default:
		return false
	}
}

// sleep waits for d unless the bridge is stopping; returns false on stop.
func (b *Bridge) sleep(d time.Duration) bool {
	select {
	case <-b.terminate:
		return false
	case <-time.After(d):
		return true
	}
}

// setClient publishes the active connection so Stop can abandon it. Returns
// false when the bridge stopped while the dial was in flight.
func (b *Bridge) setClient(c *Client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client = c
	if c != nil && b.stopped {
		_ = c.Close()
		return false
	}
	return true
}

// inputWorker owns the engine connection: connect, authenticate, then serve
// the input queue until an I/O failure drops it back to reconnect.
func (b *Bridge) inputWorker() {
	for !b.stopping() {
		b.state.Store(StateConnecting)
		log.Printf("[Bridge] Connecting to engine at %s...", b.addr)

		client, err := Dial(b.addr, b.DialTimeout)
		if err != nil {
			log.Printf("[Bridge] ERROR: connection failure: %v", err)
			b.state.Store(StateDisconnected)
			if !b.sleep(b.ReconnectDelay) {
				return
			}
			continue
		}
		if !b.setClient(client) {
			return
		}

		err = func() error {
			if err := client.Login(b.username, b.password); err != nil {
				return err
			}
			b.state.Store(StateAuthenticated)
			nick, err := client.Identify()
			if err != nil {
				return err
			}
			log.Printf("[Bridge] Socket link to engine is UP as %q, ready for queries", nick)
			b.state.Store(StateServing)
			return b.serve(client)
		}()

		_ = client.Close()
		_ = b.setClient(nil)
		b.state.Store(StateDisconnected)
		if b.stopping() {
			return
		}
		if err != nil {
			log.Printf("[Bridge] ERROR: engine connection dropped: %v", err)
		}
		if !b.sleep(b.ReconnectDelay) {
			return
		}
	}
}

// serve processes the input queue over one authenticated connection.
// Returns on I/O failure; no partial command state survives a reconnect.
func (b *Bridge) serve(client *Client) error {
	for {
		if b.stopping() {
			return nil
		}
		item := b.inputs.Pop()
		if item == nil {
			if !b.sleep(b.IdleDelay) {
				return nil
			}
			continue
		}

		// Eligible if the bot was addressed or the channel learns passively
		if !item.Addressed && !b.policy.LearningEnabled(item.ChannelID, item.CommunityID) {
			if !b.sleep(b.IdleDelay) {
				return nil
			}
			continue
		}

		// Disguise as a random community member; skipped when the registry
		// has no names for this community
		if name, ok := b.nicks.Random(item.CommunityID); ok {
			if err := client.SwitchNick(name); err != nil {
				return err
			}
		}

		found, text, err := client.Query(item.Username, CleanPrefixes(item.Text))
		if err != nil {
			return err
		}

		if (found || item.Addressed) && text != NothingSentinel && !item.Tombstoned {
			resp := *item
			resp.Text = text
			b.outputs.Push(&resp)
		}

		if !b.sleep(b.BusyDelay) {
			return nil
		}
	}
}

// outputWorker drains the output queue to the delivery collaborator.
func (b *Bridge) outputWorker() {
	for {
		if b.stopping() {
			return
		}
		item := b.outputs.Pop()
		if item == nil {
			if !b.sleep(b.IdleDelay) {
				return
			}
			continue
		}
		if !item.Tombstoned {
			if err := b.deliver.Send(item.ChannelID, item.CommunityID, item.Text); err != nil {
				log.Printf("[Bridge] ERROR: delivery failed for channel %s: %v", item.ChannelID, err)
			} else {
				b.sent.Add(1)
			}
		}
		if !b.sleep(b.BusyDelay) {
			return
		}
	}
}
