package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-infobot/internal/auth"
	"go-infobot/internal/bridge"
	"go-infobot/internal/config"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReplyEvent is one delivered reply as seen on the feed.
type ReplyEvent struct {
	ChannelID   string `json:"channelId"`
	CommunityID string `json:"communityId"`
	Text        string `json:"text"`
	SentAt      int64  `json:"sentAt"`
}

// Feed fans delivered replies out to websocket subscribers. It sits in
// front of the real deliverer so every reply that reaches chat also
// reaches the feed.
type Feed struct {
	next bridge.Deliverer

	mu    sync.Mutex
	conns map[*feedConn]struct{}
}

type feedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (fc *feedConn) writeJSON(v interface{}) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.conn.WriteJSON(v)
}

func NewFeed(next bridge.Deliverer) *Feed {
	return &Feed{next: next, conns: make(map[*feedConn]struct{})}
}

// Send implements bridge.Deliverer.
func (f *Feed) Send(channelID, communityID, text string) error {
	err := f.next.Send(channelID, communityID, text)
	if err != nil {
		return err
	}
	f.broadcast(ReplyEvent{
		ChannelID:   channelID,
		CommunityID: communityID,
		Text:        text,
		SentAt:      time.Now().Unix(),
	})
	return nil
}

// Subscribers reports how many feed connections are open.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *Feed) broadcast(ev ReplyEvent) {
	f.mu.Lock()
	conns := make([]*feedConn, 0, len(f.conns))
	for fc := range f.conns {
		conns = append(conns, fc)
	}
	f.mu.Unlock()

	for _, fc := range conns {
		if err := fc.writeJSON(ev); err != nil {
			f.drop(fc)
		}
	}
}

func (f *Feed) add(fc *feedConn) {
	f.mu.Lock()
	f.conns[fc] = struct{}{}
	f.mu.Unlock()
}

func (f *Feed) drop(fc *feedConn) {
	f.mu.Lock()
	delete(f.conns, fc)
	f.mu.Unlock()
	fc.conn.Close()
}

// GET /ws/replies?token=<jwt>
func ReplyFeedHandler(cfg *config.Config, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if _, err := auth.ParseJWT(cfg.Server.JWTSecret, token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		rawConn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("[API] WebSocket upgrade failed:", err)
			return
		}
		fc := &feedConn{conn: rawConn}
		deps.Feed.add(fc)

		// Drain the connection until the client goes away.
		go func() {
			defer deps.Feed.drop(fc)
			for {
				if _, _, err := rawConn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
