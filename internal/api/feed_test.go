package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"go-infobot/internal/auth"
)

func TestReplyFeed_BroadcastsDeliveredReplies(t *testing.T) {
	r, deps, cfg := setupTestAPI(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := auth.GenerateJWT(cfg.Server.JWTSecret, 1, "admin", "admin", time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/replies?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing feed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if deps.Feed.Subscribers() > 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if deps.Feed.Subscribers() == 0 {
		t.Fatal("feed never registered the subscriber")
	}

	if err := deps.Feed.Send("c1", "g1", "the sky is blue"); err != nil {
		t.Fatalf("sending reply: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev ReplyEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading feed event: %v", err)
	}
	if ev.ChannelID != "c1" || ev.CommunityID != "g1" || ev.Text != "the sky is blue" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestReplyFeed_RejectsBadToken(t *testing.T) {
	r, _, _ := setupTestAPI(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/replies?token=not.a.jwt")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestFeed_SendWithoutSubscribers(t *testing.T) {
	feed := NewFeed(nopDeliverer{})
	if feed.Subscribers() != 0 {
		t.Fatal("fresh feed should have no subscribers")
	}
	// Sends with no subscribers still deliver downstream.
	if err := feed.Send("c1", "g1", "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
}
