// Package ingest is the entry point for chat traffic. Each utterance is
// handled locally first (learning, forgetting, fact lookups); anything the
// local engine has no reply for is queued for the external engine.
package ingest

import (
	"log"
	"time"

	"go-infobot/internal/bridge"
	"go-infobot/internal/infobot"
	"go-infobot/internal/queue"
	"go-infobot/internal/settings"
	"go-infobot/internal/usercache"
)

// Message is one inbound chat utterance.
type Message struct {
	Text        string `json:"text"`
	Username    string `json:"username"`
	UserID      string `json:"userId"`
	Bot         bool   `json:"bot"`
	ChannelID   string `json:"channelId"`
	CommunityID string `json:"communityId"`
}

// Gateway routes messages between the local responder and the engine bridge.
type Gateway struct {
	botName  string
	bot      *infobot.Responder
	bridge   *bridge.Bridge
	outputs  *queue.Queue
	settings *settings.Manager
	users    *usercache.Writer
}

func NewGateway(botName string, bot *infobot.Responder, br *bridge.Bridge, outputs *queue.Queue, st *settings.Manager, users *usercache.Writer) *Gateway {
	return &Gateway{
		botName:  botName,
		bot:      bot,
		bridge:   br,
		outputs:  outputs,
		settings: st,
		users:    users,
	}
}

// OnMessage handles one utterance. Messages from other bots are dropped so
// two bots cannot feed each other.
func (g *Gateway) OnMessage(m Message) {
	if m.Bot {
		return
	}
	if g.users != nil && m.UserID != "" {
		g.users.Enqueue(usercache.CachedUser{
			ID:       m.UserID,
			Username: m.Username,
			Bot:      m.Bot,
			SeenAt:   time.Now().Unix(),
		})
	}

	cls := infobot.Classify(g.botName, m.Text)
	addressed := cls.Level >= infobot.AddressedByName

	reply, err := g.bot.Response(g.botName, m.Text, m.Username)
	if err != nil {
		log.Printf("[Ingest] ERROR: handling message in channel %s: %v", m.ChannelID, err)
		return
	}
	if reply != "" {
		g.outputs.Push(queue.NewItem(reply, m.Username, m.ChannelID, m.CommunityID, addressed))
		return
	}

	// Nothing to say locally; let the external engine have a look.
	g.bridge.OnMessage(m.Text, m.Username, m.ChannelID, m.CommunityID, addressed)
}

// OnCommunityJoin seeds the nickname registry for a community.
func (g *Gateway) OnCommunityJoin(communityID string, memberNames []string) {
	g.bridge.OnCommunityJoin(communityID, memberNames)
}

// OnCommunityDelete cancels all queued work for a community and drops its
// stored state.
func (g *Gateway) OnCommunityDelete(communityID string) {
	g.bridge.OnCommunityDelete(communityID)
	if g.settings != nil {
		if err := g.settings.DeleteCommunity(communityID); err != nil {
			log.Printf("[Ingest] ERROR: deleting settings for community %s: %v", communityID, err)
		}
	}
}

// OnChannelDelete drops the stored settings for a deleted channel.
func (g *Gateway) OnChannelDelete(channelID string) {
	if g.settings != nil {
		if err := g.settings.DeleteChannel(channelID); err != nil {
			log.Printf("[Ingest] ERROR: deleting settings for channel %s: %v", channelID, err)
		}
	}
}
