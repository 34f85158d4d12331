package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-infobot/internal/api"
	"go-infobot/internal/bridge"
	"go-infobot/internal/config"
	"go-infobot/internal/db"
	"go-infobot/internal/fact"
	"go-infobot/internal/infobot"
	"go-infobot/internal/ingest"
	"go-infobot/internal/nicklist"
	"go-infobot/internal/presence"
	"go-infobot/internal/queue"
	redisdb "go-infobot/internal/redis"
	"go-infobot/internal/settings"
	"go-infobot/internal/usercache"
)

// logDeliverer is the terminal delivery stage until a chat connector is
// attached; every reply that would reach chat is logged instead.
type logDeliverer struct{}

func (logDeliverer) Send(channelID, communityID, text string) error {
	log.Printf("[Main] Reply for channel %s (community %s): %s", channelID, communityID, text)
	return nil
}

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	facts := fact.NewCache(fact.NewStore(db.DB), rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	bot := infobot.NewResponder(facts)

	inputs := queue.New(cfg.Queue.InputCapacity)
	outputs := queue.New(cfg.Queue.OutputCapacity)
	nicks := nicklist.New()
	st := settings.NewManager(db.DB)

	feed := api.NewFeed(logDeliverer{})
	br := bridge.New(cfg, inputs, outputs, nicks, st, feed)
	br.Start()

	users := usercache.NewWriter(db.DB)
	users.Start()

	gw := ingest.NewGateway(cfg.Bot.Name, bot, br, outputs, st, users)

	pres := presence.NewWorker(db.DB, facts, func() presence.Sample {
		received, sent := br.Counters()
		return presence.Sample{
			Communities: nicks.Communities(),
			Received:    received,
			Sent:        sent,
		}
	})
	pres.ResetCounters = br.ResetCounters
	pres.Start()

	r := api.SetupRouter(cfg, rdb, api.Deps{
		Facts:    facts,
		Bot:      bot,
		Bridge:   br,
		Settings: st,
		Gateway:  gw,
		Feed:     feed,
	})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("[Main] Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[Main] Shutting down")
	br.Stop()
	users.Stop()
	pres.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Main] ERROR: server shutdown: %v", err)
	}
}
