package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-infobot/internal/config"
	"go-infobot/internal/presence"
)

// GET /status
//
// The chat side never voices a status reply; everything the old status
// text carried lives here instead.
func StatusHandler(cfg *config.Config, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := gin.H{
			"bot":       cfg.Bot.Name,
			"memory_kb": presence.GetRSS(),
		}
		if deps.Bot != nil {
			mods, questions := deps.Bot.Counters()
			out["uptime_seconds"] = int64(time.Since(deps.Bot.Startup()).Seconds())
			out["facts_modified"] = mods
			out["questions_seen"] = questions
		}
		if deps.Facts != nil {
			if phrases, err := deps.Facts.Count(); err == nil {
				out["phrases"] = phrases
			}
		}
		if deps.Bridge != nil {
			in, outq := deps.Bridge.QueueStats()
			received, sent := deps.Bridge.Counters()
			out["engine"] = gin.H{
				"state":        deps.Bridge.State(),
				"input_queue":  in,
				"output_queue": outq,
				"received":     received,
				"sent":         sent,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}
