package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-infobot/internal/ingest"
)

// POST /messages feeds one chat utterance into the engine.
func IngestMessageHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m ingest.Message
		if err := c.ShouldBindJSON(&m); err != nil || m.Text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		deps.Gateway.OnMessage(m)
		c.JSON(http.StatusAccepted, gin.H{"message": "Accepted"})
	}
}

type communityJoinRequest struct {
	MemberNames []string `json:"memberNames"`
}

// PUT /communities/:id/members replaces the nickname roster for a community.
func CommunityJoinHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req communityJoinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		deps.Gateway.OnCommunityJoin(c.Param("id"), req.MemberNames)
		c.JSON(http.StatusOK, gin.H{"message": "Roster updated"})
	}
}

// DELETE /communities/:id cancels all queued work for a community.
func CommunityDeleteHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps.Gateway.OnCommunityDelete(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "Community removed"})
	}
}

// DELETE /channels/:id drops a deleted channel's settings.
func ChannelDeleteHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps.Gateway.OnChannelDelete(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "Channel removed"})
	}
}
