package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /channels/:channel/settings?community=<id>
func GetChannelSettingsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("channel")
		communityID := c.Query("community")
		c.JSON(http.StatusOK, gin.H{
			"channel_id": channelID,
			"learning":   deps.Settings.LearningEnabled(channelID, communityID),
		})
	}
}

type updateSettingsRequest struct {
	CommunityID string `json:"communityId"`
	Learning    *bool  `json:"learning"`
}

// PUT /channels/:channel/settings
func UpdateChannelSettingsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("channel")
		var req updateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Learning == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if err := deps.Settings.SetLearning(channelID, req.CommunityID, *req.Learning); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"channel_id": channelID,
			"learning":   *req.Learning,
		})
	}
}
