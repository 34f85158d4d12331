package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-infobot/internal/fact"
)

// GET /facts/:key
func GetFactHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fact.NormalizeKey(c.Param("key"))
		f, err := deps.Facts.Get(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if f == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No such fact"}})
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// DELETE /facts/:key
func DeleteFactHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fact.NormalizeKey(c.Param("key"))
		if err := deps.Facts.Delete(key); err != nil {
			if errors.Is(err, fact.ErrLocked) {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Fact is locked"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
	}
}

// POST /facts/:key/lock and /facts/:key/unlock. Locking pins a fact
// against chat edits until an operator releases it.
func SetFactLockHandler(deps Deps, locked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fact.NormalizeKey(c.Param("key"))
		f, err := deps.Facts.Get(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if f == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No such fact"}})
			return
		}
		if err := deps.Facts.SetLocked(key, locked); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		username, _ := c.Get("username")
		log.Printf("[API] Fact %q lock set to %v by %v", key, locked, username)
		c.JSON(http.StatusOK, gin.H{"key": key, "locked": locked})
	}
}
