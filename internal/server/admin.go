package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// adminRequired guards the admin routes with the configured password hash.
// Without a configured hash the routes do not exist as far as callers can
// tell.
func (h *Handler) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.adminHash == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "admin access disabled"})
			return
		}
		password := c.GetHeader("X-Admin-Password")
		if password == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin password required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h.adminHash), []byte(password)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin password"})
			return
		}
		c.Next()
	}
}

// AdminStats reports live server counters.
func (h *Handler) AdminStats(c *gin.Context) {
	stats := gin.H{
		"matches":    len(h.engine.Matches()),
		"ws_clients": h.hub.ClientCount(),
	}
	if h.db != nil {
		poolStats := h.db.Stats()
		stats["db_total_conns"] = poolStats.TotalConns()
		stats["db_idle_conns"] = poolStats.IdleConns()
	}
	c.JSON(http.StatusOK, stats)
}

// ReloadCards drops the database card cache so the next draft reads fresh
// rows. New matches pick up the change; running matches keep their pools.
func (h *Handler) ReloadCards(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no database configured"})
		return
	}
	h.repo.Invalidate()
	c.JSON(http.StatusOK, gin.H{"status": "card cache invalidated"})
}
