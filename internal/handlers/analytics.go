package handlers

import (
	"errors"
	"net/http"

	"shortlink/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) LinkAnalytics(c *gin.Context) {
	shortID := c.Param("shortId")

	stats, err := h.linkService.Analytics(shortID)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		h.logger.Error("Failed to fetch analytics", "error", err, "short_code", shortID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalClicks": stats.TotalClicks,
		"analytics":   stats.History,
		"browsers":    stats.Browsers,
		"systems":     stats.Systems,
		"devices":     stats.Devices,
		"referrers":   stats.Referrers,
	})
}
