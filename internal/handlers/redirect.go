package handlers

import (
	"errors"
	"net/http"

	"shortlink/internal/services"

	"github.com/gin-gonic/gin"
)

// RedirectToURL is the public redirect path: no auth gate, every hit
// appends one visit record before the 302.
func (h *Handler) RedirectToURL(c *gin.Context) {
	shortCode := c.Param("shortCode")

	target, err := h.linkService.ResolveAndRecordVisit(shortCode, services.VisitMeta{
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	})
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid URL"})
			return
		}
		h.logger.Error("Failed to resolve short code", "error", err, "short_code", shortCode)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Redirect(http.StatusFound, target)
}
