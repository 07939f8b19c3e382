package handlers

import (
	"errors"
	"net/http"
	"strings"

	"shortlink/internal/services"

	"github.com/gin-gonic/gin"
)

type ShortenRequest struct {
	URL string `json:"url" binding:"required"`
}

// ShortenURL handles the API request to shorten a URL
func (h *Handler) ShortenURL(c *gin.Context) {
	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	link, err := h.linkService.CreateShortLink(ident.UserID, req.URL, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrTargetURLRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
			return
		}
		h.logger.Error("Failed to create short link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shortUrl": h.resolveBaseURL(c) + "/" + link.ShortCode,
		"id":       link.ShortCode,
	})
}

func (h *Handler) ListUserLinks(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	links, err := h.linkService.LinksForOwner(ident.UserID)
	if err != nil {
		h.logger.Error("Failed to list links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"urls": links})
}

func (h *Handler) DeleteLink(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	shortCode := c.Param("id")
	if err := h.linkService.DeleteLink(shortCode, ident.UserID, c.ClientIP()); err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		h.logger.Error("Failed to delete link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "URL deleted successfully"})
}

// LinkQR renders a QR code for one of the caller's short links.
func (h *Handler) LinkQR(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	shortCode := c.Param("id")
	link, err := h.linkService.LinkForOwner(shortCode, ident.UserID)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		h.logger.Error("Failed to look up link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	data, err := h.qrService.GeneratePNG(services.QROptions{
		Content: h.resolveBaseURL(c) + "/" + link.ShortCode,
		Size:    256,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	})
	if err != nil {
		h.logger.Error("Failed to generate QR code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// resolveBaseURL picks the base for returned short URLs: explicit
// config, then the incoming request, then the development default.
func (h *Handler) resolveBaseURL(c *gin.Context) string {
	if h.cfg.BaseURL != "" {
		return strings.TrimSuffix(h.cfg.BaseURL, "/")
	}

	if host := c.Request.Host; host != "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		return scheme + "://" + host
	}

	return "http://localhost:8001"
}
