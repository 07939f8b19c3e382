package handlers

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	user := r.Group("/user")
	{
		user.POST("/signup", h.SignupUser)
		user.POST("/signin", h.SigninUser)
		user.POST("/logout", h.LogoutUser)
	}

	url := r.Group("/url")
	{
		// Analytics stays public: anyone holding a valid code may read
		// its click history.
		url.GET("/analytics/:shortId", h.LinkAnalytics)

		authorized := url.Group("", h.AuthRequired())
		{
			authorized.POST("", h.ShortenURL)
			authorized.GET("/userUrl/urls", h.ListUserLinks)
			authorized.DELETE("/:id", h.DeleteLink)
			authorized.GET("/:id/qr", h.LinkQR)
		}
	}

	// Catch-all public redirect
	r.GET("/:shortCode", h.RedirectToURL)

	return r
}
