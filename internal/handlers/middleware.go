package handlers

import (
	"net/http"
	"strings"

	"shortlink/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

// sessionCookie is the credential-bearing cookie set at sign-in.
const sessionCookie = "uid"

// AuthRequired resolves the session token to an identity before any
// owner-scoped handler runs. An absent credential and an invalid one
// both end in 401 but with distinct messages.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(sessionCookie)
		if tokenString == "" {
			// Bearer fallback for clients keeping the token in app state
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		ident, ok := h.tokenService.Verify(tokenString)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

func currentIdentity(c *gin.Context) (token.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return token.Identity{}, false
	}
	ident, ok := val.(token.Identity)
	return ident, ok
}

// RequestID tags every request with an id for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
