package middleware

import (
	"net/http"

	"shopcart-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the signed cart-session token in both directions.
const SessionHeader = "X-Cart-Session"

const sessionCookie = "cart_session"

// ContextSessionID is the gin context key the resolved session ID is stored
// under.
const ContextSessionID = "cart_session_id"

// CartSessionMiddleware resolves the shopper's cart session from the request
// token, minting a fresh session when none is presented or the token is
// invalid. The (possibly new) token is echoed on the response so clients can
// persist it.
func CartSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}

		var sessionID uuid.UUID
		if token != "" {
			if claims, err := utils.ValidateCartToken(token); err == nil {
				sessionID = claims.SessionID
			}
		}

		if sessionID == uuid.Nil {
			sessionID = uuid.New()
			fresh, err := utils.GenerateCartToken(sessionID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart session"})
				c.Abort()
				return
			}
			token = fresh
		}

		c.Header(SessionHeader, token)
		c.SetCookie(sessionCookie, token, 30*24*60*60, "/", "", false, true)
		c.Set(ContextSessionID, sessionID.String())
		c.Next()
	}
}

// SessionID returns the resolved cart session ID for the request.
func SessionID(c *gin.Context) string {
	if v, exists := c.Get(ContextSessionID); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
