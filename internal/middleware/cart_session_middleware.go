package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"
	CartSessionKey    = "cart_session_id"

	cartCookieMaxAge = 7 * 24 * time.Hour
)

// CartSession resolves the shopper's cart session id from the header or cookie and
// issues a new one when neither carries a valid UUID. The id is echoed back in both.
func CartSession(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(CartSessionHeader)
		if sessionID == "" {
			if cookie, err := c.Cookie(CartSessionCookie); err == nil {
				sessionID = cookie
			}
		}

		if _, err := uuid.Parse(sessionID); err != nil {
			if sessionID != "" {
				GetLoggerFromContext(c).Debug("Ignoring malformed cart session", map[string]interface{}{
					"session_id": sessionID,
				})
			}
			sessionID = uuid.New().String()
		}

		c.Set(CartSessionKey, sessionID)
		c.Header(CartSessionHeader, sessionID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, sessionID, int(cartCookieMaxAge.Seconds()), "/", "", secureCookie, true)

		c.Next()
	}
}

func GetCartSessionID(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
