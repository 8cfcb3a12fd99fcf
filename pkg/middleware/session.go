package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"surveyor/pkg/utils"
)

// SessionHeader scopes drafts and live sessions to one client.
const SessionHeader = "X-Session-ID"

const sessionKey = "session_id"

const maxSessionLen = 128

// SessionMiddleware requires an opaque session id on the request.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(SessionHeader))
		if session == "" || len(session) > maxSessionLen || strings.ContainsAny(session, ": ") {
			utils.RespondError(c, http.StatusBadRequest, "Missing or invalid "+SessionHeader+" header")
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
