package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller identity when no auth layer sets one.
// Buyers send their user ID; suppliers responding to a quote send their
// supplier ID.
const HeaderUserID = "X-User-ID"

const (
	ctxKeyUserID  = "userID"
	anonymousUser = "demo-user"
)

// CallerID resolves who is calling: the "userID" context value set by an
// upstream auth layer, then the X-User-ID header, then "demo-user".
func CallerID(c *gin.Context) string {
	if c == nil {
		return anonymousUser
	}
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" {
			return h
		}
	}
	return anonymousUser
}
