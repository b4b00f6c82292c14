package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets clients retry unsafe requests safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key validated by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a live record for the key, i.e.
// the handler is expected to return the stored result instead of redoing the
// work.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyIdemReplay)
	v, _ := b.(bool)
	return v
}

// IdempotencyScope maps a request to the namespace its key lives in, or ""
// when the route does not use idempotency keys.
type IdempotencyScope func(c *gin.Context) string

// IdempotencyLookup reports whether a live record exists for (userID, scope,
// key). Errors are treated as "not found".
type IdempotencyLookup func(ctx context.Context, userID, scope, key string) (bool, error)

// IdempotencyOptions tunes key validation.
type IdempotencyOptions struct {
	// MaxLen caps key length; 200 when <= 0.
	MaxLen int
	// Pattern restricts key characters; token-like when nil.
	Pattern *regexp.Regexp
	// Scope selects which routes consult the lookup. Without it every request
	// carrying a key is looked up under the route path.
	Scope IdempotencyScope
}

// IdempotencyValidator validates the Idempotency-Key header, stashes it for
// handlers and, for scoped routes, marks replays so the rate limiter lets
// them through. An invalid key is rejected with 400; a missing key is a no-op.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	scopeOf := opts.Scope
	if scopeOf == nil {
		scopeOf = func(c *gin.Context) string { return c.FullPath() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			if scope := scopeOf(c); scope != "" {
				if exists, err := lookup(c.Request.Context(), CallerID(c), scope, key); err == nil && exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}
		c.Next()
	}
}
