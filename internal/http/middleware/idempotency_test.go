package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func idemRouter(t *testing.T, opts IdempotencyOptions, lookup IdempotencyLookup, seen *map[string]any) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		*seen = map[string]any{"key": key, "has": ok, "replay": IsReplay(c), "bypass": IsRateBypass(c)}
		c.Status(http.StatusCreated)
	}
	r.POST("/quote-requests", h)
	r.POST("/quote-requests/:id/send", h)
	return r
}

func TestIdempotency_NoHeaderIsNoop(t *testing.T) {
	called := false
	var seen map[string]any
	r := idemRouter(t, IdempotencyOptions{}, func(context.Context, string, string, string) (bool, error) {
		called = true
		return true, nil
	}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quote-requests", nil))
	if w.Code != http.StatusCreated || called || seen["has"] != false {
		t.Fatalf("expected passthrough without lookup: code=%d called=%v seen=%v", w.Code, called, seen)
	}
}

func TestIdempotency_InvalidKeyRejected(t *testing.T) {
	var seen map[string]any
	r := idemRouter(t, IdempotencyOptions{MaxLen: 8}, nil, &seen)

	for _, key := range []string{"has space", strings.Repeat("k", 9)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/quote-requests", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: code=%d body=%s", key, w.Code, w.Body.String())
		}
	}
}

func TestIdempotency_ScopedReplay(t *testing.T) {
	var gotUser, gotScope string
	lookup := func(_ context.Context, userID, scope, key string) (bool, error) {
		gotUser, gotScope = userID, scope
		return key == "known", nil
	}
	scope := func(c *gin.Context) string {
		if c.FullPath() == "/quote-requests" {
			return "quote_requests:create"
		}
		return ""
	}
	var seen map[string]any
	r := idemRouter(t, IdempotencyOptions{Scope: scope}, lookup, &seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote-requests", nil)
	req.Header.Set(HeaderIdempotencyKey, "known")
	req.Header.Set(HeaderUserID, "buyer-1")
	r.ServeHTTP(w, req)
	if seen["replay"] != true || seen["bypass"] != true || seen["key"] != "known" {
		t.Fatalf("expected replay flags, got %v", seen)
	}
	if gotUser != "buyer-1" || gotScope != "quote_requests:create" {
		t.Fatalf("lookup got user=%q scope=%q", gotUser, gotScope)
	}

	// Unscoped route: key is stashed but never looked up.
	gotScope = ""
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/quote-requests/q1/send", nil)
	req.Header.Set(HeaderIdempotencyKey, "known")
	r.ServeHTTP(w, req)
	if seen["replay"] != false || seen["has"] != true || gotScope != "" {
		t.Fatalf("unscoped route must not replay: %v scope=%q", seen, gotScope)
	}
}

func TestIdempotency_LookupErrorIsNotReplay(t *testing.T) {
	var seen map[string]any
	r := idemRouter(t, IdempotencyOptions{}, func(context.Context, string, string, string) (bool, error) {
		return true, errors.New("db down")
	}, &seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote-requests", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	r.ServeHTTP(w, req)
	if seen["replay"] != false {
		t.Fatalf("lookup errors must not mark replays: %v", seen)
	}
}
