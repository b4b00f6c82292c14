package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-quote-backend/internal/config"
	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/http/middleware"
	"github.com/tbourn/go-quote-backend/internal/repo"
	"github.com/tbourn/go-quote-backend/internal/services"
)

func newTestServices(t *testing.T) *services.Set {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Path:   filepath.Join(t.TempDir(), "router.db"),
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := db.Create(&domain.Opportunity{ID: "opp-1", Title: "Fit-out"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return services.New(db, services.Options{})
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      100,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func serve(r *gin.Engine, method, path string, body []byte, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestServices(t), testConfig())

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}

	w = serve(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	if w := serve(r, http.MethodGet, "/nope", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/health", nil, nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	RegisterRoutes(r, newTestServices(t), cfg)

	w := serve(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_GzipWhenAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestServices(t), testConfig())

	w := serve(r, http.MethodGet, "/health", nil, map[string]string{"Accept-Encoding": "gzip"})
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, headers=%v", w.Header())
	}
	if w := serve(r, http.MethodGet, "/health", nil, nil); w.Header().Get("Content-Encoding") != "" {
		t.Fatalf("plain client got an encoded body")
	}
}

// A replayed create bypasses the rate limiter; a fresh one is throttled.
func TestRegisterRoutes_IdempotentReplayBypassesRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	RegisterRoutes(r, newTestServices(t), cfg)

	body, _ := json.Marshal(map[string]any{
		"opportunity_id": "opp-1",
		"title":          "Office chairs",
		"deadline":       time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	hdr := map[string]string{
		"Content-Type":                  "application/json",
		middleware.HeaderUserID:         "buyer",
		middleware.HeaderIdempotencyKey: "create-1",
	}

	first := serve(r, http.MethodPost, "/api/v1/quote-requests", body, hdr)
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: %d %s", first.Code, first.Body.String())
	}
	if first.Header().Get("Location") == "" {
		t.Fatalf("missing Location header")
	}

	replay := serve(r, http.MethodPost, "/api/v1/quote-requests", body, hdr)
	if replay.Code != http.StatusOK || replay.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay: %d %s", replay.Code, replay.Body.String())
	}

	delete(hdr, middleware.HeaderIdempotencyKey)
	throttled := serve(r, http.MethodPost, "/api/v1/quote-requests", body, hdr)
	if throttled.Code != http.StatusTooManyRequests || throttled.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", throttled.Code)
	}
}

func TestRegisterRoutes_BadIdempotencyKeyRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestServices(t), testConfig())

	w := serve(r, http.MethodPost, "/api/v1/quote-requests", []byte(`{}`), map[string]string{
		middleware.HeaderIdempotencyKey: "has spaces and ✓",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// Exercises every mounted route once so a bad registration shows up here.
func TestRegisterRoutes_MountsQuoteAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestServices(t), testConfig())

	const id = "00000000-0000-4000-8000-000000000000"
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/quote-requests", http.StatusOK},
		{http.MethodGet, "/api/v1/quote-requests/" + id, http.StatusNotFound},
		{http.MethodPatch, "/api/v1/quote-requests/" + id, http.StatusNotFound},
		{http.MethodDelete, "/api/v1/quote-requests/" + id, http.StatusNotFound},
		{http.MethodPost, "/api/v1/quote-requests/" + id + "/send", http.StatusNotFound},
		{http.MethodPost, "/api/v1/quote-requests/" + id + "/complete", http.StatusNotFound},
		{http.MethodGet, "/api/v1/quote-requests/" + id + "/invitations", http.StatusNotFound},
		{http.MethodGet, "/api/v1/quote-requests/" + id + "/responses", http.StatusNotFound},
		{http.MethodPost, "/api/v1/quote-requests/" + id + "/responses/decline", http.StatusNotFound},
		{http.MethodGet, "/api/v1/quote-requests/" + id + "/summary", http.StatusNotFound},
		{http.MethodGet, "/api/v1/quote-requests/" + id + "/export?type=responses", http.StatusNotFound},
		{http.MethodGet, "/api/v1/suppliers/ghost", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := serve(r, tc.method, tc.path, []byte(`{}`), map[string]string{"Content-Type": "application/json"})
		if w.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d (%s)", tc.method, tc.path, w.Code, tc.want, w.Body.String())
		}
		var er struct {
			Code string `json:"code"`
		}
		if tc.want == http.StatusNotFound {
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != "not_found" {
				t.Fatalf("%s %s: unexpected body %s", tc.method, tc.path, w.Body.String())
			}
		}
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, http.MethodPost, "/echo", []byte("0123456789AB"), nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}
