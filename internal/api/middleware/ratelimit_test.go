package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(rl))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doGet(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsUpToBurst(t *testing.T) {
	router := newTestRouter(NewRateLimiter(0, 3))

	for i := 0; i < 3; i++ {
		if rec := doGet(router, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	router := newTestRouter(NewRateLimiter(0, 2))

	for i := 0; i < 2; i++ {
		if rec := doGet(router, "10.0.0.2"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
	rec := doGet(router, "10.0.0.2")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRateLimitTracksClientsIndependently(t *testing.T) {
	router := newTestRouter(NewRateLimiter(0, 1))

	if rec := doGet(router, "10.0.0.3"); rec.Code != http.StatusOK {
		t.Fatalf("client A status = %d, want 200", rec.Code)
	}
	if rec := doGet(router, "10.0.0.3"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("client A second request status = %d, want 429", rec.Code)
	}
	if rec := doGet(router, "10.0.0.4"); rec.Code != http.StatusOK {
		t.Errorf("client B status = %d, want 200 (separate bucket)", rec.Code)
	}
}
