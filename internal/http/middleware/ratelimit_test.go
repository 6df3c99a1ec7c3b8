package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-school-backend/internal/http/response"
)

// clock is a settable time source for limiter tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func withClock(rl *RateLimiter, c *clock) {
	rl.now = c.now
	rl.lastSweep = c.t
}

func limitedRouter(rl *RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.Use(rl.Handler())
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func postLogin(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = ip + ":40000"
	r.ServeHTTP(w, req)
	return w
}

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:12345"

	if got := KeyByUserOrIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(userIDKey, "42")
	if got := KeyByUserOrIP()(c); got != "user:42" {
		t.Fatalf("authenticated key = %q", got)
	}
	if got := KeyByIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("KeyByIP must ignore the user, got %q", got)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitOptions{RPS: 2})
	if rl.opts.Burst != 1 || rl.opts.Key == nil || rl.opts.IdleTTL != 10*time.Minute || rl.opts.Name != "default" {
		t.Fatalf("unexpected defaults: %+v", rl.opts)
	}
}

func TestRateLimiter_RejectsWithEnvelopeAndRetryAfter(t *testing.T) {
	clk := newClock()
	rl := NewRateLimiter(RateLimitOptions{Name: "login-test", RPS: 0.5, Burst: 2, Key: KeyByIP()})
	withClock(rl, clk)
	r := limitedRouter(rl)

	for i := 0; i < 2; i++ {
		if w := postLogin(r, "198.51.100.1"); w.Code != http.StatusOK {
			t.Fatalf("attempt %d within burst got %d", i+1, w.Code)
		}
	}
	w := postLogin(r, "198.51.100.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt should be throttled, got %d", w.Code)
	}
	// one token at 0.5/s takes two seconds
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q, want 2", got)
	}
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if env.Success || env.Message != MsgRateLimited || env.Data != nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if n := testutil.ToFloat64(rateLimited.WithLabelValues("login-test")); n != 1 {
		t.Fatalf("rate limited counter = %v, want 1", n)
	}

	// other clients are unaffected
	if w := postLogin(r, "198.51.100.2"); w.Code != http.StatusOK {
		t.Fatalf("second client got %d", w.Code)
	}

	// tokens refill with time
	clk.advance(2 * time.Second)
	if w := postLogin(r, "198.51.100.1"); w.Code != http.StatusOK {
		t.Fatalf("after refill got %d", w.Code)
	}
}

func TestRateLimiter_ZeroRateAsksForAMinute(t *testing.T) {
	clk := newClock()
	rl := NewRateLimiter(RateLimitOptions{RPS: 0, Burst: 1})
	withClock(rl, clk)
	r := limitedRouter(rl)

	_ = postLogin(r, "192.0.2.7")
	w := postLogin(r, "192.0.2.7")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Fatalf("got %d Retry-After=%q", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	clk := newClock()
	rl := NewRateLimiter(RateLimitOptions{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	withClock(rl, clk)

	a := rl.limiter("a", clk.now())
	if rl.limiter("a", clk.now()) != a {
		t.Fatalf("bucket should be reused")
	}
	_ = rl.limiter("b", clk.now())
	if rl.size() != 2 {
		t.Fatalf("size = %d, want 2", rl.size())
	}

	clk.advance(30 * time.Second)
	_ = rl.limiter("b", clk.now())
	if rl.size() != 2 {
		t.Fatalf("nothing is idle long enough yet, size = %d", rl.size())
	}

	clk.advance(45 * time.Second)
	_ = rl.limiter("c", clk.now())
	if rl.size() != 2 {
		t.Fatalf("idle bucket a should be gone, size = %d", rl.size())
	}
	if rl.limiter("a", clk.now()) == a {
		t.Fatalf("a should have been recreated")
	}
}

func TestRateLimiter_ReplaysBypass(t *testing.T) {
	clk := newClock()
	rl := NewRateLimiter(RateLimitOptions{RPS: 0, Burst: 1})
	withClock(rl, clk)
	r := limitedRouter(rl, func(c *gin.Context) { c.Set(ctxKeyRateBypass, true) })

	for i := 0; i < 3; i++ {
		if w := postLogin(r, "192.0.2.8"); w.Code != http.StatusOK {
			t.Fatalf("replay %d got %d", i+1, w.Code)
		}
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if IsRateBypass(c) {
		t.Fatalf("default should be false")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("non-bool must read as false")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("expected true")
	}
}
