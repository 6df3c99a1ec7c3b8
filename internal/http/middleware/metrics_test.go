package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "user") })
	r.DELETE("/api/roles/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseUser := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/users/:id", "200"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404"))
	baseDel := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/roles/:id", "204"))

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/users/1", http.StatusOK},
		{http.MethodGet, "/api/users/2", http.StatusOK},
		{http.MethodGet, "/api/nope/3", http.StatusNotFound},
		{http.MethodDelete, "/api/roles/4", http.StatusNoContent},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s %s -> %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/users/:id", "200")); got != baseUser+2 {
		t.Fatalf("user counter = %v; want %v", got, baseUser+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404")); got != baseMiss+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, baseMiss+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/roles/:id", "204")); got != baseDel+1 {
		t.Fatalf("delete counter = %v; want %v", got, baseDel+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
