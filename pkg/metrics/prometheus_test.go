package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeApproximateRequestSize(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/customers", nil)
	r.Header.Set("Content-Type", "application/json")
	r.ContentLength = 42

	got := computeApproximateRequestSize(r)
	// Path + method + proto + header + host + body, at minimum.
	assert.Greater(t, got, 42)

	empty := httptest.NewRequest("GET", "/", nil)
	assert.Greater(t, computeApproximateRequestSize(empty), 0)
}

func TestMillisecondsSince(t *testing.T) {
	start := time.Now().Add(-50 * time.Millisecond)
	got := MillisecondsSince(start)
	assert.GreaterOrEqual(t, got, 50.0)
}

func TestPrometheusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", prometheusHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, w.Code)
	assert.NotEmpty(t, w.Body.String())
}
