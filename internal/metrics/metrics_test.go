package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/ping", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	after := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/ping", "204"))

	if after-before != 1 {
		t.Errorf("request counter moved by %v, want 1", after-before)
	}
}

func TestObserveGraded(t *testing.T) {
	before := testutil.ToFloat64(AttemptsGraded.WithLabelValues("true", "test"))
	excludedBefore := testutil.ToFloat64(ExcludedQuestions)

	ObserveGraded(850, true, 2, "test")

	if got := testutil.ToFloat64(AttemptsGraded.WithLabelValues("true", "test")) - before; got != 1 {
		t.Errorf("graded counter moved by %v, want 1", got)
	}
	if got := testutil.ToFloat64(ExcludedQuestions) - excludedBefore; got != 2 {
		t.Errorf("excluded counter moved by %v, want 2", got)
	}
}
