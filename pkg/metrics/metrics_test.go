package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "checkout")

	m.Requests.WithLabelValues("/api/checkout", "200").Inc()
	m.LatencyMS.WithLabelValues("/api/checkout").Observe(12)
	m.Checkouts.WithLabelValues("success").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/checkout", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LatencyMS))
}

func TestNewServerMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewServerMetrics(reg, "checkout")

	assert.Panics(t, func() { NewServerMetrics(reg, "checkout") })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "checkout")
	m.Checkouts.WithLabelValues("bad_request").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `checkout_outcomes_total{outcome="bad_request",service="checkout"} 1`)
}

func TestNewServerMetrics_Names(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "checkout")
	m.Requests.WithLabelValues("/health", "200").Inc()
	m.LatencyMS.WithLabelValues("/health").Observe(1)
	m.Checkouts.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, "checkout", labels["service"], f.GetName())
		}
	}
	assert.ElementsMatch(t, []string{"http_requests_total", "http_request_duration_ms", "checkout_outcomes_total"}, names)
}
