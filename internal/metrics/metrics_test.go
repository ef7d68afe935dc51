package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/metrics"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.ObserveWeatherCache(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.WeatherCache.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.WeatherCache.WithLabelValues("hit")))
}

func TestObserveWeatherFetch(t *testing.T) {
	m := metrics.New()
	m.ObserveWeatherFetch("forecast", true)
	m.ObserveWeatherFetch("forecast", false)
	m.ObserveWeatherFetch("forecast", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherFetch.WithLabelValues("forecast", metrics.OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WeatherFetch.WithLabelValues("forecast", metrics.OutcomeUnavailable)))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveWeatherCache(false)
		m.ObserveWeatherFetch("preview", true)
		m.ObserveInvalidation("trip")
		m.ObserveTemplateApplied(3)
	})
}

func TestHandler_ServesText(t *testing.T) {
	m := metrics.New()
	m.ObserveTemplateApplied(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "packlist_template_applied_items_total 3")
}
