package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)
	return c
}

func TestNewCounterExposed(t *testing.T) {
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	counter, err := c.NewCounter("battles_total", "battles", []string{"kind"})
	require.NoError(t, err)
	counter.WithLabelValues("duel").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_battles_total{kind="duel"} 2`))
}

func TestDuplicateMetric(t *testing.T) {
	c := newTestClient(t)
	_, err := c.NewGauge("owned", "owned", nil)
	require.NoError(t, err)

	_, err = c.NewGauge("owned", "owned", nil)
	assert.ErrorIs(t, err, ErrMetricExists)
}

func TestHistogramDefaultBuckets(t *testing.T) {
	c := newTestClient(t)
	h := c.MustNewHistogram("latency_seconds", "latency", []string{"op"}, nil)
	h.WithLabelValues("summon").Observe(0.01)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "test_latency_seconds" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCloseRejectsRegistration(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err := c.NewCounter("late", "late", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New(&Config{Namespace: "x", Path: "metrics"})
	assert.Error(t, err)
}
