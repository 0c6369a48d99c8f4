package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaMetrics(t *testing.T) {
	client, err := prometheus.New(&prometheus.Config{Namespace: "arena_test"})
	require.NoError(t, err)

	m, err := New(client)
	require.NoError(t, err)

	m.RecordBattle("knockout", 3, 0.001)
	m.RecordRumble("hp_fraction", 100, 0.01)
	m.RecordSummon(2, true)
	m.RecordLevelUp("monster", 2)
	m.RecordDBQuery("select", true, 0.002)
	m.RecordCacheHit("redis")
	m.RecordCacheMiss("redis")
	m.RecordLockWait("local", 0.0001)
	m.RecordEvent("arena.battles", false)
	assert.Equal(t, int64(2), m.Resolved())

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `arena_test_battles_total{decision="knockout"} 1`)
	assert.Contains(t, body, `arena_test_summons_total{result="success",template_id="2"} 1`)
	assert.Contains(t, body, `arena_test_level_ups_total{entity="monster"} 2`)
}

func TestDuplicateRegistration(t *testing.T) {
	client, err := prometheus.New(&prometheus.Config{Namespace: "arena_dup"})
	require.NoError(t, err)

	_, err = New(client)
	require.NoError(t, err)
	_, err = New(client)
	assert.Error(t, err)
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *ArenaMetrics
	assert.NotPanics(t, func() {
		m.RecordBattle("knockout", 1, 0)
		m.RecordSummon(0, false)
		m.RecordLockWait("redis", 0)
		m.RecordSystem(1, 2, 3, 4)
		assert.Zero(t, m.Resolved())
	})
}

func TestSystemReporter(t *testing.T) {
	client, err := prometheus.New(&prometheus.Config{Namespace: "arena_sys"})
	require.NoError(t, err)
	m, err := New(client)
	require.NoError(t, err)

	r, err := NewSystemReporter(m, logger.NewNoop())
	require.NoError(t, err)
	require.NoError(t, r.Sample(context.Background()))
	assert.False(t, r.Last().SampledAt.IsZero())

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `arena_sys_memory_percent{scope="host"}`)
}
