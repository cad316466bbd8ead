package metrics

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestRequestsTotal(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/services", "200"))
	RequestsTotal.WithLabelValues("/api/services", "200").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/services", "200")))
}

func TestRegisterPool(t *testing.T) {
	pool, err := pgxpool.New(context.Background(), "postgres://laundry@127.0.0.1:5432/laundry")
	require.NoError(t, err)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	RegisterPool(reg, pool.Stat)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got := make(map[string]float64)
	for _, mf := range mfs {
		got[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
	}
	assert.Len(t, got, 3)
	assert.Equal(t, float64(0), got["kays_db_pool_acquired_conns"])
	assert.Contains(t, got, "kays_db_pool_idle_conns")
	assert.Contains(t, got, "kays_db_pool_total_conns")
}
