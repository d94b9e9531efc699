package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.IncCounter(EventPolled, map[string]string{"asset": "FLR"})
	rec.IncCounter(EventPolled, map[string]string{"asset": "FLR"})
	rec.IncCounter(EventCompleted, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.counters.WithLabelValues(EventPolled, "FLR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.counters.WithLabelValues(EventCompleted, "")))
}

func TestPrometheusRecorder_Latency(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.ObserveLatency(OperationWait, 12*time.Second, map[string]string{"asset": "ETH"})

	count, err := testutil.GatherAndCount(reg, "custody_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	_, err = NewPrometheusRecorder(reg)
	assert.Error(t, err)
}
