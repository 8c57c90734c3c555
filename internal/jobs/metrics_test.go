package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("inventory:expiry_scan").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("inventory:expiry_scan").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:expiry_scan", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:expiry_scan", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("inventory:expiry_scan")))
}

func TestAddExpiringIgnoresEmptyScans(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddExpiring(WindowLabel(30), 0)
	m.AddExpiring(WindowLabel(30), 4)
	require.Equal(t, 4.0, testutil.ToFloat64(m.expiring.WithLabelValues("30d")))

	var nilMetrics *Metrics
	nilMetrics.AddExpiring("30d", 1)
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
