package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_RegistersOnFirstUse(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "testns")

	p.RecordRecompute()
	p.RecordViewError("SessionLoad")
	p.RecordSnapshotDropped()
	p.RecordTap()
	p.RecordFlush(10, true)
	p.RecordFlush(3, false)
	p.SetPendingIncrements(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["testns_viewstate_recomputes_total"])
	require.True(t, names["testns_viewstate_errors_total"])
	require.True(t, names["testns_coalescer_taps_total"])
	require.True(t, names["testns_coalescer_flushes_total"])
	require.True(t, names["testns_coalescer_pending_increments"])
}

func TestPrometheusCollector_DefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordTap()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "sessionview_coalescer_taps_total", families[0].GetName())
}
