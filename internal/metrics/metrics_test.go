package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFetch("latest", time.Now(), nil)
	m.ObserveFetch("latest", time.Now(), errors.New("boom"))
	m.IncrementRetry("latest")
	m.ObserveCache("hit")
	m.SetDisplayRows(26)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("latest", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("latest", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRetries.WithLabelValues("latest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 26.0, testutil.ToFloat64(m.DisplayRows))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("latest", time.Now(), nil)
		m.IncrementRetry("latest")
		m.ObserveCache("miss")
		m.SetDisplayRows(1)
		m.ObserveImport("changed")
	})
}
