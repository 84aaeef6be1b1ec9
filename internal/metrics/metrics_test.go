package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveFetch(FetchOK)
	m.ObserveFetch(FetchOK)
	m.ObserveFetch(FetchMalformed)
	m.ObserveUpsert(UpsertInserted)
	m.ObserveUpsert(UpsertRace)
	m.ObserveRequest("/astronomical/{date}", 200)
	m.SetEventClients(3)
	m.MarkAstroSuccess(time.Unix(1432184735, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.astroFetch.WithLabelValues(FetchOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.astroFetch.WithLabelValues(FetchMalformed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.astroFetch.WithLabelValues(FetchTransportError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.astroUpsert.WithLabelValues(UpsertRace)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/astronomical/{date}", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.eventClients))
	assert.Equal(t, 1432184735.0, testutil.ToFloat64(m.astroLastSuccess))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(FetchOK)
		m.ObserveUpsert(UpsertExisting)
		m.ObserveRequest("/", 200)
		m.SetEventClients(1)
		m.MarkAstroSuccess(time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveUpsert(UpsertInserted)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `coopcontrol_astro_upsert_total{result="inserted"} 1`)
	assert.Contains(t, string(body), "coopcontrol_events_clients 0")
}
