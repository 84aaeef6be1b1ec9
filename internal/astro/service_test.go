package astro

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"
	"coopcontrol/internal/events"
	"coopcontrol/internal/metrics"

	"github.com/jarcoal/httpmock"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordedEvent struct {
	Type string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType, data})
}

func (p *recordingPublisher) Events() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

func setupTestService(t *testing.T) (*Service, *metrics.Metrics, *recordingPublisher) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return setupTestServiceWithLogger(t, logger)
}

func setupTestServiceWithLogger(t *testing.T, logger *zap.Logger) (*Service, *metrics.Metrics, *recordingPublisher) {
	t.Helper()
	setupHTTPMock(t)

	store := setupTestStore(t, time.UTC)
	m := metrics.New()
	pub := &recordingPublisher{}
	clk := clock.NewMockClock(time.Date(2015, 5, 21, 0, 1, 0, 0, time.UTC))
	app := config.AppConfig{Latitude: testLatitude, Longitude: testLongitude, Timezone: "UTC"}

	svc := NewService(NewFetcher(testProviderConfig(), logger), store, app, clk, m, pub, logger)
	return svc, m, pub
}

func TestService_AddDaily(t *testing.T) {
	svc, m, pub := setupTestService(t)
	httpmock.RegisterResponderWithQuery("GET", testBaseURL, testQuery,
		httpmock.NewStringResponder(http.StatusOK, jsonSuccess))

	id, err := svc.AddDaily(context.Background(), "today")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, uint(1))

	rec, err := svc.Store().GetByDate(context.Background(), "2015-05-21")
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)

	evts := pub.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeAstronomicalAdded, evts[0].Type)
	view, ok := evts[0].Data.(LocalView)
	require.True(t, ok)
	assert.Equal(t, "2015-05-21", view.Date)
	assert.Equal(t, "05:05:35+0000", view.Sunrise)

	n, err := promtestutil.GatherAndCount(m.Registry(), "coopcontrol_astro_fetch_total", "coopcontrol_astro_upsert_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_AddDailyDuplicate(t *testing.T) {
	svc, _, pub := setupTestService(t)
	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, jsonSuccess))

	first, err := svc.AddDaily(context.Background(), "")
	require.NoError(t, err)
	second, err := svc.AddDaily(context.Background(), "today")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
	// Only the insert is announced.
	assert.Len(t, pub.Events(), 1)

	count, err := svc.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestService_AddDailyMalformed(t *testing.T) {
	svc, _, pub := setupTestService(t)
	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, jsonFailure))

	id, err := svc.AddDaily(context.Background(), "today")
	assert.Zero(t, id)

	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
	assert.Empty(t, pub.Events())

	count, err := svc.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_AddDailyTransportFailure(t *testing.T) {
	svc, _, _ := setupTestService(t)
	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusBadRequest, jsonFailure))

	id, err := svc.AddDaily(context.Background(), "today")
	assert.Zero(t, id)

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, http.StatusBadRequest, transport.StatusCode)
}

func TestService_AddDailyInvalidPayload(t *testing.T) {
	svc, _, _ := setupTestService(t)
	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"results":{"sunrise":"","sunset":""},"status":"OK"}`))

	_, err := svc.AddDaily(context.Background(), "today")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

const driftWarning = "Provider sun times differ from local estimate"

func TestService_EstimateUsesStoredRecord(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc, _, _ := setupTestServiceWithLogger(t, zap.New(core))
	ctx := context.Background()

	// The stored sunrise is three hours off; the fresh fetch is accurate.
	stored := testRaw()
	stored.Sunrise = "2015-05-21T08:05:35+00:00"
	_, err := svc.Store().Upsert(ctx, stored)
	require.NoError(t, err)

	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, jsonSuccess))

	_, err = svc.AddDaily(ctx, "today")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(driftWarning).Len())
}

func TestService_EstimateIgnoresDiscardedFetch(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc, _, _ := setupTestServiceWithLogger(t, zap.New(core))
	ctx := context.Background()

	_, err := svc.Store().Upsert(ctx, testRaw())
	require.NoError(t, err)

	shifted := strings.Replace(jsonSuccess,
		`"sunrise": "2015-05-21T05:05:35+00:00"`,
		`"sunrise": "2015-05-21T08:05:35+00:00"`, 1)
	httpmock.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, shifted))

	_, err = svc.AddDaily(ctx, "today")
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage(driftWarning).Len())
}
