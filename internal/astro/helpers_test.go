package astro

import (
	"testing"
	"time"

	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"
	"coopcontrol/internal/storage"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL   = "https://api.sunrise-sunset.org/json"
	testLatitude  = 36.72016
	testLongitude = -4.42034
	testQuery     = "date=today&formatted=0&lat=36.72016&lng=-4.42034"
)

const jsonSuccess = `{
  "results": {
    "sunrise": "2015-05-21T05:05:35+00:00",
    "sunset": "2015-05-21T19:22:59+00:00",
    "solar_noon": "2015-05-21T12:14:17+00:00",
    "day_length": 51444,
    "civil_twilight_begin": "2015-05-21T04:36:17+00:00",
    "civil_twilight_end": "2015-05-21T19:52:17+00:00",
    "nautical_twilight_begin": "2015-05-21T04:00:13+00:00",
    "nautical_twilight_end": "2015-05-21T20:28:21+00:00",
    "astronomical_twilight_begin": "2015-05-21T03:20:49+00:00",
    "astronomical_twilight_end": "2015-05-21T21:07:45+00:00"
  },
  "status": "OK"
}`

const jsonFailure = `{"results":"","status":"INVALID_REQUEST"}`

func testProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		Name:    "Sunrise-Sunset API",
		BaseURL: testBaseURL,
		Timeout: 5 * time.Second,
	}
}

func testRaw() *RawResult {
	return &RawResult{
		Sunrise:   "2015-05-21T05:05:35+00:00",
		Sunset:    "2015-05-21T19:22:59+00:00",
		SolarNoon: "2015-05-21T12:14:17+00:00",
		DayLength: 51444,
	}
}

// setupHTTPMock routes the default transport through httpmock for one test
func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func setupTestStore(t *testing.T, loc *time.Location) *Store {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2015, 5, 21, 0, 1, 0, 0, time.UTC))
	db, err := storage.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, clk, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	logger, _ := zap.NewDevelopment()
	store := NewStore(db, loc, logger)
	require.NoError(t, store.Migrate())
	return store
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}
