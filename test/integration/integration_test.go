package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"coopcontrol/internal/clock"
	"coopcontrol/pkg/testutil"

	"github.com/stretchr/testify/require"
)

type envelope struct {
	Result  json.RawMessage `json:"result"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

type scenario struct {
	env    *testutil.TestEnv
	clock  *clock.MockClock
	server *httptest.Server
}

func setupTest(t *testing.T, timezone string) *scenario {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2015, 5, 21, 0, 1, 0, 0, time.UTC))
	env := testutil.NewTestEnv(t, timezone, clk)

	server := httptest.NewServer(env.App.Server().Router())
	t.Cleanup(server.Close)

	return &scenario{env: env, clock: clk, server: server}
}

// do sends a form-encoded request and decodes the envelope when there is one
func (s *scenario) do(t *testing.T, method, path string, form url.Values) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}
