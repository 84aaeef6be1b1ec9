package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"coopcontrol/internal/astro"
	"coopcontrol/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cliEnv struct {
	provider   *testutil.MockProvider
	configPath string
}

func setupCLI(t *testing.T, timezone string) *cliEnv {
	t.Helper()
	provider := testutil.NewMockProvider()
	t.Cleanup(provider.Close)

	path, err := testutil.WriteConfig(t.TempDir(), provider.URL(), timezone)
	require.NoError(t, err)

	return &cliEnv{provider: provider, configPath: path}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := RootCommand(&Options{Logger: zap.NewNop()})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--env", "test"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestAstronomical_AddDailyThenGet(t *testing.T) {
	env := setupCLI(t, "America/Los_Angeles")

	out, err := env.run(t, "astronomical", "add-daily")
	require.NoError(t, err)
	assert.Equal(t, "Initialized astronomical data for today\n", out)

	requests := env.provider.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "today", requests[0].Get("date"))
	assert.Equal(t, "0", requests[0].Get("formatted"))
	assert.Equal(t, "36.72016", requests[0].Get("lat"))
	assert.Equal(t, "-4.42034", requests[0].Get("lng"))

	out, err = env.run(t, "astronomical", "get", "--date", "2015-05-21")
	require.NoError(t, err)

	var view astro.LocalView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "2015-05-21", view.Date)
	assert.Equal(t, 14, view.DayLength)
	assert.Equal(t, "2015-05-20", view.DateLocal)
	assert.Equal(t, "22:05:35-0700", view.SunriseLocal)
	assert.Equal(t, "12:22:59-0700", view.SunsetLocal)
}

func TestAstronomical_AddDailyExplicitDate(t *testing.T) {
	env := setupCLI(t, "UTC")

	out, err := env.run(t, "astronomical", "add-daily", "--date", "2015-05-21")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized astronomical data for 2015-05-21")
	assert.Equal(t, "2015-05-21", env.provider.Requests()[0].Get("date"))
}

func TestAstronomical_AddDailyProviderFailure(t *testing.T) {
	env := setupCLI(t, "UTC")
	env.provider.SetDefaultResponse(http.StatusOK, testutil.FailureJSON)

	_, err := env.run(t, "astronomical", "add-daily")
	require.Error(t, err)
	assert.Equal(t, "Error initializing results for today, see logs", err.Error())
}

func TestAstronomical_GetMissing(t *testing.T) {
	env := setupCLI(t, "UTC")

	_, err := env.run(t, "astronomical", "get", "--date", "1999-01-01")
	require.Error(t, err)
	assert.Equal(t, "Not found: 1999-01-01", err.Error())

	_, err = env.run(t, "astronomical", "get", "--date", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
	assert.Equal(t, 0, env.provider.RequestCount())
}

func TestApplication_Lifecycle(t *testing.T) {
	env := setupCLI(t, "UTC")

	_, err := env.run(t, "application", "set-app-status", "--name", "coop", "--status", "ACTIVE")
	require.Error(t, err)
	assert.Equal(t, "coop not found, cannot update status", err.Error())

	out, err := env.run(t, "application", "set-app-status", "--name", "coop", "--status", "active", "--create")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Application:")
	assert.Contains(t, out, "ACTIVE")

	_, err = env.run(t, "application", "set-app-status", "--name", "coop", "--status", "ACTIVE", "--create")
	require.Error(t, err)
	assert.Equal(t, "coop already exists, cannot create it", err.Error())

	out, err = env.run(t, "application", "set-app-status", "--name", "coop", "--status", "LOCKED")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Application:")

	out, err = env.run(t, "application", "get-app-status", "--name", "coop")
	require.NoError(t, err)
	assert.Contains(t, out, "LOCKED")
}

func TestApplication_InvalidStatus(t *testing.T) {
	env := setupCLI(t, "UTC")

	_, err := env.run(t, "application", "set-app-status", "--name", "coop", "--status", "SLEEPING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid appstatus: SLEEPING")
	assert.Contains(t, err.Error(), "ACTIVE, LOCKED, ARCHIVED")
}

func TestHardware_MissingAndInvalid(t *testing.T) {
	env := setupCLI(t, "UTC")

	_, err := env.run(t, "hardware", "get-hardware-status", "--name", "door")
	require.Error(t, err)
	assert.Equal(t, "Not found: door", err.Error())

	_, err = env.run(t, "hardware", "set-hardware-status", "--name", "door", "--status", "OPEN")
	require.Error(t, err)
	assert.Equal(t, "door not found, cannot update status", err.Error())

	_, err = env.run(t, "hardware", "set-hardware-status", "--name", "door", "--status", "AJAR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hardwarestatus: AJAR")
}

func TestRootCommand_MissingConfig(t *testing.T) {
	cmd := RootCommand(&Options{Logger: zap.NewNop()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "/nonexistent/config.yaml", "astronomical", "add-daily"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
