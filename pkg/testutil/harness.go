package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"coopcontrol/internal/app"
	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"

	"go.uber.org/zap"
)

// TestEnv runs the real components against a mock provider and a throwaway
// SQLite database.
type TestEnv struct {
	Provider   *MockProvider
	ConfigPath string
	Config     *config.Config
	App        *app.App
	Logger     *zap.Logger
}

// WriteConfig writes a config file with a "test" section pointing at
// providerURL and a SQLite file in dir, and returns its path.
func WriteConfig(dir, providerURL, timezone string) (string, error) {
	contents := fmt.Sprintf(`test:
  app:
    name: coopcontrol-test
    latitude: 36.72016
    longitude: -4.42034
    timezone: %s
  database:
    driver: sqlite
    dsn: %s
  http:
    addr: "127.0.0.1:0"
  provider:
    base_url: %s
    timeout: 5s
  schedule:
    disabled: true
  logging:
    level: error
`, timezone, filepath.Join(dir, "coop.db"), providerURL)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// NewTestEnv creates a fully wired environment. Everything is released when
// the test ends.
//
// Example usage:
//
//	env := testutil.NewTestEnv(t, "America/Los_Angeles", nil)
//	id, err := env.App.Astro.AddDaily(ctx, "today")
func NewTestEnv(t testing.TB, timezone string, clk clock.Clock) *TestEnv {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	provider := NewMockProvider()
	t.Cleanup(provider.Close)

	path, err := WriteConfig(t.TempDir(), provider.URL(), timezone)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader(path, logger).Load("test")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(cfg, logger, clk)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return &TestEnv{
		Provider:   provider,
		ConfigPath: path,
		Config:     cfg,
		App:        a,
		Logger:     logger,
	}
}
