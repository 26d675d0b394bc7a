package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-billing-console/internal/config"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"CONFIG_PATH", "APP_NAME", "ENV", "LOG_LEVEL", "DATA_FOLDER", "API_BASE_URL",
	"REQUEST_TIMEOUT", "RATE_LIMIT", "RATE_BURST", "STORE_DRIVER", "STORE_PATH",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		if value, ok := os.LookupEnv(name); ok {
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { _ = os.Setenv(name, value) })
		}
	}
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

const sampleYAML = `
app_name: "Billing QA"
env: "prod"
log_level: "WARN"
data_folder: "/var/lib/billingctl"
api:
  base_url: "https://billing.example.com/subscription-service/api"
  request_timeout: "3s"
  rate_limit: 5
  rate_burst: 2
store:
  driver: "sqlite"
`

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.New()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, "Billing Console", cfg.GetAppName())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Equal(t, filepath.Join(home, ".billingctl"), cfg.GetDataFolder())
	require.Equal(t, "http://localhost:8080/subscription-service/api", cfg.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, cfg.GetRequestTimeout())
	require.Zero(t, cfg.GetRateLimit())
	require.Equal(t, 1, cfg.GetRateBurst())
	require.Equal(t, config.StoreDriverFile, cfg.GetStoreDriver())
	require.Equal(t, filepath.Join(home, ".billingctl", "session.json"), cfg.GetStorePath())
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "Billing QA", cfg.GetAppName())
	require.Equal(t, "PROD", cfg.GetEnv())
	require.Equal(t, "warn", cfg.GetLogLevel())
	require.Equal(t, "https://billing.example.com/subscription-service/api", cfg.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, 5.0, cfg.GetRateLimit())
	require.Equal(t, 2, cfg.GetRateBurst())
	require.Equal(t, config.StoreDriverSQLite, cfg.GetStoreDriver())
	require.Equal(t, filepath.Join("/var/lib/billingctl", "session.db"), cfg.GetStorePath())
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("STORE_PATH", "/tmp/console/session.json")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.StoreDriverFile, cfg.GetStoreDriver())
	require.Equal(t, "/tmp/console/session.json", cfg.GetStorePath())
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "Billing QA", cfg.GetAppName())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_BrokenFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", "api: [unclosed\n")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_UnknownStoreDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "redis")

	_, err := config.New()
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BILLING_TEST_VALUE", "set")
	require.Equal(t, "set", config.GetEnv("BILLING_TEST_VALUE", "default"))
	require.Equal(t, "default", config.GetEnv("BILLING_TEST_UNSET_VALUE", "default"))
}
