package app_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-billing-console/auth"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/jrsteele09/go-billing-console/internal/app"
	"github.com/jrsteele09/go-billing-console/internal/backendfake"
	"github.com/jrsteele09/go-billing-console/internal/config"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "alice"
	adminPassword = "alice-password"
)

type testFixture struct {
	backend *backendfake.Backend
	server  *httptest.Server
	dir     string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	for _, name := range []string{"CONFIG_PATH", "API_BASE_URL", "DATA_FOLDER", "STORE_DRIVER", "STORE_PATH", "RATE_LIMIT", "RATE_BURST", "REQUEST_TIMEOUT"} {
		if value, ok := os.LookupEnv(name); ok {
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { _ = os.Setenv(name, value) })
		}
	}

	be := backendfake.New()
	_, err := be.AddUser(backendfake.Account{
		ID: 1, Username: adminUsername, Email: "alice@example.com",
		Password: adminPassword, Roles: []string{backendfake.RoleAdmin, backendfake.RoleAgent},
	})
	require.NoError(t, err)

	f := &testFixture{backend: be, server: httptest.NewServer(be), dir: t.TempDir()}
	t.Cleanup(f.server.Close)
	return f
}

// config writes a config file for driver and loads it.
func (f *testFixture) config(t *testing.T, driver string) config.Config {
	t.Helper()
	yaml := fmt.Sprintf("data_folder: %q\napi:\n  base_url: %q\n  rate_limit: 100\n  rate_burst: 10\nstore:\n  driver: %q\n",
		f.dir, f.server.URL, driver)
	path := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func (f *testFixture) newApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	a, err := app.New(cfg, app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	for _, driver := range []string{config.StoreDriverFile, config.StoreDriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			f := setupTestFixture(t)
			cfg := f.config(t, driver)

			first := f.newApp(t, cfg)
			require.Equal(t, guard.RouteLogin, first.Guard.Location())
			_, err := first.Manager.Login(context.Background(), adminUsername, adminPassword, auth.LoginModeUsername)
			require.NoError(t, err)
			require.NoError(t, first.Close())

			second := f.newApp(t, cfg)
			require.True(t, second.Manager.IsAuthenticated())
			require.Equal(t, adminUsername, second.Manager.User().Username)
			require.Equal(t, guard.RouteHome, second.Guard.Location())

			_, err = second.API.Admin.Features(context.Background())
			require.NoError(t, err)
			require.FileExists(t, cfg.GetStorePath())
		})
	}
}

func TestApp_AdminAndAgentLandsOnAdminDashboard(t *testing.T) {
	f := setupTestFixture(t)
	a := f.newApp(t, f.config(t, config.StoreDriverFile))

	_, err := a.Manager.Login(context.Background(), adminUsername, adminPassword, auth.LoginModeUsername)
	require.NoError(t, err)

	d, err := a.Guard.Navigate(guard.RouteHome)
	require.NoError(t, err)
	require.Equal(t, guard.RouteAdmin, d.Path)
}

func TestApp_ExpiredSessionReturnsToLogin(t *testing.T) {
	f := setupTestFixture(t)
	a := f.newApp(t, f.config(t, config.StoreDriverFile))

	_, err := a.Manager.Login(context.Background(), adminUsername, adminPassword, auth.LoginModeUsername)
	require.NoError(t, err)
	_, err = a.Guard.Navigate(guard.RouteAdminBilling)
	require.NoError(t, err)

	f.backend.ExpireAccessTokens()
	f.backend.SetRejectRefresh(true)

	_, err = a.API.Billing.Pending(context.Background())
	require.ErrorIs(t, err, errs.ErrSessionExpired)
	require.False(t, a.Manager.IsAuthenticated())
	require.Equal(t, guard.RouteLogin, a.Guard.Location())

	restored := f.newApp(t, f.config(t, config.StoreDriverFile))
	require.False(t, restored.Manager.IsAuthenticated())
}

func TestApp_BadBaseURL(t *testing.T) {
	f := setupTestFixture(t)
	yaml := fmt.Sprintf("data_folder: %q\napi:\n  base_url: \"relative/path\"\n", f.dir)
	path := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = app.New(cfg, app.WithLogger(zerolog.Nop()))
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}
