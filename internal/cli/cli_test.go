package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jrsteele09/go-billing-console/internal/backendfake"
	"github.com/jrsteele09/go-billing-console/internal/cli"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "alice"
	adminPassword = "alice-password"
	agentUsername = "bob"
	agentPassword = "bob-password"
)

type testFixture struct {
	backend *backendfake.Backend
	server  *httptest.Server
}

// result is the outcome of one billingctl invocation.
type result struct {
	out  string
	err  error
	code int
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	be := backendfake.New()
	_, err := be.AddUser(backendfake.Account{
		ID: 1, Username: adminUsername, Email: "alice@example.com", Mobile: "9000000001",
		Password: adminPassword, Roles: []string{backendfake.RoleAdmin, backendfake.RoleAgent},
	})
	require.NoError(t, err)
	_, err = be.AddUser(backendfake.Account{
		ID: 2, Username: agentUsername, Email: "bob@example.com",
		Password: agentPassword, Roles: []string{backendfake.RoleAgent},
	})
	require.NoError(t, err)

	f := &testFixture{backend: be, server: httptest.NewServer(be)}
	t.Cleanup(f.server.Close)

	if value, ok := os.LookupEnv("CONFIG_PATH"); ok {
		require.NoError(t, os.Unsetenv("CONFIG_PATH"))
		t.Cleanup(func() { _ = os.Setenv("CONFIG_PATH", value) })
	}
	t.Setenv("API_BASE_URL", f.server.URL)
	t.Setenv("DATA_FOLDER", t.TempDir())
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("STORE_PATH", "")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("RATE_BURST", "1")
	return f
}

// run executes billingctl as a fresh process would.
func (f *testFixture) run(t *testing.T, opts *cli.RootOptions, args ...string) result {
	t.Helper()
	if opts == nil {
		opts = &cli.RootOptions{}
	}
	var out, errOut bytes.Buffer
	err := cli.Execute(context.Background(), opts, args, strings.NewReader(""), &out, &errOut)
	return result{out: out.String(), err: err, code: cli.GetExitCode(err)}
}

func (f *testFixture) login(t *testing.T, username, password string) {
	t.Helper()
	res := f.run(t, nil, "login", username, "--password", password)
	require.NoError(t, res.err)
}

func TestRootCommand_Commands(t *testing.T) {
	cmd := cli.NewRootCommand(&cli.RootOptions{})
	for _, name := range []string{"register", "login", "logout", "refresh", "whoami", "status", "open", "admin", "agent", "user", "audit", "billing"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, sub.Name())
	}
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestLogin_LandsOnDashboard(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, nil, "login", adminUsername, "--password", adminPassword)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Logged in as alice (ROLE_ADMIN, ROLE_AGENT)")
	require.Contains(t, res.out, "Dashboard: /admin")

	res = f.run(t, nil, "status")
	require.NoError(t, res.err)
	var st struct {
		Authenticated bool   `json:"authenticated"`
		Dashboard     string `json:"dashboard"`
		Refreshable   bool   `json:"refreshable"`
		ExpiresAt     string `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &st))
	require.True(t, st.Authenticated)
	require.True(t, st.Refreshable)
	require.Equal(t, "/admin", st.Dashboard)
	require.NotEmpty(t, st.ExpiresAt)
}

func TestRegister_ThenLoginLandsOnUserDashboard(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, nil, "register", "carol", "--email", "carol@example.com", "-p", "carol-password")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Registered carol")

	res = f.run(t, nil, "login", "carol", "-p", "carol-password")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Dashboard: /user")

	res = f.run(t, nil, "register", "carol", "-p", "carol-password")
	require.Equal(t, cli.ExitFailure, res.code)
	require.Equal(t, "Username already exists", cli.UserMessage(res.err))
}

func TestLogin_PromptsForPassword(t *testing.T) {
	f := setupTestFixture(t)

	var prompted string
	opts := &cli.RootOptions{ReadPassword: func(prompt string) (string, error) {
		prompted = prompt
		return agentPassword, nil
	}}
	res := f.run(t, opts, "login", agentUsername)
	require.NoError(t, res.err)
	require.Equal(t, "Password: ", prompted)
	require.Contains(t, res.out, "Dashboard: /agent")
}

func TestLogin_ByMobile(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, nil, "login", "--mobile", "9000000001", "-p", adminPassword)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Logged in as alice")
}

func TestLogin_RejectedShowsBackendMessage(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, nil, "login", adminUsername, "--password", "wrong")
	require.Equal(t, cli.ExitFailure, res.code)
	require.Equal(t, "Invalid username or password", cli.UserMessage(res.err))
}

func TestScreen_NotLoggedIn(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, nil, "billing", "pending")
	require.Equal(t, cli.ExitNotPermitted, res.code)
	require.Equal(t, cli.MsgNotLoggedIn, cli.UserMessage(res.err))
	require.Zero(t, f.backend.Hits("GET", "/billing/pending"))
}

func TestScreen_RoleMismatchReportsLanding(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, agentUsername, agentPassword)

	res := f.run(t, nil, "admin", "features")
	require.Equal(t, cli.ExitNotPermitted, res.code)
	require.Contains(t, cli.UserMessage(res.err), "landed on /agent")
	require.Zero(t, f.backend.Hits("GET", "/admin/features"))

	res = f.run(t, nil, "agent", "devices", "--user", "7")
	require.NoError(t, res.err)
	require.Contains(t, res.out, `"path": "/agent/user-devices/user/7"`)
}

func TestScreen_AuditSearchIsPaged(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, adminUsername, adminPassword)

	res := f.run(t, nil, "audit", "search", "login", "--size", "10")
	require.NoError(t, res.err)

	var resp struct {
		Path    string `json:"path"`
		Keyword string `json:"keyword"`
		Page    int    `json:"page"`
		Size    int    `json:"size"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &resp))
	require.Equal(t, "/audit/search", resp.Path)
	require.Equal(t, "login", resp.Keyword)
	require.Equal(t, 0, resp.Page)
	require.Equal(t, 10, resp.Size)
}

func TestBilling_PaymentMethod(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, adminUsername, adminPassword)

	res := f.run(t, nil, "billing", "pay", "12", "--method", "debit-card")
	require.NoError(t, res.err)
	require.Contains(t, res.out, `"paymentMethod": "Debit Card"`)

	res = f.run(t, nil, "billing", "pay", "12", "--method", "cash")
	require.Equal(t, cli.ExitCommandError, res.code)
}

func TestScreen_ExpiredTokenIsRenewed(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, adminUsername, adminPassword)
	f.backend.ExpireAccessTokens()

	res := f.run(t, nil, "user", "profile")
	require.NoError(t, res.err)
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.Equal(t, 2, f.backend.Hits("GET", "/user/profile"))
}

func TestScreen_SessionExpired(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, adminUsername, adminPassword)
	f.backend.ExpireAccessTokens()
	f.backend.SetRejectRefresh(true)

	res := f.run(t, nil, "user", "subscriptions", "--active")
	require.Equal(t, cli.ExitSessionExpired, res.code)
	require.Equal(t, cli.MsgSessionExpired, cli.UserMessage(res.err))

	res = f.run(t, nil, "status")
	require.NoError(t, res.err)
	require.Contains(t, res.out, `"authenticated": false`)
}

func TestOpen_ReportsDecision(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, agentUsername, agentPassword)

	res := f.run(t, nil, "open", "/admin/users")
	require.NoError(t, res.err)
	require.Contains(t, res.out, `"outcome": "render"`)
	require.Contains(t, res.out, `"path": "/agent"`)
}

func TestLogout_ClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, adminUsername, adminPassword)

	res := f.run(t, nil, "logout")
	require.NoError(t, res.err)
	require.Equal(t, 1, f.backend.LogoutCalls())

	res = f.run(t, nil, "whoami")
	require.Equal(t, cli.ExitSessionExpired, res.code)
	require.Equal(t, cli.MsgNotLoggedIn, cli.UserMessage(res.err))
}

func TestWhoami(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, agentUsername, agentPassword)

	res := f.run(t, nil, "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.out, `"username": "bob"`)
}

func TestBadConfig(t *testing.T) {
	setupTestFixture(t)
	t.Setenv("STORE_DRIVER", "redis")

	var out, errOut bytes.Buffer
	err := cli.Execute(context.Background(), &cli.RootOptions{}, []string{"status"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}
