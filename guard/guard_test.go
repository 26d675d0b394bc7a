package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-billing-console/guard"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/stretchr/testify/require"
)

// session is an Authorizer backed by a fixed profile.
type session struct {
	user *users.User
}

func (s session) IsAuthenticated() bool    { return s.user != nil }
func (s session) HasRole(role string) bool { return s.user.HasRole(role) }

func withRoles(roles ...string) session {
	return session{user: &users.User{ID: 1, Username: "u", Roles: roles}}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		session session
		path    string
		want    guard.Decision
	}{
		{
			name:    "anonymous protected route goes to login",
			session: session{},
			path:    "/admin/users",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteLogin},
		},
		{
			name:    "anonymous home goes to login",
			session: session{},
			path:    "/",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteLogin},
		},
		{
			name:    "login is public",
			session: session{},
			path:    "/login",
			want:    guard.Decision{Outcome: guard.Render, Path: guard.RouteLogin},
		},
		{
			name:    "user only on admin route goes home",
			session: withRoles("USER"),
			path:    "/admin/users",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteHome},
		},
		{
			name:    "admin renders admin route",
			session: withRoles("ADMIN"),
			path:    "/admin/users",
			want:    guard.Decision{Outcome: guard.Render, Path: "/admin/users"},
		},
		{
			name:    "admin dashboard root",
			session: withRoles("ROLE_ADMIN"),
			path:    "/admin",
			want:    guard.Decision{Outcome: guard.Render, Path: "/admin"},
		},
		{
			name:    "admin may use agent screens",
			session: withRoles("ADMIN"),
			path:    "/agent/devices",
			want:    guard.Decision{Outcome: guard.Render, Path: "/agent/devices"},
		},
		{
			name:    "agent may not use admin screens",
			session: withRoles("AGENT"),
			path:    "/admin/features",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteHome},
		},
		{
			name:    "agent may use user screens",
			session: withRoles("AGENT"),
			path:    "/user/subscriptions",
			want:    guard.Decision{Outcome: guard.Render, Path: "/user/subscriptions"},
		},
		{
			name:    "unknown route goes home",
			session: withRoles("USER"),
			path:    "/reports",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteHome},
		},
		{
			name:    "prefix must end at a segment",
			session: withRoles("USER"),
			path:    "/administrator",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteHome},
		},
		{
			name:    "home dispatches admin first",
			session: withRoles("ADMIN", "AGENT"),
			path:    "/",
			want:    guard.Decision{Outcome: guard.Redirect, Path: guard.RouteAdmin},
		},
		{
			name:    "path is cleaned",
			session: withRoles("ADMIN"),
			path:    "admin//users/",
			want:    guard.Decision{Outcome: guard.Render, Path: "/admin/users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guard.New(tt.session).Resolve(tt.path)
			require.Equal(t, tt.want.Outcome, got.Outcome)
			require.Equal(t, tt.want.Path, got.Path)
		})
	}
}

func TestDashboardFor(t *testing.T) {
	require.Equal(t, guard.RouteAdmin, guard.DashboardFor(withRoles("ADMIN", "AGENT")))
	require.Equal(t, guard.RouteAdmin, guard.DashboardFor(withRoles("AGENT", "ADMIN")))
	require.Equal(t, guard.RouteAgent, guard.DashboardFor(withRoles("AGENT", "USER")))
	require.Equal(t, guard.RouteUser, guard.DashboardFor(withRoles("USER")))
}

func TestNavigate_AdminAndAgentLandsOnAdminDashboard(t *testing.T) {
	g := guard.New(withRoles("ADMIN", "AGENT"))

	d, err := g.Navigate("/")
	require.NoError(t, err)
	require.Equal(t, guard.Render, d.Outcome)
	require.Equal(t, guard.RouteAdmin, d.Path)
	require.Equal(t, guard.RouteAdmin, g.Location())
}

func TestNavigate_RoleMismatchEndsOnOwnDashboard(t *testing.T) {
	g := guard.New(withRoles("USER"))

	d, err := g.Navigate("/admin/users")
	require.NoError(t, err)
	require.Equal(t, guard.Render, d.Outcome)
	require.Equal(t, guard.RouteUser, d.Path)
}

func TestNavigate_AnonymousEndsOnLogin(t *testing.T) {
	g := guard.New(session{})
	require.Equal(t, guard.RouteLogin, g.Location())

	d, err := g.Navigate("/agent/devices")
	require.NoError(t, err)
	require.Equal(t, guard.Render, d.Outcome)
	require.Equal(t, guard.RouteLogin, d.Path)
}

func TestNavigate_NoRecognisedRoleIsDenied(t *testing.T) {
	g := guard.New(withRoles("GUEST"))

	d, err := g.Navigate("/")
	require.ErrorIs(t, err, errs.ErrNoDashboard)
	require.Equal(t, guard.Deny, d.Outcome)
	require.Equal(t, guard.RouteHome, g.Location())
}

func TestSessionExpired_MovesToLogin(t *testing.T) {
	g := guard.New(withRoles("USER"))
	_, err := g.Navigate("/user/profile")
	require.NoError(t, err)
	require.Equal(t, guard.RouteUserProfile, g.Location())

	g.SessionExpired()
	require.Equal(t, guard.RouteLogin, g.Location())
}

func TestWithRoutes(t *testing.T) {
	g := guard.New(session{}, guard.WithRoutes([]guard.Route{{Prefix: "/status", Public: true}}))

	require.Equal(t, guard.Render, g.Resolve("/status").Outcome)
	d, err := g.Navigate("/other")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, guard.Deny, d.Outcome)
}
