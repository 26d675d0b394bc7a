package guard

import (
	"github.com/jrsteele09/go-billing-console/users"
)

// Route path constants
const (
	RouteLogin = "/login"
	RouteHome  = "/"

	// Role dashboards
	RouteAdmin = "/admin"
	RouteAgent = "/agent"
	RouteUser  = "/user"

	// Admin screens
	RouteAdminUsers         = "/admin/users"
	RouteAdminDevices       = "/admin/devices"
	RouteAdminSubscriptions = "/admin/subscriptions"
	RouteAdminFeatures      = "/admin/features"
	RouteAdminAudit         = "/admin/audit"
	RouteAdminBilling       = "/admin/billing"

	// Agent screens
	RouteAgentSubscriptions     = "/agent/subscriptions"
	RouteAgentUserSubscriptions = "/agent/user-subscriptions"
	RouteAgentDevices           = "/agent/devices"

	// User screens
	RouteUserProfile       = "/user/profile"
	RouteUserSubscriptions = "/user/subscriptions"
)

// Route is one entry of the route table.
type Route struct {
	// Prefix matches the path itself and everything below it. "/" matches
	// only itself; "*" matches anything.
	Prefix string

	// Public routes render without a session.
	Public bool

	// AnyOf lists the roles of which the user must hold at least one. Empty
	// means any authenticated user.
	AnyOf []string

	// RedirectTo sends every match elsewhere unconditionally.
	RedirectTo string

	// Dispatch routes forward to the user's role dashboard.
	Dispatch bool
}

// DefaultRoutes is the console's route table. The first match wins.
var DefaultRoutes = []Route{
	{Prefix: RouteLogin, Public: true},
	{Prefix: RouteHome, Dispatch: true},
	{Prefix: RouteAdmin, AnyOf: []string{users.RoleAdmin}},
	{Prefix: RouteAgent, AnyOf: []string{users.RoleAgent, users.RoleAdmin}},
	{Prefix: RouteUser, AnyOf: []string{users.RoleUser, users.RoleAdmin, users.RoleAgent}},
	{Prefix: "*", RedirectTo: RouteHome},
}

func (r Route) matches(path string) bool {
	switch r.Prefix {
	case "*":
		return true
	case RouteHome:
		return path == RouteHome
	}
	return path == r.Prefix || (len(path) > len(r.Prefix) && path[:len(r.Prefix)] == r.Prefix && path[len(r.Prefix)] == '/')
}
