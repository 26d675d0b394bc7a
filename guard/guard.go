// Package guard decides, for every navigation, whether the current session
// may see a route, and where to send it otherwise.
package guard

import (
	"fmt"
	pathpkg "path"
	"strings"
	"sync"

	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/rs/zerolog/log"
)

// maxHops bounds the redirects Navigate follows.
const maxHops = 5

// Authorizer answers the session questions the guard needs. auth.Manager
// satisfies it.
type Authorizer interface {
	IsAuthenticated() bool
	HasRole(role string) bool
}

// Outcome is the result of evaluating a navigation.
type Outcome int

const (
	Render   Outcome = iota // show the route
	Redirect                // go to Decision.Path instead
	Deny                    // nowhere to go
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Decision is the outcome of one navigation step. Path is the route to
// render, or the redirect target.
type Decision struct {
	Outcome Outcome
	Path    string
	Reason  string
}

// Guard evaluates navigations against a route table and remembers the last
// rendered location.
type Guard struct {
	authz  Authorizer
	routes []Route

	mu       sync.Mutex
	location string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRoutes replaces DefaultRoutes.
func WithRoutes(routes []Route) GuardOption {
	return func(g *Guard) {
		g.routes = routes
	}
}

func New(authz Authorizer, options ...GuardOption) *Guard {
	g := &Guard{
		authz:    authz,
		routes:   DefaultRoutes,
		location: RouteLogin,
	}
	for _, option := range options {
		option(g)
	}
	if authz.IsAuthenticated() {
		g.location = RouteHome
	}
	return g
}

// DashboardFor returns the dashboard a user lands on: admin over agent over
// user.
func DashboardFor(authz Authorizer) string {
	switch {
	case authz.HasRole(users.RoleAdmin):
		return RouteAdmin
	case authz.HasRole(users.RoleAgent):
		return RouteAgent
	default:
		return RouteUser
	}
}

// Clean normalises a navigation target to an absolute, slash-separated path.
func Clean(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return RouteHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return pathpkg.Clean(path)
}

// Resolve evaluates a single navigation step against the current session.
func (g *Guard) Resolve(path string) Decision {
	path = Clean(path)

	route, ok := g.match(path)
	if !ok {
		return Decision{Outcome: Deny, Path: path, Reason: "no matching route"}
	}

	switch {
	case route.Public:
		return Decision{Outcome: Render, Path: path}
	case route.RedirectTo != "":
		return Decision{Outcome: Redirect, Path: route.RedirectTo, Reason: "unknown route"}
	case !g.authz.IsAuthenticated():
		return Decision{Outcome: Redirect, Path: RouteLogin, Reason: "not authenticated"}
	case route.Dispatch:
		return Decision{Outcome: Redirect, Path: DashboardFor(g.authz), Reason: "role dashboard"}
	case len(route.AnyOf) > 0 && !g.holdsAny(route.AnyOf):
		return Decision{Outcome: Redirect, Path: RouteHome, Reason: "requires one of " + strings.Join(route.AnyOf, ", ")}
	default:
		return Decision{Outcome: Render, Path: path}
	}
}

// Navigate follows redirects from path until a route renders. A redirect
// cycle, which happens when the user holds no recognised role, yields Deny
// with errors.ErrNoDashboard.
func (g *Guard) Navigate(path string) (Decision, error) {
	current := Clean(path)
	visited := map[string]bool{}

	for hop := 0; hop <= maxHops; hop++ {
		d := g.Resolve(current)
		switch d.Outcome {
		case Render:
			g.setLocation(d.Path)
			return d, nil
		case Deny:
			return d, errs.Wrapf(errs.ErrNotFound, "navigate %s", current)
		}

		log.Debug().Str("from", current).Str("to", d.Path).Str("reason", d.Reason).Msg("navigation redirected")
		if visited[d.Path] {
			break
		}
		visited[current] = true
		current = d.Path
	}

	return Decision{Outcome: Deny, Path: Clean(path), Reason: "redirect loop"}, errs.ErrNoDashboard
}

// Location returns the last rendered route.
func (g *Guard) Location() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.location
}

// SessionExpired moves the location to the login screen. It is registered
// as the gateway's session-expired handler.
func (g *Guard) SessionExpired() {
	g.setLocation(RouteLogin)
}

func (g *Guard) setLocation(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.location = path
}

func (g *Guard) match(path string) (Route, bool) {
	for _, r := range g.routes {
		if r.matches(path) {
			return r, true
		}
	}
	return Route{}, false
}

func (g *Guard) holdsAny(roles []string) bool {
	for _, role := range roles {
		if g.authz.HasRole(role) {
			return true
		}
	}
	return false
}
