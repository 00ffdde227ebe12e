package auth

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/session"
)

const (
	ViewWelcome      = "welcome"
	ViewLogin        = "login"
	ViewRegister     = "register"
	ViewDashboard    = "dashboard"
	ViewEmployeeForm = "employee-form"
	ViewNotFound     = "not-found"

	maxRedirects = 4
)

type Route struct {
	Path  string
	Guard Guard
	View  string
}

// Routes is the navigation table of the portal.
func Routes() []Route {
	return []Route{
		{Path: PathWelcome, Guard: AuthGate, View: ViewWelcome},
		{Path: PathLogin, Guard: AuthGate, View: ViewLogin},
		{Path: PathRegister, Guard: AuthGate, View: ViewRegister},
		{Path: PathDashboard, Guard: SessionGate, View: ViewDashboard},
		{Path: PathEmployees, Guard: RoleGate(user.RoleAdmin, user.RoleEditor), View: ViewEmployeeForm},
	}
}

// Resolution is where a navigation ended up. Redirects lists every path the
// guards sent us to, in order.
type Resolution struct {
	Path      string
	View      string
	Redirects []string
}

func (r Resolution) Redirected() bool {
	return len(r.Redirects) > 0
}

// Navigator resolves paths against the live session on every call.
type Navigator struct {
	store  *session.Store
	routes map[string]Route
	logger *slog.Logger
}

func NewNavigator(store *session.Store, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	routes := make(map[string]Route)
	for _, r := range Routes() {
		routes[r.Path] = r
	}
	return &Navigator{store: store, routes: routes, logger: logger}
}

func (n *Navigator) Navigate(path string) (Resolution, error) {
	current := normalizePath(path)
	res := Resolution{}

	for hops := 0; ; hops++ {
		route, ok := n.routes[current]
		if !ok {
			res.Path = current
			res.View = ViewNotFound
			return res, nil
		}

		decision := route.Guard(n.store.Get())
		if decision.Allowed {
			res.Path = current
			res.View = route.View
			return res, nil
		}

		if hops >= maxRedirects {
			return res, internal.NewInternalError(fmt.Sprintf("too many redirects resolving %s", path), nil)
		}

		n.logger.Debug("navigation redirected", "from", current, "to", decision.Redirect)
		res.Redirects = append(res.Redirects, decision.Redirect)
		current = decision.Redirect
	}
}

func normalizePath(path string) string {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
