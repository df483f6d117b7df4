package domain

import (
	"fmt"
	"strings"
)

// Route describes one client-side view: a path pattern plus the access
// flags the navigation guard evaluates before entering it. Routes are
// defined at startup and never mutated.
type Route struct {
	Path          string `yaml:"path"`
	Name          string `yaml:"name"`
	RequiresAuth  bool   `yaml:"requires_auth"`
	RequiresAdmin bool   `yaml:"requires_admin"`
	GuestOnly     bool   `yaml:"guest"`
}

// Validate rejects flag combinations that cannot be evaluated sensibly.
func (r Route) Validate() error {
	if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("route %q: path must start with /", r.Name)
	}
	if r.GuestOnly && (r.RequiresAuth || r.RequiresAdmin) {
		return fmt.Errorf("route %q: guest is exclusive of requires_auth/requires_admin", r.Name)
	}
	if r.RequiresAdmin && !r.RequiresAuth {
		return fmt.Errorf("route %q: requires_admin implies requires_auth", r.Name)
	}
	return nil
}

// RouteTable is an ordered set of routes. Lookup is first-match over
// the declaration order.
type RouteTable struct {
	routes []Route
	byName map[string]Route
}

// NewRouteTable validates every route and builds the name index.
func NewRouteTable(routes []Route) (*RouteTable, error) {
	t := &RouteTable{routes: routes, byName: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("route %q: duplicate name", r.Name)
		}
		t.byName[r.Name] = r
	}
	return t, nil
}

// Match resolves a concrete path against the table. Pattern segments of
// the form ":param" match any single non-empty segment.
func (t *RouteTable) Match(path string) (Route, bool) {
	segs := splitPath(path)
	for _, r := range t.routes {
		if matchSegments(splitPath(r.Path), segs) {
			return r, true
		}
	}
	return Route{}, false
}

// ByName returns the route registered under the given name.
func (t *RouteTable) ByName(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Routes returns the table contents in declaration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, actual []string) bool {
	if len(pattern) != len(actual) {
		return false
	}
	for i, ps := range pattern {
		if strings.HasPrefix(ps, ":") {
			if actual[i] == "" {
				return false
			}
			continue
		}
		if ps != actual[i] {
			return false
		}
	}
	return true
}

// Route names used by the guard's redirect targets.
const (
	RouteLogin     = "login"
	RouteDashboard = "dashboard"
)

// DefaultRoutes is the compiled-in route table, overridable via the
// routes config file.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/login", Name: RouteLogin, GuestOnly: true},
		{Path: "/", Name: RouteDashboard, RequiresAuth: true},
		{Path: "/books/:id", Name: "book-detail", RequiresAuth: true},
		{Path: "/my-borrows", Name: "my-borrows", RequiresAuth: true},
		{Path: "/change-password", Name: "change-password", RequiresAuth: true},
		{Path: "/admin/books", Name: "admin-books", RequiresAuth: true, RequiresAdmin: true},
		{Path: "/admin/users", Name: "admin-users", RequiresAuth: true, RequiresAdmin: true},
	}
}
