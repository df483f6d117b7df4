package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

// GuardService implements ports.Guard: it gates view transitions on the
// session's state, rehydrating the identity first when needed. Rule
// order is fixed (auth before guest before admin) and the first match
// wins.
type GuardService struct {
	session   ports.Session
	log       zerolog.Logger
	login     domain.Route
	dashboard domain.Route
}

// NewGuardService builds a guard over the given route table. The table
// must contain the login and dashboard routes, which are the only
// redirect targets the guard ever produces.
func NewGuardService(session ports.Session, table *domain.RouteTable, log zerolog.Logger) (*GuardService, error) {
	login, ok := table.ByName(domain.RouteLogin)
	if !ok {
		return nil, fmt.Errorf("route table is missing %q", domain.RouteLogin)
	}
	dashboard, ok := table.ByName(domain.RouteDashboard)
	if !ok {
		return nil, fmt.Errorf("route table is missing %q", domain.RouteDashboard)
	}
	return &GuardService{session: session, log: log, login: login, dashboard: dashboard}, nil
}

// Evaluate decides whether the session may enter the route. A held
// token with an unresolved identity is resolved first, so the admin
// check below runs against confirmed privilege, never an assumption. A
// failed resolution collapses the session to logged out inside
// RefreshIdentity and evaluation simply continues against that state.
func (g *GuardService) Evaluate(ctx context.Context, route domain.Route) ports.Decision {
	if g.session.IsLoggedIn() && g.session.Identity() == nil {
		if err := g.session.RefreshIdentity(ctx); err != nil {
			g.log.Warn().Err(err).Str("route", route.Name).Msg("identity rehydration failed")
		}
	}

	switch {
	case route.RequiresAuth && !g.session.IsLoggedIn():
		return g.redirect(route, g.login)
	case route.GuestOnly && g.session.IsLoggedIn():
		return g.redirect(route, g.dashboard)
	case route.RequiresAdmin && !g.session.IsAdmin():
		return g.redirect(route, g.dashboard)
	}
	return ports.Decision{Allowed: true}
}

func (g *GuardService) redirect(from, to domain.Route) ports.Decision {
	g.log.Debug().Str("from", from.Name).Str("to", to.Name).Msg("navigation redirected")
	return ports.Decision{RedirectTo: to}
}
