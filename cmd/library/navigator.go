package main

import (
	"fmt"
	"os"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// navigator implements ports.Navigator for a terminal session: a
// "navigation" is just tracking the current view and telling the user
// where they ended up.
type navigator struct {
	table   *domain.RouteTable
	current domain.Route
}

func newNavigator(table *domain.RouteTable) *navigator {
	return &navigator{table: table}
}

func (n *navigator) NavigateTo(route domain.Route) {
	if n.current.Name == route.Name {
		return
	}
	n.current = route
	switch route.Name {
	case domain.RouteLogin:
		fmt.Fprintln(os.Stderr, "redirected to login: run 'library login <username>'")
	case domain.RouteDashboard:
		fmt.Fprintln(os.Stderr, "redirected to dashboard")
	default:
		fmt.Fprintf(os.Stderr, "redirected to %s\n", route.Path)
	}
}

// Current returns the route last navigated to.
func (n *navigator) Current() domain.Route {
	return n.current
}
