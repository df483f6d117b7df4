package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

func testTable(t *testing.T) *domain.RouteTable {
	t.Helper()
	table, err := domain.NewRouteTable(domain.DefaultRoutes())
	if err != nil {
		t.Fatalf("build route table: %v", err)
	}
	return table
}

func mustRoute(t *testing.T, table *domain.RouteTable, path string) domain.Route {
	t.Helper()
	r, ok := table.Match(path)
	if !ok {
		t.Fatalf("no route for %s", path)
	}
	return r
}

func newTestGuard(t *testing.T, sess ports.Session) (*GuardService, *domain.RouteTable) {
	t.Helper()
	table := testTable(t)
	guard, err := NewGuardService(sess, table, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGuardService: %v", err)
	}
	return guard, table
}

func TestGuard_AuthRouteWhileLoggedOut(t *testing.T) {
	users := &stubUsers{user: bobUser(domain.RoleUser)}
	sess := newTestSession(&memStore{}, &stubAuth{}, users)
	guard, table := newTestGuard(t, sess)

	d := guard.Evaluate(context.Background(), mustRoute(t, table, "/my-borrows"))
	if d.Allowed {
		t.Fatalf("expected redirect")
	}
	if d.RedirectTo.Name != domain.RouteLogin {
		t.Fatalf("expected redirect to login, got %q", d.RedirectTo.Name)
	}
	if users.calls != 0 {
		t.Fatalf("no identity fetch expected without a token, got %d", users.calls)
	}
}

func TestGuard_GuestRouteWhileLoggedIn(t *testing.T) {
	sess := newTestSession(&memStore{}, &stubAuth{token: "abc123"}, &stubUsers{user: bobUser(domain.RoleUser)})
	if err := sess.Login(context.Background(), "bob", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	guard, table := newTestGuard(t, sess)

	d := guard.Evaluate(context.Background(), mustRoute(t, table, "/login"))
	if d.Allowed || d.RedirectTo.Name != domain.RouteDashboard {
		t.Fatalf("expected redirect to dashboard, got %+v", d)
	}
}

func TestGuard_AdminRouteRehydratesThenRejectsNonAdmin(t *testing.T) {
	// Token "abc123" stored, identity unset: entering /admin/books must
	// first resolve the identity, then reject on the admin rule.
	users := &stubUsers{user: bobUser(domain.RoleUser)}
	sess := newTestSession(&memStore{token: "abc123"}, &stubAuth{}, users)
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	guard, table := newTestGuard(t, sess)

	d := guard.Evaluate(context.Background(), mustRoute(t, table, "/admin/books"))
	if d.Allowed || d.RedirectTo.Name != domain.RouteDashboard {
		t.Fatalf("expected redirect to dashboard, got %+v", d)
	}
	if users.calls != 1 {
		t.Fatalf("expected exactly one identity fetch, got %d", users.calls)
	}
	if sess.Identity() == nil {
		t.Fatalf("identity should be resolved after rehydration")
	}
}

func TestGuard_AdminRouteAllowsAdmin(t *testing.T) {
	sess := newTestSession(&memStore{token: "abc123"}, &stubAuth{}, &stubUsers{user: bobUser(domain.RoleAdmin)})
	_ = sess.Init(context.Background())
	guard, table := newTestGuard(t, sess)

	d := guard.Evaluate(context.Background(), mustRoute(t, table, "/admin/users"))
	if !d.Allowed {
		t.Fatalf("expected admin to pass, got redirect to %q", d.RedirectTo.Name)
	}
}

func TestGuard_FailedRehydrationFallsThroughToAuthRule(t *testing.T) {
	// A token that cannot resolve an identity collapses the session, so
	// the auth rule then redirects to login.
	users := &stubUsers{err: errors.New("backend down")}
	sess := newTestSession(&memStore{token: "abc123"}, &stubAuth{}, users)
	_ = sess.Init(context.Background())
	guard, table := newTestGuard(t, sess)

	d := guard.Evaluate(context.Background(), mustRoute(t, table, "/my-borrows"))
	if d.Allowed || d.RedirectTo.Name != domain.RouteLogin {
		t.Fatalf("expected redirect to login, got %+v", d)
	}
	if sess.IsLoggedIn() {
		t.Fatalf("session should be logged out after failed rehydration")
	}
}

func TestGuard_PlainRouteAllowsEveryone(t *testing.T) {
	table := testTable(t)
	extra := append(table.Routes(), domain.Route{Path: "/about", Name: "about"})
	table2, err := domain.NewRouteTable(extra)
	if err != nil {
		t.Fatalf("route table: %v", err)
	}

	sess := newTestSession(&memStore{}, &stubAuth{}, &stubUsers{user: bobUser(domain.RoleUser)})
	guard, err := NewGuardService(sess, table2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGuardService: %v", err)
	}

	d := guard.Evaluate(context.Background(), mustRoute(t, table2, "/about"))
	if !d.Allowed {
		t.Fatalf("unflagged route should be open, got %+v", d)
	}
}
