package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

func writeRoutes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write routes file: %v", err)
	}
	return path
}

func TestLoadRoutes_DefaultTable(t *testing.T) {
	table, err := LoadRoutes("")
	if err != nil {
		t.Fatalf("LoadRoutes: %v", err)
	}
	if _, ok := table.ByName(domain.RouteLogin); !ok {
		t.Fatalf("default table missing login route")
	}
	if _, ok := table.ByName(domain.RouteDashboard); !ok {
		t.Fatalf("default table missing dashboard route")
	}
}

func TestLoadRoutes_FromFile(t *testing.T) {
	path := writeRoutes(t, `
routes:
  - path: /login
    name: login
    guest: true
  - path: /
    name: dashboard
    requires_auth: true
  - path: /staff/catalog
    name: staff-catalog
    requires_auth: true
    requires_admin: true
`)
	table, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("LoadRoutes: %v", err)
	}

	r, ok := table.Match("/staff/catalog")
	if !ok {
		t.Fatalf("custom route not matched")
	}
	if !r.RequiresAdmin || !r.RequiresAuth {
		t.Fatalf("flags not parsed: %+v", r)
	}
}

func TestLoadRoutes_RejectsContradictoryFlags(t *testing.T) {
	path := writeRoutes(t, `
routes:
  - path: /login
    name: login
    guest: true
    requires_auth: true
`)
	if _, err := LoadRoutes(path); err == nil {
		t.Fatalf("expected error for guest+requires_auth")
	}
}

func TestLoadRoutes_RejectsEmptyFile(t *testing.T) {
	path := writeRoutes(t, "routes: []\n")
	if _, err := LoadRoutes(path); err == nil {
		t.Fatalf("expected error for empty route list")
	}
}
