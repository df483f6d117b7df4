package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

type routesFile struct {
	Routes []domain.Route `yaml:"routes"`
}

// LoadRoutes builds the route table. With an empty path the compiled-in
// default table is used; otherwise the YAML file replaces it entirely.
func LoadRoutes(path string) (*domain.RouteTable, error) {
	if path == "" {
		return domain.NewRouteTable(domain.DefaultRoutes())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	var rf routesFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	if len(rf.Routes) == 0 {
		return nil, fmt.Errorf("routes file %s declares no routes", path)
	}

	table, err := domain.NewRouteTable(rf.Routes)
	if err != nil {
		return nil, fmt.Errorf("routes file %s: %w", path, err)
	}
	return table, nil
}
