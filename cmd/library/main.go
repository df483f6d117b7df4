// Command library is a terminal front end for the library book-lending
// backend. Every command is bound to a client-side route and passes
// through the navigation guard before it runs, exactly like a view
// transition in the web client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/LotusZhao0521/Library/internal/api"
	"github.com/LotusZhao0521/Library/internal/api/client"
	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
	"github.com/LotusZhao0521/Library/internal/core/service"
	"github.com/LotusZhao0521/Library/internal/infrastructure/config"
	"github.com/LotusZhao0521/Library/internal/infrastructure/tokenstore"
	"github.com/LotusZhao0521/Library/pkg/logger"
)

func main() {
	flags := pflag.NewFlagSet("library", pflag.ExitOnError)
	baseURL := flags.String("base-url", "", "backend base URL (overrides LIBRARY_BASE_URL)")
	tokenFile := flags.String("token-file", "", "token file path (overrides TOKEN_FILE)")
	routesFile := flags.String("routes", "", "route table YAML (overrides ROUTES_FILE)")
	logLevel := flags.String("log-level", "", "log level (overrides LOG_LEVEL)")
	pretty := flags.Bool("pretty", true, "human-friendly log output (overrides LOG_PRETTY)")
	flags.Usage = usage(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg := config.Load()
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *tokenFile != "" {
		cfg.TokenFile = *tokenFile
	}
	if *routesFile != "" {
		cfg.RoutesFile = *routesFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if flags.Changed("pretty") {
		cfg.LogPretty = *pretty
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx := context.Background()
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := app.run(ctx, flags.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `Usage: library [flags] <command> [args]

Commands:
  login <username>          authenticate and store the session token
  logout                    drop the session
  whoami                    show the authenticated identity
  books                     list the catalog
  book <id>                 show one book with its borrow history
  borrow <id>               borrow a book
  return <id>               return a book
  my-borrows                list your borrow records
  note <record-id> <text>   annotate one of your borrow records
  passwd <old> <new>        change your password
  admin-books <add|rm> ...  manage the catalog (admin)
  admin-users <list|add|role> ...  manage users (admin)

Flags:
`)
		flags.PrintDefaults()
	}
}

// newApp wires the session, gateway, guard, and typed clients together.
// Ordering matters: the gateway reads the session's token, the session
// logs in through the gateway's clients, and the gateway's 401 handler
// logs the session out. The session is therefore built first and the backend
// clients are bound to it afterwards.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	store, err := buildTokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	table, err := config.LoadRoutes(cfg.RoutesFile)
	if err != nil {
		return nil, err
	}

	sess := service.NewSessionService(store, log)
	gw := api.NewGateway(&http.Client{Timeout: cfg.HTTPTimeout}, *base, sess, log)

	auth := client.NewAuth(gw)
	users := client.NewUsers(gw)
	sess.BindBackend(auth, users)

	guard, err := service.NewGuardService(sess, table, log)
	if err != nil {
		return nil, err
	}

	nav := newNavigator(table)
	// Top-level subscriber for the gateway's session-expired signal:
	// drop the session and land on the login view before the failing
	// call returns to its caller.
	gw.OnSessionExpired(func(ctx context.Context) {
		_ = sess.Logout(ctx)
		if login, ok := table.ByName(domain.RouteLogin); ok {
			nav.NavigateTo(login)
		}
	})

	if err := sess.Init(ctx); err != nil {
		return nil, err
	}

	return &app{
		session: sess,
		guard:   guard,
		nav:     nav,
		table:   table,
		users:   users,
		books:   client.NewBooks(gw),
		borrows: client.NewBorrows(gw),
	}, nil
}

func buildTokenStore(ctx context.Context, cfg *config.Config) (ports.TokenStore, error) {
	switch cfg.TokenStore {
	case "file":
		return tokenstore.NewFile(cfg.TokenFile), nil
	case "redis":
		return tokenstore.ConnectRedis(ctx, tokenstore.RedisConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
			Key:  cfg.Redis.Key,
		})
	}
	return nil, fmt.Errorf("unknown token store %q (want file or redis)", cfg.TokenStore)
}
