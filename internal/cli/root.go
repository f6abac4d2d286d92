// Package cli implements tasklistctl, the operator tool for the task store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tasklists/internal/config"
	"tasklists/internal/db"
	"tasklists/internal/service"

	"github.com/spf13/cobra"
)

// globals are the persistent flags. Empty values fall back to the
// environment (see config.Load).
type globals struct {
	Driver      string
	Path        string
	DatabaseURL string
	JWTSecret   string
	JSON        bool
}

type commandDeps struct {
	out     io.Writer
	globals *globals
}

func NewRootCommand(out io.Writer) *cobra.Command {
	g := &globals{}
	deps := commandDeps{out: out, globals: g}

	cmd := &cobra.Command{
		Use:           "tasklistctl",
		Short:         "Manage the task list store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.Driver, "db-driver", "", "store driver: sqlite or postgres (env DB_DRIVER)")
	pf.StringVar(&g.Path, "db-path", "", "sqlite file path (env DB_PATH)")
	pf.StringVar(&g.DatabaseURL, "database-url", "", "postgres DSN (env DATABASE_URL)")
	pf.StringVar(&g.JWTSecret, "jwt-secret", "", "token secret (env JWT_SECRET)")
	pf.BoolVar(&g.JSON, "json", false, "print JSON output")

	cmd.AddCommand(newInitCommand(deps))
	cmd.AddCommand(newUserCommand(deps))
	cmd.AddCommand(newTokenCommand(deps))
	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.Driver != "" {
		cfg.DBDriver = g.Driver
	}
	if g.Path != "" {
		cfg.DBPath = g.Path
	}
	if g.DatabaseURL != "" {
		cfg.DatabaseURL = g.DatabaseURL
	}
	if g.JWTSecret != "" {
		cfg.JWTSecret = g.JWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens and initializes the configured store.
func openStore(ctx context.Context, cfg *config.Config) (*db.Store, error) {
	store, err := db.Open(ctx, db.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newAccounts(cfg *config.Config) (*service.AccountService, error) {
	auth, err := service.NewAuthService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return service.NewAccountService(auth.WithBcryptCost(cfg.BcryptCost))
}

// print writes v as JSON under --json, otherwise the key=value line.
func (d commandDeps) print(v any, line string) error {
	if d.globals.JSON {
		enc := json.NewEncoder(d.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}
