package cli

import (
	"fmt"

	"tasklists/internal/db"

	"github.com/spf13/cobra"
)

func newInitCommand(deps commandDeps) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the store schema if it is absent",
		Example: "  tasklistctl init\n" +
			"  tasklistctl init --print --db-driver postgres",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.globals.loadConfig()
			if err != nil {
				return err
			}

			if printOnly {
				for _, stmt := range db.SchemaStatements(cfg.DBDriver) {
					if _, err := fmt.Fprintf(deps.out, "%s;\n\n", stmt); err != nil {
						return err
					}
				}
				return nil
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer store.Close()

			target := cfg.DBPath
			if store.Driver() == db.DriverPostgres {
				target = "postgres"
			}
			return deps.print(
				map[string]string{"status": "ready", "driver": store.Driver(), "target": target},
				fmt.Sprintf("schema ready driver=%s target=%s", store.Driver(), target),
			)
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema DDL instead of applying it")
	return cmd
}
