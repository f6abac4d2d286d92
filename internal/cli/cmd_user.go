package cli

import (
	"fmt"

	"tasklists/internal/service"

	"github.com/spf13/cobra"
)

func newUserCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCommand(deps))
	return cmd
}

func newUserCreateCommand(deps commandDeps) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Register a user and print a token for it",
		Example: "  tasklistctl user create --email a@x.com --password secret1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return fmt.Errorf("user create: password must be at least 6 characters")
			}
			if len(password) > service.MaxPasswordBytes {
				return fmt.Errorf("user create: %w", service.ErrPasswordTooLong)
			}

			cfg, err := deps.globals.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("user create: %w", err)
			}
			defer store.Close()

			accounts, err := newAccounts(cfg)
			if err != nil {
				return err
			}

			u, token, err := accounts.Register(cmd.Context(), store, email, password)
			if err != nil {
				return fmt.Errorf("user create: %w", err)
			}

			return deps.print(
				map[string]any{"id": u.ID, "email": u.Email, "token": token},
				fmt.Sprintf("id=%d email=%s token=%s", u.ID, u.Email, token),
			)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
