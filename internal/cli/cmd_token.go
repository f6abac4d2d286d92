package cli

import (
	"errors"
	"fmt"
	"time"

	"tasklists/internal/repository"
	"tasklists/internal/service"

	"github.com/spf13/cobra"
)

var ErrInvalidToken = errors.New("invalid token")

func newTokenCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect access tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(deps))
	cmd.AddCommand(newTokenVerifyCommand(deps))
	return cmd
}

func newTokenIssueCommand(deps commandDeps) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.globals.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("token issue: %w", err)
			}
			defer store.Close()

			u, err := repository.NewUserRepository(store).FindUserByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("token issue: %w", err)
			}
			if u == nil {
				return fmt.Errorf("token issue: no user with email %q", email)
			}

			auth, err := service.NewAuthService(cfg.JWTSecret)
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(u)
			if err != nil {
				return fmt.Errorf("token issue: %w", err)
			}
			return deps.print(map[string]any{"id": u.ID, "token": token}, token)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTokenVerifyCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token against the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.globals.loadConfig()
			if err != nil {
				return err
			}
			auth, err := service.NewAuthService(cfg.JWTSecret)
			if err != nil {
				return err
			}

			claims, ok := auth.VerifyToken(args[0])
			if !ok {
				return ErrInvalidToken
			}

			expires := claims.ExpiresAt.UTC().Format(time.RFC3339)
			return deps.print(
				map[string]any{"user_id": claims.UserID, "email": claims.Email, "expires_at": expires},
				fmt.Sprintf("valid user_id=%d email=%s expires_at=%s", claims.UserID, claims.Email, expires),
			)
		},
	}
}
