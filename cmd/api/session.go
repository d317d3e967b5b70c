package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conclusio/internal/repository/postgres"
	"conclusio/internal/service"
	"conclusio/internal/session"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage session tokens",
	}
	cmd.AddCommand(sessionIssueCmd())
	return cmd
}

func sessionIssueCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Create the user if needed and print a session token for it",
		Long: `Issue a session token for a user, creating the account on first use.

Examples:
  conclusio session issue --email avocat@example.fr --name "Maître Dupont"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			tokens, err := session.NewManager(rt.cfg.Session.Secret, rt.cfg.Session.TTL)
			if err != nil {
				return err
			}
			auth := service.NewAuthService(postgres.NewUserPostgres(rt.db), tokens, session.NoopRevoker{}, rt.logger)

			token, user, err := auth.Issue(cmd.Context(), email, name)
			if err != nil {
				return fmt.Errorf("issue session: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "user %s (%s), valid for %s\n", user.ID, user.Email, tokens.TTL())
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
