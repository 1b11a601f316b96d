package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/config"
)

func newLoginCmd(cfg *config.Config) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				resp, err := a.client.Login(ctx, client.LoginRequest{Email: email, Password: password})
				if err != nil {
					return err
				}
				if err := a.storeSession(ctx, resp); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Logged in as %s (id %d)\n", resp.User.Email, resp.User.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(cfg *config.Config) *cobra.Command {
	var email, password, username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				resp, err := a.client.Register(ctx, client.RegisterRequest{Email: email, Password: password, Username: username})
				if err != nil {
					return err
				}
				if err := a.storeSession(ctx, resp); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Registered %s (id %d)\n", resp.User.Email, resp.User.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// storeSession saves the token and user record of a login response.
func (a *app) storeSession(ctx context.Context, resp *client.AuthResponse) error {
	if err := a.session.SetToken(ctx, resp.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := a.session.SetUser(ctx, resp.User); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	log.Debug().Int64("user_id", resp.User.ID).Msg("session stored")
	return nil
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				a.session.ClearAndLeave("Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				res, err := a.resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("User id %d (from %q)", res.UserID, res.Key)
				if u, ok := a.session.User(ctx); ok && u.Email != "" {
					line += " " + u.Email
				}
				fmt.Fprintln(a.out, line)
				return nil
			})
		},
	}
}
