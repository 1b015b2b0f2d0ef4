package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/docdesk/internal/domain"
)

func loginCmd(opts *globalOptions) *cobra.Command {
	var (
		username     string
		passwordFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the bearer token",
		Long: `Exchange a username and password for a bearer token.

The password is read from --password-file, or prompted for on the
terminal when the flag is absent or "-".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app) error {
				if username == "" {
					if !isTerminal(a.stdin) {
						return errors.New("--username is required when stdin is not a terminal")
					}
					var err error
					if username, err = promptLine(a.stdin, a.stderr, "Username: "); err != nil {
						return err
					}
				}
				password, err := readLoginPassword(passwordFile, a.stdin, a.stderr)
				if err != nil {
					return err
				}

				s, err := a.controller.Login(ctx, username, password)
				if err != nil {
					return err
				}
				a.out.message("Logged in as %s (%s)", s.Username, s.Role.Label())
				if returnTo := a.redirector.ReturnTo(); returnTo != "" {
					a.out.message("Continue with: %s", returnTo)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", `file holding the password ("-" or empty to prompt)`)
	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app) error {
				if a.session() == nil {
					a.out.message("Not logged in")
					return nil
				}
				a.controller.Logout(ctx, false)
				a.out.message("Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd(opts *globalOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !remote {
					s := a.session()
					return a.out.print(s, sessionTable(s))
				}
				me, err := a.client.Me(ctx)
				if err != nil {
					return err
				}
				return a.out.print(me, sessionTable(&domain.Session{
					Username:   me.Username,
					Role:       me.Role,
					Department: me.Department,
					ExpiresAt:  me.ExpiresAt,
				}))
			})
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "ask the backend instead of decoding the local token")
	return cmd
}
