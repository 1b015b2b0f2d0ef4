package main

import (
	"context"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

func usersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		usersListCmd(opts),
		usersCreateCmd(opts),
		usersUpdateCmd(opts),
		usersDeleteCmd(opts),
	)
	return cmd
}

func usersListCmd(opts *globalOptions) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				result, err := a.client.ListUsers(ctx, page, size)
				if err != nil {
					return err
				}
				render := userTable(result.Content)
				return a.out.print(result, func(tw *tabwriter.Writer) {
					render(tw)
					pageFooter(tw, result.Number, result.TotalPages, result.TotalElements)
				})
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&size, "size", 10, "page size")
	return cmd
}

// userFlags collects the user payload shared by create and update.
type userFlags struct {
	username     string
	passwordFile string
	role         string
	department   int64
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "account name")
	cmd.Flags().StringVar(&f.passwordFile, "password-file", "", "file holding the new password")
	cmd.Flags().StringVar(&f.role, "role", string(domain.RoleEmployee), "DIRECTOR, DEPT_HEAD, EMPLOYEE or USER")
	cmd.Flags().Int64Var(&f.department, "department", 0, "department id (0 for none)")
}

func (f *userFlags) request() (dto.UserRequest, error) {
	req := dto.UserRequest{
		Username: f.username,
		Role:     domain.Role(strings.ToUpper(f.role)),
	}
	if f.passwordFile != "" {
		password, err := readSecretFile(f.passwordFile)
		if err != nil {
			return dto.UserRequest{}, err
		}
		req.Password = password
	}
	if f.department > 0 {
		req.Department = &dto.DepartmentIDRef{ID: f.department}
	}
	return req, nil
}

func usersCreateCmd(opts *globalOptions) *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user (directors only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			if req.Password == "" {
				return apperrors.NewValidationError("a password is required", map[string]any{"password": "required"})
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !auth.CanManageUsers(a.session()) {
					return apperrors.NewForbidden("only directors may create users")
				}
				user, err := a.client.CreateUser(ctx, req)
				if err != nil {
					return err
				}
				return a.out.print(user, userTable([]domain.User{*user}))
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func usersUpdateCmd(opts *globalOptions) *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				s := a.session()
				if s.Role != domain.RoleDirector && s.Role != domain.RoleDeptHead {
					return apperrors.NewForbidden("only directors and department heads may edit users")
				}
				user, err := a.client.UpdateUser(ctx, id, req)
				if err != nil {
					return err
				}
				return a.out.print(user, userTable([]domain.User{*user}))
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func usersDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user (directors only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !auth.CanManageUsers(a.session()) {
					return apperrors.NewForbidden("only directors may delete users")
				}
				if err := a.client.DeleteUser(ctx, id); err != nil {
					return err
				}
				a.out.message("Deleted user %d", id)
				return nil
			})
		},
	}
}
