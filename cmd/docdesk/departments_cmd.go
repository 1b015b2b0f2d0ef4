package main

import (
	"context"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

func departmentsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"depts"},
		Short:   "Manage departments",
	}
	cmd.AddCommand(
		departmentsListCmd(opts),
		departmentsAllCmd(opts),
		departmentsCreateCmd(opts),
		departmentsUpdateCmd(opts),
		departmentsDeleteCmd(opts),
	)
	return cmd
}

func departmentsListCmd(opts *globalOptions) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				result, err := a.client.ListDepartments(ctx, page, size)
				if err != nil {
					return err
				}
				render := departmentTable(result.Content)
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

func departmentsAllCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				departments, err := a.client.AllDepartments(ctx)
				if err != nil {
					return err
				}
				return a.out.print(departments, departmentTable(departments))
			})
		},
	}
}

func departmentsCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a department (directors only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !auth.CanCreateDepartment(a.session()) {
					return apperrors.NewForbidden("only directors may create departments")
				}
				dept, err := a.client.CreateDepartment(ctx, args[0])
				if err != nil {
					return err
				}
				return a.out.print(dept, departmentTable([]domain.Department{*dept}))
			})
		},
	}
}

func departmentsUpdateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename a department",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !auth.CanEditDepartment(a.session(), id) {
					return apperrors.NewForbidden("you may not edit this department")
				}
				dept, err := a.client.UpdateDepartment(ctx, id, args[1])
				if err != nil {
					return err
				}
				return a.out.print(dept, departmentTable([]domain.Department{*dept}))
			})
		},
	}
}

func departmentsDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if !auth.CanDeleteDepartment(a.session(), id) {
					return apperrors.NewForbidden("you may not delete this department")
				}
				if err := a.client.DeleteDepartment(ctx, id); err != nil {
					return err
				}
				a.out.message("Deleted department %d", id)
				return nil
			})
		},
	}
}
