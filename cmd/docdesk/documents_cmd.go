package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/client"
	"github.com/spec-kit/docdesk/internal/domain"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

func documentsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List, upload and manage documents",
	}
	cmd.AddCommand(
		documentsListCmd(opts),
		documentsAllCmd(opts),
		documentsUploadCmd(opts),
		documentsRenameCmd(opts),
		documentsDeleteCmd(opts),
		documentsDownloadCmd(opts),
	)
	return cmd
}

func documentsListCmd(opts *globalOptions) *cobra.Command {
	var query client.DocumentQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				page, err := a.client.ListDocuments(ctx, query)
				if err != nil {
					return err
				}
				render := documentTable(a.session(), page.Content)
				return a.out.print(page, func(tw *tabwriter.Writer) {
					render(tw)
					pageFooter(tw, page.Number, page.TotalPages, page.TotalElements)
				})
			})
		},
	}

	cmd.Flags().IntVar(&query.Page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&query.Size, "size", 10, "page size")
	cmd.Flags().Int64Var(&query.OwnerID, "owner", 0, "only documents owned by this user id")
	cmd.Flags().Int64Var(&query.DepartmentID, "department", 0, "only documents of this department id")
	return cmd
}

func documentsAllCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every visible document with per-department counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				docs, err := a.client.AllDocuments(ctx)
				if err != nil {
					return err
				}
				render := documentTable(a.session(), docs)
				return a.out.print(docs, func(tw *tabwriter.Writer) {
					render(tw)
					departmentSummary(tw, docs)
				})
			})
		},
	}
}

func departmentSummary(tw *tabwriter.Writer, docs []domain.Document) {
	names := make(map[int64]string)
	for _, doc := range docs {
		if doc.Department != nil {
			names[doc.Department.ID] = departmentName(doc.Department)
		}
	}
	counts := auth.CountByDepartment(docs)
	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Fprintf(tw, "\n%d documents\n", len(docs))
	for _, id := range ids {
		fmt.Fprintf(tw, "  %s\t%d\n", names[id], counts[id])
	}
}

func documentsUploadCmd(opts *globalOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file (1 MiB max)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				filename := name
				if filename == "" {
					filename = filepath.Base(args[0])
				}
				doc, err := a.client.UploadDocument(ctx, filename, f)
				if err != nil {
					return err
				}
				return a.out.print(doc, documentTable(a.session(), []domain.Document{*doc}))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filename to store instead of the local base name")
	return cmd
}

func documentsRenameCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <filename>",
		Short: "Rename a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				if _, err := editableDocument(ctx, a, id); err != nil {
					return err
				}
				doc, err := a.client.UpdateDocument(ctx, id, args[1])
				if err != nil {
					return err
				}
				return a.out.print(doc, documentTable(a.session(), []domain.Document{*doc}))
			})
		},
	}
}

func documentsDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				doc, err := editableDocument(ctx, a, id)
				if err != nil {
					return err
				}
				if err := a.client.DeleteDocument(ctx, id); err != nil {
					return err
				}
				a.out.message("Deleted %s", doc.Filename)
				return nil
			})
		},
	}
}

// editableDocument finds id among the visible documents and checks the
// session may change it. A forbidden call would end the session, so the
// check happens before the request.
func editableDocument(ctx context.Context, a *app, id int64) (*domain.Document, error) {
	docs, err := a.client.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID != id {
			continue
		}
		if !auth.CanEditDocument(a.session(), docs[i]) {
			return nil, apperrors.NewForbidden(fmt.Sprintf("you may not change %s", docs[i].Filename))
		}
		return &docs[i], nil
	}
	return nil, apperrors.NewNotFound("document", map[string]any{"id": id})
}

func documentsDownloadCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a document to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app) error {
				var w io.Writer = cmd.OutOrStdout()
				toFile := output != "" && output != "-"
				if toFile {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				n, err := a.client.DownloadDocument(ctx, id, w)
				if err != nil {
					return err
				}
				if toFile {
					fmt.Fprintf(a.stderr, "Wrote %s to %s\n", formatSize(n), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "file", "f", "", `destination file ("-" for stdout)`)
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
