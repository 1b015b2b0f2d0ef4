package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

// print writes v in the selected format. table renders the human form.
func (p *printer) print(v any, table func(tw *tabwriter.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return p.yaml(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// yaml goes through the JSON form so both formats share field names.
func (p *printer) yaml(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func (p *printer) message(format string, args ...any) {
	if p.format != formatTable {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func departmentName(ref *domain.DepartmentRef) string {
	if ref == nil {
		return "-"
	}
	if ref.Name != "" {
		return ref.Name
	}
	return fmt.Sprintf("#%d", ref.ID)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func pageFooter(tw *tabwriter.Writer, number, totalPages int, total int64) {
	if totalPages == 0 {
		fmt.Fprintln(tw, "(no results)")
		return
	}
	fmt.Fprintf(tw, "page %d of %d, %d total\n", number+1, totalPages, total)
}

func documentTable(session *domain.Session, docs []domain.Document) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tFILENAME\tSIZE\tOWNER\tDEPARTMENT\tCREATED\tEDITABLE")
		for _, doc := range docs {
			owner := doc.OwnerUsername()
			if owner == "" {
				owner = "-"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				doc.ID, doc.Filename, formatSize(doc.Size), owner,
				departmentName(doc.Department), formatTime(doc.CreatedAt),
				yesNo(auth.CanEditDocument(session, doc)))
		}
	}
}

func userTable(users []domain.User) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tDEPARTMENT")
		for _, user := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", user.ID, user.Username, user.Role.Label(), departmentName(user.Department))
		}
	}
}

func departmentTable(departments []domain.Department) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tCREATED")
		for _, dept := range departments {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", dept.ID, dept.Name, formatTime(dept.CreatedAt))
		}
	}
}

func sessionTable(s *domain.Session) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Username:\t%s\n", s.Username)
		fmt.Fprintf(tw, "Role:\t%s\n", s.Role.Label())
		fmt.Fprintf(tw, "Department:\t%s\n", departmentName(s.Department))
		if s.ExpiresAt != nil {
			fmt.Fprintf(tw, "Expires:\t%s\n", formatTime(*s.ExpiresAt))
		} else {
			fmt.Fprintln(tw, "Expires:\tnever")
		}
	}
}
