package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

const (
	exitFailure       = 1
	exitLoginRequired = 2
)

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdin *os.File, stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdin: stdin}
	root := &cobra.Command{
		Use:   "docdesk",
		Short: "Document desk client",
		Long: `docdesk talks to the document management backend.

Log in once with "docdesk login"; the bearer token is kept in the
configured token store (file, redis or memory) until it expires or the
backend rejects it.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatTable, "output format: table, json or yaml")
	root.PersistentFlags().BoolVar(&opts.metrics, "metrics", false, "print session counters to stderr on exit")

	root.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		documentsCmd(opts),
		usersCmd(opts),
		departmentsCmd(opts),
	)
	return root
}

func exitCode(err error) int {
	if errors.Is(err, errLoginRequired) || apperrors.IsAuthorizationRejected(err) {
		return exitLoginRequired
	}
	return exitFailure
}
