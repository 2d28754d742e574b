// Package cmdutil provides shared flags and helpers for scholardb commands.
package cmdutil

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ugoscholars/scholardb"
)

// WriteFlags holds flags shared by every command that writes the store.
type WriteFlags struct {
	DryRun bool
}

// AddWriteFlags adds --dry-run to a command.
func AddWriteFlags(cmd *cobra.Command) *WriteFlags {
	flags := &WriteFlags{}
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Preview the result without backing up or writing the store")
	return flags
}

// RunOptions converts the flags to client run options.
func (f *WriteFlags) RunOptions() []scholardb.RunOption {
	return []scholardb.RunOption{scholardb.WithDryRun(f.DryRun)}
}

// Notef writes a human-readable status line unless quiet is set.
func Notef(w io.Writer, quiet bool, symbol, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(w, "%s %s\n", symbol, fmt.Sprintf(format, args...))
}
