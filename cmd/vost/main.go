// Command vost is the CLI for the vost content-addressed
// versioned filesystem: thin argument parsing and output
// formatting over the repo/fs/batch/mirror/sizer packages, which carry
// every actual rule.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vost-dev/vost/voserr"
)

var repoPath string

func main() {
	root := &cobra.Command{
		Use:           "vost",
		Short:         "A content-addressed, branch-aware versioned filesystem over git objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&repoPath, "repo", ".", "path to the bare repository")

	root.AddCommand(
		newInitCmd(),
		newBranchCmd(),
		newTagCmd(),
		newCatFileCmd(),
		newLsTreeCmd(),
		newCatCmd(),
		newWriteCmd(),
		newRmCmd(),
		newLogCmd(),
		newBackupCmd(),
		newRestoreCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vost: "+err.Error())
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error onto the three-way exit code table:
// 0 is never reached here (that path returns nil), 2 marks an argument
// error, everything else is a domain failure.
func exitCodeFor(err error) int {
	switch {
	case voserr.IsInvalidArgument(err), voserr.IsInvalidRefName(err), voserr.IsInvalidPath(err), voserr.IsInvalidMessage(err):
		return 2
	default:
		return 1
	}
}
