package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vost-dev/vost/object"
)

func newWriteCmd() *cobra.Command {
	var executable, symlink bool
	cmd := &cobra.Command{
		Use:   "write <branch> <path>",
		Short: "Write stdin's content to path on a branch, advancing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			snap, err := r.Branch(args[0])
			if err != nil {
				return err
			}
			content, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}

			if symlink {
				_, err = snap.WriteSymlink(args[1], string(content))
			} else {
				mode := object.Regular
				if executable {
					mode = object.Executable
				}
				_, err = snap.Write(args[1], content, mode)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&executable, "executable", "x", false, "write with the executable mode")
	cmd.Flags().BoolVarP(&symlink, "symlink", "l", false, "write stdin's content as a symlink target")
	return cmd
}
