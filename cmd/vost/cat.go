package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <ref-path>",
		Short: "Print a file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			rp, err := parseRefPath(args[0])
			if err != nil {
				return err
			}
			snap, err := resolveSnapshot(r, rp)
			if err != nil {
				return err
			}
			content, err := snap.Read(rp.Path, 0, -1)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(content)
			return err
		},
	}
	return cmd
}
