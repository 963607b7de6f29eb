package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree <ref-path>",
		Short: "List the contents of a directory",
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
			entries, err := snap.Listdir(rp.Path)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%06o %s %s\t%s\n", uint32(e.Mode), e.Mode, e.Hash, e.Name)
			}
			return nil
		},
	}
	return cmd
}
