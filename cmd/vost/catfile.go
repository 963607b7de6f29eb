package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var showSize bool
	cmd := &cobra.Command{
		Use:   "cat-file <ref-path>",
		Short: "Provide details of a repository object, by ref-path",
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
			if !showSize {
				h, err := snap.ObjectHash(rp.Path)
				if err != nil {
					return err
				}
				fmt.Println(h.String())
				return nil
			}
			size, err := snap.Size(rp.Path)
			if err != nil {
				return err
			}
			fmt.Println(size)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object's size via the size probe instead of its hash")
	return cmd
}
