package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "List or create tags",
	}
	cmd.AddCommand(newTagListCmd(), newTagSetCmd())
	return cmd
}

func newTagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			names, err := r.ListTags()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func newTagSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <ref-path>",
		Short: "Create a tag pointing at a ref's commit (fails if it already exists)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			rp, err := parseRefPath(args[1])
			if err != nil {
				return err
			}
			snap, err := resolveSnapshot(r, rp)
			if err != nil {
				return err
			}
			return r.SetTag(args[0], snap)
		},
	}
}
