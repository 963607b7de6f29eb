package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List, create, or delete branches",
	}
	cmd.AddCommand(newBranchListCmd(), newBranchSetCmd(), newBranchRmCmd())
	return cmd
}

func newBranchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			names, err := r.ListBranches()
			if err != nil {
				return err
			}
			def, ok, err := r.DefaultBranch()
			if err != nil {
				return err
			}
			for _, n := range names {
				marker := "  "
				if ok && n == def {
					marker = "* "
				}
				fmt.Println(marker + n)
			}
			return nil
		},
	}
}

func newBranchSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <ref-path>",
		Short: "Create or advance a branch to point at a ref's commit",
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
			return r.SetBranch(args[0], snap)
		},
	}
}

func newBranchRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			return r.DeleteBranch(args[0])
		},
	}
}
