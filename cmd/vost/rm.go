package main

import "github.com/spf13/cobra"

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <branch> <path>",
		Short: "Remove a file from a branch, advancing it",
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
			_, err = snap.Remove(args[1])
			return err
		},
	}
}
