package main

import (
	"github.com/spf13/cobra"

	"github.com/vost-dev/vost/repo"
)

func newInitCmd() *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty bare repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(repoPath, repo.Options{Create: true, Branch: branch})
			if err != nil {
				return err
			}
			return r.Close()
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "main", "initial default branch")
	return cmd
}
