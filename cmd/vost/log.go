package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log <ref-path>",
		Short: "Show a branch or tag's commit history",
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

			it := snap.Log()
			for i := 0; limit <= 0 || i < limit; i++ {
				s, err := it.Next()
				if err != nil {
					return err
				}
				if s == nil {
					break
				}
				c, err := s.Commit()
				if err != nil {
					return err
				}
				fmt.Printf("commit %s\n", s.CommitHash())
				fmt.Printf("Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Printf("Date:   %s\n\n", c.Committer.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
				fmt.Printf("    %s\n\n", c.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "limit the number of commits shown (0 = unlimited)")
	return cmd
}
