package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vost-dev/vost/mirror"
)

func newBackupCmd() *cobra.Command {
	var dryRun bool
	var username, password string
	cmd := &cobra.Command{
		Use:   "backup <url>",
		Short: "Mirror every branch and tag to url (local repo's refs are authoritative)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			diff, err := mirror.Backup(r, args[0], mirror.Options{DryRun: dryRun, Progress: logLine, Username: username, Password: password})
			if err != nil {
				return err
			}
			printDiff(diff)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the ref diff without applying it")
	cmd.Flags().StringVar(&username, "username", "", "transport username (http basic or ssh)")
	cmd.Flags().StringVar(&password, "password", "", "transport password")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var dryRun bool
	var username, password string
	cmd := &cobra.Command{
		Use:   "restore <url>",
		Short: "Mirror every branch and tag from url (url's refs are authoritative)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(false)
			if err != nil {
				return err
			}
			defer r.Close()
			diff, err := mirror.Restore(r, args[0], mirror.Options{DryRun: dryRun, Progress: logLine, Username: username, Password: password})
			if err != nil {
				return err
			}
			printDiff(diff)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the ref diff without applying it")
	cmd.Flags().StringVar(&username, "username", "", "transport username (http basic or ssh)")
	cmd.Flags().StringVar(&password, "password", "", "transport password")
	return cmd
}

func logLine(s string) { fmt.Println(s) }

func printDiff(diff *mirror.MirrorDiff) {
	for _, c := range diff.Add {
		fmt.Printf("+ %s %s\n", c.Ref, c.NewTarget)
	}
	for _, c := range diff.Update {
		fmt.Printf("~ %s %s -> %s\n", c.Ref, c.OldTarget, c.NewTarget)
	}
	for _, c := range diff.Delete {
		fmt.Printf("- %s %s\n", c.Ref, c.OldTarget)
	}
	if diff.InSync() {
		fmt.Println("already in sync")
		return
	}
	fmt.Printf("%s ref(s) changed\n", humanize.Comma(int64(diff.Total())))
}
