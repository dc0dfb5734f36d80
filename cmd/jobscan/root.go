package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for jobscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobscan",
		Short: "Crawl Indeed job searches and track the postings",
		Long: `jobscan runs Indeed job searches described in a .jobscan search file or on
the command line. It walks every listing page in order, fetches each job
detail page concurrently under a per-host rate limit, and reports title,
company, location and salary for every job found.

Results are stored in a local SQLite database so 'jobscan history' can show
past runs and postings that are new since the last run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewURLCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
