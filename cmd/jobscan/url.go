package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewURLCmd creates the url command.
func NewURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url [name...]",
		Short: "Print the first listing page URL of searches",
		Long: `URL prints the Indeed search URL each search would start from, without
fetching anything. It accepts the same search names and ad-hoc flags as
'jobscan search'.

Examples:
  # URLs of every search in .jobscan
  jobscan url

  # URL of an ad-hoc search
  jobscan url --city "Austin, TX" --level mid --any golang --any rust`,
		Args: cobra.ArbitraryArgs,
		RunE: runURLCmd,
	}

	addQueryFlags(cmd)
	cmd.Flags().StringP("config", "c", "",
		"Search file path (default: .jobscan in current or home directory)")

	return cmd
}

func runURLCmd(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	file, err := loadSearchFile(path)
	if err != nil {
		return err
	}
	searches, err := resolveSearches(cmd, args, file)
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		return errors.New("no search to print (name a search from the search file or set --city)")
	}

	out := cmd.OutOrStdout()
	for _, s := range searches {
		q, err := s.Options.Finalize()
		if err != nil {
			return fmt.Errorf("search %q: %w", s.Name, err)
		}
		if len(searches) == 1 {
			fmt.Fprintln(out, q.URL())
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", s.Name, q.URL())
	}
	return nil
}
