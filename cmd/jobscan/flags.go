package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/jobscan/internal/config"
	"github.com/nao1215/jobscan/internal/query"
)

// adhocSearchName names searches built from flags.
const adhocSearchName = "adhoc"

// addQueryFlags registers the flags that describe an ad-hoc search.
func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("city", "", "City to search in; enables an ad-hoc search")
	f.String("level", "", "Experience level: entry, mid or senior")
	f.StringSlice("title", nil, "Words that must appear in the job title")
	f.StringSlice("any", nil, "At least one of these words")
	f.StringSlice("all", nil, "All of these words")
	f.StringSlice("exclude", nil, "None of these words")
	f.String("phrase", "", "Exact phrase")
	f.String("company", "", "Company name")
	f.String("job-type", "", "fulltime, parttime, contract, temporary, internship or commission")
	f.String("sort", "", "relevance or date")
	f.String("show-from", "", "all, jobsite or employer")
	f.Uint("radius", 0, "Distance from the city in miles")
	f.Uint("max-age", query.DefaultMaxAgeDays, "Only postings newer than this many days")
	f.Uint("min-salary", 0, "Minimum salary filter")
	f.Uint("limit", query.DefaultLimit, "Results per listing page")
	f.Bool("include-staffing", false, "Include postings from staffing agencies")
	f.String("base-url", query.DefaultBaseURL, "Search endpoint")
	_ = f.MarkHidden("base-url") //nolint:errcheck // flag is registered above
}

// isAdhoc reports whether the command line describes an ad-hoc search.
func isAdhoc(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("city")
}

// adhocOptions builds search options from flags on top of the search file
// defaults, when a file is loaded.
func adhocOptions(cmd *cobra.Command, file *config.File) (query.Options, error) {
	opts := query.DefaultOptions()
	if file != nil {
		opts = file.Defaults.Apply(opts)
	}
	f := cmd.Flags()

	var err error
	if opts.City, err = f.GetString("city"); err != nil {
		return opts, err
	}

	if err := parseChanged(f, "level", &opts.Level, query.ParseLevel); err != nil {
		return opts, err
	}
	if err := parseChanged(f, "job-type", &opts.JobType, query.ParseJobType); err != nil {
		return opts, err
	}
	if err := parseChanged(f, "sort", &opts.Sort, query.ParseSort); err != nil {
		return opts, err
	}
	if err := parseChanged(f, "show-from", &opts.ShowJobsFrom, query.ParseShowJobsFrom); err != nil {
		return opts, err
	}

	stringFlags := map[string]*string{
		"phrase":   &opts.ExactPhrase,
		"company":  &opts.Company,
		"base-url": &opts.BaseURL,
	}
	for name, dst := range stringFlags {
		if err := setChanged(f, name, dst, f.GetString); err != nil {
			return opts, err
		}
	}

	sliceFlags := map[string]*[]string{
		"title":   &opts.TitleWords,
		"any":     &opts.AnyWords,
		"all":     &opts.AllWords,
		"exclude": &opts.ExcludeWords,
	}
	for name, dst := range sliceFlags {
		if err := setChanged(f, name, dst, f.GetStringSlice); err != nil {
			return opts, err
		}
	}

	uintFlags := map[string]*uint{
		"radius":     &opts.Radius,
		"max-age":    &opts.MaxAgeDays,
		"min-salary": &opts.MinSalary,
		"limit":      &opts.Limit,
	}
	for name, dst := range uintFlags {
		if err := setChanged(f, name, dst, f.GetUint); err != nil {
			return opts, err
		}
	}

	if f.Changed("include-staffing") {
		include, err := f.GetBool("include-staffing")
		if err != nil {
			return opts, err
		}
		opts.ExcludeStaffingAgencies = !include
	}

	return opts, nil
}

// setChanged copies flag name into dst when the user set it.
func setChanged[T any](f *pflag.FlagSet, name string, dst *T, get func(string) (T, error)) error {
	if !f.Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", name, err)
	}
	*dst = v
	return nil
}

// parseChanged parses string flag name into dst when the user set it.
func parseChanged[T any](f *pflag.FlagSet, name string, dst *T, parse func(string) (T, error)) error {
	if !f.Changed(name) {
		return nil
	}
	raw, err := f.GetString(name)
	if err != nil {
		return err
	}
	v, err := parse(raw)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", name, err)
	}
	*dst = v
	return nil
}

// loadSearchFile finds and loads the search file. An explicit path that does
// not exist is an error; a missing default file is not.
func loadSearchFile(path string) (*config.File, error) {
	found := config.FindSearchFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, nil
	}
	file, err := config.LoadSearchFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load search file %s: %w", found, err)
	}
	return file, nil
}

// resolveSearches returns the searches named by args, the ad-hoc search, or
// every search in the file when neither is given.
func resolveSearches(cmd *cobra.Command, args []string, file *config.File) ([]config.Search, error) {
	if isAdhoc(cmd) {
		if len(args) > 0 {
			return nil, fmt.Errorf("search names %v cannot be combined with --city", args)
		}
		opts, err := adhocOptions(cmd, file)
		if err != nil {
			return nil, err
		}
		return []config.Search{{Name: adhocSearchName, Options: opts}}, nil
	}

	if file == nil {
		return nil, nil
	}
	names := args
	if len(names) == 0 {
		names = file.SearchNames()
	}

	searches := make([]config.Search, 0, len(names))
	for _, name := range names {
		opts, err := file.GetSearch(name)
		if err != nil {
			return nil, err
		}
		searches = append(searches, config.Search{Name: name, Options: opts})
	}
	return searches, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
