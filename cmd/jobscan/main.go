// Package main provides the entry point for the jobscan CLI.
//
// jobscan builds Indeed job search URLs from named searches, crawls every
// listing page and job detail page, and reports the jobs it found. Runs are
// stored in SQLite so later runs can tell new postings from known ones.
//
// Usage:
//
//	jobscan search [name...]
//	jobscan url [name]
//	jobscan history [name]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
