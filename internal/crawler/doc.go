// Package crawler walks the listing pages of one search and collects the job
// records found on their detail pages.
//
// # Architecture
//
// An Orchestrator runs each search as an explicit state machine:
//
//	Init -> FetchListing -> ExtractLinks -> FetchDetails -> Aggregate -> NextPage | Done
//	                 \____________________________________________________-> Failed
//
// Listing pages are processed strictly in order. Within one page the detail
// pages are fetched by a bounded errgroup; its Wait is the barrier before the
// page's results are aggregated and the next page starts. Only the first
// listing page is consulted for the total page count.
//
// # Components
//
//   - Orchestrator: sequences the states and owns one run's bookkeeping
//   - Collector: the mutex-guarded map of records keyed by canonical job URL
//
// # Failure handling
//
// A failing detail page is recorded and skipped. A failing listing page ends
// the run as Failed, keeping whatever was collected. Cancelling the context
// stops new work at the next transition; in-flight fetches finish first and
// their records are merged before the run ends.
//
// # Usage
//
//	o := crawler.New(f, crawler.WithMaxConcurrency(5))
//	result := o.Run(ctx, q)
package crawler
