package crawler

// State is a step of the crawl state machine.
type State int

const (
	// StateInit prepares a run.
	StateInit State = iota
	// StateFetchListing fetches and parses the current listing page.
	StateFetchListing
	// StateExtractLinks pulls unvisited job links out of the listing page.
	StateExtractLinks
	// StateFetchDetails fetches and extracts every job link concurrently.
	StateFetchDetails
	// StateAggregate merges the page's results into the collector.
	StateAggregate
	// StateNextPage moves to the following listing page.
	StateNextPage
	// StateDone means every page was processed.
	StateDone
	// StateFailed means the run stopped early.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateFetchListing:
		return "fetch_listing"
	case StateExtractLinks:
		return "extract_links"
	case StateFetchDetails:
		return "fetch_details"
	case StateAggregate:
		return "aggregate"
	case StateNextPage:
		return "next_page"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
