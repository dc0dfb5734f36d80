// Package pipeline runs a named search through a sequence of steps.
//
// A search goes through two steps by default: CrawlStep walks the listing
// and detail pages, and PersistStep stores the run and its jobs. Each step
// receives the SearchReport of the search and fills in its part.
//
// BatchProcessor runs several named searches concurrently, each through its
// own pipeline, with errgroup bounding how many run at once.
package pipeline
