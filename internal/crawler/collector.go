package crawler

import (
	"sort"
	"sync"

	"github.com/nao1215/jobscan/internal/model"
)

// Collector holds the records of one run keyed by canonical job URL.
// It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	records map[string]model.Record
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{records: make(map[string]model.Record)}
}

// Insert stores rec under key. It reports false, and keeps the existing
// record, when the key is already present.
func (c *Collector) Insert(key string, rec model.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[key]; ok {
		return false
	}
	c.records[key] = rec
	return true
}

// Get returns the record stored under key.
func (c *Collector) Get(key string) (model.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[key]
	return rec, ok
}

// Len returns the number of records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}

// Records returns a copy of the stored records.
func (c *Collector) Records() map[string]model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]model.Record, len(c.records))
	for k, v := range c.records {
		out[k] = v
	}
	return out
}

// Sorted returns the records ordered by key.
func (c *Collector) Sorted() []model.Record {
	records := c.Records()
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, records[k])
	}
	return out
}

// visitedSet tracks job URLs already claimed by this run.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// claim marks url as visited and reports whether it was new.
func (v *visitedSet) claim(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[url]; ok {
		return false
	}
	v.seen[url] = struct{}{}
	return true
}

func (v *visitedSet) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.seen)
}
