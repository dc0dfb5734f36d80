// Package database stores search runs and the jobs they found in SQLite.
//
// Every run of a named search is kept in search_runs together with its full
// JSON report. Jobs are keyed by canonical URL in the jobs table and upserted
// on every run, so first_seen and last_seen tell when a posting appeared and
// when it was last listed. A SHA3-256 content hash detects postings whose
// title, company, location or salary changed between runs.
//
// The pure-Go modernc.org/sqlite driver is used so the binary needs no cgo.
package database
