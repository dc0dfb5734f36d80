// Package query builds Indeed advanced-search URLs.
//
// # Options and Query
//
// Options is the plain, mutable description of a search that callers fill in
// (from flags, from the search file, or in code). Finalize validates it and
// produces a Query, which is immutable: its fields are unexported, slices are
// copied on the way in and on the way out, and pagination methods return a
// new value instead of modifying the receiver.
//
//	opts := query.DefaultOptions()
//	opts.City = "San Francisco, CA"
//	opts.Level = query.LevelEntry
//	q, err := opts.Finalize()
//	if err != nil {
//		return err
//	}
//	first := q.URL()
//	second := q.Advance().URL()
//
// # Encoding
//
// Parameters are written in a fixed order so the same Query always encodes to
// the same string. Enumerated values are rendered from explicit tables rather
// than from their Go identifiers.
package query
