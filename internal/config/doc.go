// Package config holds jobscan's configuration and loads the search file.
//
// Config is a flat struct populated from CLI flags and the search file and
// passed down explicitly. The search file (.jobscan, YAML) names searches and
// their query options, with a shared defaults block and optional selector
// overrides for the Indeed profile.
package config
