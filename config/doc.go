// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It carries the routing defaults used to build traverse options, the GTFS
// feeds a graph is built from (selectable by name), linking parameters and
// logging settings.
package config
