// Package cmd implements the command-line interface of dSess. It provides a
// hierarchical command structure for inspecting and modifying session records
// and cache entries in a store, and for running a local development store.
//
// The package is organized into several subpackages:
//
//   - session: Commands for session records (create, lock, check, release,
//     update, remove, age, touch) and a lock contention test (perf)
//   - cache: Commands for the output cache (add, get, set, remove)
//   - serve: Starts an in-memory Redis compatible store for local development
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set via environment variables with the prefix DSESS_
// (e.g. DSESS_CONNECTION_STRING) or in .env / .env.local files.
//
// See dsess -help for a list of all commands.
package cmd
