// Package daemon runs the gavel background service: the HTTP API, the
// single-instance lock, and the periodic stale workspace sweep.
package daemon
