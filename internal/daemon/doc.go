// Package daemon coordinates the long-running Pelotarr process and system
// integration points.
//
// It wires configuration, the race store, the scanner, and the feed cache
// into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon schedules periodic scans, serves the HTTP API for
// monitoring races and inspecting status, and owns graceful shutdown of
// every component.
//
// Keep orchestration logic here: acquisition steps live in the scanner and
// its collaborators.
package daemon
