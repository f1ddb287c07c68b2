// Package cmd implements the command-line interface for the txstore
// transactional record store. It provides a hierarchical command structure
// with operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - record: Commands for record operations (read, write, exists, perf)
//   - lock: Commands for locking operations (acquire, release, status, wait)
//   - serve: Commands for starting and configuring the txstore server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See txstore -help for a list of all commands.
package cmd
