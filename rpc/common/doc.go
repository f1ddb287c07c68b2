// Package common provides core data structures and utilities shared across
// the transactional record store system. It defines fundamental types,
// configuration structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - Structured logging setup shared by all components
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response messages,
//     and carries a typed error code so clients can reconstruct the error
//     classification a remote operation produced.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into record operations, lock operations, and
//     control messages.
//
//   - ServerConfig: Configuration for server instances, including served
//     shards, network settings, and request timeouts.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Component-scoped structured logging built on logrus, providing
//     consistent formatting across the application.
package common
