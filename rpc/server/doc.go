// Package server implements the RPC server for the transactional record store
// system. It provides adapters for handling RPC requests to both record store and
// lock manager services, along with the core server implementation that manages
// shards and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for record and lock manager operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Flexible shard configuration
//   - Per-operation request metrics (request counts, errors, latencies)
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a
//     records.IRecordStore.
//
//   - NewRecordStoreServerAdapter: Factory function creating an adapter for record
//     operations, translating RPC requests to records.IRecordStore method calls.
//
//   - NewLockManagerServerAdapter: Factory function creating an adapter for the
//     advisory locking operations of the record store.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeRecordStore},
//	    {ShardID: 200, Type: common.ShardTypeLockManager},
//	  },
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports two types of shards, which can be mixed within a single server:
//
//   - ShardTypeRecordStore: Serves the record operations (Read, Write, Exists)
//     of an in-memory record store.
//
//   - ShardTypeLockManager: Serves the advisory lock operations (Acquire, Release,
//     IsLocked, IsHolder, Wait) of an in-memory record store.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
