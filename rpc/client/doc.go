// Package client implements RPC clients for the transactional record store system.
// It provides implementations of the records.IRecordStore and records.ILockManager
// interfaces that communicate with remote servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to record store and lock manager implementations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCRecordStore: Factory function that creates a client implementing the
//     records.IRecordStore interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
//   - NewRPCLockMgr: Factory function that creates a client implementing the
//     records.ILockManager interface for advisory locking operations.
//
// Usage Example:
//
//		// Configure the client
//		config := common.ClientConfig{
//		  Endpoints:              []string{"localhost:5000"},
//		  TimeoutSecond:          5,
//		  RetryCount:             3,
//		  ConnectionsPerEndpoint: 1,
//		}
//
//	 // Create a serializer
//		serializer := serializer.NewBinarySerializer()
//
//		// Create record store client
//		store, _ := client.NewRPCRecordStore(1, config, tcp.NewTCPClientTransport(), serializer)
//
//		// Use the store
//		store.Write("my-tx", []byte("result"), "")
//		rec, exists, _ := store.Read("my-tx")
//
//		// Create and use a lock manager
//		lockMgr, _ := client.NewRPCLockMgr(2, config, tcp.NewTCPClientTransport(), serializer)
//		acquired, _ := lockMgr.AcquireLock("my-tx", "worker-1", 30*time.Second, 0)
//		if acquired {
//		  lockMgr.ReleaseLock("my-tx", "worker-1")
//		}
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Remote Locking Semantics:
//
//	Typed errors produced by the remote store (holder conflicts, releases of
//	locks not held) carry their return code across the wire and are rebuilt on
//	the client, so records.IsHolderConflict and records.IsNotHolder work the
//	same against a remote store as against a local one. Blocking acquisitions
//	are held open on the server, so the client transport timeout must exceed
//	the longest expected acquire timeout.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
