// Package records defines the contract for a transactional record store:
// a cache that maps an opaque transaction key to a previously computed
// result and gates concurrent writers through an advisory, self-expiring
// per-key lock manager.
//
// The package focuses on:
//   - A unified interface (IRecordStore) combining the record table and
//     the lock manager behind one key space
//   - A structured error system with typed return codes so callers can
//     distinguish holder conflicts from caller bugs
//
// Key Components:
//
//   - IRecordStore Interface: The core abstraction. Read, Write and Exists
//     operate on the record table; the embedded ILockManager gates
//     writes per key; WithLock provides scoped acquisition with guaranteed
//     release. All implementations share this interface, so applications
//     can switch between the in-process reference implementation and a
//     durable backing implementation without code changes.
//
//   - Error System: Typed errors with RetCode values. RetCHolderConflict
//     signals a Write against a key locked by another holder and is not
//     retryable without first waiting for or losing the lock.
//     RetCNotHolder signals a ReleaseLock by a caller that does not hold
//     the lock and indicates a programming error. Acquire and wait
//     timeouts are never errors; they are ordinary false results.
//
// Usage Contract:
//
//	A caller producing a result for key K acquires K's lock, reads to
//	check for a prior result, computes if absent, writes the result
//	(holder-checked) and releases. Callers that only consume cached
//	values call Read or Exists without locking.
//
// Implementations:
//
//   - In-Process Store (memstore): The reference implementation backed by
//     a concurrent in-memory table. Shared process-wide via
//     memstore.Shared. Available in the
//     "github.com/txstore-io/txstore/lib/records/memstore" package.
//
//   - RPC Store (rpc/client): A client implementation that forwards all
//     operations to a txstore server hosting the shared store.
package records
