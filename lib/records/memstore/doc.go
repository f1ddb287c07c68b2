// Package memstore implements the reference in-process record store based
// on the records.IRecordStore interface. Records and lock state live
// entirely in memory and are not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Per-key write gating through the lockmgr package
//   - One process-wide shared instance with an explicit test-only reset
//   - Thread-safe operations for concurrent access
//
// Implementation Details:
//
//   - Record Table: Records are kept in a concurrent map keyed by the
//     transaction key. Values are copied on write and on read so the
//     stored bytes can never be mutated through aliasing. Records live
//     until overwritten; there is no TTL or eviction.
//
//   - Write Gating: Write consults the lock manager before mutating the
//     table. A key that is live-locked by a different holder rejects the
//     write with a RetCHolderConflict error and leaves the table
//     unchanged; an unlocked key accepts writes from any holder.
//
//   - Shared Instance: Shared returns the single store for the process.
//     The instance is constructed explicitly and handed to callers rather
//     than hidden behind package-level operations, so code that prefers
//     dependency injection can use New and ignore the shared instance
//     entirely. ResetShared exists for tests that need isolation between
//     cases.
//
// Usage Example:
//
//	store := memstore.Shared()
//
//	err := store.WithLock(ctx, key, "worker-1", 0, func(ctx context.Context) error {
//	    if _, ok, _ := store.Read(key); ok {
//	        return nil // prior result, skip recomputation
//	    }
//	    result := compute()
//	    return store.Write(key, result, "worker-1")
//	})
package memstore
