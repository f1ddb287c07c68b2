// Package lockmgr implements the in-process advisory lock manager used to
// coordinate access to transaction keys. It provides a simple yet robust
// way to ensure that only one holder at a time computes or writes the
// result for a given key, while tolerating crashed or abandoned holders.
//
// Core Functionality:
//   - Lock acquisition with ownership verification and blocking wait
//   - Automatic lock expiration through an optional hold timeout
//   - Safe release operations that verify ownership
//   - Idempotent re-entrant acquisition by the current holder
//
// Implementation Approach:
//
//	Each key maps to a small lock record guarded by its own mutex, so
//	operations on unrelated keys never contend. Blocking is implemented
//	with a per-hold broadcast channel that is closed when the hold ends:
//
//	- Acquisition: If the key is unlocked (or its entry has expired), the
//	  caller installs itself as holder. If the key is held by the same
//	  holder the call succeeds immediately without touching the deadline
//	  (re-entrant acquisition preserves the original hold timeout). If the
//	  key is held by a different holder, the caller blocks on the hold's
//	  broadcast channel, waking on explicit release, on the hold deadline,
//	  or on its own acquire timeout, whichever comes first.
//
//	- Expiry: Deadlines are checked lazily at the top of every operation
//	  that consults lock state; no background timer or sweeper goroutine
//	  is required. Blocked waiters observe expiry through their own timers
//	  armed at the hold deadline.
//
//	- Wake-up Policy: Closing the broadcast channel wakes every waiter and
//	  the winners race to acquire; at least one waiter always makes
//	  progress. Strict FIFO ordering among waiters is not guaranteed.
//
// Thread Safety:
//
//	All operations are safe for concurrent use from independently
//	scheduled goroutines. A lock acquired on one goroutine and released on
//	another correctly wakes acquirers blocked on a third; there are no
//	missed wakeups because the broadcast channel for a hold is closed
//	exactly once, under the same mutex that publishes the state change.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager()
//
//	// Acquire with a 30s self-expiry and a bounded wait
//	ok, _ := locks.AcquireLock("txn:123", "worker-1", 30*time.Second, 5*time.Second)
//	if ok {
//	    // ... compute and write the result ...
//	    _ = locks.ReleaseLock("txn:123", "worker-1")
//	}
package lockmgr
