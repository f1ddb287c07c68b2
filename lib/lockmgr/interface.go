package lockmgr

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/txstore-io/txstore/lib/records"
)

// NewLockManager creates a new in-process lock manager implementing
// records.ILockManager. The manager keeps all lock state in memory; locks
// never outlive the process.
//
// Thread-safety: the returned manager is safe for concurrent use from
// independently scheduled goroutines (and therefore OS threads). Blocked
// acquirers are woken by unrelated goroutines performing release.
func NewLockManager() records.ILockManager {
	return &lockMgrImpl{
		locks: xsync.NewMapOf[string, *keyLock](),
	}
}
