package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/txstore-io/txstore/lib/lockmgr"
	"github.com/txstore-io/txstore/lib/records"
)

type storeImpl struct {
	table *recordTable
	locks records.ILockManager
}

// New creates an independent in-process record store. Use this constructor
// for dependency injection; callers that need the process-wide shared
// instance use Shared instead.
func New() records.IRecordStore {
	return &storeImpl{
		table: newRecordTable(),
		locks: lockmgr.NewLockManager(),
	}
}

// --------------------------------------------------------------------------
// Process-Wide Shared Instance
// --------------------------------------------------------------------------

var (
	sharedMu sync.Mutex
	shared   records.IRecordStore
)

// Shared returns the process-wide record store. The first call constructs
// the instance; every later call returns that same instance. The instance
// lives for the process lifetime; there is no teardown in production code.
func Shared() records.IRecordStore {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = New()
	}
	return shared
}

// ResetShared discards the shared instance so the next Shared call builds a
// fresh one. Test hook only; production code never calls this.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see records/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Read(key string) (records.Record, bool, error) {
	rec, ok := s.table.read(key)
	return rec, ok, nil
}

func (s *storeImpl) Write(key string, result []byte, holder string) error {
	if holder == "" {
		holder = records.DefaultHolder
	}

	// A write is gated only when a live lock is held elsewhere; writing to
	// an unlocked key always succeeds.
	locked, err := s.locks.IsLocked(key)
	if err != nil {
		return err
	}
	if locked {
		isHolder, err := s.locks.IsHolder(key, holder)
		if err != nil {
			return err
		}
		if !isHolder {
			return records.NewHolderConflictError(key)
		}
	}

	s.table.write(key, result)
	return nil
}

func (s *storeImpl) Exists(key string) (bool, error) {
	return s.table.has(key), nil
}

func (s *storeImpl) WithLock(ctx context.Context, key, holder string, holdTimeout time.Duration, fn func(ctx context.Context) error) error {
	if _, err := s.locks.AcquireLock(key, holder, holdTimeout, 0); err != nil {
		return err
	}
	defer func() {
		// release on every exit path, including panics; an expired hold
		// makes the release fail with NotHolder, which we ignore since the
		// lock is already gone
		_ = s.locks.ReleaseLock(key, holder)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// --------------------------------------------------------------------------
// Lock Manager Delegation
// --------------------------------------------------------------------------

func (s *storeImpl) AcquireLock(key, holder string, holdTimeout, acquireTimeout time.Duration) (bool, error) {
	return s.locks.AcquireLock(key, holder, holdTimeout, acquireTimeout)
}

func (s *storeImpl) ReleaseLock(key, holder string) error {
	return s.locks.ReleaseLock(key, holder)
}

func (s *storeImpl) IsLocked(key string) (bool, error) {
	return s.locks.IsLocked(key)
}

func (s *storeImpl) IsHolder(key, holder string) (bool, error) {
	return s.locks.IsHolder(key, holder)
}

func (s *storeImpl) WaitForRelease(key string, timeout time.Duration) (bool, error) {
	return s.locks.WaitForRelease(key, timeout)
}
