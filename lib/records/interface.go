package records

import (
	"context"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DefaultHolder is the fixed identity substituted whenever an operation is
// called without a holder. Using one constant identity (instead of a fresh
// value per call) makes unlabeled lock, write and release operations
// idempotent and composable for callers that do not need holder
// discrimination.
const DefaultHolder = "default"

// Record is the cached result stored for a transaction key. The result is
// produced externally and treated as opaque bytes; the store never
// interprets or mutates it.
type Record struct {
	Key    string
	Result []byte
}

// IRecordStore is the generic interface for a transactional record store.
// It combines a record table with an advisory per-key lock manager so that
// results can be memoized without duplicate concurrent computation.
//
// Read, Exists, IsLocked and IsHolder never block. Write and ReleaseLock
// perform a bounded check-then-mutate. AcquireLock and WaitForRelease are
// the only operations that may block the caller.
type IRecordStore interface {
	// Read returns the record currently stored for key.
	// The boolean return value indicates whether a record was found.
	// Read never blocks on locks.
	Read(key string) (rec Record, loaded bool, err error)

	// Write stores or overwrites the record for key. It fails with a
	// RetCHolderConflict error if key is live-locked by a holder other
	// than the given one. Writing to an unlocked key always succeeds,
	// regardless of the supplied holder. An empty holder is substituted
	// by the fixed default holder identity.
	Write(key string, result []byte, holder string) (err error)

	// Exists reports whether a record is stored for key.
	Exists(key string) (loaded bool, err error)

	// WithLock acquires the lock for key (blocking, no acquire timeout),
	// runs fn and releases the lock on every exit path, including error
	// returns and panics. The context is passed through to fn so it can
	// observe cancellation.
	WithLock(ctx context.Context, key, holder string, holdTimeout time.Duration, fn func(ctx context.Context) error) (err error)

	// The embedded lock manager gates writes for this store. AcquireLock,
	// ReleaseLock, IsLocked, IsHolder and WaitForRelease operate on the
	// same key space as the record table.
	ILockManager
}

// ILockManager is the contract for an advisory, self-expiring per-key lock
// manager. Locks are identified by the same opaque keys as records. All
// operations on different keys are independent.
//
// A lock entry is live until it is explicitly released or its hold deadline
// passes. Expiry is evaluated lazily at the moment of each operation that
// consults lock state; an expired entry is treated exactly like an absent
// one.
type ILockManager interface {
	// AcquireLock acquires the lock for key on behalf of holder (empty =
	// DefaultHolder). holdTimeout bounds how long the lock may be held
	// before it self-expires (0 = held until released). If the key is
	// locked by a different holder the call blocks until the lock becomes
	// free or acquireTimeout elapses (0 = block indefinitely); a timeout
	// is reported as ok=false, not as an error. Re-acquisition by the
	// current holder succeeds immediately and preserves the original
	// deadline.
	AcquireLock(key, holder string, holdTimeout, acquireTimeout time.Duration) (ok bool, err error)

	// ReleaseLock releases the lock for key. It fails with a RetCNotHolder
	// error if no live lock exists for key or the live lock is held by a
	// different holder. A successful release wakes all blocked acquirers
	// and waiters for the key.
	ReleaseLock(key, holder string) (err error)

	// IsLocked reports whether a live (non-expired) lock exists for key.
	IsLocked(key string) (locked bool, err error)

	// IsHolder reports whether a live lock exists for key and is held by
	// the given holder (empty = DefaultHolder).
	IsHolder(key, holder string) (ok bool, err error)

	// WaitForRelease returns true immediately when key is not locked.
	// Otherwise it blocks until the lock becomes free (explicit release or
	// deadline expiry) and returns true, or until timeout elapses (0 =
	// block indefinitely) and returns false. It does not acquire the lock.
	WaitForRelease(key string, timeout time.Duration) (free bool, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCHolderConflict:
		errorCode = "HolderConflict"
	case RetCNotHolder:
		errorCode = "NotHolder"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("RecordStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewHolderConflictError creates the error returned by Write when the key
// is locked by another holder.
func NewHolderConflictError(key string) *Error {
	return NewError(RetCHolderConflict, fmt.Sprintf("cannot write to transaction with key %s because it is locked by another holder", key))
}

// NewNotHolderError creates the error returned by ReleaseLock when no live
// lock for key is held by the given holder.
func NewNotHolderError(key, holder string) *Error {
	return NewError(RetCNotHolder, fmt.Sprintf("no lock held by %s for transaction with key %s", holder, key))
}

// CodeOf returns the RetCode carried by err, or RetCInternalError if err is
// not a *Error.
func CodeOf(err error) RetCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return RetCInternalError
}

// IsHolderConflict reports whether err is a RetCHolderConflict error.
func IsHolderConflict(err error) bool {
	return err != nil && CodeOf(err) == RetCHolderConflict
}

// IsNotHolder reports whether err is a RetCNotHolder error.
func IsNotHolder(err error) bool {
	return err != nil && CodeOf(err) == RetCNotHolder
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess        RetCode = iota // 0: Command executed successfully.
	RetCInternalError                 // 1: Command failed due to an internal error.
	RetCHolderConflict                // 2: Write to a key locked by another holder.
	RetCNotHolder                     // 3: Release of a lock not held by the caller.
)
