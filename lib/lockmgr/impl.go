package lockmgr

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/txstore-io/txstore/lib/records"
)

// --------------------------------------------------------------------------
// Per-Key Lock State
// --------------------------------------------------------------------------

// keyLock holds the lock state for a single key. The struct is created on
// first use of a key and reused for all later acquisitions of that key.
//
// An empty holder means the key is unlocked. While the key is locked,
// released is a non-nil channel that is closed exactly once when the
// current hold ends (explicit release or observed expiry). Waiters block
// on that channel instead of a condition variable: closing a channel wakes
// every waiter, which gives the required at-least-one-waiter-makes-progress
// policy without a background sweeper.
type keyLock struct {
	mu         sync.Mutex
	holder     string
	acquiredAt time.Time
	deadline   time.Time // zero = held until released
	released   chan struct{}
}

// reapLocked lazily expires the current hold. Must be called with mu held
// at the top of every operation that consults lock state.
func (kl *keyLock) reapLocked(now time.Time) {
	if kl.holder != "" && !kl.deadline.IsZero() && now.After(kl.deadline) {
		kl.holder = ""
		kl.deadline = time.Time{}
		close(kl.released)
		kl.released = nil
	}
}

// takeLocked installs holder as the new owner. Must be called with mu held
// and only while the key is unlocked.
func (kl *keyLock) takeLocked(holder string, holdTimeout time.Duration, now time.Time) {
	kl.holder = holder
	kl.acquiredAt = now
	if holdTimeout > 0 {
		kl.deadline = now.Add(holdTimeout)
	} else {
		kl.deadline = time.Time{}
	}
	kl.released = make(chan struct{})
}

// --------------------------------------------------------------------------
// Lock Manager Implementation
// --------------------------------------------------------------------------

type lockMgrImpl struct {
	locks *xsync.MapOf[string, *keyLock]
}

// entry returns the keyLock for key, creating it on first use.
func (m *lockMgrImpl) entry(key string) *keyLock {
	kl, _ := m.locks.LoadOrCompute(key, func() *keyLock {
		return &keyLock{}
	})
	return kl
}

// --------------------------------------------------------------------------
// Interface Methods (docu see records.ILockManager)
// --------------------------------------------------------------------------

func (m *lockMgrImpl) AcquireLock(key, holder string, holdTimeout, acquireTimeout time.Duration) (bool, error) {
	holder = normalizeHolder(holder)
	kl := m.entry(key)

	var waitDeadline time.Time
	if acquireTimeout > 0 {
		waitDeadline = time.Now().Add(acquireTimeout)
	}

	for {
		now := time.Now()

		kl.mu.Lock()
		kl.reapLocked(now)

		// Case unlocked (absent or expired entry): take it
		if kl.holder == "" {
			kl.takeLocked(holder, holdTimeout, now)
			kl.mu.Unlock()
			return true, nil
		}

		// Case re-entrant acquisition: idempotent, the original deadline
		// is preserved (not extended)
		if kl.holder == holder {
			kl.mu.Unlock()
			return true, nil
		}

		// Case locked by a different holder: snapshot what we have to
		// wait for, then block outside the mutex
		released := kl.released
		holdDeadline := kl.deadline
		kl.mu.Unlock()

		if !waitDeadline.IsZero() && !now.Before(waitDeadline) {
			return false, nil
		}

		if !waitUntilFree(released, holdDeadline, waitDeadline) {
			return false, nil
		}
	}
}

func (m *lockMgrImpl) ReleaseLock(key, holder string) error {
	holder = normalizeHolder(holder)
	kl := m.entry(key)

	kl.mu.Lock()
	defer kl.mu.Unlock()
	kl.reapLocked(time.Now())

	if kl.holder != holder {
		// covers both "not locked" and "locked by someone else"
		return records.NewNotHolderError(key, holder)
	}

	kl.holder = ""
	kl.deadline = time.Time{}
	close(kl.released)
	kl.released = nil
	return nil
}

func (m *lockMgrImpl) IsLocked(key string) (bool, error) {
	kl, ok := m.locks.Load(key)
	if !ok {
		return false, nil
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	kl.reapLocked(time.Now())
	return kl.holder != "", nil
}

func (m *lockMgrImpl) IsHolder(key, holder string) (bool, error) {
	holder = normalizeHolder(holder)
	kl, ok := m.locks.Load(key)
	if !ok {
		return false, nil
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	kl.reapLocked(time.Now())
	return kl.holder == holder, nil
}

func (m *lockMgrImpl) WaitForRelease(key string, timeout time.Duration) (bool, error) {
	kl, ok := m.locks.Load(key)
	if !ok {
		return true, nil
	}

	kl.mu.Lock()
	kl.reapLocked(time.Now())
	if kl.holder == "" {
		kl.mu.Unlock()
		return true, nil
	}
	released := kl.released
	holdDeadline := kl.deadline
	kl.mu.Unlock()

	var waitDeadline time.Time
	if timeout > 0 {
		waitDeadline = time.Now().Add(timeout)
	}

	// The current hold ends at the earliest of an explicit release and the
	// hold deadline; either way the lock became free at least once.
	return waitUntilFree(released, holdDeadline, waitDeadline), nil
}

// --------------------------------------------------------------------------
// Blocking Wait Helper
// --------------------------------------------------------------------------

// waitUntilFree blocks until the current hold ends (the released channel is
// closed or holdDeadline passes) and returns true, or until waitDeadline
// passes first and returns false. Zero deadlines mean "never".
func waitUntilFree(released <-chan struct{}, holdDeadline, waitDeadline time.Time) bool {
	var expiryCh <-chan time.Time
	if !holdDeadline.IsZero() {
		t := time.NewTimer(time.Until(holdDeadline))
		defer t.Stop()
		expiryCh = t.C
	}

	var timeoutCh <-chan time.Time
	if !waitDeadline.IsZero() {
		t := time.NewTimer(time.Until(waitDeadline))
		defer t.Stop()
		timeoutCh = t.C
	}

	select {
	case <-released:
		return true
	case <-expiryCh:
		return true
	case <-timeoutCh:
		return false
	}
}
