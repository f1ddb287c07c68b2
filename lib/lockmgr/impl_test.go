package lockmgr

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txstore-io/txstore/lib/records"
)

func TestAcquireRelease(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, locks.ReleaseLock(key, "holder1"))

	locked, err = locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestAcquireDefaultHolderIdempotent(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	// two unlabeled acquisitions must both succeed without a release in
	// between, since both resolve to the same default identity
	ok, err := locks.AcquireLock(key, "", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locks.AcquireLock(key, "", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	isHolder, err := locks.IsHolder(key, records.DefaultHolder)
	require.NoError(t, err)
	assert.True(t, isHolder)

	// one release fully unlocks
	require.NoError(t, locks.ReleaseLock(key, ""))
	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestReentrantAcquirePreservesDeadline(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	// re-entrant acquire must not extend the original deadline
	ok, err = locks.AcquireLock(key, "holder1", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked, "lock should have expired at the original deadline")
}

func TestHoldTimeoutExpires(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.True(t, locked)

	time.Sleep(200 * time.Millisecond)

	locked, err = locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestAcquireTimeout(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	ok, err = locks.AcquireLock(key, "holder2", 0, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	// the key is still held by holder1
	isHolder, err := locks.IsHolder(key, "holder1")
	require.NoError(t, err)
	assert.True(t, isHolder)
}

func TestExpiryUnblocksWaiter(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// blocks until holder1's lock expires, then acquires
	ok, err = locks.AcquireLock(key, "holder2", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	isHolder, err := locks.IsHolder(key, "holder2")
	require.NoError(t, err)
	assert.True(t, isHolder)

	require.NoError(t, locks.ReleaseLock(key, "holder2"))
}

func TestReleaseWrongHolder(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	err = locks.ReleaseLock(key, "holder2")
	require.Error(t, err)
	assert.True(t, records.IsNotHolder(err))

	// the lock must be unchanged
	isHolder, err := locks.IsHolder(key, "holder1")
	require.NoError(t, err)
	assert.True(t, isHolder)
}

func TestReleaseNeverLocked(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	err := locks.ReleaseLock(key, "holder1")
	require.Error(t, err)
	assert.True(t, records.IsNotHolder(err))
}

func TestIsHolder(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	isHolder, err := locks.IsHolder(key, "holder1")
	require.NoError(t, err)
	assert.False(t, isHolder)

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	isHolder, err = locks.IsHolder(key, "holder1")
	require.NoError(t, err)
	assert.True(t, isHolder)

	isHolder, err = locks.IsHolder(key, "holder2")
	require.NoError(t, err)
	assert.False(t, isHolder)
}

func TestWaitForRelease(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	// never locked: immediate true
	free, err := locks.WaitForRelease(key, 0)
	require.NoError(t, err)
	assert.True(t, free)

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// locked without expiry: times out
	free, err = locks.WaitForRelease(key, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, free)

	require.NoError(t, locks.ReleaseLock(key, "holder1"))

	free, err = locks.WaitForRelease(key, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestWaitForReleaseObservesExpiry(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	free, err := locks.WaitForRelease(key, 0)
	require.NoError(t, err)
	assert.True(t, free)

	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockingWorksAcrossGoroutines(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	ok, err := locks.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		ok, err := locks.AcquireLock(key, "holder2", 0, 0)
		assert.NoError(t, err)
		assert.True(t, ok)
	}()

	// give the waiter time to block, then hand the lock over
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, locks.ReleaseLock(key, "holder1"))

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked acquirer was not woken by release")
	}

	isHolder, err := locks.IsHolder(key, "holder2")
	require.NoError(t, err)
	assert.True(t, isHolder)
}

func TestContendedAcquireMakesProgress(t *testing.T) {
	key := uuid.NewString()
	locks := NewLockManager()

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			holder := uuid.NewString()
			ok, err := locks.AcquireLock(key, holder, 0, 5*time.Second)
			if !assert.NoError(t, err) || !assert.True(t, ok) {
				return
			}
			mu.Lock()
			seen++
			mu.Unlock()
			assert.NoError(t, locks.ReleaseLock(key, holder))
		}(i)
	}

	wg.Wait()
	assert.Equal(t, workers, seen, "every contender should eventually hold the lock")
}
