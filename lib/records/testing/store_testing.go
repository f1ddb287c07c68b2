package testing

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/txstore-io/txstore/lib/records"
)

// StoreFactory is a function that creates a fresh instance of a record
// store implementation under test.
type StoreFactory func() records.IRecordStore

// RunRecordStoreTests runs the conformance test suite every
// records.IRecordStore implementation must pass.
func RunRecordStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("ReadWrite", func(t *testing.T) {
			testReadWrite(t, factory())
		})

		t.Run("Absence", func(t *testing.T) {
			testAbsence(t, factory())
		})

		t.Run("HolderGatedWrite", func(t *testing.T) {
			testHolderGatedWrite(t, factory())
		})

		t.Run("UnlockedWriteAnyHolder", func(t *testing.T) {
			testUnlockedWriteAnyHolder(t, factory())
		})

		t.Run("LockIdempotence", func(t *testing.T) {
			testLockIdempotence(t, factory())
		})

		t.Run("HoldTimeout", func(t *testing.T) {
			testHoldTimeout(t, factory())
		})

		t.Run("AcquireTimeout", func(t *testing.T) {
			testAcquireTimeout(t, factory())
		})

		t.Run("ExpiryUnblocksWaiter", func(t *testing.T) {
			testExpiryUnblocksWaiter(t, factory())
		})

		t.Run("WrongHolderRelease", func(t *testing.T) {
			testWrongHolderRelease(t, factory())
		})

		t.Run("WaitForRelease", func(t *testing.T) {
			testWaitForRelease(t, factory())
		})

		t.Run("ScopedLock", func(t *testing.T) {
			testScopedLock(t, factory())
		})

		t.Run("CrossGoroutineHandoff", func(t *testing.T) {
			testCrossGoroutineHandoff(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testReadWrite(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()
	value := []byte(`{"test":"value"}`)

	if err := store.Write(key, value, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rec, loaded, err := store.Read(key)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !loaded {
		t.Fatalf("Expected key %s to exist after Write", key)
	}
	if rec.Key != key {
		t.Errorf("Expected record key %s, got %s", key, rec.Key)
	}
	if !bytes.Equal(rec.Result, value) {
		t.Errorf("Expected result %s, got %s", value, rec.Result)
	}

	// overwrites replace the record wholesale
	value2 := []byte(`{"test":"value2"}`)
	if err := store.Write(key, value2, ""); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	rec, _, _ = store.Read(key)
	if !bytes.Equal(rec.Result, value2) {
		t.Errorf("Expected result %s after overwrite, got %s", value2, rec.Result)
	}
}

func testAbsence(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if _, loaded, _ := store.Read(key); loaded {
		t.Errorf("Expected Read on a never-written key to return loaded=false")
	}
	if exists, _ := store.Exists(key); exists {
		t.Errorf("Expected Exists on a never-written key to return false")
	}

	if err := store.Write(key, []byte("v"), ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if exists, _ := store.Exists(key); !exists {
		t.Errorf("Expected Exists to return true after Write")
	}
}

func testHolderGatedWrite(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, err := store.AcquireLock(key, "holder1", 0, 0); err != nil || !ok {
		t.Fatalf("AcquireLock failed: ok=%v err=%v", ok, err)
	}

	// same holder can write
	if err := store.Write(key, []byte("v"), "holder1"); err != nil {
		t.Errorf("Write by lock holder failed: %v", err)
	}

	// different holder cannot
	err := store.Write(key, []byte("v2"), "holder2")
	if !records.IsHolderConflict(err) {
		t.Errorf("Expected HolderConflict error, got %v", err)
	}

	// the failed write must not have mutated the table
	rec, _, _ := store.Read(key)
	if !bytes.Equal(rec.Result, []byte("v")) {
		t.Errorf("Failed write mutated the stored record: %s", rec.Result)
	}
}

func testUnlockedWriteAnyHolder(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	// no lock is required to write an unlocked key, whatever the holder
	if err := store.Write(key, []byte("v"), "whoever"); err != nil {
		t.Errorf("Write to unlocked key failed: %v", err)
	}
}

func testLockIdempotence(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	for i := 0; i < 2; i++ {
		if ok, err := store.AcquireLock(key, "", 0, 0); err != nil || !ok {
			t.Fatalf("Unlabeled AcquireLock #%d failed: ok=%v err=%v", i+1, ok, err)
		}
	}

	if locked, _ := store.IsLocked(key); !locked {
		t.Errorf("Expected key to be locked after acquisition")
	}

	// a single release fully unlocks (acquisition does not stack)
	if err := store.ReleaseLock(key, ""); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if locked, _ := store.IsLocked(key); locked {
		t.Errorf("Expected key to be unlocked after one release")
	}
}

func testHoldTimeout(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, _ := store.AcquireLock(key, "", 100*time.Millisecond, 0); !ok {
		t.Fatal("AcquireLock failed")
	}
	if locked, _ := store.IsLocked(key); !locked {
		t.Errorf("Expected key to be locked")
	}

	time.Sleep(200 * time.Millisecond)

	if locked, _ := store.IsLocked(key); locked {
		t.Errorf("Expected lock to have expired")
	}
}

func testAcquireTimeout(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, _ := store.AcquireLock(key, "holder1", 0, 0); !ok {
		t.Fatal("AcquireLock failed")
	}

	if ok, _ := store.AcquireLock(key, "holder2", 0, 100*time.Millisecond); ok {
		t.Errorf("Expected contended acquisition to time out")
	}

	if isHolder, _ := store.IsHolder(key, "holder1"); !isHolder {
		t.Errorf("Expected key to remain held by holder1")
	}
}

func testExpiryUnblocksWaiter(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, _ := store.AcquireLock(key, "holder1", 100*time.Millisecond, 0); !ok {
		t.Fatal("AcquireLock failed")
	}

	// blocks, then acquires once holder1's lock has expired
	if ok, _ := store.AcquireLock(key, "holder2", 0, 0); !ok {
		t.Fatal("Expected blocked acquisition to succeed after expiry")
	}
	if isHolder, _ := store.IsHolder(key, "holder2"); !isHolder {
		t.Errorf("Expected key to be held by holder2 after expiry takeover")
	}
}

func testWrongHolderRelease(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, _ := store.AcquireLock(key, "holder1", 0, 0); !ok {
		t.Fatal("AcquireLock failed")
	}

	err := store.ReleaseLock(key, "holder2")
	if !records.IsNotHolder(err) {
		t.Errorf("Expected NotHolder error, got %v", err)
	}
	if isHolder, _ := store.IsHolder(key, "holder1"); !isHolder {
		t.Errorf("Expected key to remain held by holder1 after failed release")
	}
}

func testWaitForRelease(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	// never locked: immediate true
	if free, _ := store.WaitForRelease(key, 0); !free {
		t.Errorf("Expected WaitForRelease on an unlocked key to return true")
	}

	if ok, _ := store.AcquireLock(key, "holder1", 0, 0); !ok {
		t.Fatal("AcquireLock failed")
	}

	// shorter timeout than hold duration: false while still held
	if free, _ := store.WaitForRelease(key, 100*time.Millisecond); free {
		t.Errorf("Expected WaitForRelease to time out while lock is held")
	}
	if locked, _ := store.IsLocked(key); !locked {
		t.Errorf("Expected key to still be locked after wait timeout")
	}

	if err := store.ReleaseLock(key, "holder1"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if free, _ := store.WaitForRelease(key, 100*time.Millisecond); !free {
		t.Errorf("Expected WaitForRelease to return true after release")
	}
}

func testScopedLock(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	err := store.WithLock(context.Background(), key, "", 0, func(ctx context.Context) error {
		if locked, _ := store.IsLocked(key); !locked {
			t.Errorf("Expected key to be locked inside WithLock")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock failed: %v", err)
	}
	if locked, _ := store.IsLocked(key); locked {
		t.Errorf("Expected key to be unlocked after WithLock returned")
	}

	// the lock is released on the error path too
	wantErr := records.NewError(records.RetCInternalError, "boom")
	err = store.WithLock(context.Background(), key, "", 0, func(ctx context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("Expected WithLock to propagate the callback error, got %v", err)
	}
	if locked, _ := store.IsLocked(key); locked {
		t.Errorf("Expected key to be unlocked after failed WithLock")
	}
}

func testCrossGoroutineHandoff(t *testing.T, store records.IRecordStore) {
	key := uuid.NewString()

	if ok, _ := store.AcquireLock(key, "holder1", 0, 0); !ok {
		t.Fatal("AcquireLock failed")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if ok, _ := store.AcquireLock(key, "holder2", 0, 0); !ok {
			t.Errorf("Expected blocked acquisition on second goroutine to succeed")
		}
	}()

	if err := store.ReleaseLock(key, "holder1"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	wg.Wait()

	if locked, _ := store.IsLocked(key); !locked {
		t.Errorf("Expected key to be locked by the second goroutine")
	}
}
