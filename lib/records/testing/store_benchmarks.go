package testing

import (
	"fmt"
	"testing"

	"github.com/txstore-io/txstore/lib/records"
)

// RunRecordStoreBenchmarks runs all benchmarks for a record store implementation
func RunRecordStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {

	b.Run("Write", func(b *testing.B) {
		benchmarkWrite(b, factory())
	})

	b.Run("WriteExisting", func(b *testing.B) {
		benchmarkWriteExisting(b, factory())
	})

	b.Run("Read", func(b *testing.B) {
		benchmarkRead(b, factory())
	})

	b.Run("Exists", func(b *testing.B) {
		benchmarkExists(b, factory())
	})

	b.Run("AcquireRelease", func(b *testing.B) {
		benchmarkAcquireRelease(b, factory())
	})

	b.Run("AcquireReleaseContended", func(b *testing.B) {
		benchmarkAcquireReleaseContended(b, factory())
	})

	b.Run("LockedWrite", func(b *testing.B) {
		benchmarkLockedWrite(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Write operation
func benchmarkWrite(b *testing.B, store records.IRecordStore) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			_ = store.Write(key, value, "")
			counter++
		}
	})
}

// Benchmark for Write operation with existing keys
func benchmarkWriteExisting(b *testing.B, store records.IRecordStore) {
	numKeys := 1024
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = store.Write(key, []byte(fmt.Sprintf("test-value-%d", i)), "")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			_ = store.Write(key, value, "")
			counter++
		}
	})
}

// Benchmark for Read operation
func benchmarkRead(b *testing.B, store records.IRecordStore) {
	numKeys := 1024
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = store.Write(key, []byte(fmt.Sprintf("test-value-%d", i)), "")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = store.Read(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for Exists operation
func benchmarkExists(b *testing.B, store records.IRecordStore) {
	numKeys := 1024
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = store.Write(key, []byte("v"), "")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = store.Exists(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for uncontended lock churn
func benchmarkAcquireRelease(b *testing.B, store records.IRecordStore) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			_, _ = store.AcquireLock(key, "", 0, 0)
			_ = store.ReleaseLock(key, "")
			counter++
		}
	})
}

// Benchmark for contended lock churn on a small key set
func benchmarkAcquireReleaseContended(b *testing.B, store records.IRecordStore) {
	numKeys := 8

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			_, _ = store.AcquireLock(key, "", 0, 0)
			_ = store.ReleaseLock(key, "")
			counter++
		}
	})
}

// Benchmark for Write on a locked key by the holding identity
func benchmarkLockedWrite(b *testing.B, store records.IRecordStore) {
	numKeys := 1024
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_, _ = store.AcquireLock(key, "", 0, 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			_ = store.Write(key, []byte(fmt.Sprintf("test-value-%d", counter)), "")
			counter++
		}
	})
}
