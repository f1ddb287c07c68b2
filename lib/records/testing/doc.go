// Package testing provides standardised tests and benchmarks for
// record store implementations that satisfy the records.IRecordStore
// interface.
//
// The package contains:
//   - testing: A conformance test suite validating the record table and
//     lock manager contracts (holder-gated writes, lock idempotence,
//     self-expiry, blocking acquisition and release observation)
//   - benchmark: Performance tests for measuring throughput of common
//     record and lock operations
//
// This package is particularly useful for:
//   - Developers implementing the IRecordStore interface against a new
//     backing store
//   - Applications that need to compare implementations based on
//     performance characteristics
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() records.IRecordStore {
//		return NewMyStore()
//	}
//
//	// Running the standard test suite
//	testing.RunRecordStoreTests(t, "MyStore", factory)
//
//	// Running performance benchmarks
//	testing.RunRecordStoreBenchmarks(b, "MyStore", factory)
package testing
