package memstore

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/txstore-io/txstore/lib/records"
)

// recordTable is the in-memory mapping from transaction key to cached
// record. It is a leaf component: it never consults lock state and none of
// its operations block.
type recordTable struct {
	data *xsync.MapOf[string, records.Record]
}

func newRecordTable() *recordTable {
	return &recordTable{
		data: xsync.NewMapOf[string, records.Record](),
	}
}

// read returns a copy of the stored record for key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *recordTable) read(key string) (records.Record, bool) {
	rec, ok := t.data.Load(key)
	if !ok {
		return records.Record{}, false
	}

	// copy the result so callers cannot corrupt the stored bytes
	result := make([]byte, len(rec.Result))
	copy(result, rec.Result)

	return records.Record{Key: rec.Key, Result: result}, true
}

// write stores or overwrites the record for key. Holder checks happen in
// the facade; by the time write runs the mutation is unconditional.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *recordTable) write(key string, result []byte) {
	// copy the value to prevent later mutation by the caller
	resultCopy := make([]byte, len(result))
	copy(resultCopy, result)

	t.data.Store(key, records.Record{Key: key, Result: resultCopy})
}

// has reports whether a record is stored for key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *recordTable) has(key string) bool {
	_, ok := t.data.Load(key)
	return ok
}
