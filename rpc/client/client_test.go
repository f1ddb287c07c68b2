package client

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/lib/records/memstore"
	"github.com/txstore-io/txstore/rpc/common"
	"github.com/txstore-io/txstore/rpc/serializer"
	"github.com/txstore-io/txstore/rpc/server"
)

// loopbackTransport routes requests directly to a server adapter, exercising
// the full client, serializer and adapter path without a network
type loopbackTransport struct {
	store      records.IRecordStore
	adapter    server.IRPCServerAdapter
	serializer serializer.IRPCSerializer
}

func (t *loopbackTransport) Connect(config common.ClientConfig) error { return nil }

func (t *loopbackTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	var msg common.Message
	if err := t.serializer.Deserialize(req, &msg); err != nil {
		return nil, err
	}
	resp := t.adapter.Handle(&msg, t.store)
	return t.serializer.Serialize(*resp)
}

func (t *loopbackTransport) Close() error { return nil }

func newLoopbackStore(t *testing.T) records.IRecordStore {
	ser := serializer.NewBinarySerializer()
	tr := &loopbackTransport{
		store:      memstore.New(),
		adapter:    server.NewRecordStoreServerAdapter(),
		serializer: ser,
	}
	store, err := NewRPCRecordStore(1, common.ClientConfig{}, tr, ser)
	require.NoError(t, err)
	return store
}

func TestClientReadWrite(t *testing.T) {
	store := newLoopbackStore(t)
	key := uuid.NewString()
	value := []byte(`{"result": 1}`)

	require.NoError(t, store.Write(key, value, ""))

	rec, loaded, err := store.Read(key)
	require.NoError(t, err)
	require.True(t, loaded)
	assert.Equal(t, key, rec.Key)
	assert.Equal(t, value, rec.Result)

	exists, err := store.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClientReadMissing(t *testing.T) {
	store := newLoopbackStore(t)

	_, loaded, err := store.Read(uuid.NewString())
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestClientTypedErrors(t *testing.T) {
	store := newLoopbackStore(t)
	key := uuid.NewString()

	ok, err := store.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// holder conflict survives the wire with its classification intact
	err = store.Write(key, []byte("v"), "holder2")
	require.Error(t, err)
	assert.True(t, records.IsHolderConflict(err))
	assert.Contains(t, err.Error(), "locked by another holder")

	// so does a bad release
	err = store.ReleaseLock(key, "holder2")
	require.Error(t, err)
	assert.True(t, records.IsNotHolder(err))
}

func TestClientLockRoundTrip(t *testing.T) {
	store := newLoopbackStore(t)
	key := uuid.NewString()

	ok, err := store.AcquireLock(key, "holder1", 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	locked, err := store.IsLocked(key)
	require.NoError(t, err)
	assert.True(t, locked)

	isHolder, err := store.IsHolder(key, "holder1")
	require.NoError(t, err)
	assert.True(t, isHolder)

	isHolder, err = store.IsHolder(key, "holder2")
	require.NoError(t, err)
	assert.False(t, isHolder)

	// contended acquire with a timeout reports failure, not an error
	ok, err = store.AcquireLock(key, "holder2", 0, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReleaseLock(key, "holder1"))

	free, err := store.WaitForRelease(key, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestClientWithLock(t *testing.T) {
	store := newLoopbackStore(t)
	key := uuid.NewString()

	err := store.WithLock(context.Background(), key, "", 0, func(ctx context.Context) error {
		locked, err := store.IsLocked(key)
		require.NoError(t, err)
		assert.True(t, locked)
		return store.Write(key, []byte("computed"), "")
	})
	require.NoError(t, err)

	locked, err := store.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)

	rec, loaded, err := store.Read(key)
	require.NoError(t, err)
	require.True(t, loaded)
	assert.Equal(t, []byte("computed"), rec.Result)
}

func TestLockMgrClient(t *testing.T) {
	ser := serializer.NewJSONSerializer()
	tr := &loopbackTransport{
		store:      memstore.New(),
		adapter:    server.NewLockManagerServerAdapter(),
		serializer: ser,
	}
	locks, err := NewRPCLockMgr(2, common.ClientConfig{}, tr, ser)
	require.NoError(t, err)

	key := uuid.NewString()

	ok, err := locks.AcquireLock(key, "", 100*time.Millisecond, 0)
	require.NoError(t, err)
	require.True(t, ok)

	locked, err := locks.IsLocked(key)
	require.NoError(t, err)
	assert.True(t, locked)

	// the hold expires on its own
	time.Sleep(200 * time.Millisecond)
	locked, err = locks.IsLocked(key)
	require.NoError(t, err)
	assert.False(t, locked)
}
