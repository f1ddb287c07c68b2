package server

import (
	"fmt"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/common"
)

func NewRecordStoreServerAdapter() IRPCServerAdapter {
	return &recordStoreServerAdapterImpl{locks: NewLockManagerServerAdapter()}
}

type recordStoreServerAdapterImpl struct {
	// a record store shard also serves the lock surface of its store,
	// lock messages are forwarded to the lock manager adapter
	locks IRPCServerAdapter
}

func (adapter *recordStoreServerAdapterImpl) Handle(req *common.Message, store records.IRecordStore) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTRecRead:
		rec, ok, err := store.Read(req.Key)
		return common.NewReadResponse(rec.Result, ok, err)
	case common.MsgTRecWrite:
		err := store.Write(req.Key, req.Value, req.Holder)
		return common.NewWriteResponse(err)
	case common.MsgTRecExists:
		ok, err := store.Exists(req.Key)
		return common.NewExistsResponse(ok, err)
	case common.MsgTLCKAcquire, common.MsgTLCKRelease, common.MsgTLCKIsLocked, common.MsgTLCKIsHolder, common.MsgTLCKWait:
		return adapter.locks.Handle(req, store)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC RecordStoreAdapter - Unsuported message type: %s", req.MsgType),
		)
	}
}
