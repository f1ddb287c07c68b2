package server

import (
	"fmt"
	"time"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/common"
)

func NewLockManagerServerAdapter() IRPCServerAdapter {
	return &lockMgrServerAdapterImpl{}
}

type lockMgrServerAdapterImpl struct{}

func (adapter *lockMgrServerAdapterImpl) Handle(req *common.Message, store records.IRecordStore) (resp *common.Message) {

	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTLCKAcquire:
		ok, err := store.AcquireLock(
			req.Key,
			req.Holder,
			time.Duration(req.HoldTimeoutMs)*time.Millisecond,
			time.Duration(req.WaitTimeoutMs)*time.Millisecond,
		)
		return common.NewAcquireResponse(ok, err)
	case common.MsgTLCKRelease:
		err := store.ReleaseLock(req.Key, req.Holder)
		return common.NewReleaseResponse(err)
	case common.MsgTLCKIsLocked:
		ok, err := store.IsLocked(req.Key)
		return common.NewIsLockedResponse(ok, err)
	case common.MsgTLCKIsHolder:
		ok, err := store.IsHolder(req.Key, req.Holder)
		return common.NewIsHolderResponse(ok, err)
	case common.MsgTLCKWait:
		ok, err := store.WaitForRelease(req.Key, time.Duration(req.WaitTimeoutMs)*time.Millisecond)
		return common.NewWaitResponse(ok, err)
	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC LockManagerAdapter - Unsuported message type: %s", req.MsgType))
	}
}
