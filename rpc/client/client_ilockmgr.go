package client

import (
	"time"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/common"
	"github.com/txstore-io/txstore/rpc/serializer"
	"github.com/txstore-io/txstore/rpc/transport"
)

// NewRPCLockMgr creates a new RPC ILockManager
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a records.ILockManager and an error
func NewRPCLockMgr(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (records.ILockManager, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC lock manager
	l := rpcLockMgr{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC lock manager
	return &l, nil
}

type rpcLockMgr struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the records package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcLockMgr) AcquireLock(key, holder string, holdTimeout, acquireTimeout time.Duration) (ok bool, err error) {
	req := common.NewAcquireRequest(key, holder, uint64(holdTimeout.Milliseconds()), uint64(acquireTimeout.Milliseconds()))
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcLockMgr) ReleaseLock(key, holder string) (err error) {
	req := common.NewReleaseRequest(key, holder)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcLockMgr) IsLocked(key string) (locked bool, err error) {
	req := common.NewIsLockedRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcLockMgr) IsHolder(key, holder string) (isHolder bool, err error) {
	req := common.NewIsHolderRequest(key, holder)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcLockMgr) WaitForRelease(key string, timeout time.Duration) (free bool, err error) {
	req := common.NewWaitRequest(key, uint64(timeout.Milliseconds()))
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}
