package client

import (
	"context"
	"time"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/common"
	"github.com/txstore-io/txstore/rpc/serializer"
	"github.com/txstore-io/txstore/rpc/transport"
)

// NewRPCRecordStore creates a new RPC record store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a records.IRecordStore and an error
func NewRPCRecordStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (records.IRecordStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC record store
	s := rpcRecordStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC record store
	return &s, nil
}

type rpcRecordStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the records package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcRecordStore) Read(key string) (rec records.Record, loaded bool, err error) {
	req := common.NewReadRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return records.Record{}, false, err
	}
	if !resp.Ok {
		return records.Record{}, false, nil
	}
	return records.Record{Key: key, Result: resp.Value}, true, nil
}

func (i *rpcRecordStore) Write(key string, result []byte, holder string) (err error) {
	req := common.NewWriteRequest(key, result, holder)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcRecordStore) Exists(key string) (loaded bool, err error) {
	req := common.NewExistsRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcRecordStore) WithLock(ctx context.Context, key, holder string, holdTimeout time.Duration, fn func(ctx context.Context) error) error {
	if _, err := i.AcquireLock(key, holder, holdTimeout, 0); err != nil {
		return err
	}
	defer func() {
		// an expired hold makes the release fail with NotHolder, which is
		// ignored since the lock is already gone
		_ = i.ReleaseLock(key, holder)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (i *rpcRecordStore) AcquireLock(key, holder string, holdTimeout, acquireTimeout time.Duration) (ok bool, err error) {
	req := common.NewAcquireRequest(key, holder, uint64(holdTimeout.Milliseconds()), uint64(acquireTimeout.Milliseconds()))
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcRecordStore) ReleaseLock(key, holder string) (err error) {
	req := common.NewReleaseRequest(key, holder)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcRecordStore) IsLocked(key string) (locked bool, err error) {
	req := common.NewIsLockedRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcRecordStore) IsHolder(key, holder string) (isHolder bool, err error) {
	req := common.NewIsHolderRequest(key, holder)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcRecordStore) WaitForRelease(key string, timeout time.Duration) (free bool, err error) {
	req := common.NewWaitRequest(key, uint64(timeout.Milliseconds()))
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}
