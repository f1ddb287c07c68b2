package server

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/lib/records/memstore"
	"github.com/txstore-io/txstore/rpc/common"
	"github.com/txstore-io/txstore/rpc/serializer"
	"github.com/txstore-io/txstore/rpc/transport"
)

var Logger = common.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the record store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   records.IRecordStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		start := time.Now()

		// Get appropriate shard
		shard, ok := s.shards.Load(shardId)

		// Case shard does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     "shard not found",
				Code:    records.RetCInternalError,
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
					Code:    records.RetCInternalError,
				}
			} else {
				// Let the adapter handle the request
				respMsg = *shard.Adapter.Handle(&msg, shard.Store)
			}
		}

		// Record request metrics per operation
		op := msg.MsgType.String()
		metrics.GetOrCreateCounter(fmt.Sprintf(`txstore_rpc_requests_total{op=%q}`, op)).Inc()
		if respMsg.Err != "" {
			metrics.GetOrCreateCounter(fmt.Sprintf(`txstore_rpc_errors_total{op=%q}`, op)).Inc()
		}
		metrics.GetOrCreateHistogram(fmt.Sprintf(`txstore_rpc_request_duration_seconds{op=%q}`, op)).UpdateDuration(start)

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
				Code:    records.RetCInternalError,
			}
			val, _ = s.serializer.Serialize(respMsg)
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config.LogLevel)

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of shards. Each shard
		serves either the record interface or the lock interface of its own
		store instance. The following loop creates all the shards and stores
		them for the RPC server.
	*/

	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeRecordStore:
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   memstore.New(),
				Adapter: NewRecordStoreServerAdapter(),
			})
			Logger.Infof("created record store for shard %d", shardConfig.ShardID)

		case common.ShardTypeLockManager:
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   memstore.New(),
				Adapter: NewLockManagerServerAdapter(),
			})
			Logger.Infof("created lock manager for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("txstore setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
