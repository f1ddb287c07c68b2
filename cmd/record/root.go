package record

import (
	"github.com/spf13/cobra"
	"github.com/txstore-io/txstore/cmd/util"
	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/client"
)

var (
	rpcStore records.IRecordStore

	// RecordCommands represents the record command group
	RecordCommands = &cobra.Command{
		Use:               "record",
		Short:             "Perform transaction record operations",
		PersistentPreRunE: setupRecordClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the record command
	util.SetupRPCClientFlags(RecordCommands)

	// Set default shard ID for record operations (different from lock default)
	RecordCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// The empty holder is normalized to the shared default holder server side
	RecordCommands.PersistentFlags().String("holder", "", util.WrapString("Holder label to write under (empty for the default holder)"))

	// Add subcommands
	RecordCommands.AddCommand(writeCmd)
	RecordCommands.AddCommand(readCmd)
	RecordCommands.AddCommand(existsCmd)
	RecordCommands.AddCommand(perfTestCmd)
}

// setupRecordClient initializes the RPC record store client
func setupRecordClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the record store client
	rpcStore, err = client.NewRPCRecordStore(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
