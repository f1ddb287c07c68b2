package lock

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/txstore-io/txstore/cmd/util"
	"github.com/txstore-io/txstore/lib/records"
	"github.com/txstore-io/txstore/rpc/client"
)

var (
	rpcLockMgr     records.ILockManager
	holdTimeout    uint64
	acquireTimeout uint64
	waitTimeout    uint64

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform lock operations",
		PersistentPreRunE: setupLockClient,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock",
		Long:  "Acquire the lock for a transaction key on behalf of the configured holder. Blocks up to --acquire-timeout seconds when the lock is held by another holder.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [key]",
		Short: "Release a previously acquired lock",
		Long:  "Release the lock for a transaction key. Fails if the configured holder does not hold the lock.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelease,
	}

	// statusCmd represents the status command
	statusCmd = &cobra.Command{
		Use:   "status [key]",
		Short: "Show the lock state of a key",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}

	// waitCmd represents the wait command
	waitCmd = &cobra.Command{
		Use:   "wait [key]",
		Short: "Wait until a lock is released",
		Args:  cobra.ExactArgs(1),
		RunE:  runWait,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands to lock command
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(releaseCmd)
	LockCommands.AddCommand(statusCmd)
	LockCommands.AddCommand(waitCmd)

	// Add common RPC flags to the lock command
	util.SetupRPCClientFlags(LockCommands)

	// Set default shard ID for lock operations (different from record default)
	LockCommands.PersistentFlags().Int("shard", 200, util.WrapString("ID of the shard to connect to"))

	// The empty holder is normalized to the shared default holder server side
	LockCommands.PersistentFlags().String("holder", "", util.WrapString("Holder label to lock on behalf of (empty for the default holder)"))

	// Add flags specific to acquire and wait
	acquireCmd.Flags().Uint64Var(&holdTimeout, "hold-timeout", 30, "Seconds until the lock expires on its own (0 for no expiry)")
	acquireCmd.Flags().Uint64Var(&acquireTimeout, "acquire-timeout", 10, "Seconds to wait for a held lock (0 to wait forever)")
	waitCmd.Flags().Uint64Var(&waitTimeout, "wait-timeout", 30, "Seconds to wait for the release (0 to wait forever)")
}

// setupLockClient initializes the lock manager client
func setupLockClient(cmd *cobra.Command, _ []string) error {
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

	// Create the lock manager client
	rpcLockMgr, err = client.NewRPCLockMgr(
		shardId,
		*config,
		t,
		s,
	)

	return err
}

// runAcquire handles the acquire lock command
func runAcquire(_ *cobra.Command, args []string) error {
	key := args[0]

	// Attempt to acquire the lock
	acquired, err := rpcLockMgr.AcquireLock(
		key,
		util.GetHolder(),
		time.Duration(holdTimeout)*time.Second,
		time.Duration(acquireTimeout)*time.Second,
	)

	if err != nil {
		return fmt.Errorf("failed to acquire lock: %v", err)
	}

	fmt.Printf("acquired=%v\n", acquired)

	return nil
}

// runRelease handles the release lock command
func runRelease(_ *cobra.Command, args []string) error {
	key := args[0]

	// Attempt to release the lock
	if err := rpcLockMgr.ReleaseLock(key, util.GetHolder()); err != nil {
		return fmt.Errorf("failed to release lock: %v", err)
	}

	fmt.Println("released")

	return nil
}

// runStatus handles the status command
func runStatus(_ *cobra.Command, args []string) error {
	key := args[0]

	locked, err := rpcLockMgr.IsLocked(key)
	if err != nil {
		return fmt.Errorf("failed to check lock: %v", err)
	}

	held, err := rpcLockMgr.IsHolder(key, util.GetHolder())
	if err != nil {
		return fmt.Errorf("failed to check holder: %v", err)
	}

	fmt.Printf("key=%s, locked=%v, heldByMe=%v\n", key, locked, held)

	return nil
}

// runWait handles the wait command
func runWait(_ *cobra.Command, args []string) error {
	key := args[0]

	free, err := rpcLockMgr.WaitForRelease(key, time.Duration(waitTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to wait for release: %v", err)
	}

	fmt.Printf("free=%v\n", free)

	return nil
}
