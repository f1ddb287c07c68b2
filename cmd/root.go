package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/txstore-io/txstore/cmd/lock"
	"github.com/txstore-io/txstore/cmd/record"
	"github.com/txstore-io/txstore/cmd/serve"
	"github.com/txstore-io/txstore/cmd/util"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "txstore",
		Short: "transactional record store",
		Long: fmt.Sprintf(`txstore (v%s)

A transactional record store written in Go, combining a write-once
result cache with advisory, self-expiring per-key locks.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of txstore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("txstore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(record.RecordCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
