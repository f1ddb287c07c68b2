package record

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/txstore-io/txstore/cmd/util"
)

var (
	writeCmd = &cobra.Command{
		Use:   "write [key] [result]",
		Short: "Persists the result for a transaction key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			result := args[1]
			if err := rpcStore.Write(key, []byte(result), util.GetHolder()); err != nil {
				return err
			} else {
				fmt.Println("write successfully")
			}
			return nil
		},
	}
	readCmd = &cobra.Command{
		Use:   "read [key]",
		Short: "Reads the persisted result for a transaction key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if record, ok, err := rpcStore.Read(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, result=%s\n", key, ok, record.Result)
			}
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Checks if a record exists for a transaction key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := rpcStore.Exists(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
)
