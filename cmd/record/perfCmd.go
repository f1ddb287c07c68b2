package record

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/txstore-io/txstore/cmd/util"
	"github.com/txstore-io/txstore/rpc/common"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for txstore servers",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfNumOps           = 1000
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	RecordCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. write,read)"))
	key = "threads"
	RecordCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "ops"
	RecordCommands.PersistentFlags().Int(key, 1000, util.WrapString("Number of operations per thread"))
	key = "large-value-size"
	RecordCommands.PersistentFlags().Int(key, 1000, util.WrapString("How large the result for the write-large test should be (in KB)"))
	key = "keys"
	RecordCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfNumOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	// Every run writes under a fresh prefix since records are never deleted
	perfKeyPrefix = fmt.Sprintf("__test-%s", uuid.NewString()[:8])

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for txstore servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Ops per thread: %d\n", perfNumOps)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	order := make([]string, 0)

	runBench := func(name string, op func(i int) error) {
		order = append(order, name)
		timer := gometrics.GetOrRegisterTimer(name, registry)

		if shouldSkip(name) {
			printResult(name, timer)
			return
		}

		var wg sync.WaitGroup
		for t := 0; t < perfNumThreads; t++ {
			wg.Add(1)
			go func(offset int) {
				defer wg.Done()
				for i := 0; i < perfNumOps; i++ {
					start := time.Now()
					if err := op(offset*perfNumOps + i); err != nil {
						log.Printf("(%s) - error: %v\n", name, err)
						continue
					}
					timer.UpdateSince(start)
				}
			}(t)
		}
		wg.Wait()

		printResult(name, timer)
	}

	getKey := getKeys("perf")

	runBench("write", func(i int) error {
		return rpcStore.Write(getKey(i), []byte("test"), "")
	})

	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	runBench("write-large", func(i int) error {
		return rpcStore.Write(getKey(i), largeValue, "")
	})

	runBench("read", func(i int) error {
		_, _, err := rpcStore.Read(getKey(i))
		return err
	})

	runBench("exists", func(i int) error {
		_, err := rpcStore.Exists(getKey(i))
		return err
	})

	runBench("exists-not", func(i int) error {
		_, err := rpcStore.Exists(fmt.Sprintf("%s/missing-%d", perfKeyPrefix, i%perfKeySpread))
		return err
	})

	runBench("acquire-release", func(i int) error {
		key := getKey(i)
		holder := fmt.Sprintf("perf-%d", i)
		if _, err := rpcStore.AcquireLock(key, holder, 30*time.Second, time.Second); err != nil {
			return err
		}
		return rpcStore.ReleaseLock(key, holder)
	})

	runBench("mixed", func(i int) error {
		key := getKey(i)
		switch i % 3 {
		case 0:
			return rpcStore.Write(key, []byte("test"), "")
		case 1:
			_, _, err := rpcStore.Read(key)
			return err
		default:
			_, err := rpcStore.Exists(key)
			return err
		}
	})

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, order, registry, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// getKeys creates a function mapping an op index to one of perfKeySpread keys
func getKeys(prefix string) func(int) string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	return func(i int) string {
		return keys[i%perfKeySpread]
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer gometrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := timer.Mean()
	p99 := timer.Percentile(0.99)
	opsPerSec := 1.0 / (mean / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\tp99 %s\t%.0f ops/sec\n",
		test, mean, time.Duration(mean), time.Duration(p99), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, order []string, registry gometrics.Registry, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P50Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer", "Transport",
		"Threads", "OpsPerThread", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range order {
		timer := gometrics.GetOrRegisterTimer(test, registry)

		var meanNs, opsPerSec float64
		skipped := "false"
		if timer.Count() == 0 {
			skipped = "true"
		} else {
			meanNs = timer.Mean()
			opsPerSec = 1.0 / (meanNs / 1e9)
		}

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", meanNs),
			fmt.Sprintf("%.0f", timer.Percentile(0.5)),
			fmt.Sprintf("%.0f", timer.Percentile(0.99)),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfNumOps),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
