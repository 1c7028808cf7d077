package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/iprefetch/internal/memsim"
	"github.com/sarchlab/iprefetch/prefetch"
)

var flagBenchCSV bool

const flagBenchCSVName = "csv"

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run the built-in synthetic scenarios against both prefetchers",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().BoolVar(&flagBenchCSV, flagBenchCSVName, false, "output results as CSV instead of a human-readable table")
	rootCmd.AddCommand(benchCmd)
}

type scenario struct {
	name   string
	events []memsim.Event
}

func scenarios() []scenario {
	return []scenario{
		{name: "rdip_suppression", events: memsim.GenRDIPSuppression()},
		{name: "djolt_overflow", events: memsim.GenDJOLTOverflow()},
	}
}

type benchResult struct {
	scenario         string
	fetches          uint64
	hits             uint64
	misses           uint64
	prefetchesIssued uint64
}

func runBench(cmd *cobra.Command, args []string) error {
	var results []benchResult
	for _, sc := range scenarios() {
		l1i := memsim.New(memsim.DefaultL1IConfig(), nil)
		l1i.AttachRDIP(prefetch.DefaultRDIPConfig(6))
		l1i.AttachDJOLT(prefetch.DefaultDJOLTConfig(6))

		memsim.Replay(l1i, sc.events)

		stats := l1i.Stats()
		results = append(results, benchResult{
			scenario:         sc.name,
			fetches:          stats.Fetches,
			hits:             stats.Hits,
			misses:           stats.Misses,
			prefetchesIssued: stats.PrefetchesIssued,
		})
	}

	if flagBenchCSV {
		fmt.Println("scenario,fetches,hits,misses,prefetches_issued")
		for _, r := range results {
			fmt.Printf("%s,%d,%d,%d,%d\n", r.scenario, r.fetches, r.hits, r.misses, r.prefetchesIssued)
		}
		return nil
	}

	fmt.Printf("%-20s %8s %8s %8s %12s\n", "scenario", "fetches", "hits", "misses", "prefetches")
	for _, r := range results {
		fmt.Printf("%-20s %8d %8d %8d %12d\n", r.scenario, r.fetches, r.hits, r.misses, r.prefetchesIssued)
	}
	return nil
}
