package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/iprefetch/internal/memsim"
	"github.com/sarchlab/iprefetch/prefetch"
)

var (
	flagRunTracePath  string
	flagRunConfigPath string
	flagRunUseRDIP    bool
	flagRunUseDJOLT   bool
)

const (
	flagRunTraceName  = "trace"
	flagRunConfigName = "config"
	flagRunRDIPName   = "rdip"
	flagRunDJOLTName  = "djolt"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "replay a JSON-lines branch/access trace against L1I prefetchers",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagRunTracePath, flagRunTraceName, "", "path to a JSON-lines trace (required)")
	runCmd.Flags().StringVar(&flagRunConfigPath, flagRunConfigName, "", "path to a YAML run configuration")
	runCmd.Flags().BoolVar(&flagRunUseRDIP, flagRunRDIPName, true, "attach RDIP")
	runCmd.Flags().BoolVar(&flagRunUseDJOLT, flagRunDJOLTName, false, "attach mini D-JOLT")
	_ = runCmd.MarkFlagRequired(flagRunTraceName)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	sessionID := xid.New().String()
	slog.Info("starting run", slog.String("session", sessionID), slog.String("trace", flagRunTracePath))

	var cfg runConfig
	if flagRunConfigPath != "" {
		var err error
		cfg, err = loadRunConfig(flagRunConfigPath)
		if err != nil {
			return errors.Wrap(err, "loading run configuration")
		}
	}

	f, err := os.Open(flagRunTracePath)
	if err != nil {
		return errors.Wrapf(err, "opening trace %s", flagRunTracePath)
	}
	defer f.Close()

	events, err := memsim.ReadTrace(f)
	if err != nil {
		return errors.Wrap(err, "reading trace")
	}
	slog.Info("loaded trace", slog.String("session", sessionID), slog.Int("events", len(events)))

	l1i := memsim.New(memsim.DefaultL1IConfig(), nil)

	var rdip *prefetch.RDIP
	var djolt *prefetch.DJOLT
	if flagRunUseRDIP {
		rdip = l1i.AttachRDIP(cfg.rdipConfig())
	}
	if flagRunUseDJOLT {
		djolt = l1i.AttachDJOLT(cfg.djoltConfig())
	}

	memsim.Replay(l1i, events)

	stats := l1i.Stats()
	fmt.Printf("session:            %s\n", sessionID)
	fmt.Printf("fetches:            %d\n", stats.Fetches)
	fmt.Printf("hits:               %d\n", stats.Hits)
	fmt.Printf("misses:             %d\n", stats.Misses)
	fmt.Printf("prefetches issued:  %d\n", stats.PrefetchesIssued)
	fmt.Printf("prefetch redundant: %d\n", stats.PrefetchRedundant)

	if rdip != nil {
		rs := rdip.Stats()
		fmt.Printf("rdip branches:      %d\n", rs.Branches)
		fmt.Printf("rdip suppressed:    %d\n", rs.Suppressed)
	}
	if djolt != nil {
		ds := djolt.Stats()
		fmt.Printf("djolt branches:         %d\n", ds.Branches)
		fmt.Printf("djolt extra spills:     %d\n", ds.ExtraTableSpills)
		fmt.Printf("djolt fallback aggr:    %d\n", ds.FallbackAggressive)
		fmt.Printf("djolt fallback cons:    %d\n", ds.FallbackConservative)
	}

	slog.Info("run complete", slog.String("session", sessionID))
	return nil
}
