// Command dramsimgo drives a dram.MemorySystem from a trace file or a
// random transaction generator for a fixed number of cycles and logs the
// cycle count and the number of completed requests at the end; with
// --metrics-addr it also serves the command and background-cycle
// counters over /metrics. It follows the small cobra-based front ends
// the corpus builds around its simulation cores.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user-none/go-dramsim/config"
	"github.com/user-none/go-dramsim/dram"
	"github.com/user-none/go-dramsim/stats"
	"github.com/user-none/go-dramsim/trace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dramsimgo",
		Short: "Cycle-accurate DRAM memory subsystem simulator",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		configPath  string
		tracePath   string
		cycles      uint64
		randomSeed  int64
		writeFrac   float64
		spaceMB     uint64
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation from a config file and a trace (or random) transaction stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()
			dram.SetLogger(logger.Sugar())

			params, err := config.Load(configPath)
			if err != nil {
				return err
			}

			collector := stats.NewCollector("0")
			if metricsAddr != "" {
				prometheus.MustRegister(collector)
				go serveMetrics(metricsAddr, logger)
			}

			var completed uint64
			cb := dram.Callbacks{
				ReadDone:  makeDoneCallback(&completed),
				WriteDone: makeDoneCallback(&completed),
			}
			ms := dram.NewMemorySystem(params, collector, cb)

			if params.ValidationOutputPath != "" {
				traceFile, err := os.Create(params.ValidationOutputPath)
				if err != nil {
					return err
				}
				defer traceFile.Close()
				tw := trace.NewWriter(traceFile)
				defer tw.Flush()
				ms.SetTracer(tw)
			}

			var source func() (uint64, bool, bool) // returns (addr, isWrite, ok)
			if tracePath != "" {
				f, err := os.Open(tracePath)
				if err != nil {
					return err
				}
				defer f.Close()
				txns, err := trace.ReadFile(f)
				if err != nil {
					return err
				}
				idx := 0
				source = func() (uint64, bool, bool) {
					if idx >= len(txns) {
						return 0, false, false
					}
					t := txns[idx]
					idx++
					return t.Addr, t.IsWrite, true
				}
			} else {
				gen := trace.NewRandomGenerator(randomSeed, spaceMB<<20, writeFrac)
				source = func() (uint64, bool, bool) {
					t := gen.Next()
					return t.Addr, t.IsWrite, true
				}
			}

			var clk uint64
			var pendingAddr uint64
			var pendingWrite bool
			havePending := false
			for clk = 0; clk < cycles; clk++ {
				if !havePending {
					addr, isWrite, ok := source()
					if ok {
						pendingAddr, pendingWrite, havePending = addr, isWrite, true
					}
				}
				if havePending && ms.WillAcceptTransaction(pendingAddr) {
					if _, ok := ms.AddTransaction(pendingAddr, pendingWrite, clk); ok {
						havePending = false
					}
				}
				ms.ClockTick()
			}

			logger.Sugar().Infow("simulation complete",
				"cycles", cycles, "completed_requests", completed)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the INI configuration file")
	cmd.Flags().StringVar(&tracePath, "trace", "", "path to a trace file (if empty, generate random transactions)")
	cmd.Flags().Uint64Var(&cycles, "cycles", 100000, "number of DRAM cycles to simulate")
	cmd.Flags().Int64Var(&randomSeed, "seed", 1, "random generator seed")
	cmd.Flags().Float64Var(&writeFrac, "write-fraction", 0.3, "fraction of random transactions that are writes")
	cmd.Flags().Uint64Var(&spaceMB, "space-mb", 1024, "address space size for the random generator, in megabytes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")
	cmd.MarkFlagRequired("config")

	return cmd
}

func makeDoneCallback(completed *uint64) func(id uint64) {
	return func(id uint64) {
		*completed++
	}
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Sugar().Errorw("metrics server exited", "error", err)
	}
}
