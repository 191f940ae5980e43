package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/reflow-ui/reflow/pkg/hooks"
	"github.com/reflow-ui/reflow/pkg/runtime"
)

func benchCmd() *cobra.Command {
	var (
		cycles    int
		effects   int
		memos     int
		jsonStats bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure render/commit cycle throughput",
		Long: `Bench mounts a synthetic component and drives full render/commit
cycles through the loop driver, reporting cycle latency percentiles.

The component carries one state slot plus the configured number of memo
and effect slots, all keyed on the state value so every cycle recomputes
and re-runs everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cycles, memos, effects, jsonStats)
		},
	}

	cmd.Flags().IntVarP(&cycles, "cycles", "n", 10000, "Number of render/commit cycles")
	cmd.Flags().IntVar(&memos, "memos", 8, "Memo slots in the synthetic component")
	cmd.Flags().IntVar(&effects, "effects", 8, "Effect slots in the synthetic component")
	cmd.Flags().BoolVar(&jsonStats, "json", false, "Print stats as JSON")

	return cmd
}

func runBench(cycles, memos, effects int, jsonStats bool) error {
	driver := runtime.NewLoopDriver()
	rt := runtime.New(runtime.WithScheduler(driver))

	var dispatch *hooks.Dispatch[int]
	var effectRuns int

	inst := rt.Mount(func(ctx *runtime.Ctx) {
		n, d := hooks.UseState(ctx, 0)
		dispatch = d

		acc := n
		for i := 0; i < memos; i++ {
			acc = hooks.UseMemo(ctx, func() int { return acc + 1 }, hooks.Deps{acc})
		}

		for i := 0; i < effects; i++ {
			phase := hooks.UseEffect
			if i%2 == 0 {
				phase = hooks.UseLayoutEffect
			}
			phase(ctx, func() hooks.Cleanup {
				effectRuns++
				return nil
			}, hooks.Deps{n})
		}
	})
	defer inst.Unmount()

	// Mount cycle, outside the measurement.
	if err := driver.Cycle(inst); err != nil {
		return err
	}

	latencies := make([]time.Duration, 0, cycles)
	start := time.Now()
	for i := 0; i < cycles; i++ {
		dispatch.Update(func(n int) int { return n + 1 })
		t0 := time.Now()
		if err := driver.Flush(); err != nil {
			return err
		}
		latencies = append(latencies, time.Since(t0))
	}
	elapsed := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p := func(q float64) time.Duration {
		idx := int(q * float64(len(latencies)-1))
		return latencies[idx]
	}

	if jsonStats {
		fmt.Printf(`{"cycles":%d,"elapsed_ms":%d,"cycles_per_sec":%.0f,"p50_us":%d,"p99_us":%d,"effect_runs":%d}%s`,
			cycles, elapsed.Milliseconds(), float64(cycles)/elapsed.Seconds(),
			p(0.50).Microseconds(), p(0.99).Microseconds(), effectRuns, "\n")
		return nil
	}

	fmt.Printf("cycles:         %d\n", cycles)
	fmt.Printf("elapsed:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("cycles/sec:     %.0f\n", float64(cycles)/elapsed.Seconds())
	fmt.Printf("p50 latency:    %s\n", p(0.50))
	fmt.Printf("p99 latency:    %s\n", p(0.99))
	fmt.Printf("effect runs:    %d\n", effectRuns)
	return nil
}
