package session

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/cmd/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"sync/atomic"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Lock contention test against the configured store",
		Long:    "Starts several workers that repeatedly lock, update and release a small set of records and reports the throughput and the number of conflicts.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__perf"
	perfNumThreads = 10
	perfKeySpread  = 10
	perfDuration   = 5 * time.Second
)

func init() {
	key := "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("How many different records the workers compete for"))
	key = "duration"
	perfTestCmd.Flags().Duration(key, 5*time.Second, util.WrapString("How long the test runs"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNumThreads = viper.GetInt("threads")
	perfKeySpread = viper.GetInt("keys")
	perfDuration = viper.GetDuration("duration")

	if perfNumThreads < 1 || perfKeySpread < 1 {
		return fmt.Errorf("threads and keys must be at least 1")
	}
	return nil
}

type perfStats struct {
	acquired  atomic.Int64
	conflicts atomic.Int64
	updated   atomic.Int64
	failed    atomic.Int64
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Lock contention test")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conn.Config.String())
	fmt.Printf("Threads: %d, Records: %d, Duration: %s\n\n", perfNumThreads, perfKeySpread, perfDuration)

	ctx, cancel := context.WithTimeout(context.Background(), perfDuration)
	defer cancel()

	stats := &perfStats{}
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < perfNumThreads; w++ {
		g.Go(func() error {
			perfWorker(ctx, w, stats)
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// cleanup
	for i := 0; i < perfKeySpread; i++ {
		id := perfKey(i)
		state, err := lockMgr.TryCheckWriteLockAndGetData(context.Background(), id)
		if err != nil {
			continue
		}
		if state.Locked {
			_, _ = lockMgr.TryRemoveAndReleaseLock(context.Background(), id, state.Token)
		} else if res, err := lockMgr.TryTakeWriteLockAndGetData(context.Background(), id, time.Now(), leaseSec); err == nil && res.Acquired {
			_, _ = lockMgr.TryRemoveAndReleaseLock(context.Background(), id, res.Token)
		}
	}

	ops := stats.acquired.Load() + stats.conflicts.Load() + stats.updated.Load()
	fmt.Printf("%-20s%s\n", "operations", humanize.Comma(ops))
	fmt.Printf("%-20s%s ops/sec\n", "throughput", humanize.CommafWithDigits(float64(ops)/elapsed.Seconds(), 0))
	fmt.Printf("%-20s%s\n", "locks acquired", humanize.Comma(stats.acquired.Load()))
	fmt.Printf("%-20s%s\n", "conflicts", humanize.Comma(stats.conflicts.Load()))
	fmt.Printf("%-20s%s\n", "updates", humanize.Comma(stats.updated.Load()))
	fmt.Printf("%-20s%s\n", "failures", humanize.Comma(stats.failed.Load()))
	return nil
}

// perfWorker locks, updates and releases records until ctx is done
func perfWorker(ctx context.Context, worker int, stats *perfStats) {
	for i := worker; ctx.Err() == nil; i++ {
		id := perfKey(i % perfKeySpread)

		res, err := lockMgr.TryTakeWriteLockAndGetData(context.Background(), id, time.Now(), leaseSec)
		if err != nil {
			stats.failed.Add(1)
			continue
		}
		if !res.Acquired {
			stats.conflicts.Add(1)
			continue
		}
		stats.acquired.Add(1)

		counter, _, _ := res.Data.Get("counter")
		n, _ := counter.(int64)
		res.Data.Set("counter", n+1)
		res.Data.Set(fmt.Sprintf("worker-%d", worker), time.Now())

		if ok, err := lockMgr.TryUpdateAndReleaseLock(context.Background(), id, res.Token, res.Data, leaseSec); err != nil || !ok {
			stats.failed.Add(1)
			continue
		}
		stats.updated.Add(1)
	}
}

func perfKey(i int) string {
	return fmt.Sprintf("%s-%d", perfKeyPrefix, i)
}
