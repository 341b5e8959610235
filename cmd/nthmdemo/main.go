// Command nthmdemo exercises a small pipe forest: a root procedure fans
// out a handful of workers, truncates one branch partway through, kills
// another outright, and waits for the whole tree to settle before
// printing a final report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pbnjay/memory"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/joeycumines/nthm"
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("nthmdemo: maxprocs.Set: %v", err)
	}

	var configPath string
	var dumpPath string
	flag.StringVar(&configPath, "config", "", "path to a RuntimeConfig TOML file (optional)")
	flag.StringVar(&dumpPath, "ledger-out", "", "path to write the error ledger on exit (optional)")
	flag.Parse()

	config := &nthm.RuntimeConfig{Logger: nthm.NewDefaultLogger(nthm.LevelInfo)}
	if configPath != "" {
		loaded, err := nthm.LoadRuntimeConfigFile(configPath)
		if err != nil {
			log.Fatalf("nthmdemo: loading config: %v", err)
		}
		loaded.Logger = config.Logger
		config = loaded
	}

	fmt.Printf("nthmdemo: %d MiB of system memory visible\n", memory.TotalMemory()/(1<<20))

	rt := nthm.New(config)
	root := rt.Root()

	results := make(chan string, 8)
	var group errgroup.Group

	group.Go(func() error {
		return runFanOut(root, results)
	})

	go func() {
		_ = group.Wait()
		close(results)
	}()

	for line := range results {
		fmt.Println(line)
	}

	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Sync(syncCtx); err != nil {
		log.Fatalf("nthmdemo: Sync: %v", err)
	}

	stats := rt.Stats()
	fmt.Printf("nthmdemo: final stats: pool=%d ledger=%d deadlocked=%v\n",
		stats.PoolSize, stats.LedgerLen, stats.Deadlocked)

	if dumpPath != "" {
		if err := rt.Ledger().DumpFile(dumpPath); err != nil {
			log.Fatalf("nthmdemo: dumping ledger: %v", err)
		}
	}
}

func runFanOut(root *nthm.Context, results chan<- string) error {
	if err := root.EnterScope(); err != nil {
		return err
	}
	defer root.ExitScope()

	var handles []*nthm.Pipe
	for i := 0; i < 4; i++ {
		i := i
		h, err := root.Open(func(ctx *nthm.Context) (any, error) {
			if i == 2 {
				// Enter a nested scope and truncate it, simulating a worker
				// that decides the rest of its own sub-work is moot.
				_ = ctx.EnterScope()
				_ = ctx.TruncateAll()
				_ = ctx.ExitScope()
			}
			time.Sleep(time.Duration(i) * 10 * time.Millisecond)
			return i * i, nil
		})
		if err != nil {
			return err
		}
		handles = append(handles, h)
	}

	if err := root.Kill(handles[3]); err != nil {
		return err
	}

	for i, h := range handles {
		result, status, err := root.Read(h)
		switch {
		case err != nil:
			results <- fmt.Sprintf("worker %d: %s", i, nthm.ErrorToString(kindOf(err)))
		case status != nil:
			results <- fmt.Sprintf("worker %d: status error: %v", i, status)
		default:
			results <- fmt.Sprintf("worker %d: result=%v", i, result)
		}
	}
	return nil
}

func kindOf(err error) nthm.Kind {
	if e, ok := err.(*nthm.Error); ok {
		return e.Kind
	}
	return nthm.KindSystem
}
