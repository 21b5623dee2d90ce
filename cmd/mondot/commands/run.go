package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mondot/internal/logging"
	"mondot/internal/watcher"
)

// runWatch is the implicit default mode (spec §6): scan once, publish
// every script found, then poll for changes until interrupted or a
// module's Finalize handler reports truthy.
func runWatch(dir string) (int, error) {
	rt, err := newRuntime(dir)
	if err != nil {
		return 1, err
	}
	rt.serveLiveReload()

	w := watcher.New(dir, rt.cfg.Extensions, time.Duration(rt.cfg.WatchIntervalMS)*time.Millisecond)
	initial, err := w.Scan()
	if err != nil {
		return 1, fmt.Errorf("initial scan: %w", err)
	}
	watcher.PublishBatch(initial, rt.bridge, rt.driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		w.Run(ctx, func(changed []string) {
			watcher.PublishBatch(changed, rt.bridge, rt.driver)
		})
		close(done)
	}()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			return 0, nil
		case <-ticker.C:
			rt.driver.TickReclaim()
			if rt.driver.Finalize() {
				logging.Info("finalize signaled stop, shutting down")
				stop()
				<-done
				return 0, nil
			}
		}
	}
}

// runProduction performs a single initial scan and publish, then
// exits (spec §6: "--production performs a single initial scan and
// exits").
func runProduction(dir string) (int, error) {
	rt, err := newRuntime(dir)
	if err != nil {
		return 1, err
	}
	w := watcher.New(dir, rt.cfg.Extensions, time.Duration(rt.cfg.WatchIntervalMS)*time.Millisecond)
	paths, err := w.Scan()
	if err != nil {
		return 1, err
	}
	watcher.PublishBatch(paths, rt.bridge, rt.driver)

	if rt.cfg.ProductionDumpPath != "" {
		if err := dumpModules(rt, rt.cfg.ProductionDumpPath); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

// runTest compiles and publishes every script once, then runs UTest
// over every loaded module. Exit code 2 when any test fails, per
// spec §6.
func runTest(dir string) (int, error) {
	rt, err := newRuntime(dir)
	if err != nil {
		return 1, err
	}
	w := watcher.New(dir, rt.cfg.Extensions, time.Duration(rt.cfg.WatchIntervalMS)*time.Millisecond)
	paths, err := w.Scan()
	if err != nil {
		return 1, err
	}
	watcher.PublishBatch(paths, rt.bridge, rt.driver)

	results := rt.driver.RunTests()
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			logging.Error("%s: UTest error: %s", r.Module, r.Err)
			failed++
			continue
		}
		if r.Passed {
			logging.Info("%s: UTest passed", r.Module)
		} else {
			logging.Warn("%s: UTest failed", r.Module)
			failed++
		}
	}
	if failed > 0 {
		return 2, nil
	}
	return 0, nil
}

// runBenchmark compiles and publishes every script once, then runs
// UBenchmark over every loaded module and reports elapsed time.
func runBenchmark(dir string) (int, error) {
	rt, err := newRuntime(dir)
	if err != nil {
		return 1, err
	}
	w := watcher.New(dir, rt.cfg.Extensions, time.Duration(rt.cfg.WatchIntervalMS)*time.Millisecond)
	paths, err := w.Scan()
	if err != nil {
		return 1, err
	}
	watcher.PublishBatch(paths, rt.bridge, rt.driver)

	for _, r := range rt.driver.RunBenchmarks() {
		if r.Err != nil {
			logging.Error("%s: UBenchmark error: %s", r.Module, r.Err)
			continue
		}
		logging.Info("%s: UBenchmark %.3fms -> %s", r.Module, r.ElapsedMS, r.ReturnValue.String())
	}
	return 0, nil
}
