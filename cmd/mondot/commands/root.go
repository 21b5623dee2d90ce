// Package commands assembles the mondot command-line surface with
// spf13/cobra, following the teacher repo's thin command functions
// that delegate into internal packages.
package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"mondot/internal/config"
	"mondot/internal/host"
	"mondot/internal/lifecycle"
	"mondot/internal/livereload"
	"mondot/internal/logging"
	"mondot/internal/module"
	"mondot/internal/vmengine"
)

// runtime bundles the subsystems every run mode needs, constructed
// once per invocation.
type runtime struct {
	dir      string
	cfg      config.Config
	bridge   *host.Bridge
	mgr      *module.Manager
	vm       *vmengine.VM
	driver   *lifecycle.Driver
	reloader *livereload.Broadcaster
}

func newRuntime(dir string) (*runtime, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	bridge := host.NewDefaultBridge()
	mgr := module.New()
	vm := vmengine.New(bridge)
	driver := lifecycle.New(mgr, vm)

	rt := &runtime{dir: dir, cfg: cfg, bridge: bridge, mgr: mgr, vm: vm, driver: driver}
	if cfg.LiveReloadAddr != "" {
		rt.reloader = livereload.New()
		mgr.OnPublish(rt.reloader.OnPublish)
	}
	return rt, nil
}

// serveLiveReload starts the live-reload WebSocket listener in the
// background when configured, returning immediately. It is a no-op
// when LiveReloadAddr is unset.
func (rt *runtime) serveLiveReload() {
	if rt.reloader == nil {
		return
	}
	addr := rt.cfg.LiveReloadAddr
	go func() {
		if err := http.ListenAndServe(addr, rt.reloader); err != nil {
			logging.Error("live-reload listener on %s: %s", addr, err)
		}
	}()
}

// Execute builds the root command, runs it, and returns the process
// exit code per spec §6: 0 on success, 1 on usage or run error, 2 when
// --test reports any failure.
func Execute() int {
	exitCode := 0

	var testMode, benchMode, productionMode bool
	root := &cobra.Command{
		Use:          "mondot <scripts-dir>",
		Short:        "MonDot embedded scripting runtime",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			var code int
			var err error
			switch {
			case testMode:
				code, err = runTest(dir)
			case benchMode:
				code, err = runBenchmark(dir)
			case productionMode:
				code, err = runProduction(dir)
			default:
				code, err = runWatch(dir)
			}
			exitCode = code
			return err
		},
	}

	root.Flags().BoolVar(&testMode, "test", false, "run UTest over every loaded module and exit")
	root.Flags().BoolVar(&benchMode, "benchmark", false, "run UBenchmark over every loaded module and exit")
	root.Flags().BoolVar(&productionMode, "production", false, "compile once, publish, and exit without watching")

	root.AddCommand(newDumpCommand())

	if err := root.Execute(); err != nil {
		logging.Error("%s", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}
