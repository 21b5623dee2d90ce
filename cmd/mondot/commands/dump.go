package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"mondot/internal/bytecode"
	"mondot/internal/watcher"
)

// newDumpCommand builds `mondot dump <scripts-dir>`, a SPEC_FULL.md
// addition (§9): compile every script once and write a msgpack
// snapshot of the resulting modules, the same artifact
// `--production` writes when production_dump_path is configured.
func newDumpCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "dump <scripts-dir>",
		Short: "compile every script once and write a msgpack bytecode snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			rt, err := newRuntime(dir)
			if err != nil {
				return err
			}
			w := watcherNew(rt)
			paths, err := w.Scan()
			if err != nil {
				return err
			}
			watcher.PublishBatch(paths, rt.bridge, rt.driver)

			if outPath == "" {
				outPath = "mondot.dump.msgpack"
			}
			return dumpModules(rt, outPath)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output path (default mondot.dump.msgpack)")
	return cmd
}

func watcherNew(rt *runtime) *watcher.Watcher {
	return watcher.New(rt.dir, rt.cfg.Extensions, 0)
}

// dumpModules writes every currently published module as a msgpack
// array of bytecode.Snapshot to path.
func dumpModules(rt *runtime, path string) error {
	var snapshots []bytecode.Snapshot
	for _, name := range rt.mgr.Names() {
		mod := rt.mgr.Get(name)
		if mod == nil {
			continue
		}
		snapshots = append(snapshots, bytecode.ToSnapshot(mod))
	}

	data, err := msgpack.Marshal(snapshots)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
