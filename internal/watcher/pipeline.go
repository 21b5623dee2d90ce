package watcher

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"mondot/internal/bytecode"
	"mondot/internal/compiler"
	"mondot/internal/host"
	"mondot/internal/lexer"
	"mondot/internal/lifecycle"
	"mondot/internal/logging"
	"mondot/internal/parser"
)

// CompileFile reads path, lexes and parses it into however many units
// the grammar finds (a program is a sequence of units), and compiles
// each into a module against bridge's host manifest.
func CompileFile(path string, bridge *host.Bridge) ([]*bytecode.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lx := lexer.New(string(src))
	tokens := lx.ScanTokens()
	if errs := lx.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("lex %s: %w", path, errs[0])
	}

	ps := parser.New(tokens)
	units := ps.ParseProgram()
	if errs := ps.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parse %s: %w", path, errs[0])
	}

	mods := make([]*bytecode.Module, 0, len(units))
	for _, u := range units {
		cmp := compiler.New(bridge)
		mod, cErr := cmp.Compile(u)
		if cErr != nil {
			return nil, fmt.Errorf("compile %s: %w", path, cErr)
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// PublishBatch compiles every changed path concurrently (compilation
// touches only its own AST and the read-only host manifest, so
// independent files never contend) and publishes every resulting
// module through driver. A compile failure for one file is logged and
// skipped; per spec §7, the prior published version of any module the
// file previously defined remains in place.
func PublishBatch(paths []string, bridge *host.Bridge, driver *lifecycle.Driver) {
	results := make([][]*bytecode.Module, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			mods, err := CompileFile(path, bridge)
			if err != nil {
				logging.Error("%s", err)
				return nil
			}
			results[i] = mods
			return nil
		})
	}
	_ = g.Wait()

	for _, mods := range results {
		for _, mod := range mods {
			if _, err := driver.Publish(mod); err != nil {
				logging.Error("%s", err)
			}
		}
	}
}
