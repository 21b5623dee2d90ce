// Command mondot watches a directory of scripts, compiles them to
// bytecode, and hot-swaps modules into a running virtual machine.
package main

import (
	"os"

	"mondot/cmd/mondot/commands"
)

func main() {
	os.Exit(commands.Execute())
}
