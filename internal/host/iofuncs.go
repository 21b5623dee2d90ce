package host

import (
	"os"
	"time"

	"mondot/internal/logging"
	"mondot/internal/value"
)

// RegisterIOFuncs installs io.print, read_file, write_file and sleep.
// Per spec §7 item 5, a missing/unreadable file yields an empty
// string and a failed write yields false, rather than propagating an
// error through the VM.
func RegisterIOFuncs(b *Bridge) {
	b.Register("io.print", func(args []value.Value) value.Value {
		var line string
		for i, a := range args {
			if i > 0 {
				line += " "
			}
			line += a.String()
		}
		logging.Print(line)
		return value.Nil
	})

	b.Register("read_file", func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsString() {
			return value.String("")
		}
		data, err := os.ReadFile(args[0].AsString())
		if err != nil {
			return value.String("")
		}
		return value.String(string(data))
	})

	b.Register("write_file", func(args []value.Value) value.Value {
		if len(args) != 2 || !args[0].IsString() || !args[1].IsString() {
			return value.Bool(false)
		}
		err := os.WriteFile(args[0].AsString(), []byte(args[1].AsString()), 0o644)
		return value.Bool(err == nil)
	})

	b.Register("sleep", func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsNumber() {
			return value.Nil
		}
		ms := args[0].AsNumber()
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return value.Nil
	})
}
