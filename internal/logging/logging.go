// Package logging provides MonDot's mutex-serialized terminal
// output. Spec §5 requires standard output to be serialized so
// concurrent host `print` calls from different frames never
// interleave bytes; the driver's compile/trap/fault reporting shares
// the same writer for the same reason.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	info             = color.New(color.FgCyan)
	warn             = color.New(color.FgYellow)
	errc             = color.New(color.FgRed, color.Bold)
	trapc            = color.New(color.FgMagenta, color.Bold)
	plain            = color.New(color.Reset)
)

// SetOutput redirects log output; primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func Info(format string, args ...interface{}) {
	emit(info, "INFO", format, args...)
}

func Warn(format string, args ...interface{}) {
	emit(warn, "WARN", format, args...)
}

func Error(format string, args ...interface{}) {
	emit(errc, "ERROR", format, args...)
}

func Trap(format string, args ...interface{}) {
	emit(trapc, "TRAP", format, args...)
}

// Print writes a raw, unprefixed line — the sink for the host
// bridge's io.print function.
func Print(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

func emit(c *color.Color, level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	c.Fprintf(out, "[%s] ", level)
	plain.Fprintln(out, msg)
}
