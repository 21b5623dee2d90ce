package host

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"

	"mondot/internal/value"
)

// dbHost owns the single per-process embedded database backing the
// db.* host functions. This is a supplemented feature (SPEC_FULL.md
// §5): original_source only wires numeric/string/I/O helpers, but
// the host bridge is explicitly open-ended, and a scripting runtime
// that outlives a single handler invocation benefits from a
// persistence primitive beyond flat files.
type dbHost struct {
	mu sync.Mutex
	db *sql.DB
}

// RegisterDBFuncs installs db.open, db.exec and db.query_scalar,
// backed by a pure-Go sqlite driver so the module never requires
// cgo. Failures follow the host bridge's lenient contract: bad SQL
// or a missing connection yields nil/false rather than propagating
// an error through the VM.
func RegisterDBFuncs(b *Bridge) {
	h := &dbHost{}

	b.Register("db.open", func(args []value.Value) value.Value {
		path := ":memory:"
		if len(args) == 1 && args[0].IsString() && args[0].AsString() != "" {
			path = args[0].AsString()
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return value.Bool(false)
		}
		if h.db != nil {
			h.db.Close()
		}
		h.db = db
		return value.Bool(true)
	})

	b.Register("db.exec", func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsString() {
			return value.Bool(false)
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.db == nil {
			return value.Bool(false)
		}
		_, err := h.db.Exec(args[0].AsString())
		return value.Bool(err == nil)
	})

	b.Register("db.query_scalar", func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsString() {
			return value.Nil
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.db == nil {
			return value.Nil
		}
		row := h.db.QueryRow(args[0].AsString())
		var out interface{}
		if err := row.Scan(&out); err != nil {
			return value.Nil
		}
		switch v := out.(type) {
		case int64:
			return value.Number(float64(v))
		case float64:
			return value.Number(v)
		case string:
			return value.String(v)
		case []byte:
			return value.String(string(v))
		default:
			return value.Nil
		}
	})
}
