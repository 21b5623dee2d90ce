package host

// NewDefaultBridge returns a Bridge with the full built-in library
// registered: core arithmetic/boolean primitives, string functions,
// I/O, and the embedded database. Callers needing a narrower host
// manifest (e.g. the compile-error scenario test of spec §8 item 6)
// should construct with New and register selectively.
func NewDefaultBridge() *Bridge {
	b := New()
	RegisterCoreFuncs(b)
	RegisterStrFuncs(b)
	RegisterIOFuncs(b)
	RegisterDBFuncs(b)
	return b
}
