package bytecode

import "mondot/internal/value"

// Snapshot is the msgpack-serializable projection of a Module used by
// the `mondot dump` command and the --production snapshot artifact
// (SPEC_FULL.md §9). Module itself is not directly serializable
// because it carries an atomic counter; Snapshot copies out only the
// immutable, compiler-produced parts.
type Snapshot struct {
	Name         string             `msgpack:"name"`
	Version      string             `msgpack:"version"`
	HandlerIndex map[string]int     `msgpack:"handler_index"`
	Functions    []FunctionSnapshot `msgpack:"functions"`
}

type FunctionSnapshot struct {
	Name   string                `msgpack:"name"`
	Consts []ConstSnapshot       `msgpack:"consts"`
	Locals []string              `msgpack:"locals"`
	Code   []InstructionSnapshot `msgpack:"code"`
}

type ConstSnapshot struct {
	Tag    value.Tag `msgpack:"tag"`
	Number float64   `msgpack:"number,omitempty"`
	Str    string    `msgpack:"str,omitempty"`
}

type InstructionSnapshot struct {
	Op   OpCode `msgpack:"op"`
	A    int    `msgpack:"a"`
	B    int    `msgpack:"b"`
	Name string `msgpack:"name,omitempty"`
}

// ToSnapshot copies m into a serializable Snapshot.
func ToSnapshot(m *Module) Snapshot {
	s := Snapshot{
		Name:         m.Name,
		Version:      m.Version,
		HandlerIndex: m.HandlerIndex,
	}
	for _, fn := range m.Functions {
		fs := FunctionSnapshot{
			Name:   fn.Name,
			Locals: fn.Locals,
		}
		for _, c := range fn.Consts {
			cs := ConstSnapshot{Tag: c.Tag()}
			switch c.Tag() {
			case value.TagNumber:
				cs.Number = c.AsNumber()
			case value.TagString:
				cs.Str = c.AsString()
			case value.TagBool:
				if c.AsBool() {
					cs.Number = 1
				}
			}
			fs.Consts = append(fs.Consts, cs)
		}
		for _, ins := range fn.Code {
			fs.Code = append(fs.Code, InstructionSnapshot{
				Op: ins.Op, A: ins.A, B: ins.B, Name: ins.Name,
			})
		}
		s.Functions = append(s.Functions, fs)
	}
	return s
}
