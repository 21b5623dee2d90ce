package bytecode

import "mondot/internal/value"

// Function owns a constant pool, an ordered list of local slot names,
// and an instruction stream. Slot indices are stable within a
// function; parameters occupy the slots right after the reserved
// scratch slot 0, in declaration order, per spec §3.
type Function struct {
	Name   string
	Consts []value.Value
	Locals []string
	Code   []Instruction
}

// NewFunction returns an empty function with slot zero reserved as
// the compiler's scratch temporary, per spec §4.1.
func NewFunction(name string) *Function {
	return &Function{
		Name:   name,
		Consts: nil,
		Locals: []string{"__scratch"},
		Code:   nil,
	}
}

// AddConst appends v to the constant pool and returns its index.
func (f *Function) AddConst(v value.Value) int {
	f.Consts = append(f.Consts, v)
	return len(f.Consts) - 1
}

// AddLocal appends a new named slot and returns its index.
func (f *Function) AddLocal(name string) int {
	f.Locals = append(f.Locals, name)
	return len(f.Locals) - 1
}

// Emit appends an instruction and returns its index within Code, so
// callers can patch jump operands once a target is known.
func (f *Function) Emit(ins Instruction) int {
	f.Code = append(f.Code, ins)
	return len(f.Code) - 1
}

// PatchA overwrites the A operand of the instruction at idx. Used to
// back-patch forward jump targets once the landing index is known.
func (f *Function) PatchA(idx, a int) {
	f.Code[idx].A = a
}
