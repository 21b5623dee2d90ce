// Package vmengine implements MonDot's stack-based virtual machine
// (spec §4.2): a shared evaluation stack across call frames, three
// call dispatch modes (static, dynamic, host), and bounds-safe
// indexing so a malformed or hand-edited bytecode stream yields nil
// values or a VMTrap rather than a Go panic.
//
// Grounded on the teacher repo's internal/vm/vm.go CallFrame/stack
// shape (push/pop, OpCall/OpReturn), generalized to MonDot's three
// dispatch modes and to frame-floor-clamped pops instead of a panic
// on stack underflow.
package vmengine

import (
	"mondot/internal/bytecode"
	"mondot/internal/errors"
	"mondot/internal/host"
	"mondot/internal/value"
)

// VM executes compiled modules against a shared host bridge.
type VM struct {
	bridge *host.Bridge
}

func New(bridge *host.Bridge) *VM {
	return &VM{bridge: bridge}
}

// frame is one activation record: its own local slots, an instruction
// pointer into its function's code, and a floor marking where its
// portion of the shared eval stack begins.
type frame struct {
	mod    *bytecode.Module
	fn     *bytecode.Function
	locals []value.Value
	ip     int
	floor  int
}

// execState is the per-invocation run: one eval stack shared by every
// frame pushed during the call, per spec §4.2.
type execState struct {
	bridge *host.Bridge
	stack  []value.Value
	frames []*frame
}

// ExecuteHandler runs the named handler to completion and returns its
// result. A module with no such handler, or a handler whose bytecode
// misbehaves, yields a VMTrap rather than propagating a Go panic —
// the recover here is the last line of defense behind the interpreter
// loop's own bounds checks.
func (vm *VM) ExecuteHandler(mod *bytecode.Module, handlerName string, args []value.Value) (result value.Value, err error) {
	fn := mod.HandlerFunc(handlerName)
	if fn == nil {
		return value.Nil, errors.NewVMTrap(mod.Name, handlerName, "no such handler")
	}

	mod.Enter()
	defer mod.Exit()

	defer func() {
		if r := recover(); r != nil {
			result = value.Nil
			err = errors.NewVMTrap(mod.Name, handlerName, "trap: %v", r)
		}
	}()

	st := &execState{bridge: vm.bridge}
	st.pushFrame(mod, fn, args)
	return st.run()
}

func (st *execState) pushFrame(mod *bytecode.Module, fn *bytecode.Function, args []value.Value) *frame {
	locals := make([]value.Value, len(fn.Locals))
	for i := range locals {
		locals[i] = value.Nil
	}
	for i, a := range args {
		slot := i + 1 // slot 0 is always the reserved scratch local
		if slot < len(locals) {
			locals[slot] = a
		}
	}
	fr := &frame{mod: mod, fn: fn, locals: locals, ip: 0, floor: len(st.stack)}
	st.frames = append(st.frames, fr)
	return fr
}

func (st *execState) top() *frame { return st.frames[len(st.frames)-1] }

func (st *execState) push(v value.Value) { st.stack = append(st.stack, v) }

// pop returns the top value, or Nil if the current frame's portion of
// the stack is already empty — a trap-free response to a malformed
// instruction stream, per spec §4.2.
func (st *execState) pop() value.Value {
	fr := st.top()
	if len(st.stack) <= fr.floor {
		return value.Nil
	}
	v := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	return v
}

// popN pops n values in push order (first-pushed first in the result).
func (st *execState) popN(n int) []value.Value {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = st.pop()
	}
	return out
}

func constAt(fn *bytecode.Function, idx int) value.Value {
	if idx < 0 || idx >= len(fn.Consts) {
		return value.Nil
	}
	return fn.Consts[idx]
}

func localAt(locals []value.Value, idx int) value.Value {
	if idx < 0 || idx >= len(locals) {
		return value.Nil
	}
	return locals[idx]
}

func setLocal(locals []value.Value, idx int, v value.Value) {
	if idx < 0 || idx >= len(locals) {
		return
	}
	locals[idx] = v
}

// run drives the fetch-dispatch loop until the outermost frame
// returns, then yields its return value.
func (st *execState) run() (value.Value, error) {
	var finalResult value.Value

	for len(st.frames) > 0 {
		fr := st.top()
		if fr.ip < 0 || fr.ip >= len(fr.fn.Code) {
			// Falling off the end of a function body without hitting an
			// explicit ret cannot happen once the compiler's synthesized
			// trailing return is in place; an out-of-range ip from a
			// hand-edited bytecode stream is treated as a return of nil
			// instead of panicking.
			st.frames = st.frames[:len(st.frames)-1]
			st.stack = st.stack[:fr.floor]
			finalResult = value.Nil
			if len(st.frames) > 0 {
				st.push(finalResult)
			}
			continue
		}

		ins := fr.fn.Code[fr.ip]
		switch ins.Op {
		case bytecode.OpPushConst:
			st.push(constAt(fr.fn, ins.A))
			fr.ip++

		case bytecode.OpPushLocal:
			st.push(localAt(fr.locals, ins.A))
			fr.ip++

		case bytecode.OpStoreLocal:
			v := st.pop()
			setLocal(fr.locals, ins.A, v)
			fr.ip++

		case bytecode.OpPop:
			n := ins.A
			if n <= 0 {
				n = 1
			}
			st.popN(n)
			fr.ip++

		case bytecode.OpJmp:
			fr.ip = ins.A

		case bytecode.OpJmpIfFalse:
			cond := st.pop()
			if cond.Truthy() {
				fr.ip++
			} else {
				fr.ip = ins.A
			}

		case bytecode.OpRet:
			ret := st.pop()
			st.stack = st.stack[:fr.floor]
			st.frames = st.frames[:len(st.frames)-1]
			if len(st.frames) == 0 {
				finalResult = ret
			} else {
				st.push(ret)
			}

		case bytecode.OpCall:
			if err := st.dispatchCall(fr, ins); err != nil {
				return value.Nil, err
			}

		default:
			return value.Nil, errors.NewVMTrap(fr.mod.Name, fr.fn.Name, "unknown opcode %v", ins.Op)
		}
	}

	return finalResult, nil
}

// dispatchCall implements the three call modes carried in an OpCall
// instruction's B operand (spec §4.2, bytecode.CallHost/CallDynamic).
func (st *execState) dispatchCall(fr *frame, ins bytecode.Instruction) error {
	switch {
	case ins.B == bytecode.CallHost:
		args := st.popN(ins.A)
		result := st.bridge.Invoke(ins.Name, args)
		st.push(result)
		fr.ip++
		return nil

	case ins.B == bytecode.CallDynamic:
		callee := st.pop()
		args := st.popN(ins.A)
		idx := -1
		if callee.IsNumber() {
			idx = int(callee.AsNumber())
		}
		if idx < 0 || idx >= len(fr.mod.Functions) {
			st.push(value.Nil)
			fr.ip++
			return nil
		}
		fr.ip++ // resume here once the callee frame returns
		st.pushFrame(fr.mod, fr.mod.Functions[idx], args)
		return nil

	case ins.B >= 0:
		args := st.popN(ins.A)
		if ins.B >= len(fr.mod.Functions) {
			return errors.NewVMTrap(fr.mod.Name, fr.fn.Name, "static call target %d out of range", ins.B)
		}
		fr.ip++
		st.pushFrame(fr.mod, fr.mod.Functions[ins.B], args)
		return nil

	default:
		return errors.NewVMTrap(fr.mod.Name, fr.fn.Name, "malformed call dispatch mode %d", ins.B)
	}
}
