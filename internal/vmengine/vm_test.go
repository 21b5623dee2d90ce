package vmengine

import (
	"testing"

	"mondot/internal/bytecode"
	"mondot/internal/host"
	"mondot/internal/value"
)

// TestRoundTripPushStoreLoadRet is spec §8's invariant test: executing
// push_const K; store_local L; push_local L; ret returns the constant
// at index K.
func TestRoundTripPushStoreLoadRet(t *testing.T) {
	fn := bytecode.NewFunction("T")
	k := fn.AddConst(value.Number(42))
	l := fn.AddLocal("x")
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushConst, A: k})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpStoreLocal, A: l})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushLocal, A: l})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	mod := &bytecode.Module{Name: "U", Functions: []*bytecode.Function{fn}, HandlerIndex: map[string]int{"T": 0}}
	vm := New(host.New())
	result, err := vm.ExecuteHandler(mod, "T", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNumber() || result.AsNumber() != 42 {
		t.Errorf("expected 42, got %v", result)
	}
}

func TestOutOfRangeConstAndLocalYieldNil(t *testing.T) {
	fn := bytecode.NewFunction("T")
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushConst, A: 99})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPop, A: 1})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushLocal, A: 99})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	mod := &bytecode.Module{Name: "U", Functions: []*bytecode.Function{fn}, HandlerIndex: map[string]int{"T": 0}}
	vm := New(host.New())
	result, err := vm.ExecuteHandler(mod, "T", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNil() {
		t.Errorf("expected nil for out-of-range local, got %v", result)
	}
}

func TestStackUnderflowClampsAtFrameFloor(t *testing.T) {
	fn := bytecode.NewFunction("T")
	// pop more than was ever pushed; ret should see nil, not panic.
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPop, A: 3})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	mod := &bytecode.Module{Name: "U", Functions: []*bytecode.Function{fn}, HandlerIndex: map[string]int{"T": 0}}
	vm := New(host.New())
	result, err := vm.ExecuteHandler(mod, "T", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNil() {
		t.Errorf("expected nil return on stack underflow, got %v", result)
	}
}

func TestHostCallDispatch(t *testing.T) {
	b := host.New()
	host.RegisterCoreFuncs(b)

	fn := bytecode.NewFunction("T")
	a := fn.AddConst(value.Number(2))
	c := fn.AddConst(value.Number(3))
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushConst, A: a})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpPushConst, A: c})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpCall, A: 2, B: bytecode.CallHost, Name: "add"})
	fn.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	mod := &bytecode.Module{Name: "U", Functions: []*bytecode.Function{fn}, HandlerIndex: map[string]int{"T": 0}}
	vm := New(b)
	result, err := vm.ExecuteHandler(mod, "T", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AsNumber() != 5 {
		t.Errorf("expected 5, got %v", result)
	}
}

func TestStaticCallBetweenFunctions(t *testing.T) {
	callee := bytecode.NewFunction("callee")
	k := callee.AddConst(value.Number(7))
	callee.Emit(bytecode.Instruction{Op: bytecode.OpPushConst, A: k})
	callee.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	caller := bytecode.NewFunction("caller")
	caller.Emit(bytecode.Instruction{Op: bytecode.OpCall, A: 0, B: 1}) // static call to function index 1
	caller.Emit(bytecode.Instruction{Op: bytecode.OpRet})

	mod := &bytecode.Module{
		Name:         "U",
		Functions:    []*bytecode.Function{caller, callee},
		HandlerIndex: map[string]int{"T": 0},
	}
	vm := New(host.New())
	result, err := vm.ExecuteHandler(mod, "T", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AsNumber() != 7 {
		t.Errorf("expected 7, got %v", result)
	}
}

func TestUnknownHandlerTraps(t *testing.T) {
	mod := &bytecode.Module{Name: "U", HandlerIndex: map[string]int{}}
	vm := New(host.New())
	_, err := vm.ExecuteHandler(mod, "Missing", nil)
	if err == nil {
		t.Fatal("expected a trap for an unknown handler")
	}
}

func TestActiveCallsAccountingAroundExecution(t *testing.T) {
	fn := bytecode.NewFunction("T")
	fn.Emit(bytecode.Instruction{Op: bytecode.OpRet})
	mod := &bytecode.Module{Name: "U", Functions: []*bytecode.Function{fn}, HandlerIndex: map[string]int{"T": 0}}

	vm := New(host.New())
	if !mod.Quiescent() {
		t.Fatal("module should start quiescent")
	}
	if _, err := vm.ExecuteHandler(mod, "T", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mod.Quiescent() {
		t.Error("module should return to quiescent after the handler returns")
	}
}
