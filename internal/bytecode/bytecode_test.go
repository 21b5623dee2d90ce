package bytecode

import (
	"testing"

	"mondot/internal/value"
)

func TestFunctionScratchSlotReserved(t *testing.T) {
	fn := NewFunction("T")
	if len(fn.Locals) != 1 || fn.Locals[0] != "__scratch" {
		t.Fatalf("expected slot 0 reserved as __scratch, got %v", fn.Locals)
	}
	idx := fn.AddLocal("x")
	if idx != 1 {
		t.Errorf("first user local should land at slot 1, got %d", idx)
	}
}

func TestEmitAndPatch(t *testing.T) {
	fn := NewFunction("T")
	j := fn.Emit(Instruction{Op: OpJmp, A: 0})
	fn.Emit(Instruction{Op: OpRet})
	fn.PatchA(j, len(fn.Code))
	if fn.Code[j].A != len(fn.Code) {
		t.Errorf("PatchA did not update operand: %+v", fn.Code[j])
	}
}

func TestModuleActiveCallsAccounting(t *testing.T) {
	m := &Module{Name: "U", HandlerIndex: map[string]int{}}
	if !m.Quiescent() {
		t.Fatal("fresh module should be quiescent")
	}
	m.Enter()
	m.Enter()
	if m.Quiescent() {
		t.Fatal("module with active calls should not be quiescent")
	}
	m.Exit()
	if m.Quiescent() {
		t.Fatal("module with one remaining active call should not be quiescent")
	}
	m.Exit()
	if !m.Quiescent() {
		t.Fatal("module should be quiescent after all calls exit")
	}
}

func TestHandlerFuncBounds(t *testing.T) {
	m := &Module{
		Name:         "U",
		Functions:    []*Function{NewFunction("T")},
		HandlerIndex: map[string]int{"T": 0, "Bogus": 5},
	}
	if m.HandlerFunc("T") == nil {
		t.Error("expected to resolve handler T")
	}
	if m.HandlerFunc("Bogus") != nil {
		t.Error("out-of-range handler index should resolve to nil, not panic")
	}
	if m.HandlerFunc("Missing") != nil {
		t.Error("unknown handler name should resolve to nil")
	}
}

func TestSnapshotRoundTripsConsts(t *testing.T) {
	fn := NewFunction("T")
	fn.AddConst(value.Number(5))
	fn.AddConst(value.String("hi"))
	m := &Module{
		Name:         "U",
		Version:      "v1",
		Functions:    []*Function{fn},
		HandlerIndex: map[string]int{"T": 0},
	}
	snap := ToSnapshot(m)
	if snap.Name != "U" || snap.Version != "v1" {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if len(snap.Functions) != 1 || len(snap.Functions[0].Consts) != 2 {
		t.Fatalf("unexpected snapshot functions: %+v", snap.Functions)
	}
	if snap.Functions[0].Consts[1].Str != "hi" {
		t.Errorf("expected second const to round-trip as %q, got %q", "hi", snap.Functions[0].Consts[1].Str)
	}
}
