// Package compiler implements MonDot's single-pass bytecode compiler
// (spec §4.1): one lowering pass per handler, a local symbol
// environment scoped to that function, and jump back-patching for
// control flow.
//
// This consolidates what the teacher repo (sentra-language-sentra)
// splits across a separate expression compiler and statement
// compiler: MonDot's grammar has no closures and no user-level
// globals, so one pass over one symbol table is enough.
package compiler

import (
	"fmt"

	"mondot/internal/ast"
	"mondot/internal/bytecode"
	"mondot/internal/errors"
	"mondot/internal/host"
	"mondot/internal/value"
)

// Compiler lowers one ast.Unit into a bytecode.Module. It consults
// bridge.Has at compile time to validate unresolved call names
// against the host manifest (spec §4.3).
type Compiler struct {
	bridge   *host.Bridge
	unitName string
	err      *errors.MondotError

	// per-handler state, reset by compileHandler
	fn      *bytecode.Function
	locals  map[string]int
	foreach int // counter for unique hidden-local names across nested foreach loops
}

func New(bridge *host.Bridge) *Compiler {
	return &Compiler{bridge: bridge}
}

// Compile lowers unit into a Module whose function list mirrors the
// handler list in order, per spec §4.1. Compilation aborts on the
// first error (no source-level error recovery, per spec §1).
func (c *Compiler) Compile(unit *ast.Unit) (*bytecode.Module, error) {
	c.unitName = unit.Name
	mod := &bytecode.Module{
		Name:         unit.Name,
		HandlerIndex: make(map[string]int),
	}
	for _, h := range unit.Handlers {
		fn := c.compileHandler(h)
		if c.err != nil {
			return nil, c.err
		}
		idx := len(mod.Functions)
		mod.Functions = append(mod.Functions, fn)
		mod.HandlerIndex[h.Name] = idx
	}
	return mod, nil
}

func (c *Compiler) compileHandler(h *ast.Handler) *bytecode.Function {
	c.fn = bytecode.NewFunction(h.Name)
	c.locals = map[string]int{"__scratch": 0}
	c.foreach = 0

	for _, p := range h.Params {
		c.declareLocal(p)
	}
	for _, s := range h.Body {
		c.compileStmt(s)
		if c.err != nil {
			return c.fn
		}
	}
	// Handler body terminates with a synthesized return (spec §4.1),
	// guaranteeing a well-formed function even when every path already
	// returned explicitly.
	c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Nil), 0, "")
	c.emit(bytecode.OpRet, 0, 0, "")
	return c.fn
}

// declareLocal allocates a fresh slot for name, or returns the
// existing one — re-declaration via `local` reuses the slot per
// spec §4.1.
func (c *Compiler) declareLocal(name string) int {
	if idx, ok := c.locals[name]; ok {
		return idx
	}
	idx := c.fn.AddLocal(name)
	c.locals[name] = idx
	return idx
}

func (c *Compiler) fail(line int, format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	c.err = errors.NewCompileError(c.unitName, line, format, args...)
}

func (c *Compiler) emit(op bytecode.OpCode, a, b int, name string) int {
	return c.fn.Emit(bytecode.Instruction{Op: op, A: a, B: b, Name: name})
}

// --- statements ---

func (c *Compiler) compileStmt(s ast.Stmt) {
	if c.err != nil {
		return
	}
	switch st := s.(type) {
	case *ast.LocalDecl:
		c.compileLocalDecl(st)
	case *ast.Assign:
		c.compileAssign(st)
	case *ast.ExprStmt:
		c.compileExpr(st.Call)
		if c.err != nil {
			return
		}
		c.emit(bytecode.OpPop, 1, 0, "")
	case *ast.If:
		c.compileIf(st)
	case *ast.While:
		c.compileWhile(st)
	case *ast.Foreach:
		c.compileForeach(st)
	case *ast.Return:
		c.compileReturn(st)
	default:
		c.fail(0, "unsupported statement type %T", st)
	}
}

func (c *Compiler) compileLocalDecl(st *ast.LocalDecl) {
	if st.Value != nil {
		c.compileExpr(st.Value)
	} else {
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Nil), 0, "")
	}
	if c.err != nil {
		return
	}
	slot := c.declareLocal(st.Name)
	c.emit(bytecode.OpStoreLocal, slot, 0, "")
}

func (c *Compiler) compileAssign(st *ast.Assign) {
	slot, ok := c.locals[st.Name]
	if !ok {
		c.fail(st.Line, "assign to undeclared name %q", st.Name)
		return
	}
	c.compileExpr(st.Value)
	if c.err != nil {
		return
	}
	c.emit(bytecode.OpStoreLocal, slot, 0, "")
}

func (c *Compiler) compileReturn(st *ast.Return) {
	if st.Value != nil {
		c.compileExpr(st.Value)
	} else {
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Nil), 0, "")
	}
	if c.err != nil {
		return
	}
	c.emit(bytecode.OpRet, 0, 0, "")
}

// compileIf lowers an if/elseif*/else chain by emitting a
// jump-if-false placeholder before each branch's body and an
// unconditional jump to the merge point after it, patching every
// placeholder once the merge index is known (spec §4.1).
func (c *Compiler) compileIf(st *ast.If) {
	var exitJumps []int

	condJump := c.compileCondBranch(st.Cond, st.Then)
	if c.err != nil {
		return
	}
	exitJumps = append(exitJumps, c.emit(bytecode.OpJmp, 0, 0, ""))
	c.fn.PatchA(condJump, len(c.fn.Code))

	for _, ei := range st.ElseIfs {
		cj := c.compileCondBranch(ei.Cond, ei.Body)
		if c.err != nil {
			return
		}
		exitJumps = append(exitJumps, c.emit(bytecode.OpJmp, 0, 0, ""))
		c.fn.PatchA(cj, len(c.fn.Code))
	}

	for _, s := range st.Else {
		c.compileStmt(s)
		if c.err != nil {
			return
		}
	}

	merge := len(c.fn.Code)
	for _, j := range exitJumps {
		c.fn.PatchA(j, merge)
	}
}

// compileCondBranch compiles `cond` followed by a jump-if-false
// placeholder, then `body`, and returns the placeholder's index for
// the caller to patch.
func (c *Compiler) compileCondBranch(cond ast.Expr, body []ast.Stmt) int {
	c.compileExpr(cond)
	if c.err != nil {
		return 0
	}
	condJump := c.emit(bytecode.OpJmpIfFalse, 0, 0, "")
	for _, s := range body {
		c.compileStmt(s)
		if c.err != nil {
			return condJump
		}
	}
	return condJump
}

func (c *Compiler) compileWhile(st *ast.While) {
	loopHead := len(c.fn.Code)
	c.compileExpr(st.Cond)
	if c.err != nil {
		return
	}
	exitJump := c.emit(bytecode.OpJmpIfFalse, 0, 0, "")
	for _, s := range st.Body {
		c.compileStmt(s)
		if c.err != nil {
			return
		}
	}
	c.emit(bytecode.OpJmp, loopHead, 0, "")
	c.fn.PatchA(exitJump, len(c.fn.Code))
}

// compileForeach desugars `foreach v in seq body end` into a counted
// traversal over host-assisted primitives, exactly as spec §4.1
// specifies: two hidden locals track the sequence and index, the
// loop condition calls lt(idx, strlen(seq)), and the body calls
// str_char_at(seq, idx) into the loop variable before advancing idx
// via add(idx, 1). foreach is defined over string iterables only.
func (c *Compiler) compileForeach(st *ast.Foreach) {
	suffix := c.foreach
	c.foreach++
	seqName := fmt.Sprintf("__seq%d", suffix)
	idxName := fmt.Sprintf("__idx%d", suffix)

	c.compileExpr(st.Seq)
	if c.err != nil {
		return
	}
	seqSlot := c.declareLocal(seqName)
	c.emit(bytecode.OpStoreLocal, seqSlot, 0, "")

	idxSlot := c.declareLocal(idxName)
	c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Number(0)), 0, "")
	c.emit(bytecode.OpStoreLocal, idxSlot, 0, "")

	loopHead := len(c.fn.Code)
	// lt(idx, strlen(seq))
	c.emit(bytecode.OpPushLocal, idxSlot, 0, "")
	c.emit(bytecode.OpPushLocal, seqSlot, 0, "")
	c.emit(bytecode.OpCall, 1, bytecode.CallHost, "strlen")
	c.emit(bytecode.OpCall, 2, bytecode.CallHost, "lt")

	exitJump := c.emit(bytecode.OpJmpIfFalse, 0, 0, "")

	// v = str_char_at(seq, idx)
	c.emit(bytecode.OpPushLocal, seqSlot, 0, "")
	c.emit(bytecode.OpPushLocal, idxSlot, 0, "")
	c.emit(bytecode.OpCall, 2, bytecode.CallHost, "str_char_at")
	varSlot := c.declareLocal(st.Var)
	c.emit(bytecode.OpStoreLocal, varSlot, 0, "")

	for _, s := range st.Body {
		c.compileStmt(s)
		if c.err != nil {
			return
		}
	}

	// idx = add(idx, 1)
	c.emit(bytecode.OpPushLocal, idxSlot, 0, "")
	c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Number(1)), 0, "")
	c.emit(bytecode.OpCall, 2, bytecode.CallHost, "add")
	c.emit(bytecode.OpStoreLocal, idxSlot, 0, "")

	c.emit(bytecode.OpJmp, loopHead, 0, "")
	c.fn.PatchA(exitJump, len(c.fn.Code))
}

// --- expressions ---

func (c *Compiler) compileExpr(e ast.Expr) {
	if c.err != nil {
		return
	}
	switch ex := e.(type) {
	case *ast.NumberLit:
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Number(ex.Value)), 0, "")
	case *ast.StringLit:
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.String(ex.Value)), 0, "")
	case *ast.BoolLit:
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Bool(ex.Value)), 0, "")
	case *ast.NilLit:
		c.emit(bytecode.OpPushConst, c.fn.AddConst(value.Nil), 0, "")
	case *ast.Ident:
		slot, ok := c.locals[ex.Name]
		if !ok {
			c.fail(ex.Line, "unresolved identifier %q", ex.Name)
			return
		}
		c.emit(bytecode.OpPushLocal, slot, 0, "")
	case *ast.CallExpr:
		c.compileCall(ex)
	default:
		c.fail(0, "unsupported expression type %T", ex)
	}
}

// compileCall implements the three-way dispatch of spec §4.1: a
// local slot holding a callable is a dynamic call, a name in the
// host manifest is a host call, and anything else fails compilation.
func (c *Compiler) compileCall(ex *ast.CallExpr) {
	for _, a := range ex.Args {
		c.compileExpr(a)
		if c.err != nil {
			return
		}
	}
	arity := len(ex.Args)

	if slot, ok := c.locals[ex.Name]; ok {
		c.emit(bytecode.OpPushLocal, slot, 0, "")
		c.emit(bytecode.OpCall, arity, bytecode.CallDynamic, "")
		return
	}
	if c.bridge != nil && c.bridge.Has(ex.Name) {
		c.emit(bytecode.OpCall, arity, bytecode.CallHost, ex.Name)
		return
	}
	c.fail(ex.Line, "unresolved function %q", ex.Name)
}
