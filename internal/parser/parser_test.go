package parser

import (
	"testing"

	"mondot/internal/ast"
	"mondot/internal/lexer"
)

func parse(t *testing.T, src string) []*ast.Unit {
	t.Helper()
	lx := lexer.New(src)
	toks := lx.ScanTokens()
	if errs := lx.Errors(); len(errs) != 0 {
		t.Fatalf("lex errors: %v", errs)
	}
	p := New(toks)
	units := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return units
}

func TestParseSimpleHandler(t *testing.T) {
	units := parse(t, `unit U { on T -> () local x = 2; return x; end }`)
	if len(units) != 1 || units[0].Name != "U" {
		t.Fatalf("unexpected units: %+v", units)
	}
	h := units[0].Handlers[0]
	if h.Name != "T" || len(h.Body) != 2 {
		t.Fatalf("unexpected handler: %+v", h)
	}
	if _, ok := h.Body[0].(*ast.LocalDecl); !ok {
		t.Errorf("expected first statement to be a LocalDecl, got %T", h.Body[0])
	}
	if _, ok := h.Body[1].(*ast.Return); !ok {
		t.Errorf("expected second statement to be a Return, got %T", h.Body[1])
	}
}

func TestParseIfElseifElse(t *testing.T) {
	src := `unit U { on T -> (x)
		if (x) return 1; elseif (x) return 2; else return 3; end
	end }`
	units := parse(t, src)
	h := units[0].Handlers[0]
	ifStmt, ok := h.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", h.Body[0])
	}
	if len(ifStmt.ElseIfs) != 1 {
		t.Fatalf("expected 1 elseif, got %d", len(ifStmt.ElseIfs))
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected else body, got %v", ifStmt.Else)
	}
}

func TestParseForeach(t *testing.T) {
	src := `unit U { on T -> ()
		local n = 0;
		foreach c in "abc" n = add(n, 1); end
		return n;
	end }`
	units := parse(t, src)
	h := units[0].Handlers[0]
	fe, ok := h.Body[1].(*ast.Foreach)
	if !ok {
		t.Fatalf("expected Foreach, got %T", h.Body[1])
	}
	if fe.Var != "c" {
		t.Errorf("expected loop var c, got %q", fe.Var)
	}
}

func TestParseCallExpressionStatement(t *testing.T) {
	units := parse(t, `unit U { on T -> () io.print("hi"); end }`)
	h := units[0].Handlers[0]
	stmt, ok := h.Body[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", h.Body[0])
	}
	if stmt.Call.Name != "io.print" {
		t.Errorf("expected call to io.print, got %q", stmt.Call.Name)
	}
}

func TestParseExpressionStatementMustBeCall(t *testing.T) {
	lx := lexer.New(`unit U { on T -> () 5; end }`)
	toks := lx.ScanTokens()
	p := New(toks)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a bare non-call expression statement")
	}
}
