package lexer

import "testing"

func TestScanDottedIdentifier(t *testing.T) {
	lx := New(`io.print("hi");`)
	toks := lx.ScanTokens()
	if len(lx.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", lx.Errors())
	}
	if toks[0].Type != TokenIdent || toks[0].Lexeme != "io.print" {
		t.Fatalf("expected dotted identifier token, got %+v", toks[0])
	}
}

func TestScanKeywordsAndPunctuation(t *testing.T) {
	lx := New(`unit U { on T -> () end }`)
	toks := lx.ScanTokens()
	want := []TokenType{
		TokenUnit, TokenIdent, TokenLBrace,
		TokenOn, TokenIdent, TokenArrow, TokenLParen, TokenRParen,
		TokenEnd, TokenRBrace, TokenEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	lx := New(`"a\nb\"c"`)
	toks := lx.ScanTokens()
	if len(lx.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", lx.Errors())
	}
	if toks[0].Type != TokenString {
		t.Fatalf("expected string token, got %+v", toks[0])
	}
	want := "a\nb\"c"
	if toks[0].Lexeme != want {
		t.Errorf("got %q, want %q", toks[0].Lexeme, want)
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	lx := New(`"unterminated`)
	lx.ScanTokens()
	if len(lx.Errors()) == 0 {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestScanNumber(t *testing.T) {
	lx := New(`3.5`)
	toks := lx.ScanTokens()
	if toks[0].Type != TokenNumber || toks[0].Lexeme != "3.5" {
		t.Fatalf("got %+v", toks[0])
	}
}
