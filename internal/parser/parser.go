// Package parser turns a MonDot token stream into the internal/ast
// contract the compiler consumes. It is a thin collaborator per
// spec §1: a recursive-descent implementation of the grammar in
// spec §6.
package parser

import (
	"fmt"

	"mondot/internal/ast"
	"mondot/internal/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	current int
	errs    []error
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Errors returns parse errors accumulated while parsing. The
// compiler aborts the unit if any exist (spec §7: parse failures are
// compile-time failures).
func (p *Parser) Errors() []error { return p.errs }

// ParseProgram parses a sequence of units.
func (p *Parser) ParseProgram() []*ast.Unit {
	var units []*ast.Unit
	for !p.check(lexer.TokenEOF) {
		u := p.parseUnit()
		if u != nil {
			units = append(units, u)
		}
		if len(p.errs) > 0 {
			break
		}
	}
	return units
}

func (p *Parser) parseUnit() *ast.Unit {
	if !p.expect(lexer.TokenUnit, "expected 'unit'") {
		return nil
	}
	name := p.expectIdent("expected unit name")
	if !p.expect(lexer.TokenLBrace, "expected '{' after unit name") {
		return nil
	}
	u := &ast.Unit{Name: name}
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		h := p.parseHandler()
		if h == nil {
			return u
		}
		u.Handlers = append(u.Handlers, h)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close unit")
	return u
}

func (p *Parser) parseHandler() *ast.Handler {
	line := p.peek().Line
	if !p.expect(lexer.TokenOn, "expected 'on'") {
		return nil
	}
	name := p.expectIdent("expected handler name")
	if !p.expect(lexer.TokenArrow, "expected '->' after handler name") {
		return nil
	}
	if !p.expect(lexer.TokenLParen, "expected '(' in handler parameter list") {
		return nil
	}
	var params []string
	if !p.check(lexer.TokenRParen) {
		for {
			params = append(params, p.expectIdent("expected parameter name"))
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	if !p.expect(lexer.TokenRParen, "expected ')' after parameter list") {
		return nil
	}
	body := p.parseBlock(lexer.TokenEnd)
	p.expect(lexer.TokenEnd, "expected 'end' to close handler")
	return &ast.Handler{Name: name, Params: params, Body: body, Line: line}
}

// parseBlock parses statements until it sees one of the given
// terminator token types (not consumed).
func (p *Parser) parseBlock(terminators ...lexer.TokenType) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atTerminator(terminators) && !p.check(lexer.TokenEOF) {
		before := p.current
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		if len(p.errs) > 0 || p.current == before {
			// Avoid an infinite loop on unrecoverable input.
			p.advance()
		}
	}
	return stmts
}

func (p *Parser) atTerminator(types []lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseStmt() ast.Stmt {
	line := p.peek().Line
	switch {
	case p.match(lexer.TokenLocal):
		name := p.expectIdent("expected local name")
		var val ast.Expr
		if p.match(lexer.TokenEqual) {
			val = p.parseExpr()
		}
		p.expect(lexer.TokenSemi, "expected ';' after local declaration")
		return &ast.LocalDecl{Name: name, Value: val, Line: line}

	case p.match(lexer.TokenIf):
		return p.parseIf(line)

	case p.match(lexer.TokenWhile):
		return p.parseWhile(line)

	case p.match(lexer.TokenForeach):
		return p.parseForeach(line)

	case p.match(lexer.TokenReturn):
		var val ast.Expr
		if !p.check(lexer.TokenSemi) {
			val = p.parseExpr()
		}
		p.expect(lexer.TokenSemi, "expected ';' after return")
		return &ast.Return{Value: val, Line: line}

	case p.check(lexer.TokenIdent):
		return p.parseIdentStmt(line)

	default:
		p.errorf("unexpected token %s in statement", p.peek().Type)
		return nil
	}
}

// parseIdentStmt disambiguates `x = expr;` from a bare call
// expression statement, per spec §4.1.
func (p *Parser) parseIdentStmt(line int) ast.Stmt {
	name := p.expectIdent("expected identifier")
	if p.match(lexer.TokenEqual) {
		val := p.parseExpr()
		p.expect(lexer.TokenSemi, "expected ';' after assignment")
		return &ast.Assign{Name: name, Value: val, Line: line}
	}
	if !p.check(lexer.TokenLParen) {
		p.errorf("expression statement must be a call")
		return nil
	}
	call := p.finishCall(name, line)
	p.expect(lexer.TokenSemi, "expected ';' after expression statement")
	return &ast.ExprStmt{Call: call, Line: line}
}

func (p *Parser) parseIf(line int) ast.Stmt {
	p.expect(lexer.TokenLParen, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.expect(lexer.TokenRParen, "expected ')' after if condition")
	then := p.parseBlock(lexer.TokenElseif, lexer.TokenElse, lexer.TokenEnd)

	node := &ast.If{Cond: cond, Then: then, Line: line}
	for p.match(lexer.TokenElseif) {
		p.expect(lexer.TokenLParen, "expected '(' after 'elseif'")
		c := p.parseExpr()
		p.expect(lexer.TokenRParen, "expected ')' after elseif condition")
		body := p.parseBlock(lexer.TokenElseif, lexer.TokenElse, lexer.TokenEnd)
		node.ElseIfs = append(node.ElseIfs, ast.ElseIf{Cond: c, Body: body})
	}
	if p.match(lexer.TokenElse) {
		node.Else = p.parseBlock(lexer.TokenEnd)
	}
	p.expect(lexer.TokenEnd, "expected 'end' to close if")
	return node
}

func (p *Parser) parseWhile(line int) ast.Stmt {
	p.expect(lexer.TokenLParen, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.expect(lexer.TokenRParen, "expected ')' after while condition")
	body := p.parseBlock(lexer.TokenEnd)
	p.expect(lexer.TokenEnd, "expected 'end' to close while")
	return &ast.While{Cond: cond, Body: body, Line: line}
}

func (p *Parser) parseForeach(line int) ast.Stmt {
	name := p.expectIdent("expected loop variable name")
	p.expect(lexer.TokenIn, "expected 'in' after foreach variable")
	seq := p.parseExpr()
	body := p.parseBlock(lexer.TokenEnd)
	p.expect(lexer.TokenEnd, "expected 'end' to close foreach")
	return &ast.Foreach{Var: name, Seq: seq, Body: body, Line: line}
}

// parseExpr parses a literal, identifier, or call expression, per
// the grammar of spec §6 (MonDot has no operators; arithmetic and
// comparison are host calls like add(a, b)).
func (p *Parser) parseExpr() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		return &ast.NumberLit{Value: parseFloat(tok.Lexeme), Line: tok.Line}
	case lexer.TokenString:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Line: tok.Line}
	case lexer.TokenTrue:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line}
	case lexer.TokenFalse:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line}
	case lexer.TokenNil:
		p.advance()
		return &ast.NilLit{Line: tok.Line}
	case lexer.TokenIdent:
		p.advance()
		if p.check(lexer.TokenLParen) {
			return p.finishCall(tok.Lexeme, tok.Line)
		}
		return &ast.Ident{Name: tok.Lexeme, Line: tok.Line}
	default:
		p.errorf("unexpected token %s in expression", tok.Type)
		p.advance()
		return &ast.NilLit{Line: tok.Line}
	}
}

func (p *Parser) finishCall(name string, line int) *ast.CallExpr {
	p.expect(lexer.TokenLParen, "expected '(' in call")
	call := &ast.CallExpr{Name: name, Line: line}
	if !p.check(lexer.TokenRParen) {
		for {
			call.Args = append(call.Args, p.parseExpr())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.expect(lexer.TokenRParen, "expected ')' after call arguments")
	return call
}

func (p *Parser) expectIdent(msg string) string {
	if !p.check(lexer.TokenIdent) {
		p.errorf("%s, got %s", msg, p.peek().Type)
		return ""
	}
	tok := p.advance()
	return tok.Lexeme
}

func (p *Parser) expect(t lexer.TokenType, msg string) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	p.errorf("%s, got %s", msg, p.peek().Type)
	return false
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) errorf(format string, args ...interface{}) {
	line := p.peek().Line
	p.errs = append(p.errs, fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func parseFloat(s string) float64 {
	var n float64
	fmt.Sscanf(s, "%g", &n)
	return n
}
