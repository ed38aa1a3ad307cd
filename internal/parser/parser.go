// Package parser turns a token stream into the typed AST internal/ast
// defines. Like the teacher's internal/parser, it is a hand-written
// recursive-descent/Pratt parser keyed by a prefix/infix function table per
// token type; unlike the teacher it targets a much smaller surface grammar
// (spec §3.2, §6.2), so it is a handful of files rather than two dozen.
//
// The parser is an external collaborator of the semantic core (spec §1):
// nothing downstream of it inspects source text again, only the AST it
// builds.
package parser

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/lexer"
	"github.com/nomina-lang/nomina/internal/token"
)

// Operator precedence levels, lowest to highest (mirrors the teacher's
// LOWEST..CALL ladder in internal/parser/expressions_core.go).
const (
	LOWEST = iota
	ASSIGNMENT
	IDENTITY // === !==
	COMPARISON
	ADDITIVE
	MULTIPLICATIVE
	CAST // as?/as!/is
	PREFIX
	CALL
	SELECT
)

var precedences = map[token.Type]int{
	token.IDENTICAL:     IDENTITY,
	token.NOT_IDENTICAL:  IDENTITY,
	token.LANGLE:        COMPARISON,
	token.RANGLE:        COMPARISON,
	token.OPERATOR:      ADDITIVE,
	token.AS:            CAST,
	token.IS:            CAST,
	token.LPAREN:        CALL,
	token.DOT:           SELECT,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser consumes tokens from a Lexer one at a time, keeping the current and
// lookahead token (the teacher's cur/peek idiom).
type Parser struct {
	l         *lexer.Lexer
	moduleID  string
	sink      *diag.Sink

	curTok  token.Token
	peekTok token.Token
	queue   []token.Token // extra lookahead beyond peekTok, for specialization disambiguation

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over src, reporting syntax errors into sink tagged
// with moduleID.
func New(src string, moduleID string, sink *diag.Sink) *Parser {
	p := &Parser{l: lexer.New(src), moduleID: moduleID, sink: sink}
	p.prefixFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifierExpr,
		token.INT:      p.parseLiteral(ast.LiteralInt),
		token.FLOAT:    p.parseLiteral(ast.LiteralFloat),
		token.STRING:   p.parseLiteral(ast.LiteralString),
		token.TRUE:     p.parseLiteral(ast.LiteralBool),
		token.FALSE:    p.parseLiteral(ast.LiteralBool),
		token.NULL:     p.parseLiteral(ast.LiteralNull),
		token.LPAREN:   p.parseParenExpr,
		token.LBRACKET: p.parseArrayLiteral,
		token.LBRACE:   p.parseBraceLiteral,
		token.DOT:      p.parseImplicitSelectExpr,
		token.OPERATOR: p.parsePrefixExpr,
		token.SELF:     p.parseIdentifierExpr,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.OPERATOR:      p.parseInfixExpr,
		token.IDENTICAL:     p.parseInfixExpr,
		token.NOT_IDENTICAL:  p.parseInfixExpr,
		token.LANGLE:        p.parseInfixOrSpecializedCall,
		token.RANGLE:        p.parseInfixExpr,
		token.LPAREN:        p.parseCallExpr,
		token.DOT:           p.parseSelectExpr,
		token.AS:            p.parseCastExpr,
		token.IS:            p.parseSubtypeTestExpr,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if len(p.queue) > 0 {
		p.peekTok = p.queue[0]
		p.queue = p.queue[1:]
	} else {
		p.peekTok = p.l.NextToken()
	}
}

// peekAt returns the token n places beyond peekTok (peekAt(0) == peekTok),
// buffering as many tokens as needed from the lexer without consuming them.
func (p *Parser) peekAt(n int) token.Token {
	for len(p.queue) < n {
		p.queue = append(p.queue, p.l.NextToken())
	}
	if n == 0 {
		return p.peekTok
	}
	return p.queue[n-1]
}

// looksLikeSpecialization decides, without consuming any token, whether the
// `<` at peekTok opens an explicit use-site specialization list (spec
// §4.2's "use-site <T = Int>") rather than a `<` comparison: it scans ahead
// for a top-level `=` before the matching `>`.
func (p *Parser) looksLikeSpecialization() bool {
	depth := 0
	for i := 1; i < 64; i++ {
		t := p.peekAt(i)
		switch t.Type {
		case token.LANGLE:
			depth++
		case token.RANGLE:
			if depth == 0 {
				return false
			}
			depth--
		case token.ASSIGN:
			if depth == 0 {
				return true
			}
		case token.NEWLINE, token.EOF, token.SEMI, token.LBRACE:
			return false
		}
	}
	return false
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curTok.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekTok.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) rangeFrom(start token.Token) ast.SourceRange {
	return ast.SourceRange{StartLine: start.Line, StartCol: start.Column, EndLine: p.curTok.Line, EndCol: p.curTok.Column}
}

// errNode wraps the current token's position as an ast.Node so the parser
// can report through the same diag.Sink every later pass reports into.
func (p *Parser) errNode() ast.Node {
	n := &ast.InvalidExpr{}
	n.SetRange(ast.SourceRange{StartLine: p.curTok.Line, StartCol: p.curTok.Column, EndLine: p.curTok.Line, EndCol: p.curTok.Column})
	n.SetModuleID(p.moduleID)
	return n
}

func (p *Parser) peekError(want token.Type) {
	p.sink.Report(diag.Error, diag.SyntaxError, p.errNode(), nil,
		"expected next token to be %s, got %s instead", want, p.peekTok.Type)
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.sink.Report(diag.Error, diag.SyntaxError, p.errNode(), nil,
		"no prefix parse function for %s found", t)
}

func (p *Parser) invalidExpr() ast.Expr {
	n := &ast.InvalidExpr{}
	n.SetRange(ast.SourceRange{StartLine: p.curTok.Line, StartCol: p.curTok.Column})
	n.SetModuleID(p.moduleID)
	return n
}
