package parser

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/token"
)

// parseExpression is the Pratt loop: a prefix production followed by zero
// or more infix continuations bound by precedence, exactly the teacher's
// expressions_core.go shape.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curTok.Type)
		return p.invalidExpr()
	}
	left := prefix()

	for !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierExpr() ast.Expr {
	start := p.curTok
	id := &ast.IdentifierExpr{Name: start.Lexeme}
	id.SetRange(ast.SourceRange{StartLine: start.Line, StartCol: start.Column, EndLine: start.Line, EndCol: start.Column})
	id.SetModuleID(p.moduleID)

	if p.peekTokenIs(token.LANGLE) && p.looksLikeSpecialization() {
		p.nextToken()
		id.SpecializationArgs = p.parseSpecializationArgs()
	}
	return id
}

func (p *Parser) parseSpecializationArgs() map[string]ast.TypeSig {
	args := make(map[string]ast.TypeSig)
	p.nextToken() // consume '<'
	for !p.curTokenIs(token.RANGLE) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			break
		}
		name := p.curTok.Lexeme
		if !p.expectPeek(token.ASSIGN) {
			break
		}
		p.nextToken()
		args[name] = p.parseTypeSig()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
		}
	}
	return args
}

func (p *Parser) parseLiteral(kind ast.LiteralKind) prefixParseFn {
	return func() ast.Expr {
		start := p.curTok
		lit := &ast.LiteralExpr{Kind: kind, Raw: start.Literal}
		lit.SetRange(ast.SourceRange{StartLine: start.Line, StartCol: start.Column})
		lit.SetModuleID(p.moduleID)
		return lit
	}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	start := p.curTok
	op := start.Lexeme
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	e := &ast.PrefixExpr{Op: op, Operand: operand}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	start := p.curTok
	op := start.Lexeme
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	e := &ast.InfixExpr{LHS: left, Op: op, RHS: right}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

// parseInfixOrSpecializedCall handles `<` ambiguity at the call site: if
// the identifier prefix already consumed a specialization list, `<` here is
// always the comparison operator.
func (p *Parser) parseInfixOrSpecializedCall(left ast.Expr) ast.Expr {
	return p.parseInfixExpr(left)
}

func (p *Parser) parseParenExpr() ast.Expr {
	start := p.curTok
	p.nextToken()
	p.skipNewlines()
	inner := p.parseExpression(LOWEST)
	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return p.invalidExpr()
	}
	e := &ast.ParenExpr{Inner: inner}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.curTok
	elems := p.parseExprList(token.RBRACKET)
	e := &ast.ArrayLiteralExpr{Elements: elems}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

// parseBraceLiteral disambiguates `{e1, e2}` (a set) from `{k: v, ...}` (a
// map) by looking one expression ahead for a colon.
func (p *Parser) parseBraceLiteral() ast.Expr {
	start := p.curTok
	p.nextToken()
	p.skipNewlines()

	if p.curTokenIs(token.RBRACE) {
		e := &ast.SetLiteralExpr{}
		e.SetRange(p.rangeFrom(start))
		e.SetModuleID(p.moduleID)
		return e
	}

	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.COLON) {
		p.nextToken() // consume ':'
		p.nextToken()
		val := p.parseExpression(LOWEST)
		entries := []ast.MapEntry{{Key: first, Value: val}}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			p.skipNewlines()
			k := p.parseExpression(LOWEST)
			if !p.expectPeek(token.COLON) {
				break
			}
			p.nextToken()
			v := p.parseExpression(LOWEST)
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}
		p.skipPeekNewlines()
		if !p.expectPeek(token.RBRACE) {
			return p.invalidExpr()
		}
		e := &ast.MapLiteralExpr{Entries: entries}
		e.SetRange(p.rangeFrom(start))
		e.SetModuleID(p.moduleID)
		return e
	}

	elems := []ast.Expr{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RBRACE) {
		return p.invalidExpr()
	}
	e := &ast.SetLiteralExpr{Elements: elems}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseExprList(end token.Type) []ast.Expr {
	var list []ast.Expr
	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(end) {
		return list
	}
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		list = append(list, p.parseExpression(LOWEST))
	}
	p.skipPeekNewlines()
	p.expectPeek(end)
	return list
}

func (p *Parser) parseImplicitSelectExpr() ast.Expr {
	start := p.curTok
	if !p.expectPeek(token.IDENT) {
		return p.invalidExpr()
	}
	e := &ast.ImplicitSelectExpr{Ownee: p.curTok.Lexeme}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseSelectExpr(owner ast.Expr) ast.Expr {
	start := p.curTok
	if !p.expectPeek(token.IDENT) {
		return p.invalidExpr()
	}
	e := &ast.SelectExpr{Owner: owner, Ownee: p.curTok.Lexeme}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	start := p.curTok
	args := p.parseCallArgs()
	e := &ast.CallExpr{Callee: callee, Args: args}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseCallArgs() []*ast.CallArgExpr {
	var args []*ast.CallArgExpr
	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(token.RPAREN) {
		return args
	}
	args = append(args, p.parseCallArg())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		args = append(args, p.parseCallArg())
	}
	p.skipPeekNewlines()
	p.expectPeek(token.RPAREN)
	return args
}

// parseCallArg parses `[label:] [op] expr`, where op is one of the three
// binding operators marking how the argument is passed (spec §3.2).
func (p *Parser) parseCallArg() *ast.CallArgExpr {
	start := p.curTok
	arg := &ast.CallArgExpr{}

	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		arg.Label = p.curTok.Lexeme
		p.nextToken() // now on ':'
		p.nextToken() // consume ':'
	}

	if op, ok := bindingOpFor(p.curTok.Type); ok {
		arg.HasOp = true
		arg.Op = op
		p.nextToken()
	}

	arg.Value = p.parseExpression(LOWEST)
	arg.SetRange(p.rangeFrom(start))
	arg.SetModuleID(p.moduleID)
	return arg
}

func bindingOpFor(t token.Type) (ast.BindingOp, bool) {
	switch t {
	case token.COPY_BIND:
		return ast.BindCopy, true
	case token.REF_BIND:
		return ast.BindRef, true
	case token.MOVE_BIND:
		return ast.BindMove, true
	default:
		return 0, false
	}
}

func (p *Parser) parseCastExpr(operand ast.Expr) ast.Expr {
	start := p.curTok
	kind := ast.CastSafe
	if p.peekTokenIs(token.QUESTION) {
		p.nextToken()
	} else if p.peekTokenIs(token.OPERATOR) && p.peekTok.Lexeme == "!" {
		kind = ast.CastUnsafe
		p.nextToken()
	}
	p.nextToken()
	sig := p.parseTypeSig()
	e := &ast.CastExpr{Operand: operand, Kind: kind, TypeSig: sig}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}

func (p *Parser) parseSubtypeTestExpr(operand ast.Expr) ast.Expr {
	start := p.curTok
	p.nextToken()
	sig := p.parseTypeSig()
	e := &ast.SubtypeTestExpr{Operand: operand, TypeSig: sig}
	e.SetRange(p.rangeFrom(start))
	e.SetModuleID(p.moduleID)
	return e
}
