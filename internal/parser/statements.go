package parser

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/token"
)

// parseBlockStmt parses `{ stmt* }`, the shared body shape of functions,
// if/while branches and lambdas (spec §3.2, §3.3 — a BlockStmt is itself a
// declaration context for the `let`/`var` bindings introduced inside it).
func (p *Parser) parseBlockStmt(parent ast.DeclContext) *ast.BlockStmt {
	start := p.curTok
	block := &ast.BlockStmt{}
	block.Parent = parent
	block.SetModuleID(p.moduleID)

	if !p.curTokenIs(token.LBRACE) {
		p.peekError(token.LBRACE)
		block.SetRange(p.rangeFrom(start))
		return block
	}
	p.nextToken()
	p.skipNewlines()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if stmt := p.parseStmt(block); stmt != nil {
			stmt.SetDeclContext(block)
			block.Stmts = append(block.Stmts, stmt)
		}
		p.skipPeekNewlines()
		p.nextToken()
		p.skipNewlines()
	}
	block.SetRange(p.rangeFrom(start))
	return block
}

func (p *Parser) parseStmt(ctx ast.DeclContext) ast.Stmt {
	switch p.curTok.Type {
	case token.LET, token.VAR:
		return p.parseBindingStmtFromKeyword(ctx)
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt(ctx)
	case token.WHILE:
		return p.parseWhileStmt(ctx)
	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseBindingStmtFromKeyword parses `let`/`var name op expr` into a
// BindingStmt (spec §3.2). A binding operator must follow the name: a type
// annotation or a bare `let`/`var name` is reported as a parse error.
func (p *Parser) parseBindingStmtFromKeyword(ctx ast.DeclContext) ast.Stmt {
	start := p.curTok
	isConstant := start.Type == token.LET
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curTok.Lexeme
	id := &ast.IdentifierExpr{Name: name}
	id.SetRange(ast.SourceRange{StartLine: p.curTok.Line, StartCol: p.curTok.Column})
	id.SetModuleID(p.moduleID)

	op := ast.BindCopy
	if bo, ok := bindingOpFor(p.peekTok.Type); ok {
		op = bo
		p.nextToken()
	} else if !p.expectPeek(token.COPY_BIND) {
		return nil
	}
	p.nextToken()
	rhs := p.parseExpression(LOWEST)

	stmt := &ast.BindingStmt{LValue: id, Op: op, RValue: rhs, IsDecl: true, IsConstant: isConstant}
	stmt.SetRange(p.rangeFrom(start))
	stmt.SetModuleID(p.moduleID)
	return stmt
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.curTok
	lhs := p.parseExpression(LOWEST)
	if op, ok := bindingOpFor(p.peekTok.Type); ok {
		p.nextToken()
		p.nextToken()
		rhs := p.parseExpression(LOWEST)
		stmt := &ast.BindingStmt{LValue: lhs, Op: op, RValue: rhs}
		stmt.SetRange(p.rangeFrom(start))
		stmt.SetModuleID(p.moduleID)
		return stmt
	}
	return lhs
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.curTok
	stmt := &ast.ReturnStmt{}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		stmt.SetRange(p.rangeFrom(start))
		stmt.SetModuleID(p.moduleID)
		return stmt
	}
	p.nextToken()
	if op, ok := bindingOpFor(p.curTok.Type); ok {
		stmt.Op = op
		p.nextToken()
	}
	stmt.Value = p.parseExpression(LOWEST)
	stmt.SetRange(p.rangeFrom(start))
	stmt.SetModuleID(p.moduleID)
	return stmt
}

func (p *Parser) parseIfStmt(ctx ast.DeclContext) ast.Stmt {
	start := p.curTok
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.skipPeekNewlines()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	then := p.parseBlockStmt(ctx)

	stmt := &ast.IfStmt{Cond: cond, Then: then}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			nested := p.parseIfStmt(ctx)
			wrapper := &ast.BlockStmt{}
			wrapper.Parent = ctx
			wrapper.SetModuleID(p.moduleID)
			if nested != nil {
				nested.SetDeclContext(wrapper)
				wrapper.Stmts = append(wrapper.Stmts, nested)
			}
			stmt.Else = wrapper
		} else if p.expectPeek(token.LBRACE) {
			stmt.Else = p.parseBlockStmt(ctx)
		}
	}
	stmt.SetRange(p.rangeFrom(start))
	stmt.SetModuleID(p.moduleID)
	return stmt
}

func (p *Parser) parseWhileStmt(ctx ast.DeclContext) ast.Stmt {
	start := p.curTok
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.skipPeekNewlines()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt(ctx)
	stmt := &ast.WhileStmt{Cond: cond, Body: body}
	stmt.SetRange(p.rangeFrom(start))
	stmt.SetModuleID(p.moduleID)
	return stmt
}
