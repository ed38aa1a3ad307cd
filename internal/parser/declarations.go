package parser

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/token"
)

// ParseModule parses an entire source file into a Module declaration
// context (spec §3.1, §3.3), the parser's equivalent of the teacher's
// ParseProgram entry point.
func (p *Parser) ParseModule(name string) *ast.Module {
	mod := ast.NewModule(name)
	p.skipNewlines()
	for !p.curTokenIs(token.EOF) {
		if decl := p.parseTopLevelDecl(mod); decl != nil {
			decl.SetDeclContext(mod)
			mod.AddDecl(decl)
		}
		p.skipPeekNewlines()
		p.nextToken()
		p.skipNewlines()
	}
	return mod
}

func (p *Parser) parseTopLevelDecl(ctx ast.DeclContext) ast.Decl {
	switch p.curTok.Type {
	case token.FUN:
		return p.parseFunctionDecl(ctx, ast.FunctionRegular)
	case token.STRUCT:
		return p.parseNominalTypeDecl(ctx, ast.NominalStruct)
	case token.UNION:
		return p.parseNominalTypeDecl(ctx, ast.NominalUnion)
	case token.INTERFACE:
		return p.parseNominalTypeDecl(ctx, ast.NominalInterface)
	case token.EXTENSION:
		return p.parseExtensionDecl(ctx)
	case token.LET, token.VAR:
		return p.parsePropertyDecl()
	default:
		p.noPrefixParseFnError(p.curTok.Type)
		return nil
	}
}

func (p *Parser) parsePropertyDecl() *ast.PropertyDecl {
	start := p.curTok
	isConst := p.curTokenIs(token.LET)
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curTok.Lexeme

	var sig ast.TypeSig
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		sig = p.parseTypeSig()
	}

	op := ast.BindCopy
	var init ast.Expr
	if bo, ok := bindingOpFor(p.peekTok.Type); ok {
		op = bo
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(LOWEST)
	}

	decl := &ast.PropertyDecl{Name: name, IsConstant: isConst, TypeSig: sig, BindingOp: op, Initializer: init}
	decl.SetRange(p.rangeFrom(start))
	decl.SetModuleID(p.moduleID)
	return decl
}

// parseFunctionDecl parses `fun name<generics>(params) -> Codom { body }`.
// kind distinguishes a plain top-level function from a method; a method
// named `new` or `delete` is refined to FunctionConstructor/
// FunctionDestructor right here (spec
// §4.2's currying rules care only that the kind is one of the four shapes,
// not which keyword introduced it — the surface grammar has no separate
// `init`/`deinit` keyword).
func (p *Parser) parseFunctionDecl(ctx ast.DeclContext, kind ast.FunctionKind) *ast.FunctionDecl {
	start := p.curTok
	mutating := false
	if p.peekTokenIs(token.AT_MUT) {
		mutating = true
		p.nextToken()
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curTok.Lexeme

	fn := &ast.FunctionDecl{Name: name, Kind: kind, Mutating: mutating}
	fn.Parent = ctx
	fn.SetModuleID(p.moduleID)

	if kind == ast.FunctionMethod {
		switch name {
		case "new":
			fn.Kind = ast.FunctionConstructor
		case "delete":
			fn.Kind = ast.FunctionDestructor
		}
	}

	if p.peekTokenIs(token.LANGLE) {
		p.nextToken()
		fn.GenericParams = p.parseGenericParams()
	}

	if !p.expectPeek(token.LPAREN) {
		return fn
	}
	fn.Params = p.parseParamList(fn)

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.CodomSig = p.parseTypeSig()
	}

	p.skipPeekNewlines()
	if p.expectPeek(token.LBRACE) {
		fn.Body = p.parseBlockStmt(fn)
	}
	fn.SetRange(p.rangeFrom(start))
	return fn
}

func (p *Parser) parseGenericParams() []*ast.GenericParamDecl {
	var params []*ast.GenericParamDecl
	p.nextToken() // consume '<'
	for !p.curTokenIs(token.RANGLE) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			break
		}
		g := &ast.GenericParamDecl{Name: p.curTok.Lexeme}
		g.SetRange(ast.SourceRange{StartLine: p.curTok.Line, StartCol: p.curTok.Column})
		g.SetModuleID(p.moduleID)
		params = append(params, g)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
		}
	}
	return params
}

func (p *Parser) parseParamList(ctx ast.DeclContext) []*ast.ParamDecl {
	var params []*ast.ParamDecl
	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(token.RPAREN) {
		return params
	}
	params = append(params, p.parseParamDecl())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		params = append(params, p.parseParamDecl())
	}
	p.skipPeekNewlines()
	p.expectPeek(token.RPAREN)
	return params
}

// parseParamDecl parses `[label] name: Type [= default]` (spec §3.2). A
// parameter written with a single name has an empty label; a written `_`
// label is stored as the label text `_` like any other label.
func (p *Parser) parseParamDecl() *ast.ParamDecl {
	start := p.curTok
	label := ""
	name := p.curTok.Lexeme
	if p.peekTokenIs(token.IDENT) {
		label = p.curTok.Lexeme
		p.nextToken()
		name = p.curTok.Lexeme
	}

	var sig ast.TypeSig
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		sig = p.parseTypeSig()
	}

	var def ast.Expr
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def = p.parseExpression(LOWEST)
	}

	pd := &ast.ParamDecl{Label: label, Name: name, TypeSig: sig, DefaultExpr: def}
	pd.SetRange(p.rangeFrom(start))
	pd.SetModuleID(p.moduleID)
	return pd
}

func (p *Parser) parseNominalTypeDecl(ctx ast.DeclContext, kind ast.NominalKind) *ast.NominalTypeDecl {
	start := p.curTok
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl := &ast.NominalTypeDecl{Name: p.curTok.Lexeme, Kind: kind}
	decl.Parent = ctx
	decl.SetModuleID(p.moduleID)

	if p.peekTokenIs(token.LANGLE) {
		p.nextToken()
		decl.GenericParams = p.parseGenericParams()
	}

	if !p.expectPeek(token.LBRACE) {
		decl.SetRange(p.rangeFrom(start))
		return decl
	}
	p.nextToken()
	p.skipNewlines()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		member := p.parseNominalMember(decl)
		if member != nil {
			member.SetDeclContext(decl)
			decl.AddDecl(member)
		}
		p.skipPeekNewlines()
		p.nextToken()
		p.skipNewlines()
	}
	decl.SetRange(p.rangeFrom(start))
	return decl
}

func (p *Parser) parseNominalMember(ctx ast.DeclContext) ast.Decl {
	switch p.curTok.Type {
	case token.FUN:
		return p.parseFunctionDecl(ctx, ast.FunctionMethod)
	case token.LET, token.VAR:
		return p.parsePropertyDecl()
	default:
		p.noPrefixParseFnError(p.curTok.Type)
		return nil
	}
}

// parseExtensionDecl parses `extension T[: I, J] { ... }` (spec §3.2, §4.1
// step 3).
func (p *Parser) parseExtensionDecl(ctx ast.DeclContext) *ast.ExtensionDecl {
	start := p.curTok
	p.nextToken()
	extended := p.parseTypeSig()

	ext := &ast.ExtensionDecl{ExtendedTypeSig: extended}
	ext.Parent = ctx
	ext.SetModuleID(p.moduleID)

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		ext.Conformances = append(ext.Conformances, p.parseTypeSig())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			ext.Conformances = append(ext.Conformances, p.parseTypeSig())
		}
	}

	if !p.expectPeek(token.LBRACE) {
		ext.SetRange(p.rangeFrom(start))
		return ext
	}
	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		member := p.parseNominalMember(ext)
		if member != nil {
			member.SetDeclContext(ext)
			ext.AddDecl(member)
		}
		p.skipPeekNewlines()
		p.nextToken()
		p.skipNewlines()
	}
	ext.SetRange(p.rangeFrom(start))
	return ext
}
