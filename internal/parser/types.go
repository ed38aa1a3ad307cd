package parser

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/token"
	"github.com/nomina-lang/nomina/internal/types"
)

// parseTypeSig parses a type signature (spec §3.2): an optional leading
// qualifier, then a bare signature, possibly a function signature in
// parens, with `::` nesting and use-site specialization on identifiers.
func (p *Parser) parseTypeSig() ast.TypeSig {
	start := p.curTok

	if p.curTokenIs(token.AT_CST) || p.curTokenIs(token.AT_MUT) {
		var quals types.QualifierSet
		if p.curTokenIs(token.AT_CST) {
			quals = types.QualifierSet(types.QualCst)
		} else {
			quals = types.QualifierSet(types.QualMut)
		}
		p.nextToken()
		bare := p.parseBareTypeSig()
		q := &ast.QualifiedTypeSig{Quals: quals, Bare: bare}
		q.SetRange(p.rangeFrom(start))
		q.SetModuleID(p.moduleID)
		return q
	}

	return p.parseBareTypeSig()
}

func (p *Parser) parseBareTypeSig() ast.TypeSig {
	start := p.curTok

	if p.curTokenIs(token.LPAREN) {
		return p.parseFunctionTypeSig()
	}

	if p.curTokenIs(token.COLONCOLON) {
		if !p.expectPeek(token.IDENT) {
			return p.invalidTypeSig()
		}
		sig := &ast.ImplicitNestedIdentifierTypeSig{Name: p.curTok.Lexeme}
		sig.SetRange(p.rangeFrom(start))
		sig.SetModuleID(p.moduleID)
		return p.continueNestedTypeSig(sig)
	}

	if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.SELF) {
		p.noPrefixParseFnError(p.curTok.Type)
		return p.invalidTypeSig()
	}

	sig := p.parseIdentifierTypeSig()
	return p.continueNestedTypeSig(sig)
}

func (p *Parser) parseIdentifierTypeSig() ast.TypeSig {
	start := p.curTok
	sig := &ast.IdentifierTypeSig{Name: start.Lexeme}
	sig.SetRange(ast.SourceRange{StartLine: start.Line, StartCol: start.Column})
	sig.SetModuleID(p.moduleID)

	if p.peekTokenIs(token.LANGLE) {
		p.nextToken()
		sig.SpecializationArgs = p.parseTypeSigSpecializationArgs()
	}
	return sig
}

func (p *Parser) parseTypeSigSpecializationArgs() map[string]ast.TypeSig {
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

// continueNestedTypeSig folds any following `::Name` suffixes onto owner
// (spec §4.1 "Qualified name resolution" applied to type signatures).
func (p *Parser) continueNestedTypeSig(owner ast.TypeSig) ast.TypeSig {
	for p.peekTokenIs(token.COLONCOLON) {
		start := p.curTok
		p.nextToken() // now on '::'
		if !p.expectPeek(token.IDENT) {
			return p.invalidTypeSig()
		}
		nested := &ast.NestedIdentifierTypeSig{Owner: owner, Name: p.curTok.Lexeme}
		nested.SetRange(p.rangeFrom(start))
		nested.SetModuleID(p.moduleID)
		owner = nested
	}
	return owner
}

func (p *Parser) parseFunctionTypeSig() ast.TypeSig {
	start := p.curTok
	var params []*ast.ParameterTypeSig
	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		params = append(params, p.parseParameterTypeSig())
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			p.skipNewlines()
		} else {
			p.nextToken()
		}
	}
	if !p.expectPeek(token.ARROW) {
		return p.invalidTypeSig()
	}
	p.nextToken()
	codom := p.parseTypeSig()
	sig := &ast.FunctionTypeSig{Params: params, Codom: codom}
	sig.SetRange(p.rangeFrom(start))
	sig.SetModuleID(p.moduleID)
	return sig
}

func (p *Parser) parseParameterTypeSig() *ast.ParameterTypeSig {
	start := p.curTok
	label := ""
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		label = p.curTok.Lexeme
		p.nextToken()
		p.nextToken()
	}
	t := p.parseTypeSig()
	sig := &ast.ParameterTypeSig{Label: label, Type: t}
	sig.SetRange(p.rangeFrom(start))
	sig.SetModuleID(p.moduleID)
	return sig
}

func (p *Parser) invalidTypeSig() ast.TypeSig {
	sig := &ast.InvalidTypeSig{}
	sig.SetRange(ast.SourceRange{StartLine: p.curTok.Line, StartCol: p.curTok.Column})
	sig.SetModuleID(p.moduleID)
	return sig
}
