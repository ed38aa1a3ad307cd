// Package realize implements the Type Realizer (spec §4.2): it turns every
// syntactic TypeSig into an interned semantic Type, curries method/
// constructor/destructor signatures into `Self -> (...) -> Codom` shape,
// installs the synthetic `self` parameter, and gives generic parameters
// TypePlaceholders. A use site with explicit specialization arguments
// realizes to a BoundGenericType; one without them gets the generic type
// itself, placeholders included: no fresh TypeVars are minted for them.
//
// Grounded the way the teacher's internal/typesystem row-instantiation code
// is: a small recursive "realize this syntactic shape into a semantic Type"
// function plus a side-table of already-realized declarations so a type is
// never realized twice.
package realize

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/types"
)

type Realizer struct {
	cc   *compiler.CompilerContext
	mod  *compiler.Module
	sink *diag.Sink
}

func New(cc *compiler.CompilerContext, mod *compiler.Module) *Realizer {
	return &Realizer{cc: cc, mod: mod, sink: mod.Sink}
}

// Realize runs type realization over every top-level declaration.
func (r *Realizer) Realize() {
	for _, d := range r.mod.AST.Decls() {
		r.realizeDecl(d)
	}
}

func (r *Realizer) realizeDecl(d ast.Decl) {
	switch decl := d.(type) {
	case *ast.NominalTypeDecl:
		r.realizeNominalType(decl)
	case *ast.ExtensionDecl:
		for _, member := range decl.Decls() {
			r.realizeDecl(member)
		}
	case *ast.FunctionDecl:
		r.realizeFunction(decl, nil)
	case *ast.PropertyDecl:
		r.realizeProperty(decl)
	}
}

// realizeNominalType interns the NominalType itself (opening its generic
// parameters into placeholders first, spec §4.2), then realizes every
// member, installing synthetic `self` on methods/constructors/destructors.
func (r *Realizer) realizeNominalType(n *ast.NominalTypeDecl) {
	placeholders := r.openGenericParams(n.GenericParams)
	kind := types.NominalKind(n.Kind)
	nominal := types.NominalType{Kind: kind, Name: n.Name, Decl: n, Placeholders: placeholders}
	n.RealizedType = r.cc.Interner.GetNominalType(nominal)

	if kind == types.NominalStruct && !hasExplicitConstructor(n) {
		r.synthesizeDefaultConstructor(n)
	}

	for _, member := range n.Decls() {
		switch m := member.(type) {
		case *ast.FunctionDecl:
			r.realizeFunction(m, n)
		case *ast.PropertyDecl:
			r.realizeProperty(m)
		}
	}
}

// hasExplicitConstructor reports whether n already declares a `fun new(...)`
// (spec §4.2: a struct gets an implicit default constructor only when it
// declares none itself).
func hasExplicitConstructor(n *ast.NominalTypeDecl) bool {
	for _, member := range n.Decls() {
		if fn, ok := member.(*ast.FunctionDecl); ok && fn.Kind == ast.FunctionConstructor {
			return true
		}
	}
	return false
}

// synthesizeDefaultConstructor installs a zero-argument `fun new()`
// declaration (config.NewCtorName) on n, wired the same way the parser wires
// an explicit one (internal/parser/declarations.go: member.SetDeclContext,
// fn.Parent), so extractIdentifier's constructor-choice branch (spec §4.3)
// and the member table (internal/symbols) see it like any other method.
func (r *Realizer) synthesizeDefaultConstructor(n *ast.NominalTypeDecl) {
	ctor := &ast.FunctionDecl{Name: config.NewCtorName, Kind: ast.FunctionConstructor}
	ctor.Parent = n
	ctor.SetDeclContext(n)
	n.AddDecl(ctor)
}

// openGenericParams interns a TypePlaceholder per generic parameter
// declaration and stashes it on the declaration (spec §4.2).
func (r *Realizer) openGenericParams(params []*ast.GenericParamDecl) []types.TypePlaceholder {
	var out []types.TypePlaceholder
	for _, g := range params {
		ph := types.TypePlaceholder{Name: g.Name, Origin: g}
		g.RealizedType = ph
		out = append(out, ph)
	}
	return out
}

// realizeFunction builds the FunType for f. For a method/constructor/
// destructor (owner != nil), a synthetic `self` parameter is installed and
// the result is curried as `Self -> (domain...) -> codomain` (spec §4.2):
// the realized type is `(self: Self) -> (domain...) -> Codom` so a bare
// method reference and a fully-applied call both type-check uniformly.
func (r *Realizer) realizeFunction(f *ast.FunctionDecl, owner *ast.NominalTypeDecl) {
	placeholders := r.openGenericParams(f.GenericParams)

	var selfQuals types.QualifierSet
	if owner != nil {
		selfQuals = types.QualifierSet(types.QualCst)
		if f.Mutating || f.Kind == ast.FunctionConstructor || f.Kind == ast.FunctionDestructor {
			selfQuals = types.QualifierSet(types.QualMut)
		}
	}

	var dom []types.Param
	for _, p := range f.Params {
		pt := r.realizeParam(p)
		dom = append(dom, types.Param{Label: p.Label, Type: pt})
	}

	// A constructor's codomain is always Self (`A -> Self`, spec §4.2) and a
	// destructor's is always Nothing, regardless of any written CodomSig; a
	// regular function/method defaults to Nothing and otherwise realizes
	// its CodomSig.
	var codom types.QualType
	switch {
	case f.Kind == ast.FunctionConstructor:
		codom = types.QualType{Bare: owner.RealizedType, Quals: selfQuals}
	case f.Kind == ast.FunctionDestructor:
		codom = types.QualType{Bare: r.cc.WellKnown.Nothing, Quals: types.DefaultDeclQualifiers}
	case f.CodomSig != nil:
		codom = r.realizeTypeSigQualified(f.CodomSig)
	default:
		codom = types.QualType{Bare: r.cc.WellKnown.Nothing, Quals: types.DefaultDeclQualifiers}
	}

	inner := types.FunType{Placeholders: placeholders, Dom: dom, Codom: codom}
	innerType := r.cc.Interner.GetFunType(inner)

	if owner == nil {
		f.SetType(&types.QualType{Bare: innerType, Quals: types.DefaultDeclQualifiers})
		return
	}

	selfDecl := &ast.ParamDecl{Label: "self", Name: "self"}
	selfDecl.SetType(&types.QualType{Bare: owner.RealizedType, Quals: selfQuals})
	f.SelfDecl = selfDecl

	curried := types.FunType{
		Dom:   []types.Param{{Label: "self", Type: *selfDecl.Type()}},
		Codom: types.QualType{Bare: innerType, Quals: types.DefaultDeclQualifiers},
	}
	f.SetType(&types.QualType{Bare: r.cc.Interner.GetFunType(curried), Quals: types.DefaultDeclQualifiers})
}

func (r *Realizer) realizeParam(p *ast.ParamDecl) types.QualType {
	if p.TypeSig == nil {
		// A parameter built with its type already set (rather than parsed
		// with a TypeSig) keeps that type; only fall back to Anything when
		// nothing has been set yet.
		if existing := p.Type(); existing != nil {
			return *existing
		}
		qt := types.QualType{Bare: r.cc.WellKnown.Anything, Quals: 0}
		p.SetType(&qt)
		return qt
	}
	qt := r.realizeTypeSigQualified(p.TypeSig)
	p.SetType(&qt)
	return qt
}

func (r *Realizer) realizeProperty(p *ast.PropertyDecl) {
	var qt types.QualType
	if p.TypeSig != nil {
		qt = r.realizeTypeSigQualified(p.TypeSig)
	} else {
		qt = types.QualType{Bare: r.cc.Interner.FreshTypeVar(), Quals: types.DefaultDeclQualifiers}
	}
	if qt.Quals == 0 {
		qt.Quals = types.DefaultDeclQualifiers
	}
	if !p.IsConstant {
		qt.Quals = types.QualifierSet(types.QualMut)
	}
	p.SetType(&qt)
}

// realizeTypeSigQualified realizes sig into a QualType, leaving the
// qualifier set unspecified (0) unless sig explicitly carries one — callers
// decide the applicable default (spec §3.4).
func (r *Realizer) realizeTypeSigQualified(sig ast.TypeSig) types.QualType {
	if q, ok := sig.(*ast.QualifiedTypeSig); ok {
		bare := r.realizeTypeSig(q.Bare)
		return types.QualType{Bare: bare, Quals: q.Quals}
	}
	return types.QualType{Bare: r.realizeTypeSig(sig), Quals: 0}
}

// realizeTypeSig realizes a bare syntactic signature into a semantic Type,
// opening any referenced generic declaration into a BoundGenericType when
// the use site supplies explicit specialization args, or leaving it
// openable for the solver otherwise (spec §4.2, §4.4).
func (r *Realizer) realizeTypeSig(sig ast.TypeSig) types.Type {
	switch s := sig.(type) {
	case *ast.QualifiedTypeSig:
		return r.realizeTypeSig(s.Bare)
	case *ast.IdentifierTypeSig:
		return r.realizeIdentifierTypeSig(s)
	case *ast.NestedIdentifierTypeSig:
		return r.realizeReferredDecl(s.Referred, s)
	case *ast.ImplicitNestedIdentifierTypeSig:
		return r.realizeReferredDecl(s.Referred, s)
	case *ast.FunctionTypeSig:
		var dom []types.Param
		for _, p := range s.Params {
			dom = append(dom, types.Param{Label: p.Label, Type: r.realizeTypeSigQualified(p.Type)})
		}
		codom := r.realizeTypeSigQualified(s.Codom)
		return r.cc.Interner.GetFunType(types.FunType{Dom: dom, Codom: codom})
	default:
		r.sink.Report(diag.Error, diag.InvalidTypeIdentifier, sig, nil, "malformed type signature")
		return types.ErrorType
	}
}

func (r *Realizer) realizeIdentifierTypeSig(s *ast.IdentifierTypeSig) types.Type {
	base := r.realizeReferredDecl(s.Referred, s)
	if len(s.SpecializationArgs) == 0 {
		return base
	}
	bindings := make(map[string]types.QualType, len(s.SpecializationArgs))
	for name, argSig := range s.SpecializationArgs {
		bindings[name] = r.realizeTypeSigQualified(argSig)
	}
	info := types.Info(base)
	if !info.CanBeOpened() {
		r.sink.Report(diag.Warning, diag.SuperfluousSpecialization, s, nil,
			"type %q takes no generic parameters; specialization ignored", base.String())
		return base
	}
	return r.cc.Interner.GetBoundGeneric(types.BoundGenericType{Base: base, Bindings: bindings})
}

func (r *Realizer) realizeReferredDecl(d ast.Decl, anchor ast.Node) types.Type {
	switch decl := d.(type) {
	case *ast.NominalTypeDecl:
		if decl.RealizedType == nil {
			r.realizeNominalType(decl)
		}
		return decl.RealizedType
	case *ast.GenericParamDecl:
		if decl.RealizedType == nil {
			decl.RealizedType = types.TypePlaceholder{Name: decl.Name, Origin: decl}
		}
		return decl.RealizedType
	case *ast.BuiltinTypeDecl:
		return decl.RealizedType
	default:
		r.sink.Report(diag.Error, diag.InvalidTypeIdentifier, anchor, nil, "identifier does not name a type")
		return types.ErrorType
	}
}
