// Package constraints implements the Constraint Extractor (spec §4.3): it
// walks a realized function body and emits typed constraints the solver
// (internal/solver) must satisfy, each tagged with a priority and a
// location (an anchor node plus a path of refining steps) so diagnostics
// can point at the exact sub-expression responsible.
//
// Grounded on the teacher's internal/analyzer/constraints.go, which builds
// the same kind of flat constraint list ahead of a separate solving pass,
// though the constraint kinds themselves are rebuilt for spec §4.4's
// disjunction-based overload resolution rather than the teacher's
// row-unification constraints.
package constraints

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/types"
)

// Kind distinguishes the six constraint shapes spec §4.4 solves.
type Kind uint8

const (
	KindEquality Kind = iota
	KindConformance
	KindSpecialization
	KindValueMember
	KindTypeMember
	KindDisjunction
)

// Priority values exactly match spec §4.4's weighting table: equality
// constraints are resolved before anything else, disjunctions last.
const (
	PriorityEquality       = 500
	PriorityConformance    = 400
	PrioritySpecialization = 300
	PriorityMember         = 200
	PriorityDisjunction    = 0
)

// Location refines a constraint's anchor node to the sub-expression that
// produced it (spec §4.3).
type Location struct {
	Anchor ast.Node
	Path   []diag.PathStep
}

// Branch is one candidate resolution of a Disjunction constraint: binding
// identifier to decl, at instantiated type Type, via a nested set of
// sub-constraints the solver must additionally satisfy if this branch is
// chosen: equalities, or for a type declaration's constructor choice a
// value-member lookup. Weight breaks ties when more than one branch would
// otherwise satisfy the disjunction (spec §4.4.5): lower is preferred.
type Branch struct {
	Decl     ast.Decl
	Type     types.Type
	Weight   int
	Equality []*Constraint
}

// Constraint is one unit the solver must satisfy (spec §4.4).
type Constraint struct {
	ID       int
	Kind     Kind
	Priority int
	Location Location

	// Equality / Conformance / Specialization payload.
	A, B types.Type

	// ValueMember / TypeMember payload.
	Owner  types.Type
	Member string
	Result types.Type // fresh TypeVar the member's type unifies into

	// Disjunction payload.
	Identifier *ast.IdentifierExpr
	Branches   []Branch
}

// Extractor walks one function body at a time, emitting into a flat slice.
type Extractor struct {
	cc     *compiler.CompilerContext
	sink   *diag.Sink
	nextID int
}

func New(cc *compiler.CompilerContext, sink *diag.Sink) *Extractor {
	return &Extractor{cc: cc, sink: sink}
}

func (e *Extractor) freshID() int { e.nextID++; return e.nextID }

// ExtractFunction emits every constraint a function's body gives rise to
// (spec §4.3). Property initializers go through ExtractProperty instead.
func (e *Extractor) ExtractFunction(f *ast.FunctionDecl) []*Constraint {
	var out []*Constraint
	if f.Body == nil {
		return out
	}
	e.extractBlock(f.Body, &out)
	return out
}

func (e *Extractor) ExtractProperty(p *ast.PropertyDecl) []*Constraint {
	if p.Initializer == nil {
		return nil
	}
	var out []*Constraint
	initType := e.extractExpr(p.Initializer, &out)
	out = append(out, &Constraint{
		ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
		Location: Location{Anchor: p, Path: []diag.PathStep{{Kind: diag.StepInitializer}}},
		A: p.Type().Bare, B: initType,
	})
	return out
}

func (e *Extractor) extractBlock(block *ast.BlockStmt, out *[]*Constraint) {
	for _, stmt := range block.Stmts {
		e.extractStmt(stmt, out)
	}
}

func (e *Extractor) extractStmt(stmt ast.Stmt, out *[]*Constraint) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		rhsType := e.extractExpr(s.RValue, out)
		// A `let`/`var`-introduced local's identifier is its own Decl
		// (spec §4.1); its type is simply the initializer's, not a
		// separate equality constraint against itself (declType would
		// see its own not-yet-assigned type and fall back to ErrorType).
		if id, ok := s.LValue.(*ast.IdentifierExpr); ok && s.IsDecl {
			id.SetType(&types.QualType{Bare: rhsType, Quals: declQualifiers(id.IsConstant)})
			break
		}
		lhsType := e.extractExpr(s.LValue, out)
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: s, Path: []diag.PathStep{{Kind: diag.StepBinding}}},
			A: lhsType, B: rhsType,
		})
	case *ast.ReturnStmt:
		if s.Value != nil {
			e.extractExpr(s.Value, out)
		}
	case *ast.IfStmt:
		condType := e.extractExpr(s.Cond, out)
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: s, Path: []diag.PathStep{{Kind: diag.StepCondition}}},
			A: condType, B: e.cc.WellKnown.Bool,
		})
		e.extractBlock(s.Then, out)
		if s.Else != nil {
			e.extractBlock(s.Else, out)
		}
	case *ast.WhileStmt:
		condType := e.extractExpr(s.Cond, out)
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: s, Path: []diag.PathStep{{Kind: diag.StepCondition}}},
			A: condType, B: e.cc.WellKnown.Bool,
		})
		e.extractBlock(s.Body, out)
	case ast.Expr:
		e.extractExpr(s, out)
	}
}

// extractExpr returns the (possibly still unsolved, fresh-TypeVar-laden)
// type of e, recording constraints along the way, and stashes that type on
// e itself so the Dispatcher can later read it back.
func (e *Extractor) extractExpr(expr ast.Expr, out *[]*Constraint) types.Type {
	switch ex := expr.(type) {
	case *ast.LiteralExpr:
		t := e.literalType(ex.Kind)
		ex.SetType(&types.QualType{Bare: t, Quals: types.DefaultDeclQualifiers})
		return t

	case *ast.IdentifierExpr:
		return e.extractIdentifier(ex, out)

	case *ast.InfixExpr:
		lhsType := e.extractExpr(ex.LHS, out)
		rhsType := e.extractExpr(ex.RHS, out)

		// Reference-identity operators are builtins, not overloadable value
		// members: they always type Bool and place no constraint on either
		// operand (spec §4.3, §8 property 7).
		if ex.Op == "===" || ex.Op == "!==" {
			opFun := e.cc.Interner.GetFunType(types.FunType{
				Dom:   []types.Param{{Type: types.QualType{Bare: e.cc.WellKnown.Anything}}, {Type: types.QualType{Bare: e.cc.WellKnown.Anything}}},
				Codom: types.QualType{Bare: e.cc.WellKnown.Bool},
			})
			ex.OpType = &types.QualType{Bare: opFun}
			ex.SetType(&types.QualType{Bare: e.cc.WellKnown.Bool})
			return e.cc.WellKnown.Bool
		}

		result := e.cc.Interner.FreshTypeVar()
		opFun := types.FunType{Dom: []types.Param{{Type: types.QualType{Bare: rhsType}}}, Codom: types.QualType{Bare: result}}
		ex.OpType = &types.QualType{Bare: e.cc.Interner.GetFunType(opFun)}
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindValueMember, Priority: PriorityMember,
			Location: Location{Anchor: ex, Path: []diag.PathStep{{Kind: diag.StepInfixOp}}},
			Owner: lhsType, Member: ex.Op, Result: ex.OpType.Bare,
		})
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.PrefixExpr:
		operandType := e.extractExpr(ex.Operand, out)
		result := e.cc.Interner.FreshTypeVar()
		ex.OpType = &types.QualType{Bare: result}
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindValueMember, Priority: PriorityMember,
			Location: Location{Anchor: ex, Path: []diag.PathStep{{Kind: diag.StepPrefixOp}}},
			Owner: operandType, Member: ex.Op, Result: result,
		})
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.CallExpr:
		calleeType := e.extractExpr(ex.Callee, out)
		var dom []types.Param
		for _, arg := range ex.Args {
			argType := e.extractExpr(arg.Value, out)
			dom = append(dom, types.Param{Label: arg.Label, Type: types.QualType{Bare: argType}})
		}
		result := e.cc.Interner.FreshTypeVar()
		expected := e.cc.Interner.GetFunType(types.FunType{Dom: dom, Codom: types.QualType{Bare: result}})
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: ex, Path: []diag.PathStep{{Kind: diag.StepCall}}},
			A: calleeType, B: expected,
		})
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.SelectExpr:
		ownerType := e.extractExpr(ex.Owner, out)
		result := e.cc.Interner.FreshTypeVar()
		*out = append(*out, &Constraint{
			ID: e.freshID(), Kind: KindValueMember, Priority: PriorityMember,
			Location: Location{Anchor: ex, Path: []diag.PathStep{{Kind: diag.StepSelect}}},
			Owner: ownerType, Member: ex.Ownee, Result: result,
		})
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.ImplicitSelectExpr:
		result := e.cc.Interner.FreshTypeVar()
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.CastExpr:
		e.extractExpr(ex.Operand, out)
		result := e.cc.Interner.FreshTypeVar()
		ex.SetType(&types.QualType{Bare: result})
		return result

	case *ast.SubtypeTestExpr:
		e.extractExpr(ex.Operand, out)
		ex.SetType(&types.QualType{Bare: e.cc.WellKnown.Bool})
		return e.cc.WellKnown.Bool

	case *ast.ParenExpr:
		inner := e.extractExpr(ex.Inner, out)
		ex.SetType(&types.QualType{Bare: inner})
		return inner

	case *ast.ArrayLiteralExpr:
		elem := e.cc.Interner.FreshTypeVar()
		for _, el := range ex.Elements {
			elType := e.extractExpr(el, out)
			*out = append(*out, &Constraint{
				ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
				Location: Location{Anchor: el}, A: elem, B: elType,
			})
		}
		ex.SetType(&types.QualType{Bare: elem})
		return elem

	case *ast.LambdaExpr:
		return e.extractLambda(ex, out)

	default:
		result := e.cc.Interner.FreshTypeVar()
		return result
	}
}

func (e *Extractor) extractLambda(l *ast.LambdaExpr, out *[]*Constraint) types.Type {
	var dom []types.Param
	for _, p := range l.Params {
		var pt types.Type
		if t := p.Type(); t != nil {
			pt = t.Bare
		} else {
			pt = e.cc.Interner.FreshTypeVar()
			p.SetType(&types.QualType{Bare: pt})
		}
		dom = append(dom, types.Param{Label: p.Label, Type: types.QualType{Bare: pt}})
	}
	codom := e.cc.Interner.FreshTypeVar()
	if l.Body != nil {
		e.extractBlock(l.Body, out)
	}
	ft := e.cc.Interner.GetFunType(types.FunType{Dom: dom, Codom: types.QualType{Bare: codom}})
	l.SetType(&types.QualType{Bare: ft})
	return ft
}

func (e *Extractor) literalType(kind ast.LiteralKind) types.Type {
	switch kind {
	case ast.LiteralBool:
		return e.cc.WellKnown.Bool
	case ast.LiteralInt:
		return e.cc.WellKnown.Int
	case ast.LiteralFloat:
		return e.cc.WellKnown.Float
	case ast.LiteralString:
		return e.cc.WellKnown.String
	default:
		return e.cc.WellKnown.Nothing
	}
}

// extractIdentifier emits a Disjunction constraint whenever the identifier
// has more than one admissible interpretation (spec §4.1/§4.3/§4.4.5/§4.5):
// an overload set of more than one declaration, or a single declaration that
// is itself a type declaration — which contributes two competing branches,
// not one (see typeDeclBranches). Anything else (a single, non-type
// referent) just contributes its type directly.
func (e *Extractor) extractIdentifier(id *ast.IdentifierExpr, out *[]*Constraint) types.Type {
	decls := id.ReferredDecls()
	if len(decls) == 0 {
		result := e.cc.Interner.FreshTypeVar()
		id.SetType(&types.QualType{Bare: result})
		return result
	}
	if len(decls) == 1 && !isTypeDecl(decls[0]) {
		t := declType(decls[0])
		id.SetType(&types.QualType{Bare: t})
		return t
	}

	result := e.cc.Interner.FreshTypeVar()
	var branches []Branch
	for _, d := range decls {
		branches = append(branches, e.branchesForDecl(id, d, result)...)
	}
	*out = append(*out, &Constraint{
		ID: e.freshID(), Kind: KindDisjunction, Priority: PriorityDisjunction,
		Location:   Location{Anchor: id, Path: []diag.PathStep{{Kind: diag.StepIdentifier}}},
		Identifier: id, Branches: branches,
	})
	id.SetType(&types.QualType{Bare: result})
	return result
}

// isTypeDecl reports whether d names a type rather than a value (spec
// §4.3): these need the constructor/kind disjunction treatment even as a
// lone candidate, since a bare struct/interface name is ambiguous between
// "call me to construct" and "use me as a type value" until the rest of the
// expression disambiguates it.
func isTypeDecl(d ast.Decl) bool {
	switch d.(type) {
	case *ast.NominalTypeDecl, *ast.BuiltinTypeDecl:
		return true
	default:
		return false
	}
}

// branchesForDecl returns the disjunction branch(es) contributed by a
// single candidate declaration: one branch for an ordinary value/function
// declaration, or the constructor-choice-plus-kind-choice pair for a type
// declaration (spec §4.3).
func (e *Extractor) branchesForDecl(id *ast.IdentifierExpr, d ast.Decl, result types.Type) []Branch {
	if isTypeDecl(d) {
		return e.typeDeclBranches(id, d, result)
	}
	t := declType(d)
	return []Branch{{
		Decl: d, Type: t, Weight: unboundPlaceholderWeight(t, id),
		Equality: []*Constraint{{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: id, Path: []diag.PathStep{{Kind: diag.StepIdentifier}}},
			A: result, B: t,
		}},
	}}
}

// typeDeclBranches builds the two interpretations spec §4.3 requires for a
// type-declaration identifier: a constructor choice — `valueMember(t(ident),
// typeKind, "new")` — and a kind choice — `t(ident) ~= kind(typeDecl)`. Both
// carry the same weight, so when both survive the solver reports the tie as
// ambiguous, unless PreferFirstOnTie is set, in which case the constructor
// choice (listed first) is kept. Without this, a struct
// name used as a call target (`S()`) has nothing but a TypeKind to unify
// against the call's expected FunType and always fails with
// IncompatibleTypes.
func (e *Extractor) typeDeclBranches(id *ast.IdentifierExpr, d ast.Decl, result types.Type) []Branch {
	realized := realizedTypeOf(d)
	kindType := types.TypeKind{Inner: realized}

	ctorBranch := Branch{
		Decl: d, Type: kindType, Weight: unboundPlaceholderWeight(realized, id),
		Equality: []*Constraint{{
			ID: e.freshID(), Kind: KindValueMember, Priority: PriorityMember,
			Location: Location{Anchor: id, Path: []diag.PathStep{{Kind: diag.StepIdentifier}}},
			Owner: kindType, Member: config.NewCtorName, Result: result,
		}},
	}
	kindBranch := Branch{
		Decl: d, Type: kindType, Weight: unboundPlaceholderWeight(realized, id),
		Equality: []*Constraint{{
			ID: e.freshID(), Kind: KindEquality, Priority: PriorityEquality,
			Location: Location{Anchor: id, Path: []diag.PathStep{{Kind: diag.StepIdentifier}}},
			A: result, B: kindType,
		}},
	}
	return []Branch{ctorBranch, kindBranch}
}

// realizedTypeOf extracts the interned Type a type declaration realized to.
func realizedTypeOf(d ast.Decl) types.Type {
	switch decl := d.(type) {
	case *ast.NominalTypeDecl:
		return decl.RealizedType
	case *ast.BuiltinTypeDecl:
		return decl.RealizedType
	default:
		return types.ErrorType
	}
}

// unboundPlaceholderWeight counts the generic placeholders t carries that
// id's use site did not bind explicitly (spec §4.3: branch weight is "the
// number of placeholders the identifier didn't bind explicitly", not a
// candidate index — weighing by index makes every branch's weight unique,
// so two equally-specific overloads can never tie and ambiguity can never
// be reported, spec §8 property 9).
func unboundPlaceholderWeight(t types.Type, id *ast.IdentifierExpr) int {
	names := placeholderNames(t)
	if len(names) == 0 {
		return 0
	}
	weight := 0
	for _, name := range names {
		if _, bound := id.SpecializationArgs[name]; !bound {
			weight++
		}
	}
	return weight
}

// placeholderNames returns the generic-parameter names t's own shape
// carries, unwrapping a TypeKind to its inner type first.
func placeholderNames(t types.Type) []string {
	switch v := t.(type) {
	case types.TypeKind:
		return placeholderNames(v.Inner)
	case types.FunType:
		names := make([]string, len(v.Placeholders))
		for i, p := range v.Placeholders {
			names[i] = p.Name
		}
		return names
	case types.NominalType:
		names := make([]string, len(v.Placeholders))
		for i, p := range v.Placeholders {
			names[i] = p.Name
		}
		return names
	default:
		return nil
	}
}

// declQualifiers maps a `let`/`var` local's constancy to its qualifier set
// (spec §3.4: `cst` for an immutable binding, `mut` for a mutable one).
func declQualifiers(isConstant bool) types.QualifierSet {
	if isConstant {
		return types.QualifierSet(types.QualCst)
	}
	return types.QualifierSet(types.QualMut)
}

func declType(d ast.Decl) types.Type {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		if decl.Type() != nil {
			return decl.Type().Bare
		}
	case *ast.PropertyDecl:
		if decl.Type() != nil {
			return decl.Type().Bare
		}
	case *ast.ParamDecl:
		if decl.Type() != nil {
			return decl.Type().Bare
		}
	case *ast.GenericParamDecl:
		return decl.RealizedType
	case *ast.IdentifierExpr:
		if decl.Type() != nil {
			return decl.Type().Bare
		}
	}
	return types.ErrorType
}
