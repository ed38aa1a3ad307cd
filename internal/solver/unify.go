package solver

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/types"
)

// unify structurally unifies a and b under subst, binding free TypeVars as
// it goes (spec §4.4.1 equality constraints, §3.5 substitution table).
// Bound generics unify bindings key-by-key; nominal types and builtins
// unify only with themselves (they are already hash-consed, so identity
// comparison after substitution is exact structural comparison). A
// non-nil sink lets the FunType case report a mismatched parameter label
// as a penalty rather than a hard failure (spec §4.4.3: "mismatched
// labels are reported as incorrect-parameter-label with a penalty;
// sub-equalities continue") — pass nil to unify without that diagnostic
// (e.g. while speculatively trying a disjunction branch).
func unify(subst types.Subst, a, b types.Type) bool {
	return unifyDiag(nil, nil, nil, subst, a, b)
}

func unifyDiag(sink *diag.Sink, anchor ast.Node, path []diag.PathStep, subst types.Subst, a, b types.Type) bool {
	a = subst.Get(a)
	b = subst.Get(b)

	if av, ok := a.(types.TypeVar); ok {
		if bv, ok := b.(types.TypeVar); ok && av.ID == bv.ID {
			return true
		}
		subst.Set(av, b)
		return true
	}
	if bv, ok := b.(types.TypeVar); ok {
		subst.Set(bv, a)
		return true
	}

	if identical(a, b) {
		return true
	}

	switch at := a.(type) {
	case types.FunType:
		bt, ok := b.(types.FunType)
		if !ok || len(at.Dom) != len(bt.Dom) {
			return false
		}
		ok = true
		for i := range at.Dom {
			if at.Dom[i].Label != bt.Dom[i].Label && sink != nil {
				sink.Report(diag.Warning, diag.IncorrectParameterLabel, anchor, path,
					"parameter %d: expected label %q, got %q", i, bt.Dom[i].Label, at.Dom[i].Label)
			}
			if !unifyDiag(sink, anchor, path, subst, at.Dom[i].Type.Bare, bt.Dom[i].Type.Bare) {
				ok = false
			}
		}
		if !unifyDiag(sink, anchor, path, subst, at.Codom.Bare, bt.Codom.Bare) {
			ok = false
		}
		return ok

	case types.BoundGenericType:
		bt, ok := b.(types.BoundGenericType)
		if !ok || !sameBase(at.Base, bt.Base) {
			return false
		}
		for k, av := range at.Bindings {
			bv, ok := bt.Bindings[k]
			if !ok {
				return false
			}
			if !unify(subst, av.Bare, bv.Bare) {
				return false
			}
		}
		return true

	case types.TypeKind:
		bt, ok := b.(types.TypeKind)
		if !ok {
			return false
		}
		return unify(subst, at.Inner, bt.Inner)

	default:
		// BuiltinType, NominalType, TypePlaceholder, errorType: already
		// compared by == above; anything else is a genuine mismatch.
		return false
	}
}

func sameBase(a, b types.Type) bool { return identical(a, b) }

// identical compares two interned types by structural key rather than `==`.
// FunType (slice fields Placeholders/Dom), NominalType (slice Placeholders)
// and BoundGenericType (map Bindings) are not comparable with `==`; since
// both operands can independently carry any of those dynamic types here (a
// disjunction branch's owner, a conformance target, ...), a bare `==` would
// panic at runtime whenever both sides happen to share such a type. Every
// type in the lattice is hash-consed (spec §3.4/§8.1), so structurally equal
// types already share one interned instance and its String() is therefore a
// safe, collision-free stand-in for identity.
func identical(a, b types.Type) bool {
	if isUncomparable(a) || isUncomparable(b) {
		return a.String() == b.String()
	}
	return a == b
}

func isUncomparable(t types.Type) bool {
	switch t.(type) {
	case types.FunType, types.NominalType, types.BoundGenericType, types.TypeKind:
		return true
	default:
		return false
	}
}

// conforms checks the structural-conformance rule a `T <= U` constraint
// needs (spec §4.4.2): identical types conform, and a nominal type conforms
// to an interface it is registered against. It receives bare types only, so
// qualifiers take no part in the check.
func conforms(reg *types.ConformanceRegistry, sub, super types.Type) bool {
	if identical(sub, super) {
		return true
	}
	subNom, ok1 := sub.(types.NominalType)
	superNom, ok2 := super.(types.NominalType)
	if !ok1 || !ok2 {
		return false
	}
	if superNom.Kind != types.NominalInterface {
		return false
	}
	return reg.Conforms(subNom.Name, superNom.Name)
}

// qualifiersCompatible encodes a qualifier rule: equal qualifier sets for
// `~=`; for `<=`, any source qualifier set is accepted unless the target
// requires @mut, in which case the source must too. Nothing calls it: the
// solver's constraints carry bare types, so neither unification nor
// conforms compares qualifiers.
func qualifiersCompatible(equality bool, sub, super types.QualifierSet) bool {
	if equality {
		return sub.Equal(super)
	}
	if super.Has(types.QualMut) {
		return sub.Has(types.QualMut)
	}
	return true
}
