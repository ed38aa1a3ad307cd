package ast

import "github.com/nomina-lang/nomina/internal/types"

// TypeSig is implemented by every syntactic type-signature node (spec
// §3.2). Signatures are realized into semantic types by internal/realize;
// RealizedType is nil until that pass runs.
type TypeSig interface {
	Node
	Realized() types.Type
	SetRealized(types.Type)
}

type typeSigBase struct {
	BaseNode
	realized types.Type
}

func (t *typeSigBase) Realized() types.Type        { return t.realized }
func (t *typeSigBase) SetRealized(rt types.Type)   { t.realized = rt }

// QualifiedTypeSig pairs a qualifier set with a bare signature (spec §3.2,
// §3.4): `@cst T`, `@mut T`, or plain `T` (unspecified qualifiers).
type QualifiedTypeSig struct {
	typeSigBase
	Quals types.QualifierSet
	Bare  TypeSig
}

// IdentifierTypeSig is a bare type name, optionally specialized at the use
// site (spec §3.2, §4.2): `T`, `Box<T = Int>`.
type IdentifierTypeSig struct {
	typeSigBase
	Name               string
	Referred           Decl // exactly one, after name binding (spec §4.1)
	SpecializationArgs map[string]TypeSig
}

// NestedIdentifierTypeSig is `A::B` (spec §3.2, §4.1 "Qualified name
// resolution").
type NestedIdentifierTypeSig struct {
	typeSigBase
	Owner    TypeSig
	Name     string
	Referred Decl
}

// ImplicitNestedIdentifierTypeSig is `::B`: the owner is inferred from an
// enclosing nominal-type or extension context (spec §3.2).
type ImplicitNestedIdentifierTypeSig struct {
	typeSigBase
	Name     string
	Referred Decl
}

// ParameterTypeSig is one domain entry of a FunctionTypeSig (spec §3.2).
type ParameterTypeSig struct {
	typeSigBase
	Label string
	Type  TypeSig
}

// FunctionTypeSig is `(A, l b: B) -> C` used as a type, e.g. for a
// function-typed property (spec §3.2).
type FunctionTypeSig struct {
	typeSigBase
	Params []*ParameterTypeSig
	Codom  TypeSig
}

// InvalidTypeSig stands in for a syntactically malformed type signature
// (spec §3.2).
type InvalidTypeSig struct {
	typeSigBase
}
