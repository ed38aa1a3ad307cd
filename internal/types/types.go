// Package types implements the hash-consed semantic type lattice (spec
// §3.4) and its substitution table (spec §3.5). Every constructible type
// is interned: structurally equal types are the same Go value, which is
// what lets the solver compare types by pointer/interface identity instead
// of deep structural recursion on the hot path (spec §8.1).
//
// The style here is lifted from the teacher's internal/typesystem package
// (a discriminated set of Type implementations, a Subst map, Apply/Unify
// free functions) but the lattice itself is rebuilt for a nominal type
// system: structs/unions/interfaces/bound generics replace the teacher's
// structural records/unions/row types.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is implemented by every member of the type lattice.
type Type interface {
	String() string
	// info returns the cached TypeInfo bitset computed at intern time.
	info() TypeInfo
}

// Qualifier is one of the two binding qualifiers (spec §3.4).
type Qualifier uint8

const (
	QualCst Qualifier = 1 << iota
	QualMut
)

// QualifierSet is a small set of Qualifier values. The zero value is
// "unspecified" on a signature, defaulting to QualCst on a declaration
// (spec §3.4).
type QualifierSet uint8

func (q QualifierSet) Has(x Qualifier) bool { return QualifierSet(x)&q != 0 }
func (q QualifierSet) Unspecified() bool    { return q == 0 }
func (q QualifierSet) Equal(o QualifierSet) bool { return q == o }

func (q QualifierSet) String() string {
	var parts []string
	if q.Has(QualCst) {
		parts = append(parts, "@cst")
	}
	if q.Has(QualMut) {
		parts = append(parts, "@mut")
	}
	return strings.Join(parts, " ")
}

// DefaultDeclQualifiers is applied to a declaration whose signature left
// the qualifier set unspecified (spec §3.4).
const DefaultDeclQualifiers QualifierSet = QualifierSet(QualCst)

// QualType pairs a bare type with its qualifier set (spec §3.4).
type QualType struct {
	Bare  Type
	Quals QualifierSet
}

func (q QualType) String() string {
	if q.Quals == 0 {
		return q.Bare.String()
	}
	return q.Quals.String() + " " + q.Bare.String()
}

// WithQualifiers returns a copy of q with its qualifier set replaced.
func (q QualType) WithQualifiers(set QualifierSet) QualType {
	return QualType{Bare: q.Bare, Quals: set}
}

// TypeInfo is a bitset of properties computed once at intern time so
// passes can skip work on ground types (spec §3.4).
type TypeInfo uint8

const (
	InfoHasTypeVar TypeInfo = 1 << iota
	InfoHasPlaceholder
	InfoCanBeOpened
)

func (t TypeInfo) HasTypeVar() bool    { return t&InfoHasTypeVar != 0 }
func (t TypeInfo) HasPlaceholder() bool { return t&InfoHasPlaceholder != 0 }
func (t TypeInfo) CanBeOpened() bool   { return t&InfoCanBeOpened != 0 }

// Info exposes a type's cached TypeInfo bitset.
func Info(t Type) TypeInfo { return t.info() }

// ---------------------------------------------------------------------------
// TypeVar

// TypeVar is an inference variable (spec §3.4). Only the Interner may
// construct one, so that IDs are strictly increasing and globally unique.
type TypeVar struct {
	ID int
}

func (t TypeVar) String() string  { return fmt.Sprintf("τ%d", t.ID) }
func (t TypeVar) info() TypeInfo  { return InfoHasTypeVar }

// ---------------------------------------------------------------------------
// TypePlaceholder

// TypePlaceholder is a reference to a generic parameter declaration (spec
// §3.4). Origin is the *ast.GenericParamDecl the placeholder stands for,
// carried as `any` to avoid an import cycle between ast and types; it is
// only ever compared by identity.
type TypePlaceholder struct {
	Name   string
	Origin any
}

func (t TypePlaceholder) String() string { return t.Name }
func (t TypePlaceholder) info() TypeInfo { return InfoHasPlaceholder | InfoCanBeOpened }

// ---------------------------------------------------------------------------
// BuiltinType

// BuiltinType names one of the well-known built-in types (spec §3.1):
// Anything, Nothing, Bool, Int, Float, String, Error, Assignment, ...
type BuiltinType struct {
	Name string
}

func (t BuiltinType) String() string { return t.Name }
func (t BuiltinType) info() TypeInfo { return 0 }

// ---------------------------------------------------------------------------
// FunType

// Param is one domain entry of a function type: an optional argument
// label paired with its qualified type (spec §3.4).
type Param struct {
	Label string // "" if unlabeled
	Type  QualType
}

// FunType is a (possibly generic) function type (spec §3.4, §4.2).
type FunType struct {
	Placeholders []TypePlaceholder
	Dom          []Param
	Codom        QualType
}

func (t FunType) String() string {
	var doms []string
	for _, p := range t.Dom {
		if p.Label != "" {
			doms = append(doms, p.Label+": "+p.Type.String())
		} else {
			doms = append(doms, p.Type.String())
		}
	}
	prefix := ""
	if len(t.Placeholders) > 0 {
		var names []string
		for _, ph := range t.Placeholders {
			names = append(names, ph.Name)
		}
		prefix = "<" + strings.Join(names, ", ") + ">"
	}
	return fmt.Sprintf("%s(%s) -> %s", prefix, strings.Join(doms, ", "), t.Codom.String())
}

func (t FunType) info() TypeInfo {
	var bits TypeInfo
	if len(t.Placeholders) > 0 {
		bits |= InfoCanBeOpened
	}
	for _, p := range t.Dom {
		bits |= p.Type.Bare.info()
	}
	bits |= t.Codom.Bare.info()
	return bits
}

// ---------------------------------------------------------------------------
// Nominal types: InterfaceType / StructType / UnionType

// NominalKind distinguishes the three nominal-type declaration shapes.
type NominalKind uint8

const (
	NominalStruct NominalKind = iota
	NominalUnion
	NominalInterface
)

// NominalType is the interned type of a struct, union or interface
// declaration (spec §3.4). Decl is the owning *ast.NominalTypeDecl, carried
// as `any` to avoid a types->ast import cycle.
type NominalType struct {
	Kind         NominalKind
	Name         string
	Decl         any
	Placeholders []TypePlaceholder
}

func (t NominalType) String() string { return t.Name }
func (t NominalType) info() TypeInfo {
	if len(t.Placeholders) > 0 {
		return InfoCanBeOpened
	}
	return 0
}

// ---------------------------------------------------------------------------
// BoundGenericType

// BoundGenericType is a specialization snapshot of an openable type (spec
// §3.4, §4.2 "Closing / binding"). Bindings maps each of the base type's
// placeholders, by name, to a concrete qualified type.
type BoundGenericType struct {
	Base     Type
	Bindings map[string]QualType
}

func (t BoundGenericType) String() string {
	keys := make([]string, 0, len(t.Bindings))
	for k := range t.Bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, k+" = "+t.Bindings[k].String())
	}
	return fmt.Sprintf("%s<%s>", t.Base.String(), strings.Join(parts, ", "))
}

func (t BoundGenericType) info() TypeInfo {
	var bits TypeInfo
	for _, v := range t.Bindings {
		bits |= v.Bare.info()
	}
	return bits
}

// canonicalKey returns the binding-sorted string key used by the interner
// so that two BoundGenericType values with the same bindings in different
// map-iteration order still hash-cons to the same instance.
func (t BoundGenericType) canonicalKey() string {
	return "boundgeneric:" + t.String()
}

// ---------------------------------------------------------------------------
// TypeKind — the metatype of a type used as a value (spec §3.4).

type TypeKind struct {
	Inner Type
}

func (t TypeKind) String() string { return "Kind<" + t.Inner.String() + ">" }
func (t TypeKind) info() TypeInfo { return t.Inner.info() }

// ---------------------------------------------------------------------------
// ErrorType — the error-recovery placeholder (spec §3.1, §7).

type errorType struct{}

func (errorType) String() string { return "<error>" }
func (errorType) info() TypeInfo { return 0 }

// ErrorType is the single interned error-recovery type.
var ErrorType Type = errorType{}
