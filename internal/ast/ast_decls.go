package ast

import "github.com/nomina-lang/nomina/internal/types"

// Module is the top-level declaration context (spec §3.1, §3.3). The two
// built-in modules (`builtin`, `stdlib`) and every `local(name)` module are
// represented the same way.
type Module struct {
	DeclContextBase
	Name string
}

func NewModule(name string) *Module {
	m := &Module{Name: name}
	m.Module = name
	return m
}

// PropertyDecl is a `let`/`var` property declaration (spec §3.2).
type PropertyDecl struct {
	TypedBase
	Name           string
	IsConstant     bool // let (cst) vs var (mut)
	TypeSig        TypeSig // nil if the type must be inferred
	BindingOp      BindingOp
	Initializer    Expr // nil for parameters without a default
}

func (p *PropertyDecl) DeclName() string  { return p.Name }
func (p *PropertyDecl) Overloadable() bool { return false }

// ParamDecl is a function parameter declaration (spec §3.2).
type ParamDecl struct {
	TypedBase
	Label       string // external label; "" if none
	Name        string // internal binding name
	TypeSig     TypeSig
	DefaultExpr Expr // nil if no default
}

func (p *ParamDecl) DeclName() string   { return p.Name }
func (p *ParamDecl) Overloadable() bool { return false }

// GenericParamDecl is a generic type parameter declaration (spec §3.2,
// §4.2): it always realizes to an interned TypePlaceholder.
type GenericParamDecl struct {
	BaseNode
	Name         string
	RealizedType types.Type // the interned TypePlaceholder, set by the Type Realizer
}

func (g *GenericParamDecl) DeclName() string   { return g.Name }
func (g *GenericParamDecl) Overloadable() bool { return false }

// FunctionKind distinguishes the four function declaration shapes (spec
// §3.2, §4.2).
type FunctionKind uint8

const (
	FunctionRegular FunctionKind = iota
	FunctionMethod
	FunctionConstructor
	FunctionDestructor
)

// FunctionDecl is a function/method/constructor/destructor declaration
// (spec §3.2). It is itself a declaration context: its generic parameters
// and value parameters (plus, for methods, a synthetic `self`) are declared
// directly in it; the function body is a nested BlockStmt context.
type FunctionDecl struct {
	DeclContextBase
	TypedBase2 // carries Typ separately since DeclContextBase already embeds BaseNode
	Name          string
	Kind          FunctionKind
	GenericParams []*GenericParamDecl
	Params        []*ParamDecl
	CodomSig      TypeSig // nil => Nothing
	Body          *BlockStmt
	Mutating      bool // constructors/methods: whether self is @mut
	SelfDecl      *ParamDecl // synthetic `self`, installed by the Type Realizer for methods/ctors/dtors
}

func (f *FunctionDecl) DeclName() string   { return f.Name }
func (f *FunctionDecl) Overloadable() bool { return true }
func (f *FunctionDecl) Type() *types.QualType     { return f.TypedBase2.Typ }
func (f *FunctionDecl) SetType(q *types.QualType) { f.TypedBase2.Typ = q }

// TypedBase2 avoids ambiguous-embedding with DeclContextBase's BaseNode: a
// node that is both a DeclContext and Typed only needs the Typ field, since
// Range/ModuleID/DeclContext are already promoted from DeclContextBase.
type TypedBase2 struct {
	Typ *types.QualType
}

// NominalKind mirrors types.NominalKind but lives in ast so declaration
// nodes don't need to import the realized-type package for this tag.
type NominalKind uint8

const (
	NominalStruct NominalKind = iota
	NominalUnion
	NominalInterface
)

// NominalTypeDecl is a struct/union/interface declaration (spec §3.2,
// §3.3): a declaration context that owns a lazily-built member lookup
// table (spec §3.3), populated by internal/symbols.
type NominalTypeDecl struct {
	DeclContextBase
	Name          string
	Kind          NominalKind
	GenericParams []*GenericParamDecl
	RealizedType  types.Type // set by the Type Realizer
}

func (n *NominalTypeDecl) DeclName() string   { return n.Name }
func (n *NominalTypeDecl) Overloadable() bool { return false }

// ExtensionDecl is a type-extension declaration (spec §3.2, §4.1 step 3):
// a declaration context whose declarations are folded into the extended
// type's member lookup table.
type ExtensionDecl struct {
	DeclContextBase
	ExtendedTypeSig TypeSig
	Conformances    []TypeSig // interfaces this extension claims conformance to
}

// DeclName and Overloadable let an ExtensionDecl sit in a Module's
// declaration list alongside named declarations (spec §3.3); extensions are
// never looked up by name themselves, so DeclName is a diagnostic label
// only and Overloadable is always false (there is no sense in which two
// extensions "conflict").
func (e *ExtensionDecl) DeclName() string   { return "extension" }
func (e *ExtensionDecl) Overloadable() bool { return false }

// BuiltinTypeDecl stands in for a well-known built-in type so it can
// participate in name binding/lookup like any other nominal declaration
// (spec §4.1 step 5).
type BuiltinTypeDecl struct {
	BaseNode
	Name         string
	RealizedType types.Type
}

func (b *BuiltinTypeDecl) DeclName() string   { return b.Name }
func (b *BuiltinTypeDecl) Overloadable() bool { return false }
