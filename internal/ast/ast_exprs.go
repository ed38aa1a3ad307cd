package ast

import "github.com/nomina-lang/nomina/internal/types"

// Expr is implemented by every expression node. All expressions are Typed
// once the Type Realizer / Constraint Extractor have run (spec §3.2
// invariant: "every node visited by type realization has type != nil
// afterwards").
type Expr interface {
	Typed
}

// LiteralKind distinguishes the five literal forms (spec §3.2).
type LiteralKind uint8

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralNull
)

type LiteralExpr struct {
	TypedBase
	Kind LiteralKind
	Raw  string
}

// IdentifierExpr is a (possibly specialized) identifier used as a value or
// type expression (spec §3.2, §4.1, §4.3).
type IdentifierExpr struct {
	TypedBase
	Name               string
	Referred           []Decl
	SpecializationArgs map[string]TypeSig // explicit <T = A, ...> at the use site; nil if none
	// IsConstant is meaningful only when this identifier doubles as its own
	// Decl (a local `let`/`var` binding, spec §4.1/§4.3): it records
	// whether the binding was introduced with `let` (cst) or `var` (mut),
	// mirroring PropertyDecl.IsConstant.
	IsConstant bool
}

func (i *IdentifierExpr) IdentName() string        { return i.Name }
func (i *IdentifierExpr) ReferredDecls() []Decl     { return i.Referred }
func (i *IdentifierExpr) SetReferredDecls(d []Decl) { i.Referred = d }

// DeclName and Overloadable let an IdentifierExpr double as the Decl a
// binding statement introduces: `x := 5` both uses and declares `x` (spec
// §4.1, §4.3), so the identifier on the left of a fresh binding is folded
// directly into its enclosing context's declaration list rather than
// wrapped in a separate node kind.
func (i *IdentifierExpr) DeclName() string   { return i.Name }
func (i *IdentifierExpr) Overloadable() bool { return false }

// SelectExpr is `owner.ownee` (spec §3.2, §4.3).
type SelectExpr struct {
	TypedBase
	Owner Expr
	Ownee string
}

// ImplicitSelectExpr is `.ownee` (spec §3.2, §4.3): the owner is inferred
// from context (e.g. a union case constructor at an expected type).
type ImplicitSelectExpr struct {
	TypedBase
	Ownee string
}

// InfixExpr is `lhs op rhs` (spec §3.2, §4.3).
type InfixExpr struct {
	TypedBase
	LHS Expr
	Op  string
	RHS Expr
	// OpType is the type assigned to the operator identifier itself: the
	// unlabeled `(RHS) -> T` the extractor builds around a fresh T, or
	// `(Anything, Anything) -> Bool` for `===`/`!==` (spec §4.3).
	OpType *types.QualType
}

// PrefixExpr is `op operand` (spec §3.2, §4.3).
type PrefixExpr struct {
	TypedBase
	Op      string
	Operand Expr
	OpType  *types.QualType
}

// CallExpr is `callee(args...)` (spec §3.2, §4.3).
type CallExpr struct {
	TypedBase
	Callee Expr
	Args   []*CallArgExpr
}

// CallArgExpr is one (optionally labeled, optionally binding-qualified)
// call argument (spec §3.2).
type CallArgExpr struct {
	TypedBase
	Label     string // "" if unlabeled
	Value     Expr
	HasOp     bool
	Op        BindingOp
}

// LambdaExpr is an anonymous function literal (spec §3.2).
type LambdaExpr struct {
	DeclContextBase
	TypedBase2
	Params   []*ParamDecl
	CodomSig TypeSig
	Body     *BlockStmt
}

func (l *LambdaExpr) Type() *types.QualType     { return l.TypedBase2.Typ }
func (l *LambdaExpr) SetType(q *types.QualType) { l.TypedBase2.Typ = q }

// CastKind distinguishes safe ("as?") and unsafe ("as!") casts.
type CastKind uint8

const (
	CastSafe CastKind = iota
	CastUnsafe
)

// CastExpr is `expr as[?|!] T` (spec §3.2).
type CastExpr struct {
	TypedBase
	Operand Expr
	Kind    CastKind
	TypeSig TypeSig
}

// SubtypeTestExpr is `expr is T` (spec §3.2).
type SubtypeTestExpr struct {
	TypedBase
	Operand Expr
	TypeSig TypeSig
}

// ParenExpr is `(expr)` (spec §3.2).
type ParenExpr struct {
	TypedBase
	Inner Expr
}

// ArrayLiteralExpr is `[e1, e2, ...]` (spec §3.2).
type ArrayLiteralExpr struct {
	TypedBase
	Elements []Expr
}

// SetLiteralExpr is `{e1, e2, ...}` (spec §3.2).
type SetLiteralExpr struct {
	TypedBase
	Elements []Expr
}

// MapEntry is one `key: value` pair of a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLiteralExpr is `{k1: v1, k2: v2, ...}` (spec §3.2).
type MapLiteralExpr struct {
	TypedBase
	Entries []MapEntry
}

// InvalidExpr stands in for a syntactically malformed expression that
// parsing could not recover into any other shape (spec §3.2).
type InvalidExpr struct {
	TypedBase
}
