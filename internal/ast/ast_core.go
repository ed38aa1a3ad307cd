// Package ast defines the typed abstract syntax tree the semantic core
// consumes and annotates (spec §3.2). Node variants are grouped into four
// capability sets rather than a single sealed hierarchy: every node carries
// a source range, an owning module and a declaration-context back-pointer;
// declaration nodes additionally report a name and overloadability;
// declaration-context nodes hold an ordered declaration list; typed nodes
// carry a QualType once realized; identifier nodes carry referred
// declarations once bound.
package ast

import "github.com/nomina-lang/nomina/internal/types"

// SourceRange is an opaque half-open span in some module's source text.
// The core never interprets it — only a boundary renderer does (spec §9).
type SourceRange struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// Node is implemented by every AST node.
type Node interface {
	Range() SourceRange
	SetRange(SourceRange)
	ModuleID() string
	SetModuleID(string)
	DeclContext() DeclContext
	SetDeclContext(DeclContext)
}

// BaseNode is embedded by every concrete node to satisfy Node.
type BaseNode struct {
	SrcRange SourceRange
	Module   string
	DCtx     DeclContext
}

func (b *BaseNode) Range() SourceRange          { return b.SrcRange }
func (b *BaseNode) SetRange(r SourceRange)      { b.SrcRange = r }
func (b *BaseNode) ModuleID() string            { return b.Module }
func (b *BaseNode) SetModuleID(m string)        { b.Module = m }
func (b *BaseNode) DeclContext() DeclContext    { return b.DCtx }
func (b *BaseNode) SetDeclContext(d DeclContext) { b.DCtx = d }

// Decl is implemented by every declaration node (spec §3.3).
type Decl interface {
	Node
	DeclName() string
	// Overloadable reports whether more than one declaration of this name
	// may coexist in the same declaration context (spec §4.1, §8.5):
	// functions are overloadable, everything else is not.
	Overloadable() bool
}

// DeclContext is implemented by every node that introduces a fresh lexical
// region: module, function, nominal type, type extension, brace block
// (spec §3.3).
type DeclContext interface {
	Node
	Decls() []Decl
	AddDecl(Decl)
	ParentContext() DeclContext
}

// DeclContextBase is embedded by concrete declaration-context nodes.
type DeclContextBase struct {
	BaseNode
	declarations []Decl
	Parent       DeclContext
}

func (d *DeclContextBase) Decls() []Decl             { return d.declarations }
func (d *DeclContextBase) AddDecl(decl Decl)         { d.declarations = append(d.declarations, decl) }
func (d *DeclContextBase) ParentContext() DeclContext { return d.Parent }

// Typed is implemented by every node that carries a semantic type once the
// Type Realizer (or a later pass) has run (spec §3.2 invariants).
type Typed interface {
	Node
	Type() *types.QualType
	SetType(*types.QualType)
}

// TypedBase is embedded by concrete typed nodes.
type TypedBase struct {
	BaseNode
	Typ *types.QualType
}

func (t *TypedBase) Type() *types.QualType     { return t.Typ }
func (t *TypedBase) SetType(q *types.QualType) { t.Typ = q }

// Identifier is implemented by identifier expression and identifier
// type-signature nodes once Name Binding has run (spec §3.2, §4.1).
type Identifier interface {
	Node
	IdentName() string
	ReferredDecls() []Decl
	SetReferredDecls([]Decl)
}

// IdentifierBase is embedded by concrete identifier nodes.
type IdentifierBase struct {
	BaseNode
	Name     string
	Referred []Decl
}

func (i *IdentifierBase) IdentName() string       { return i.Name }
func (i *IdentifierBase) ReferredDecls() []Decl    { return i.Referred }
func (i *IdentifierBase) SetReferredDecls(d []Decl) { i.Referred = d }
