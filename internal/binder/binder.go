// Package binder implements the Name Binder (spec §4.1): it walks a
// module's AST and resolves every identifier and type signature to the
// declaration(s) it refers to, following the outward scope-chain walk,
// the overloadable/non-overloadable shadowing rule, `Self` resolution
// inside nominal types, per-nominal-type member lookup table fallthrough,
// type-extension member folding, and qualified `A::B`/`::B` resolution.
//
// This plays the role the teacher's internal/analyzer name-resolution pass
// plays (analyzer.go's scope-walking resolveIdentifier), adapted from a
// row-polymorphic module-scope model to the nominal declaration-context
// chain spec §3.3 describes.
package binder

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/diag"
)

// Binder resolves names within a single module against a CompilerContext's
// module table (so `local(name)` modules can see `builtin`/`stdlib`
// declarations, spec §3.1).
type Binder struct {
	cc   *compiler.CompilerContext
	mod  *compiler.Module
	sink *diag.Sink

	// visiting guards against an initializer referencing the identifier it
	// is itself initializing (spec §4.1 "initializer-shadowing").
	visiting map[*ast.IdentifierExpr]bool
}

func New(cc *compiler.CompilerContext, mod *compiler.Module) *Binder {
	return &Binder{cc: cc, mod: mod, sink: mod.Sink, visiting: make(map[*ast.IdentifierExpr]bool)}
}

// Bind runs name binding over every top-level declaration in the module.
func (b *Binder) Bind() {
	b.checkDuplicates(b.mod.AST)
	for _, d := range b.mod.AST.Decls() {
		b.bindDecl(d)
	}
}

// checkDuplicates reports spec §6.3's duplicate-declaration and illegal-
// redeclaration errors over one declaration context's own (already fully
// populated, parser-known) declaration list: a name held by more than one
// non-overloadable declaration is a duplicate; a name held by a mix of an
// overloadable (function) and a non-overloadable declaration is an illegal
// redeclaration (overloadable-kind clash); a name held only by
// overloadable declarations is a legitimate overload set (spec §8 testable
// property 5). ExtensionDecl entries are skipped — their DeclName is a
// fixed diagnostic label, not a real identifier, so multiple extensions in
// one context are never a collision.
func (b *Binder) checkDuplicates(ctx ast.DeclContext) {
	var order []string
	byName := make(map[string][]ast.Decl)
	for _, d := range ctx.Decls() {
		if _, ok := d.(*ast.ExtensionDecl); ok {
			continue
		}
		name := d.DeclName()
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], d)
	}
	for _, name := range order {
		decls := byName[name]
		if len(decls) < 2 {
			continue
		}
		overloadable := 0
		for _, d := range decls {
			if d.Overloadable() {
				overloadable++
			}
		}
		switch {
		case overloadable == len(decls):
			continue
		case overloadable == 0:
			for _, d := range decls[1:] {
				b.sink.Report(diag.Error, diag.DuplicateDeclaration, d, nil, "duplicate declaration of %q", name)
			}
		default:
			for _, d := range decls[1:] {
				b.sink.Report(diag.Error, diag.IllegalRedeclaration, d, nil,
					"illegal redeclaration of %q: a function overload cannot share its name with a non-function declaration", name)
			}
		}
	}
}

func (b *Binder) bindDecl(d ast.Decl) {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		b.bindFunction(decl)
	case *ast.NominalTypeDecl:
		b.bindNominalType(decl)
	case *ast.ExtensionDecl:
		b.bindExtension(decl)
	case *ast.PropertyDecl:
		b.bindProperty(decl)
	}
}

func (b *Binder) bindProperty(p *ast.PropertyDecl) {
	if p.TypeSig != nil {
		b.bindTypeSig(p.TypeSig, p.DeclContext())
	}
	if p.Initializer != nil {
		b.bindExpr(p.Initializer, p.DeclContext())
	}
}

func (b *Binder) bindFunction(f *ast.FunctionDecl) {
	for _, g := range f.GenericParams {
		f.AddDecl(g)
	}
	for _, param := range f.Params {
		if param.TypeSig != nil {
			b.bindTypeSig(param.TypeSig, f)
		}
		if param.DefaultExpr != nil {
			b.bindExpr(param.DefaultExpr, f)
		}
		f.AddDecl(param)
	}
	if f.CodomSig != nil {
		b.bindTypeSig(f.CodomSig, f)
	}
	if f.Body != nil {
		b.bindBlock(f.Body, f)
	}
}

func (b *Binder) bindNominalType(n *ast.NominalTypeDecl) {
	for _, g := range n.GenericParams {
		n.AddDecl(g)
	}
	b.checkDuplicates(n)
	for _, member := range n.Decls() {
		b.bindDecl(member)
	}
}

func (b *Binder) bindExtension(e *ast.ExtensionDecl) {
	b.bindTypeSig(e.ExtendedTypeSig, e.DeclContext())
	for _, c := range e.Conformances {
		b.bindTypeSig(c, e.DeclContext())
		if ident, ok := e.ExtendedTypeSig.(*ast.IdentifierTypeSig); ok {
			if iface, ok := c.(*ast.IdentifierTypeSig); ok {
				b.cc.Conformance.Declare(ident.Name, iface.Name)
			}
		}
	}
	b.checkDuplicates(e)
	for _, member := range e.Decls() {
		b.bindDecl(member)
	}
}

func (b *Binder) bindBlock(block *ast.BlockStmt, parent ast.DeclContext) {
	for _, stmt := range block.Stmts {
		b.bindStmt(stmt, block)
	}
}

func (b *Binder) bindStmt(stmt ast.Stmt, ctx ast.DeclContext) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		b.bindBindingStmt(s, ctx)
	case *ast.ReturnStmt:
		if s.Value != nil {
			b.bindExpr(s.Value, ctx)
		}
	case *ast.IfStmt:
		b.bindExpr(s.Cond, ctx)
		b.bindBlock(s.Then, ctx)
		if s.Else != nil {
			b.bindBlock(s.Else, ctx)
		}
	case *ast.WhileStmt:
		b.bindExpr(s.Cond, ctx)
		b.bindBlock(s.Body, ctx)
	case ast.Expr:
		b.bindExpr(s, ctx)
	}
}

// bindBindingStmt resolves the RHS first (spec §4.1 initializer-shadowing:
// the new name is not yet visible to its own initializer), then either
// folds a `let`/`var`-introduced identifier in as a fresh local declaration
// of ctx (reporting DuplicateDeclaration if ctx already declares that name
// non-overloadably), or resolves a plain reassignment's LValue against the
// ordinary outward lookup and checks it isn't targeting a cst binding
// (spec §8 testable property 10) or an unsuitable lvalue shape.
func (b *Binder) bindBindingStmt(s *ast.BindingStmt, ctx ast.DeclContext) {
	id, isBareIdent := s.LValue.(*ast.IdentifierExpr)

	if s.IsDecl && isBareIdent {
		b.visiting[id] = true
		b.bindExpr(s.RValue, ctx)
		delete(b.visiting, id)

		if dup := localDecl(ctx, id.Name); dup != nil {
			b.sink.Report(diag.Error, diag.DuplicateDeclaration, id, nil, "duplicate declaration of %q", id.Name)
		}
		id.IsConstant = s.IsConstant
		id.SetDeclContext(ctx)
		ctx.AddDecl(id)
		id.SetReferredDecls([]ast.Decl{id})
		return
	}

	b.bindExpr(s.RValue, ctx)
	b.bindExpr(s.LValue, ctx)

	switch {
	case isBareIdent:
		if decls := id.ReferredDecls(); len(decls) == 1 && isConstantDecl(decls[0]) {
			b.sink.Report(diag.Error, diag.IllegalReassignment, id, nil,
				"cannot reassign %q: it was declared with a constant (let) binding", id.Name)
		}
	default:
		if _, ok := s.LValue.(*ast.SelectExpr); !ok {
			b.sink.Report(diag.Error, diag.InvalidLValue, s.LValue, nil, "invalid assignment target")
		}
	}
}

// localDecl looks for an existing non-overloadable declaration of name
// directly in ctx's own declaration list (not the outward chain) — the
// same-context check spec §8 testable property 5 describes.
func localDecl(ctx ast.DeclContext, name string) ast.Decl {
	for _, d := range ctx.Decls() {
		if d.DeclName() == name && !d.Overloadable() {
			return d
		}
	}
	return nil
}

// isConstantDecl reports whether d is a cst-qualified binding (a `let`
// property or a `let`-introduced local), the only kind reassignment is
// illegal against (spec §8 testable property 10).
func isConstantDecl(d ast.Decl) bool {
	switch decl := d.(type) {
	case *ast.PropertyDecl:
		return decl.IsConstant
	case *ast.IdentifierExpr:
		return decl.IsConstant
	default:
		return false
	}
}

func (b *Binder) bindExpr(e ast.Expr, ctx ast.DeclContext) {
	switch expr := e.(type) {
	case *ast.IdentifierExpr:
		b.bindIdentifierExpr(expr, ctx)
	case *ast.SelectExpr:
		b.bindExpr(expr.Owner, ctx)
	case *ast.ImplicitSelectExpr:
		// resolved later, against the expected type (spec §4.3/§4.5)
	case *ast.InfixExpr:
		b.bindExpr(expr.LHS, ctx)
		b.bindExpr(expr.RHS, ctx)
	case *ast.PrefixExpr:
		b.bindExpr(expr.Operand, ctx)
	case *ast.CallExpr:
		b.bindExpr(expr.Callee, ctx)
		for _, arg := range expr.Args {
			b.bindExpr(arg.Value, ctx)
		}
	case *ast.LambdaExpr:
		expr.Parent = ctx
		for _, param := range expr.Params {
			if param.TypeSig != nil {
				b.bindTypeSig(param.TypeSig, expr)
			}
			expr.AddDecl(param)
		}
		if expr.CodomSig != nil {
			b.bindTypeSig(expr.CodomSig, expr)
		}
		if expr.Body != nil {
			b.bindBlock(expr.Body, expr)
		}
	case *ast.CastExpr:
		b.bindExpr(expr.Operand, ctx)
		b.bindTypeSig(expr.TypeSig, ctx)
	case *ast.SubtypeTestExpr:
		b.bindExpr(expr.Operand, ctx)
		b.bindTypeSig(expr.TypeSig, ctx)
	case *ast.ParenExpr:
		b.bindExpr(expr.Inner, ctx)
	case *ast.ArrayLiteralExpr:
		for _, el := range expr.Elements {
			b.bindExpr(el, ctx)
		}
	case *ast.SetLiteralExpr:
		for _, el := range expr.Elements {
			b.bindExpr(el, ctx)
		}
	case *ast.MapLiteralExpr:
		for _, entry := range expr.Entries {
			b.bindExpr(entry.Key, ctx)
			b.bindExpr(entry.Value, ctx)
		}
	}
}

func (b *Binder) bindIdentifierExpr(id *ast.IdentifierExpr, ctx ast.DeclContext) {
	for _, sig := range id.SpecializationArgs {
		b.bindTypeSig(sig, ctx)
	}
	decls := b.lookup(id.Name, ctx, id)
	if len(decls) == 0 {
		b.sink.Report(diag.Error, diag.UnboundIdentifier, id, nil, "unbound identifier %q", id.Name)
		return
	}
	id.SetReferredDecls(decls)
}

func (b *Binder) bindTypeSig(sig ast.TypeSig, ctx ast.DeclContext) {
	switch s := sig.(type) {
	case *ast.QualifiedTypeSig:
		b.bindTypeSig(s.Bare, ctx)
	case *ast.IdentifierTypeSig:
		b.bindIdentifierTypeSig(s, ctx)
	case *ast.NestedIdentifierTypeSig:
		b.bindTypeSig(s.Owner, ctx)
		s.Referred = b.resolveNestedMember(s.Owner, s.Name)
		if s.Referred == nil {
			b.sink.Report(diag.Error, diag.NonExistingNestedType, s, nil, "no nested type %q", s.Name)
		}
	case *ast.ImplicitNestedIdentifierTypeSig:
		owner := b.enclosingNominalOrExtension(ctx)
		s.Referred = b.resolveImplicitNestedMember(owner, s.Name)
		if s.Referred == nil {
			b.sink.Report(diag.Error, diag.NonExistingNestedType, s, nil, "no nested type %q", s.Name)
		}
	case *ast.FunctionTypeSig:
		for _, param := range s.Params {
			b.bindTypeSig(param.Type, ctx)
		}
		b.bindTypeSig(s.Codom, ctx)
	}
}

func (b *Binder) bindIdentifierTypeSig(s *ast.IdentifierTypeSig, ctx ast.DeclContext) {
	for _, arg := range s.SpecializationArgs {
		b.bindTypeSig(arg, ctx)
	}
	decls := b.lookup(s.Name, ctx, nil)
	if len(decls) == 0 {
		b.sink.Report(diag.Error, diag.InvalidTypeIdentifier, s, nil, "invalid type identifier %q", s.Name)
		return
	}
	s.Referred = decls[0]
}

func (b *Binder) resolveNestedMember(owner ast.TypeSig, name string) ast.Decl {
	id, ok := owner.(*ast.IdentifierTypeSig)
	if !ok || id.Referred == nil {
		return nil
	}
	return b.resolveImplicitNestedMember(id.Referred, name)
}

func (b *Binder) resolveImplicitNestedMember(owner ast.Decl, name string) ast.Decl {
	nom, ok := owner.(*ast.NominalTypeDecl)
	if !ok {
		return nil
	}
	table := b.cc.Members.Lookup(nom, b.cc.Generation(), b.cc)
	if found := table.Find(name); len(found) > 0 {
		return found[0]
	}
	return nil
}

func (b *Binder) enclosingNominalOrExtension(ctx ast.DeclContext) ast.Decl {
	for c := ctx; c != nil; c = c.ParentContext() {
		if n, ok := c.(*ast.NominalTypeDecl); ok {
			return n
		}
		if e, ok := c.(*ast.ExtensionDecl); ok {
			return b.cc.ExtensionTarget(e)
		}
	}
	return nil
}

// lookup implements the outward scope-chain walk (spec §4.1): at each
// declaration context, gather every declaration of name; an overloadable
// match (functions) keeps gathering outward so overloads from enclosing
// scopes are visible too, a non-overloadable match stops the walk right
// there (ordinary lexical shadowing). `Self` resolves to the nearest
// enclosing nominal-type declaration. excluding, if non-nil, is the
// identifier currently being initialized (so it never resolves to itself).
func (b *Binder) lookup(name string, ctx ast.DeclContext, excluding *ast.IdentifierExpr) []ast.Decl {
	if name == "Self" {
		if n := b.enclosingNominalDecl(ctx); n != nil {
			return []ast.Decl{n}
		}
	}

	var found []ast.Decl
	for c := ctx; c != nil; c = c.ParentContext() {
		var direct []ast.Decl
		for _, d := range c.Decls() {
			if d.DeclName() != name {
				continue
			}
			if id, ok := d.(*ast.IdentifierExpr); ok && excluding != nil && id == excluding {
				continue
			}
			if id, ok := d.(*ast.IdentifierExpr); ok && b.visiting[id] {
				continue
			}
			direct = append(direct, d)
		}

		if nom, ok := c.(*ast.NominalTypeDecl); ok {
			table := b.cc.Members.Lookup(nom, b.cc.Generation(), b.cc)
			direct = append(direct, table.Find(name)...)
		}

		if len(direct) == 0 {
			continue
		}
		found = append(found, direct...)
		if !allOverloadable(direct) {
			break
		}
	}

	if len(found) > 0 {
		return found
	}

	if bm, ok := b.cc.GetModule(compiler.BuiltinModuleID()); ok {
		if d := findInModule(bm, name); d != nil {
			return []ast.Decl{d}
		}
	}
	if sm, ok := b.cc.GetModule(compiler.StdlibModuleID()); ok {
		if d := findInModule(sm, name); d != nil {
			return []ast.Decl{d}
		}
	}
	return nil
}

func findInModule(m *compiler.Module, name string) ast.Decl {
	for _, d := range m.AST.Decls() {
		if d.DeclName() == name {
			return d
		}
	}
	return nil
}

func allOverloadable(decls []ast.Decl) bool {
	for _, d := range decls {
		if !d.Overloadable() {
			return false
		}
	}
	return true
}

func (b *Binder) enclosingNominalDecl(ctx ast.DeclContext) *ast.NominalTypeDecl {
	for c := ctx; c != nil; c = c.ParentContext() {
		if n, ok := c.(*ast.NominalTypeDecl); ok {
			return n
		}
	}
	return nil
}
