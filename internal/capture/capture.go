// Package capture implements the (briefly specified) Capture Analysis
// pass (spec §4.6): for every function-like declaration it collects the
// declarations referenced in its body whose declaration context strictly
// encloses it, drops anything reached only through an implicit `self`
// (not a real capture), and subtracts captures belonging to hoistable
// (capture-nothing) enclosing functions. A top-level function left with a
// nonempty capture set, or a method capturing anything beyond `self`, is
// an error.
//
// Grounded on the teacher's internal/analyzer/closures.go, which runs the
// same kind of post-typecheck free-variable sweep over already-resolved
// identifiers to decide what a closure needs to carry.
package capture

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/diag"
)

// funcLike is the subset of ast.DeclContext that both FunctionDecl and
// LambdaExpr satisfy, letting the analysis treat methods, free functions,
// and closures uniformly.
type funcLike interface {
	ast.DeclContext
}

// Analysis holds the outcome for one module's worth of functions.
type Analysis struct {
	sink *diag.Sink
	// captures maps a function-like node to the set of decls it captures,
	// once computed. Populated bottom-up so an outer function's hoistable
	// status is known before its own captures are finalized.
	captures map[funcLike]map[ast.Decl]bool
	self     map[funcLike]ast.Decl
}

func New(sink *diag.Sink) *Analysis {
	return &Analysis{sink: sink, captures: make(map[funcLike]map[ast.Decl]bool), self: make(map[funcLike]ast.Decl)}
}

// AnalyzeModule walks every top-level function and nominal-type method,
// descending into nested lambdas depth-first so each function's hoistable
// status is available before any of its ancestors are finalized.
func (a *Analysis) AnalyzeModule(decls []ast.Decl) {
	for _, d := range decls {
		a.walkDecl(d)
	}
	for _, d := range decls {
		a.checkDecl(d)
	}
}

func (a *Analysis) walkDecl(d ast.Decl) {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		a.analyzeFunction(decl)
	case *ast.NominalTypeDecl:
		for _, m := range decl.Decls() {
			a.walkDecl(m)
		}
	case *ast.ExtensionDecl:
		for _, m := range decl.Decls() {
			a.walkDecl(m)
		}
	}
}

func (a *Analysis) analyzeFunction(f *ast.FunctionDecl) {
	if f.SelfDecl != nil {
		a.self[f] = f.SelfDecl
	}
	captures := make(map[ast.Decl]bool)
	if f.Body != nil {
		a.collectBlock(f.Body, f, captures)
	}
	a.captures[f] = captures
}

func (a *Analysis) analyzeLambda(l *ast.LambdaExpr, enclosingSelf ast.Decl) {
	if enclosingSelf != nil {
		a.self[l] = enclosingSelf
	}
	captures := make(map[ast.Decl]bool)
	if l.Body != nil {
		a.collectBlock(l.Body, l, captures)
	}
	a.captures[l] = captures
}

// collectBlock walks fn's body gathering, into captures, every decl
// referenced by an identifier whose own DeclContext is a strict ancestor
// of fn — i.e. declared outside fn but visible to it (spec §4.6).
func (a *Analysis) collectBlock(b *ast.BlockStmt, fn funcLike, captures map[ast.Decl]bool) {
	for _, stmt := range b.Stmts {
		a.collectStmt(stmt, fn, captures)
	}
}

func (a *Analysis) collectStmt(stmt ast.Stmt, fn funcLike, captures map[ast.Decl]bool) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		a.collectExpr(s.LValue, fn, captures)
		a.collectExpr(s.RValue, fn, captures)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.collectExpr(s.Value, fn, captures)
		}
	case *ast.IfStmt:
		a.collectExpr(s.Cond, fn, captures)
		a.collectBlock(s.Then, fn, captures)
		if s.Else != nil {
			a.collectBlock(s.Else, fn, captures)
		}
	case *ast.WhileStmt:
		a.collectExpr(s.Cond, fn, captures)
		a.collectBlock(s.Body, fn, captures)
	case ast.Expr:
		a.collectExpr(s, fn, captures)
	}
}

func (a *Analysis) collectExpr(expr ast.Expr, fn funcLike, captures map[ast.Decl]bool) {
	if expr == nil {
		return
	}
	switch ex := expr.(type) {
	case *ast.IdentifierExpr:
		decls := ex.ReferredDecls()
		if len(decls) != 1 {
			return
		}
		decl := decls[0]
		if decl == a.self[fn] {
			return // implicit self is never a capture
		}
		if isStrictAncestorDecl(decl, fn) {
			captures[decl] = true
		}
	case *ast.SelectExpr:
		// `self.member` resolves its owner through an IdentifierExpr for
		// `self`, already filtered above; member names themselves are not
		// identifiers and never captures.
		a.collectExpr(ex.Owner, fn, captures)
	case *ast.InfixExpr:
		a.collectExpr(ex.LHS, fn, captures)
		a.collectExpr(ex.RHS, fn, captures)
	case *ast.PrefixExpr:
		a.collectExpr(ex.Operand, fn, captures)
	case *ast.CallExpr:
		a.collectExpr(ex.Callee, fn, captures)
		for _, arg := range ex.Args {
			a.collectExpr(arg.Value, fn, captures)
		}
	case *ast.CastExpr:
		a.collectExpr(ex.Operand, fn, captures)
	case *ast.SubtypeTestExpr:
		a.collectExpr(ex.Operand, fn, captures)
	case *ast.ParenExpr:
		a.collectExpr(ex.Inner, fn, captures)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elements {
			a.collectExpr(el, fn, captures)
		}
	case *ast.SetLiteralExpr:
		for _, el := range ex.Elements {
			a.collectExpr(el, fn, captures)
		}
	case *ast.MapLiteralExpr:
		for _, me := range ex.Entries {
			a.collectExpr(me.Key, fn, captures)
			a.collectExpr(me.Value, fn, captures)
		}
	case *ast.LambdaExpr:
		var enclosingSelf ast.Decl
		if s, ok := a.self[fn]; ok {
			enclosingSelf = s
		}
		a.analyzeLambda(ex, enclosingSelf)
		// a lambda's own captures of things outside fn are also fn's
		// captures, since fn's closure must itself carry what its nested
		// lambda needs from further out.
		for decl := range a.captures[ex] {
			if isStrictAncestorDecl(decl, fn) {
				captures[decl] = true
			}
		}
	}
}

// isStrictAncestorDecl reports whether decl's own declaration context is a
// strict ancestor of fn — i.e. decl is visible to fn but not declared
// inside fn itself.
func isStrictAncestorDecl(decl ast.Decl, fn funcLike) bool {
	dc := decl.DeclContext()
	if dc == nil {
		return false
	}
	ctx := fn.ParentContext()
	for ctx != nil {
		if ctx == dc {
			return true
		}
		ctx = ctx.ParentContext()
	}
	return false
}

// checkDecl finalizes fn's capture set (subtracting anything that belongs
// to a hoistable — capture-nothing — enclosing function) and reports the
// two illegal shapes spec §4.6 names.
func (a *Analysis) checkDecl(d ast.Decl) {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		a.finalizeFunction(decl)
	case *ast.NominalTypeDecl:
		for _, m := range decl.Decls() {
			a.checkDecl(m)
		}
	case *ast.ExtensionDecl:
		for _, m := range decl.Decls() {
			a.checkDecl(m)
		}
	}
}

func (a *Analysis) finalizeFunction(f *ast.FunctionDecl) {
	final := a.finalize(f)

	isTopLevel := false
	if _, ok := f.DeclContext().(*ast.Module); ok {
		isTopLevel = true
	}
	isMethod := f.SelfDecl != nil

	if isTopLevel && len(final) > 0 {
		a.sink.Report(diag.Error, diag.IllegalTopLevelCapture, f, nil,
			"top-level function %q may not capture %d outer declaration(s)", f.Name, len(final))
		return
	}
	if isMethod && len(final) > 0 {
		a.sink.Report(diag.Error, diag.IllegalCaptureInMethod, f, nil,
			"method %q may not capture %d outer declaration(s) beyond self", f.Name, len(final))
	}
}

// finalize returns fn's capture set after subtracting any decl whose own
// immediate declaration context is a hoistable (capture-nothing) function
// (spec §4.6's "subtracts ... those belonging to functions that
// themselves capture nothing").
func (a *Analysis) finalize(fn funcLike) map[ast.Decl]bool {
	raw := a.captures[fn]
	out := make(map[ast.Decl]bool, len(raw))
	for decl := range raw {
		if owner, ok := asFuncLike(decl.DeclContext()); ok {
			if owned, tracked := a.captures[owner]; tracked && len(owned) == 0 {
				continue
			}
		}
		out[decl] = true
	}
	return out
}

// asFuncLike narrows a DeclContext to the concrete function-like node
// kinds capture tracking recognizes (everything else — Module, BlockStmt,
// NominalTypeDecl, ExtensionDecl — structurally satisfies ast.DeclContext
// too, so a plain type assertion to funcLike would always succeed).
func asFuncLike(dc ast.DeclContext) (funcLike, bool) {
	switch v := dc.(type) {
	case *ast.FunctionDecl:
		return v, true
	case *ast.LambdaExpr:
		return v, true
	default:
		return nil, false
	}
}
