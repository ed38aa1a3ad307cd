// Package dispatch implements the Dispatcher (spec §4.5): once the solver
// has produced a final substitution and picked a branch for every
// disjunction, the Dispatcher walks each function body again, narrowing
// every overloaded identifier down to the single declaration the solver
// settled on and rewriting every node's inferred type from its
// substitution-laden draft to its finalized, fully-applied form.
//
// Grounded on the teacher's internal/analyzer/resolve_overloads.go, which
// performs the same "re-walk the already-typed tree, pick the winning
// overload, stamp the final type" pass after its own solver stage.
package dispatch

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/constraints"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/solver"
	"github.com/nomina-lang/nomina/internal/types"
)

// Dispatcher applies one function's (or property's) solver.Result across
// its own body.
type Dispatcher struct {
	sink   *diag.Sink
	result solver.Result
}

func New(sink *diag.Sink, result solver.Result) *Dispatcher {
	return &Dispatcher{sink: sink, result: result}
}

// DispatchConstraints narrows every disjunction constraint's identifier to
// the winning branch's declaration. Constraints without a recorded
// resolution (the solver reported ambiguity or found no match) are left
// with their full candidate set, since the Dispatcher has nothing safe to
// narrow them to.
func (d *Dispatcher) DispatchConstraints(cs []*constraints.Constraint) {
	for _, c := range cs {
		if c.Kind != constraints.KindDisjunction {
			continue
		}
		branch, ok := d.result.Resolved[c]
		if !ok {
			continue
		}
		c.Identifier.SetReferredDecls([]ast.Decl{branch.Decl})
	}
}

// FinalizeFunction applies the solver's substitution across f's body,
// replacing every node's draft (possibly TypeVar-laden) type with its
// canonical, fully-resolved form (spec §4.5).
func (d *Dispatcher) FinalizeFunction(f *ast.FunctionDecl) {
	canon := d.result.Subst.Canonized()
	if f.Type() != nil {
		d.finalizeQualType(f.Type(), canon)
	}
	for _, p := range f.Params {
		if p.Type() != nil {
			d.finalizeQualType(p.Type(), canon)
		}
	}
	if f.Body != nil {
		d.finalizeBlock(f.Body, canon)
	}
}

func (d *Dispatcher) FinalizeProperty(p *ast.PropertyDecl) {
	canon := d.result.Subst.Canonized()
	if p.Type() != nil {
		d.finalizeQualType(p.Type(), canon)
	}
	if p.Initializer != nil {
		d.finalizeExpr(p.Initializer, canon)
	}
}

func (d *Dispatcher) finalizeQualType(qt *types.QualType, subst types.Subst) {
	qt.Bare = types.Apply(subst, qt.Bare)
}

func (d *Dispatcher) finalizeBlock(b *ast.BlockStmt, subst types.Subst) {
	for _, stmt := range b.Stmts {
		d.finalizeStmt(stmt, subst)
	}
}

func (d *Dispatcher) finalizeStmt(stmt ast.Stmt, subst types.Subst) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		d.finalizeExpr(s.LValue, subst)
		d.finalizeExpr(s.RValue, subst)
	case *ast.ReturnStmt:
		if s.Value != nil {
			d.finalizeExpr(s.Value, subst)
		}
	case *ast.IfStmt:
		d.finalizeExpr(s.Cond, subst)
		d.finalizeBlock(s.Then, subst)
		if s.Else != nil {
			d.finalizeBlock(s.Else, subst)
		}
	case *ast.WhileStmt:
		d.finalizeExpr(s.Cond, subst)
		d.finalizeBlock(s.Body, subst)
	case ast.Expr:
		d.finalizeExpr(s, subst)
	}
}

// finalizeExpr applies subst to expr's own type and recurses into its
// subexpressions; it also reports AmbiguousFunctionUse for any identifier
// that still carries more than one candidate after dispatch (the solver
// either never saw it resolved, or deliberately left it ambiguous).
func (d *Dispatcher) finalizeExpr(expr ast.Expr, subst types.Subst) {
	if expr == nil {
		return
	}
	if t := expr.Type(); t != nil {
		d.finalizeQualType(t, subst)
	}

	switch ex := expr.(type) {
	case *ast.IdentifierExpr:
		if len(ex.ReferredDecls()) > 1 {
			d.sink.Report(diag.Error, diag.AmbiguousFunctionUse, ex, nil,
				"ambiguous use of %q: %d candidates remain after dispatch", ex.Name, len(ex.ReferredDecls()))
		}
	case *ast.SelectExpr:
		d.finalizeExpr(ex.Owner, subst)
	case *ast.InfixExpr:
		d.finalizeExpr(ex.LHS, subst)
		d.finalizeExpr(ex.RHS, subst)
		if ex.OpType != nil {
			d.finalizeQualType(ex.OpType, subst)
		}
	case *ast.PrefixExpr:
		d.finalizeExpr(ex.Operand, subst)
		if ex.OpType != nil {
			d.finalizeQualType(ex.OpType, subst)
		}
	case *ast.CallExpr:
		d.finalizeExpr(ex.Callee, subst)
		for _, a := range ex.Args {
			d.finalizeExpr(a.Value, subst)
		}
	case *ast.CastExpr:
		d.finalizeExpr(ex.Operand, subst)
	case *ast.SubtypeTestExpr:
		d.finalizeExpr(ex.Operand, subst)
	case *ast.ParenExpr:
		d.finalizeExpr(ex.Inner, subst)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elements {
			d.finalizeExpr(el, subst)
		}
	case *ast.SetLiteralExpr:
		for _, el := range ex.Elements {
			d.finalizeExpr(el, subst)
		}
	case *ast.MapLiteralExpr:
		for _, me := range ex.Entries {
			d.finalizeExpr(me.Key, subst)
			d.finalizeExpr(me.Value, subst)
		}
	case *ast.LambdaExpr:
		for _, p := range ex.Params {
			if p.Type() != nil {
				d.finalizeQualType(p.Type(), subst)
			}
		}
		if ex.Body != nil {
			d.finalizeBlock(ex.Body, subst)
		}
	}
}
