// Package solver implements the Constraint Solver (spec §4.4): a
// priority-ordered, weighted backtracking branch-and-bound pass over the
// constraints internal/constraints extracted. Equality constraints are
// solved first (pure unification), then conformance/specialization/member
// constraints, with disjunctions (identifier overload sets) explored last
// via a branch-and-bound search that keeps only the minimal-weight
// satisfying assignment and reports ambiguity on a tie (spec §4.4.5).
//
// Grounded on the teacher's internal/analyzer/inference_solver.go, which
// drives the same kind of priority-queue constraint loop with a stack of
// backtracking frames; the constraint kinds and the branch-and-bound
// pruning rule are rebuilt for spec §4.4's disjunction model.
package solver

import (
	"sort"

	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/constraints"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/types"
)

type Solver struct {
	cc   *compiler.CompilerContext
	sink *diag.Sink
	cfg  config.SolverConfig
}

func New(cc *compiler.CompilerContext, sink *diag.Sink, cfg config.SolverConfig) *Solver {
	return &Solver{cc: cc, sink: sink, cfg: cfg}
}

// Result is the final substitution plus, for every solved disjunction, the
// branch the solver settled on — the Dispatcher (internal/dispatch) reads
// this back to filter each identifier's candidates down to one.
type Result struct {
	Subst    types.Subst
	Resolved map[*constraints.Constraint]*constraints.Branch
}

// Solve runs the full constraint list to a fixed point.
func (s *Solver) Solve(cs []*constraints.Constraint) Result {
	subst := make(types.Subst)
	resolved := make(map[*constraints.Constraint]*constraints.Branch)

	nondisjunctive := make([]*constraints.Constraint, 0, len(cs))
	var disjunctions []*constraints.Constraint
	for _, c := range cs {
		if c.Kind == constraints.KindDisjunction {
			disjunctions = append(disjunctions, c)
		} else {
			nondisjunctive = append(nondisjunctive, c)
		}
	}

	s.solveRound(nondisjunctive, subst)

	for _, dc := range disjunctions {
		branch := s.solveDisjunction(dc, subst)
		if branch != nil {
			resolved[dc] = branch
		}
	}

	return Result{Subst: subst, Resolved: resolved}
}

// solveRound repeatedly sweeps cs in priority order until a full pass makes
// no further progress, then reports whatever is left as irreducible (spec
// §4.4.6's stall detection).
func (s *Solver) solveRound(cs []*constraints.Constraint, subst types.Subst) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Priority > cs[j].Priority })

	pending := cs
	for {
		var next []*constraints.Constraint
		progress := false
		for _, c := range pending {
			if s.solveOne(c, subst) {
				progress = true
				continue
			}
			next = append(next, c)
		}
		pending = next
		if len(pending) == 0 || !progress {
			break
		}
	}

	for _, c := range pending {
		s.sink.Report(diag.Error, diag.IrreducibleConstraint, c.Location.Anchor, c.Location.Path,
			"could not solve constraint of kind %d", c.Kind)
	}
}

// solveOne attempts a single constraint against subst, returning whether it
// was resolved (successfully or with a reported type error — either way it
// is done and should not be retried).
func (s *Solver) solveOne(c *constraints.Constraint, subst types.Subst) bool {
	switch c.Kind {
	case constraints.KindEquality:
		if !unifyDiag(s.sink, c.Location.Anchor, c.Location.Path, subst, c.A, c.B) {
			s.sink.Report(diag.Error, diag.IncompatibleTypes, c.Location.Anchor, c.Location.Path,
				"cannot unify %s with %s", types.Apply(subst, c.A).String(), types.Apply(subst, c.B).String())
		}
		return true

	case constraints.KindConformance:
		a := types.Apply(subst, c.A)
		b := types.Apply(subst, c.B)
		if !conforms(s.cc.Conformance, a, b) {
			s.sink.Report(diag.Error, diag.IncompatibleTypes, c.Location.Anchor, c.Location.Path,
				"%s does not conform to %s", a.String(), b.String())
		}
		return true

	case constraints.KindSpecialization:
		if !unify(subst, c.A, c.B) {
			s.sink.Report(diag.Error, diag.IncompatibleTypes, c.Location.Anchor, c.Location.Path,
				"incompatible specialization")
		}
		return true

	case constraints.KindValueMember, constraints.KindTypeMember:
		owner := types.Apply(subst, c.Owner)
		if types.Info(owner).HasTypeVar() {
			return false // owner not yet resolved enough to look up a member; retry later
		}
		memberType, ok := s.lookupMember(owner, c.Member)
		if !ok {
			s.sink.Report(diag.Error, diag.NoSuchValueMember, c.Location.Anchor, c.Location.Path,
				"%s has no member %q", owner.String(), c.Member)
			return true
		}
		if !unify(subst, c.Result, memberType) {
			s.sink.Report(diag.Error, diag.IncompatibleTypes, c.Location.Anchor, c.Location.Path,
				"member %q has incompatible type", c.Member)
		}
		return true

	default:
		return true
	}
}

// lookupMember resolves `owner.member`, unwrapping a method's curried
// `self -> rest` shape into `rest` the way a bound method reference does
// (spec §4.2's currying, §4.3's select-expression constraint).
func (s *Solver) lookupMember(owner types.Type, member string) (types.Type, bool) {
	if tk, ok := owner.(types.TypeKind); ok {
		return s.lookupMember(tk.Inner, member)
	}
	nom, ok := owner.(types.NominalType)
	if !ok {
		if bg, ok := owner.(types.BoundGenericType); ok {
			return s.lookupMember(bg.Base, member)
		}
		return nil, false
	}
	decl, ok := nom.Decl.(*ast.NominalTypeDecl)
	if !ok {
		return nil, false
	}
	table := s.cc.Members.Lookup(decl, s.cc.Generation(), s.cc)
	found := table.Find(member)
	if len(found) == 0 {
		return nil, false
	}

	switch d := found[0].(type) {
	case *ast.FunctionDecl:
		if d.Type() == nil {
			return nil, false
		}
		// the realized method type is `self -> rest`; a select-expression
		// reads the method unapplied to self, so drop the outer arrow.
		if ft, ok := d.Type().Bare.(types.FunType); ok && len(ft.Dom) == 1 && ft.Dom[0].Label == "self" {
			return ft.Codom.Bare, true
		}
		return d.Type().Bare, true
	case *ast.PropertyDecl:
		if d.Type() == nil {
			return nil, false
		}
		return d.Type().Bare, true
	default:
		return nil, false
	}
}

// resolveBranchConstraint tries one of a disjunction branch's nested
// constraints against a speculative clone of the substitution, reporting no
// diagnostics of its own (an unsuccessful branch is simply discarded by
// solveDisjunction, not a type error). A branch's Equality list may contain
// either a plain equality (most overload candidates) or a member lookup (the
// constructor-choice branch spec §4.3 adds for a type-declaration
// identifier), so this dispatches on the nested constraint's own Kind rather
// than assuming KindEquality.
func (s *Solver) resolveBranchConstraint(clone types.Subst, eq *constraints.Constraint) bool {
	switch eq.Kind {
	case constraints.KindValueMember, constraints.KindTypeMember:
		owner := types.Apply(clone, eq.Owner)
		if types.Info(owner).HasTypeVar() {
			return false
		}
		memberType, ok := s.lookupMember(owner, eq.Member)
		if !ok {
			return false
		}
		return unify(clone, eq.Result, memberType)
	default:
		return unify(clone, eq.A, eq.B)
	}
}

// solveDisjunction implements spec §4.4.5's branch-and-bound overload
// resolution: every branch is tried against an independent clone of subst,
// branches whose nested equality constraints all unify are kept, and the
// branch with the lowest Weight is committed. A tie between surviving
// branches of equal minimal weight is reported as AmbiguousConstraint
// rather than resolved arbitrarily (unless config opts into
// PreferFirstOnTie for exploratory tooling) — the identifier-specific
// AmbiguousFunctionUse diagnostic is the Dispatcher's (internal/dispatch),
// reported only if a since-narrowed identifier still has more than one
// candidate after this solve (spec §4.5).
func (s *Solver) solveDisjunction(dc *constraints.Constraint, subst types.Subst) *constraints.Branch {
	type candidate struct {
		branch *constraints.Branch
		clone  types.Subst
	}
	var survivors []candidate

	if limit := s.cfg.MaxDisjunctionBranches; limit > 0 && len(dc.Branches) > limit {
		s.sink.Report(diag.Error, diag.IrreducibleConstraint, dc.Location.Anchor, dc.Location.Path,
			"%q has %d candidate overloads, more than the configured cap of %d",
			dc.Identifier.IdentName(), len(dc.Branches), limit)
		return nil
	}

	for i := range dc.Branches {
		br := &dc.Branches[i]
		clone := subst.Clone()
		ok := true
		for _, eq := range br.Equality {
			if !s.resolveBranchConstraint(clone, eq) {
				ok = false
				break
			}
		}
		if ok {
			survivors = append(survivors, candidate{branch: br, clone: clone})
		}
	}

	if len(survivors) == 0 {
		s.sink.Report(diag.Error, diag.IrreducibleConstraint, dc.Location.Anchor, dc.Location.Path,
			"no overload of %q matches", dc.Identifier.IdentName())
		return nil
	}

	bestWeight := survivors[0].branch.Weight
	for _, c := range survivors[1:] {
		if c.branch.Weight < bestWeight {
			bestWeight = c.branch.Weight
		}
	}
	var best []candidate
	for _, c := range survivors {
		if c.branch.Weight == bestWeight {
			best = append(best, c)
		}
	}

	if len(best) > 1 && !s.cfg.PreferFirstOnTie {
		s.sink.Report(diag.Error, diag.AmbiguousConstraint, dc.Location.Anchor, dc.Location.Path,
			"ambiguous use of %q: %d overloads equally match", dc.Identifier.IdentName(), len(best))
		return nil
	}

	winner := best[0]
	for id, t := range winner.clone {
		subst[id] = t
	}
	return winner.branch
}
