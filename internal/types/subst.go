package types

// Subst is a partial function TypeVar -> Type (spec §3.5). It is
// implemented as a plain map rather than a persistent structure; cheap
// copy-on-write across solver backtracking frames is achieved one level up
// (internal/solver) by cloning the map only when a disjunction branch is
// taken, exactly as the teacher's inference_solver.go composes a fresh
// Subst per branch instead of mutating a shared one in place.
type Subst map[int]Type

// Clone returns a shallow copy suitable for a backtracking branch to
// mutate independently of its parent.
func (s Subst) Clone() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get walks type variables to a fixed point (spec §3.5 "Walking").
func (s Subst) Get(t Type) Type {
	for {
		tv, ok := t.(TypeVar)
		if !ok {
			return t
		}
		next, bound := s[tv.ID]
		if !bound {
			return t
		}
		t = next
	}
}

// Set binds v to t. It panics if v is already bound to a structurally
// different type — a binding disagreement is a solver bug, not a
// recoverable diagnostic, exactly as spec §3.5 describes ("fails an
// assertion").
func (s Subst) Set(v TypeVar, t Type) {
	if existing, ok := s[v.ID]; ok {
		if existing.String() != t.String() {
			panic("types: conflicting substitution for " + v.String())
		}
		return
	}
	s[v.ID] = t
}

// ApplyQual walks q.Bare through s and to every type nested within it,
// preserving q's qualifier set.
func ApplyQual(s Subst, q QualType) QualType {
	return QualType{Bare: Apply(s, q.Bare), Quals: q.Quals}
}

// Apply recursively substitutes every type variable in t via s, stopping
// at ground subterms (TypeInfo.HasTypeVar is false) to avoid needless
// allocation on already-ground types.
func Apply(s Subst, t Type) Type {
	if !t.info().HasTypeVar() {
		return t
	}
	switch v := t.(type) {
	case TypeVar:
		resolved := s.Get(v)
		if resolved == Type(v) {
			return v
		}
		return Apply(s, resolved)
	case FunType:
		dom := make([]Param, len(v.Dom))
		for i, p := range v.Dom {
			dom[i] = Param{Label: p.Label, Type: ApplyQual(s, p.Type)}
		}
		return FunType{Placeholders: v.Placeholders, Dom: dom, Codom: ApplyQual(s, v.Codom)}
	case BoundGenericType:
		bindings := make(map[string]QualType, len(v.Bindings))
		for k, val := range v.Bindings {
			bindings[k] = ApplyQual(s, val)
		}
		return BoundGenericType{Base: Apply(s, v.Base), Bindings: bindings}
	case TypeKind:
		return TypeKind{Inner: Apply(s, v.Inner)}
	default:
		return t
	}
}

// Canonized materializes the fixed point of every bound variable in s
// (spec §3.5). Applying it a second time is idempotent (spec §8.2).
func (s Subst) Canonized() Subst {
	out := make(Subst, len(s))
	for id := range s {
		out[id] = Apply(s, TypeVar{ID: id})
	}
	return out
}
