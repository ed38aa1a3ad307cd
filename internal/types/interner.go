package types

import "sync"

// Interner hash-conses every constructible type so structurally equal
// types are always the same Go value (spec §3.1, §8.1). It also owns the
// strictly-increasing type-variable ID generator (spec §3.1).
//
// The teacher's analogous component (internal/symbols, which memoizes
// TCon/TApp values only incidentally through Go map identity) never
// actually hash-conses — this repository's core needs real interning
// because the solver and dispatcher compare finalized types by identity,
// so the Interner is original to this repo, built the way the teacher
// builds its other central caches (symbols.SymbolTable): a struct guarding
// a handful of maps behind simple getter methods.
type Interner struct {
	mu sync.Mutex

	nextVarID int

	builtins map[string]Type
	funcs    map[string]Type
	nominals map[string]Type
	bounds   map[string]Type
	kinds    map[string]Type
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		builtins: make(map[string]Type),
		funcs:    make(map[string]Type),
		nominals: make(map[string]Type),
		bounds:   make(map[string]Type),
		kinds:    make(map[string]Type),
	}
}

// FreshTypeVar issues a new, never-before-seen TypeVar.
func (in *Interner) FreshTypeVar() TypeVar {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.nextVarID++
	return TypeVar{ID: in.nextVarID}
}

// GetBuiltinType interns a BuiltinType by name.
func (in *Interner) GetBuiltinType(name string) Type {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.builtins[name]; ok {
		return t
	}
	t := BuiltinType{Name: name}
	in.builtins[name] = t
	return t
}

// GetFunType interns a FunType by its structural string key.
func (in *Interner) GetFunType(ft FunType) Type {
	key := ft.String()
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.funcs[key]; ok {
		return t
	}
	in.funcs[key] = ft
	return ft
}

// GetNominalType interns a struct/union/interface type by name plus
// declaration identity (so two distinct declarations named the same way —
// impossible under the duplicate-declaration rule, but defensive
// regardless — never collide).
func (in *Interner) GetNominalType(nt NominalType) Type {
	key := nominalKey(nt)
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.nominals[key]; ok {
		return t
	}
	in.nominals[key] = nt
	return nt
}

func nominalKey(nt NominalType) string {
	return nt.Name + "#" + ptrKey(nt.Decl)
}

// ptrKey renders the identity of an opaque declaration reference. Decl
// values are always pointers to AST nodes, so formatting via %p gives a
// stable per-process identity key without types importing ast.
func ptrKey(v any) string {
	return ptrKeyOf(v)
}

// GetBoundGeneric interns a BoundGenericType by its canonical (sorted)
// binding key, so that bindings supplied in different map-iteration order
// still hash-cons to a single instance (spec §8.1 interning-identity
// property).
func (in *Interner) GetBoundGeneric(bg BoundGenericType) Type {
	key := bg.canonicalKey()
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.bounds[key]; ok {
		return t
	}
	in.bounds[key] = bg
	return bg
}

// GetTypeKind interns the metatype of t.
func (in *Interner) GetTypeKind(t Type) Type {
	key := "kind:" + t.String()
	in.mu.Lock()
	defer in.mu.Unlock()
	if k, ok := in.kinds[key]; ok {
		return k
	}
	k := TypeKind{Inner: t}
	in.kinds[key] = k
	return k
}
