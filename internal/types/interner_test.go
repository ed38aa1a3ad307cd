package types

import "testing"

func TestInterningIdentity(t *testing.T) {
	in := NewInterner()

	a := in.GetBuiltinType("Int")
	b := in.GetBuiltinType("Int")
	if a != b {
		t.Fatalf("expected identical Int instances, got %v vs %v", a, b)
	}

	ft1 := FunType{Dom: []Param{{Type: QualType{Bare: in.GetBuiltinType("Int")}}}, Codom: QualType{Bare: in.GetBuiltinType("Int")}}
	ft2 := FunType{Dom: []Param{{Type: QualType{Bare: in.GetBuiltinType("Int")}}}, Codom: QualType{Bare: in.GetBuiltinType("Int")}}
	f1 := in.GetFunType(ft1)
	f2 := in.GetFunType(ft2)
	if f1 != f2 {
		t.Fatalf("expected identical FunType instances for structurally equal inputs")
	}
}

func TestBoundGenericInterningIgnoresMapOrder(t *testing.T) {
	in := NewInterner()
	base := in.GetBuiltinType("Box")
	b1 := in.GetBoundGeneric(BoundGenericType{Base: base, Bindings: map[string]QualType{
		"T": {Bare: in.GetBuiltinType("Int")},
		"U": {Bare: in.GetBuiltinType("Float")},
	}})
	b2 := in.GetBoundGeneric(BoundGenericType{Base: base, Bindings: map[string]QualType{
		"U": {Bare: in.GetBuiltinType("Float")},
		"T": {Bare: in.GetBuiltinType("Int")},
	}})
	if b1 != b2 {
		t.Fatalf("expected bound-generic interning to be order independent")
	}
}

func TestSubstitutionIdempotence(t *testing.T) {
	in := NewInterner()
	v1 := in.FreshTypeVar()
	v2 := in.FreshTypeVar()
	s := Subst{v1.ID: v2, v2.ID: in.GetBuiltinType("Int")}

	once := s.Canonized()
	twice := once.Canonized()

	for id, t1 := range once {
		t2 := twice[id]
		if t1.String() != t2.String() {
			t.Fatalf("canonized substitution is not idempotent at var %d: %v vs %v", id, t1, t2)
		}
	}
}

func TestOccursCheckAbsentAfterWalk(t *testing.T) {
	in := NewInterner()
	v := in.FreshTypeVar()
	s := Subst{v.ID: in.GetBuiltinType("Int")}
	resolved := Apply(s, v)
	if _, ok := resolved.(TypeVar); ok {
		t.Fatalf("expected %v to resolve away from its own variable", v)
	}
}
