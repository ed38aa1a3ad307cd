package pipeline

import (
	"testing"

	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/diag"
)

// run is the teacher-style test harness (spec §8's "analyzeSource(input
// string) []error" shape, from the teacher's
// internal/analyzer/analyzer_errors_test.go): it spins up a fresh
// CompilerContext and runs the standard pipeline over one source string.
func run(t *testing.T, src string) *compiler.Module {
	t.Helper()
	cc := compiler.New(config.DefaultSolverConfig())
	ctx := &PipelineContext{ModuleID: "test", Source: src, CC: cc}
	result := Standard().Run(ctx)
	return result.Module
}

func findProperty(mod *compiler.Module, name string) *ast.PropertyDecl {
	for _, d := range mod.AST.Decls() {
		if p, ok := d.(*ast.PropertyDecl); ok && p.Name == name {
			return p
		}
	}
	return nil
}

func findFunctions(mod *compiler.Module, name string) []*ast.FunctionDecl {
	var out []*ast.FunctionDecl
	for _, d := range mod.AST.Decls() {
		if f, ok := d.(*ast.FunctionDecl); ok && f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

func expectNoErrors(t *testing.T, mod *compiler.Module) {
	t.Helper()
	for _, issue := range mod.Sink.Issues() {
		if issue.Severity == diag.Error {
			t.Fatalf("unexpected error diagnostic: %s", issue.Error())
		}
	}
}

func expectError(t *testing.T, mod *compiler.Module, code diag.Code) *diag.Issue {
	t.Helper()
	for _, issue := range mod.Sink.Issues() {
		if issue.Severity == diag.Error && issue.Code == code {
			return issue
		}
	}
	t.Fatalf("expected a %s diagnostic, got: %v", code, mod.Sink.Issues())
	return nil
}

// Scenario 1 (spec §8): `let x: Int <- 1` -> `x: @cst Int`; no diagnostics.
func TestSimpleLetBinding(t *testing.T) {
	mod := run(t, "let x: Int <- 1")
	expectNoErrors(t, mod)

	x := findProperty(mod, "x")
	if x == nil {
		t.Fatal("expected property x")
	}
	if x.Type() == nil || x.Type().Bare.String() != "Int" {
		t.Fatalf("expected x: Int, got %v", x.Type())
	}
}

// Scenario 2 (spec §8): overloaded call dispatches to the matching overload.
func TestOverloadedCallDispatchesToMatchingOverload(t *testing.T) {
	src := `
fun f(x: Int) -> Int { return x }
fun f(x: Float) -> Float { return x }
let r1 := f(1)
let r2 := f(1.0)
`
	mod := run(t, src)
	expectNoErrors(t, mod)

	r1 := findProperty(mod, "r1")
	r2 := findProperty(mod, "r2")
	if r1 == nil || r1.Type().Bare.String() != "Int" {
		t.Fatalf("expected r1: Int, got %v", r1.Type())
	}
	if r2 == nil || r2.Type().Bare.String() != "Float" {
		t.Fatalf("expected r2: Float, got %v", r2.Type())
	}
}

// Scenario 4 (spec §8): select on a method resolves through the struct's
// member lookup table.
func TestSelectOnMethod(t *testing.T) {
	src := `
struct S {
	fun g() -> Int { return 1 }
}
let s := S()
let r := s.g()
`
	mod := run(t, src)
	expectNoErrors(t, mod)

	r := findProperty(mod, "r")
	if r == nil || r.Type().Bare.String() != "Int" {
		t.Fatalf("expected r: Int, got %v", r.Type())
	}
}

// Scenario 6 (spec §8): an identifier nowhere in scope is unbound.
func TestUnboundIdentifier(t *testing.T) {
	mod := run(t, "let x := y")
	expectError(t, mod, diag.UnboundIdentifier)
}

// Spec §8 property 7: reference-identity operators always type Bool.
func TestReferenceIdentityAlwaysBool(t *testing.T) {
	src := `
struct S {}
let a := S()
let b := S()
let same := a === b
`
	mod := run(t, src)
	expectNoErrors(t, mod)
	same := findProperty(mod, "same")
	if same == nil || same.Type().Bare.String() != "Bool" {
		t.Fatalf("expected same: Bool, got %v", same.Type())
	}
}

// Spec §8 property 5: a non-function declaration in the same context as
// any other with the same name is a duplicate-declaration error; functions
// coexist as overloads without one.
func TestDuplicatePropertyDeclarationIsAnError(t *testing.T) {
	src := `
let x := 1
let x := 2
`
	mod := run(t, src)
	expectError(t, mod, diag.DuplicateDeclaration)
}

func TestOverloadedFunctionsDoNotConflict(t *testing.T) {
	src := `
fun f(x: Int) -> Int { return x }
fun f(x: Float) -> Float { return x }
`
	mod := run(t, src)
	for _, issue := range mod.Sink.Issues() {
		if issue.Code == diag.DuplicateDeclaration || issue.Code == diag.IllegalRedeclaration {
			t.Fatalf("unexpected %s for two function overloads: %s", issue.Code, issue.Message)
		}
	}
	if len(findFunctions(mod, "f")) != 2 {
		t.Fatalf("expected both overloads of f to remain declared")
	}
}

// Spec §8 property 10: `let` forbids a later reference rebind; `var` allows it.
func TestReassignmentLegality(t *testing.T) {
	letSrc := `
fun test() {
	let x := 1
	x &- 2
}
`
	mod := run(t, letSrc)
	expectError(t, mod, diag.IllegalReassignment)

	varSrc := `
fun test() {
	var x := 1
	x &- 2
}
`
	mod2 := run(t, varSrc)
	for _, issue := range mod2.Sink.Issues() {
		if issue.Code == diag.IllegalReassignment {
			t.Fatalf("unexpected illegal-reassignment for a var rebind: %s", issue.Message)
		}
	}
}
