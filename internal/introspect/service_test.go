package introspect

import (
	"context"
	"testing"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/modulesys"
)

func newTestService(t *testing.T) (*Service, *compiler.CompilerContext, *modulesys.Loader) {
	t.Helper()
	cc := compiler.New(config.DefaultSolverConfig())
	loader := modulesys.New(cc)
	svc, err := NewService(NewProvider(cc, loader))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, cc, loader
}

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema()
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if schema.service.GetName() != "Introspection" {
		t.Fatalf("expected service Introspection, got %s", schema.service.GetName())
	}
	if schema.method.GetName() != "GetModuleSummary" {
		t.Fatalf("expected method GetModuleSummary, got %s", schema.method.GetName())
	}
}

func TestGetModuleSummaryReturnsDeclarationsAndIssues(t *testing.T) {
	svc, _, loader := newTestService(t)

	id := compiler.LocalModuleID("greeter")
	if _, err := loader.Load(id, "let greeting: String <- \"hi\"\nlet x := y"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	req := dynamic.NewMessage(svc.schema.reqType)
	req.SetFieldByName("module_id", "greeter")

	resp, err := svc.getModuleSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("getModuleSummary: %v", err)
	}

	moduleID, _ := resp.TryGetFieldByName("module_id")
	if moduleID.(string) != id.String() {
		t.Fatalf("expected module_id %q, got %v", id.String(), moduleID)
	}

	sessionID, _ := resp.TryGetFieldByName("load_session_id")
	if sessionID.(string) == "" {
		t.Fatal("expected a non-empty load_session_id")
	}

	declsField, err := resp.TryGetFieldByName("declarations")
	if err != nil {
		t.Fatalf("declarations field: %v", err)
	}
	decls, ok := declsField.([]interface{})
	if !ok || len(decls) == 0 {
		t.Fatal("expected at least one declaration summary")
	}

	issuesField, err := resp.TryGetFieldByName("issues")
	if err != nil {
		t.Fatalf("issues field: %v", err)
	}
	issues, ok := issuesField.([]interface{})
	if !ok || len(issues) == 0 {
		t.Fatal("expected the unbound-identifier diagnostic to be reported")
	}
}

func TestGetModuleSummaryUnknownModule(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := dynamic.NewMessage(svc.schema.reqType)
	req.SetFieldByName("module_id", "nope")

	if _, err := svc.getModuleSummary(context.Background(), req); err == nil {
		t.Fatal("expected an error for an unknown module id")
	}
}

func TestLoaderTracksSessionHistory(t *testing.T) {
	cc := compiler.New(config.DefaultSolverConfig())
	loader := modulesys.New(cc)

	id := compiler.LocalModuleID("m")
	if _, err := loader.Load(id, "let x := 1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := loader.Load(id, "let x := 2"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	history := loader.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	last, ok := loader.LastSession(id)
	if !ok {
		t.Fatal("expected a last session for m")
	}
	if last != history[1].SessionID {
		t.Fatalf("expected LastSession to return the most recent load's session id")
	}
}
