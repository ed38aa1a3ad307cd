package compiler

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/diag"
)

// ModuleIDKind distinguishes the two built-in modules from ordinary local
// modules (spec §3.1, §6.1).
type ModuleIDKind uint8

const (
	ModuleBuiltin ModuleIDKind = iota
	ModuleStdlib
	ModuleLocal
)

// ModuleID names one entry in the module table.
type ModuleID struct {
	Kind ModuleIDKind
	Name string // meaningful only for ModuleLocal
}

func BuiltinModuleID() ModuleID { return ModuleID{Kind: ModuleBuiltin} }
func StdlibModuleID() ModuleID  { return ModuleID{Kind: ModuleStdlib} }
func LocalModuleID(name string) ModuleID { return ModuleID{Kind: ModuleLocal, Name: name} }

func (id ModuleID) String() string {
	switch id.Kind {
	case ModuleBuiltin:
		return config.BuiltinModuleName
	case ModuleStdlib:
		return config.StdlibModuleName
	default:
		return "local(" + id.Name + ")"
	}
}

// Module is one entry in the CompilerContext's module table (spec §3.1):
// its AST, its diagnostic sink, and the generation at which it was created
// (spec §3.3's generation counter).
type Module struct {
	ID         ModuleID
	AST        *ast.Module
	Sink       *diag.Sink
	Generation int
}

// Extensions returns every ExtensionDecl declared directly in this module.
func (m *Module) Extensions() []*ast.ExtensionDecl {
	var out []*ast.ExtensionDecl
	for _, d := range m.AST.Decls() {
		if ext, ok := d.(*ast.ExtensionDecl); ok {
			out = append(out, ext)
		}
	}
	return out
}

// ExtensionsSince implements symbols.ExtensionSource: every extension
// declared in a module created at or after the given generation (spec
// §3.3's incremental refresh — "extensions loaded in later modules get
// folded in without a full rebuild").
func (cc *CompilerContext) ExtensionsSince(generation int) []*ast.ExtensionDecl {
	var out []*ast.ExtensionDecl
	for _, m := range cc.modules {
		if m.Generation >= generation {
			out = append(out, m.Extensions()...)
		}
	}
	return out
}

// ExtensionTarget resolves an extension's extended-type signature to the
// nominal declaration it extends. It relies on name binding having already
// resolved the signature's identifier to a declaration (spec §4.1 step 3);
// until then it returns nil and the extension is simply not yet folded in.
func (cc *CompilerContext) ExtensionTarget(ext *ast.ExtensionDecl) *ast.NominalTypeDecl {
	id, ok := ext.ExtendedTypeSig.(*ast.IdentifierTypeSig)
	if !ok {
		return nil
	}
	nom, _ := id.Referred.(*ast.NominalTypeDecl)
	return nom
}
