// Package compiler implements the Compiler Context (spec §3.1): the
// single-instance, process-wide owner of the module table, the generation
// counter, the type interner and the well-known built-in types.
//
// Structurally this plays the role the teacher's internal/modules package
// plays (a loader + module table) fused with the bits of
// internal/symbols_init.go that install prelude built-ins — but the
// teacher never actually hash-conses its types or tracks a generation
// counter, so both of those are original to this repo, built to spec §3.1.
package compiler

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/symbols"
	"github.com/nomina-lang/nomina/internal/types"
)

// WellKnownTypes holds the handful of types every module's analysis needs
// without a lookup (spec §3.1).
type WellKnownTypes struct {
	Anything   types.Type
	Nothing    types.Type
	Error      types.Type
	Bool       types.Type
	Int        types.Type
	Float      types.Type
	String     types.Type
	Assignment types.Type // the type binding operators (:=, &-, <-) carry
}

// CompilerContext is the single-instance owner described by spec §3.1.
type CompilerContext struct {
	Interner    *types.Interner
	Members     *symbols.Cache
	Conformance *types.ConformanceRegistry
	WellKnown   WellKnownTypes
	SolverCfg   config.SolverConfig

	modules    map[string]*Module
	generation int
}

// New creates a CompilerContext with its two built-in modules
// (spec §3.1, §6.1) already present.
func New(cfg config.SolverConfig) *CompilerContext {
	cc := &CompilerContext{
		Interner:    types.NewInterner(),
		Members:     symbols.NewCache(),
		Conformance: types.NewConformanceRegistry(),
		SolverCfg:   cfg,
		modules:     make(map[string]*Module),
	}
	cc.WellKnown = WellKnownTypes{
		Anything:   cc.Interner.GetBuiltinType(config.AnythingTypeName),
		Nothing:    cc.Interner.GetBuiltinType(config.NothingTypeName),
		Error:      cc.Interner.GetBuiltinType(config.ErrorTypeName),
		Bool:       cc.Interner.GetBuiltinType(config.BoolTypeName),
		Int:        cc.Interner.GetBuiltinType(config.IntTypeName),
		Float:      cc.Interner.GetBuiltinType(config.FloatTypeName),
		String:     cc.Interner.GetBuiltinType(config.StringTypeName),
		Assignment: cc.Interner.GetBuiltinType("Assignment"),
	}
	_, builtin := cc.CreateModule(BuiltinModuleID())
	for _, name := range []string{config.AnythingTypeName, config.NothingTypeName, config.BoolTypeName,
		config.IntTypeName, config.FloatTypeName, config.StringTypeName} {
		decl := &ast.BuiltinTypeDecl{Name: name, RealizedType: cc.Interner.GetBuiltinType(name)}
		decl.SetModuleID(builtin.ID.String())
		decl.SetDeclContext(builtin.AST)
		builtin.AST.AddDecl(decl)
	}
	_, _ = cc.CreateModule(StdlibModuleID())
	return cc
}

// Generation returns the current generation counter (spec §3.1, §3.3).
func (cc *CompilerContext) Generation() int { return cc.generation }

// CreateModule returns the module for id, creating it (and bumping the
// generation counter) if it does not already exist (spec §6.1
// `createModule`). The `created` flag distinguishes first loads from
// lookups.
func (cc *CompilerContext) CreateModule(id ModuleID) (created bool, mod *Module) {
	key := id.String()
	if existing, ok := cc.modules[key]; ok {
		return false, existing
	}
	cc.generation++
	mod = &Module{
		ID:         id,
		AST:        ast.NewModule(id.String()),
		Sink:       diag.NewSink(),
		Generation: cc.generation,
	}
	cc.modules[key] = mod
	return true, mod
}

// GetModule looks up an already-created module without creating one.
func (cc *CompilerContext) GetModule(id ModuleID) (*Module, bool) {
	m, ok := cc.modules[id.String()]
	return m, ok
}

// AllModules returns every module currently in the table, in no
// particular order.
func (cc *CompilerContext) AllModules() []*Module {
	out := make([]*Module, 0, len(cc.modules))
	for _, m := range cc.modules {
		out = append(out, m)
	}
	return out
}
