// Package pipeline wires the core stages (spec §6.1) into the
// chain-of-responsibility shape the rest of this codebase's ancestor uses:
// a Pipeline is an ordered list of Processors, each taking a
// PipelineContext and handing back a (possibly mutated) one. Stages never
// abort the chain on error — diagnostics accumulate in the sink so a
// caller (an editor integration, a batch checker) sees everything wrong
// with a module in one pass rather than stopping at the first stage that
// objects.
package pipeline

import (
	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/binder"
	"github.com/nomina-lang/nomina/internal/capture"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/constraints"
	"github.com/nomina-lang/nomina/internal/dispatch"
	"github.com/nomina-lang/nomina/internal/parser"
	"github.com/nomina-lang/nomina/internal/realize"
	"github.com/nomina-lang/nomina/internal/solver"
)

// PipelineContext threads the state every stage needs: the source text and
// module identity going in, the compiler context every stage shares, and
// whatever AST/diagnostics have accumulated so far.
type PipelineContext struct {
	ModuleID string
	Source   string
	CC       *compiler.CompilerContext
	Module   *compiler.Module
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs an ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. Stages do not short-circuit on error:
// later stages simply see whatever partial AST/bindings earlier stages
// managed to produce, and their own diagnostics land in the same sink.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// Standard returns the five-stage pipeline spec §6.1 names: Parse ->
// NameBinder -> TypeRealizer -> TypeChecker (extractor+solver+dispatcher)
// -> CaptureAnalysis.
func Standard() *Pipeline {
	return New(
		&ParseProcessor{},
		&NameBinderProcessor{},
		&TypeRealizerProcessor{},
		&TypeCheckerProcessor{},
		&CaptureProcessor{},
	)
}

// ParseProcessor turns ctx.Source into an AST and installs it on the local
// module named ctx.ModuleID in ctx.CC, creating that module (with a fresh
// diagnostic sink) if it does not exist; an existing one is reused, sink
// included.
type ParseProcessor struct{}

func (pp *ParseProcessor) Process(ctx *PipelineContext) *PipelineContext {
	_, mod := ctx.CC.CreateModule(compiler.LocalModuleID(ctx.ModuleID))
	ctx.Module = mod

	p := parser.New(ctx.Source, mod.ID.String(), mod.Sink)
	astMod := p.ParseModule(ctx.ModuleID)
	mod.AST = astMod
	return ctx
}

// NameBinderProcessor runs the Name Binder (spec §4.1) over the parsed
// module.
type NameBinderProcessor struct{}

func (np *NameBinderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	binder.New(ctx.CC, ctx.Module).Bind()
	return ctx
}

// TypeRealizerProcessor runs the Type Realizer (spec §4.2), interning every
// syntactic type signature into a semantic Type.
type TypeRealizerProcessor struct{}

func (rp *TypeRealizerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	realize.New(ctx.CC, ctx.Module).Realize()
	return ctx
}

// TypeCheckerProcessor is the extractor+solver+dispatcher trio (spec
// §4.3-§4.5): every function and property in the module is extracted into
// a flat constraint list, solved independently, and dispatched back onto
// the AST.
type TypeCheckerProcessor struct{}

func (tp *TypeCheckerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	extractor := constraints.New(ctx.CC, ctx.Module.Sink)
	checkDecls(ctx, extractor, ctx.Module.AST.Decls())
	return ctx
}

// checkDecls recurses into nominal types and extensions so every method
// and property initializer gets its own independent extract -> solve ->
// dispatch pass (spec §4.3-§4.5 run per declaration, not per module).
func checkDecls(ctx *PipelineContext, extractor *constraints.Extractor, decls []ast.Decl) {
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.FunctionDecl:
			checkFunction(ctx, extractor, decl)
		case *ast.PropertyDecl:
			checkProperty(ctx, extractor, decl)
		case *ast.NominalTypeDecl:
			checkDecls(ctx, extractor, decl.Decls())
		case *ast.ExtensionDecl:
			checkDecls(ctx, extractor, decl.Decls())
		}
	}
}

func checkFunction(ctx *PipelineContext, extractor *constraints.Extractor, f *ast.FunctionDecl) {
	cs := extractor.ExtractFunction(f)
	result := solver.New(ctx.CC, ctx.Module.Sink, ctx.CC.SolverCfg).Solve(cs)
	d := dispatch.New(ctx.Module.Sink, result)
	d.DispatchConstraints(cs)
	d.FinalizeFunction(f)
}

func checkProperty(ctx *PipelineContext, extractor *constraints.Extractor, p *ast.PropertyDecl) {
	cs := extractor.ExtractProperty(p)
	result := solver.New(ctx.CC, ctx.Module.Sink, ctx.CC.SolverCfg).Solve(cs)
	d := dispatch.New(ctx.Module.Sink, result)
	d.DispatchConstraints(cs)
	d.FinalizeProperty(p)
}

// CaptureProcessor runs Capture Analysis (spec §4.6) last, since it reads
// the fully dispatched (single-candidate) identifiers Typecheck leaves
// behind.
type CaptureProcessor struct{}

func (cp *CaptureProcessor) Process(ctx *PipelineContext) *PipelineContext {
	capture.New(ctx.Module.Sink).AnalyzeModule(ctx.Module.AST.Decls())
	return ctx
}
