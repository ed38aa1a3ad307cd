// Package modulesys implements the module loading API spec §6.1 exposes to
// callers: `load(moduleID, in: CompilerContext) -> Result<Module, Error>`
// and `createModule(named:) -> (created, Module)`. It is the thin seam
// between a caller (a build driver, the introspection service, a test
// harness) and the internal Parse -> NameBinder -> TypeRealizer ->
// TypeChecker -> CaptureAnalysis pipeline (spec §6.1) — structurally the
// role the teacher's internal/modules.Loader plays, minus filesystem
// package discovery (explicitly out of scope, spec §1).
//
// Every load is stamped with a session id (github.com/google/uuid) the way
// the teacher's internal/ext test fixtures stamp generated correlation ids,
// so a caller driving many loads against one long-lived CompilerContext can
// correlate a particular Load call with the diagnostics and generation
// bump it produced.
package modulesys

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/pipeline"
)

// LoadRecord is one entry in the audit trail kept alongside the compiler
// context's module table: which session loaded which module at which
// generation.
type LoadRecord struct {
	SessionID  uuid.UUID
	ModuleID   compiler.ModuleID
	Generation int
	HadErrors  bool
}

// Loader drives CompilerContext.CreateModule plus the standard pipeline,
// keeping an append-only audit trail of every Load call it has served.
// A Loader has no filesystem knowledge: its caller supplies source text
// directly, matching spec §1's "module discovery from the filesystem" as
// an external collaborator.
type Loader struct {
	cc      *compiler.CompilerContext
	history []LoadRecord
}

// New creates a Loader bound to a single CompilerContext, mirroring the
// teacher's one-Loader-per-compilation-unit lifecycle (internal/modules.NewLoader).
func New(cc *compiler.CompilerContext) *Loader {
	return &Loader{cc: cc}
}

// CreateModule is spec §6.1's `createModule(named:)`: returns the module
// for id, creating it only if it does not already exist. The `created`
// flag distinguishes first loads from lookups, exactly as the spec
// requires.
func (l *Loader) CreateModule(id compiler.ModuleID) (created bool, mod *compiler.Module) {
	return l.cc.CreateModule(id)
}

// Load is spec §6.1's `load(moduleID, in: CompilerContext)`: it locates
// (from the caller-supplied source, since this package has no filesystem
// knowledge) and runs the full pipeline — Parse, NameBinder, TypeRealizer,
// TypeChecker, CaptureAnalysis — stamping the resulting module with a
// fresh load-session id for the audit trail.
//
// Only ModuleLocal ids can be freshly loaded this way: the builtin and
// stdlib modules are provisioned once, up front, by CompilerContext.New
// (spec §3.1) and never re-parsed from source through this seam.
//
// Per spec §7, only fatal failures surface as a caller-visible error; a
// module that parses (even with diagnostics) is "typed" and returned with
// no error. Source that cannot even be handed to the parser (empty name,
// or a non-local id) is the one fatal condition this seam recognizes.
func (l *Loader) Load(id compiler.ModuleID, source string) (*compiler.Module, error) {
	if id.Kind != compiler.ModuleLocal {
		return nil, fmt.Errorf("modulesys: only local modules can be loaded, got %q", id.String())
	}
	if id.Name == "" {
		return nil, fmt.Errorf("modulesys: empty module identifier")
	}

	sessionID := uuid.New()

	ctx := &pipeline.PipelineContext{
		ModuleID: id.Name,
		Source:   source,
		CC:       l.cc,
	}
	result := pipeline.Standard().Run(ctx)

	l.history = append(l.history, LoadRecord{
		SessionID:  sessionID,
		ModuleID:   id,
		Generation: result.Module.Generation,
		HadErrors:  result.Module.Sink.HasErrors(),
	})

	return result.Module, nil
}

// History returns every Load call this Loader has served, oldest first.
func (l *Loader) History() []LoadRecord {
	out := make([]LoadRecord, len(l.history))
	copy(out, l.history)
	return out
}

// LastSession returns the session id of the most recent Load call for
// moduleID, if any — used by the introspection service to correlate a
// module summary request with the load that produced it.
func (l *Loader) LastSession(id compiler.ModuleID) (uuid.UUID, bool) {
	key := id.String()
	for i := len(l.history) - 1; i >= 0; i-- {
		if l.history[i].ModuleID.String() == key {
			return l.history[i].SessionID, true
		}
	}
	return uuid.UUID{}, false
}
