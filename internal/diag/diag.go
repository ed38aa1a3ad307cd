// Package diag implements the diagnostic model every pass reports into
// (spec §6.3, §7): issues accumulate on nodes, no pass raises control-flow
// exceptions for a diagnostic condition.
//
// internal/diagnostics is referenced throughout the teacher's analyzer
// (`diagnostics.DiagnosticError`, `diagnostics.ErrorCode`) but was filtered
// out of the retrieval pack; this package is rebuilt from those usage
// sites — an Issue carrying a stable Code, plus the dedup-by-
// "line:col:code" pattern `internal/analyzer/analyzer.go`'s walker uses for
// its errorSet, generalized here into a Sink keyed the same way.
package diag

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nomina-lang/nomina/internal/ast"
)

// Severity is either an error or a warning (spec §6.3).
type Severity uint8

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is a stable diagnostic identifier (spec §6.3 "Error kinds the core
// must emit").
type Code string

const (
	SyntaxError Code = "E000"

	UnboundIdentifier          Code = "E001"
	InvalidTypeIdentifier      Code = "E002"
	NonExistingNestedType      Code = "E003"
	DuplicateDeclaration       Code = "E004"
	IllegalRedeclaration       Code = "E005"
	IllegalReassignment        Code = "E006"
	InvalidLValue              Code = "E007"
	IncompatibleTypes          Code = "E008"
	IncorrectParameterLabel    Code = "E009"
	NoSuchValueMember          Code = "E010"
	AmbiguousConstraint        Code = "E011"
	IrreducibleConstraint      Code = "E012"
	AmbiguousFunctionUse       Code = "E013"
	SuperfluousSpecialization  Code = "W001"
	IllegalTopLevelCapture     Code = "E014"
	IllegalCaptureInMethod     Code = "E015"
)

// PathStepKind refines a diagnostic's anchor to a specific sub-node (spec
// §4.3 "location").
type PathStepKind uint8

const (
	StepCall PathStepKind = iota
	StepCodomain
	StepInfixOp
	StepInfixRHS
	StepBinding
	StepPrefixOp
	StepParameter
	StepReturn
	StepSelect
	StepInitializer
	StepCondition
	StepIdentifier
)

// PathStep is one element of a constraint's location path (spec §4.3).
type PathStep struct {
	Kind  PathStepKind
	Index int // meaningful only for StepParameter
}

// Issue is a single diagnostic (spec §6.3).
type Issue struct {
	ID       uuid.UUID
	Severity Severity
	Code     Code
	Message  string
	Node     ast.Node
	Path     []PathStep
}

func (i *Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// Sink accumulates issues across passes, deduplicating by
// (node-range, code) the way the teacher's analyzer walker deduplicates by
// "line:col:code".
type Sink struct {
	issues []*Issue
	seen   map[string]bool
}

func NewSink() *Sink {
	return &Sink{seen: make(map[string]bool)}
}

// Report records an issue unless an equivalent one (same range, same code)
// was already reported.
func (s *Sink) Report(severity Severity, code Code, node ast.Node, path []PathStep, format string, args ...any) *Issue {
	issue := &Issue{
		ID:       uuid.New(),
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Path:     path,
	}
	key := dedupKey(node, code)
	if s.seen[key] {
		return issue
	}
	s.seen[key] = true
	s.issues = append(s.issues, issue)
	return issue
}

func dedupKey(node ast.Node, code Code) string {
	if node == nil {
		return string(code)
	}
	r := node.Range()
	return fmt.Sprintf("%d:%d:%s", r.StartLine, r.StartCol, code)
}

// Issues returns every recorded issue, in report order.
func (s *Sink) Issues() []*Issue { return s.issues }

// HasErrors reports whether any issue at Error severity was recorded.
func (s *Sink) HasErrors() bool {
	for _, i := range s.issues {
		if i.Severity == Error {
			return true
		}
	}
	return false
}
