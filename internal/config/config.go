// Package config holds process-wide compiler mode switches and the
// solver's tunable configuration, the way the teacher's internal/config
// package holds IsTestMode/IsLSPMode and a handful of well-known name
// tables (internal/config/constants.go).
package config

import "gopkg.in/yaml.v3"

// IsTestMode indicates the compiler is running under `go test`. No code in
// this repository sets or reads it; type variables print the same either
// way.
var IsTestMode = false

// Well-known built-in type and module names (spec §3.1).
const (
	AnythingTypeName = "Anything"
	NothingTypeName  = "Nothing"
	ErrorTypeName    = "Error"
	BoolTypeName     = "Bool"
	IntTypeName      = "Int"
	FloatTypeName    = "Float"
	StringTypeName   = "String"
	SelfTypeName     = "Self"
	NewCtorName      = "new"

	BuiltinModuleName = "builtin"
	StdlibModuleName  = "stdlib"
)

// SolverConfig tunes the constraint solver's branch-and-bound exploration
// (spec §4.4). It is loaded from YAML, mirroring the teacher's
// ext/config.go funxy.yaml parsing via gopkg.in/yaml.v3 — here the
// document configures the type checker instead of Go-binding declarations.
type SolverConfig struct {
	// MaxDisjunctionBranches caps the number of simultaneous choices a
	// single disjunction may expand into before the solver treats the
	// constraint as irreducible rather than exhaustively exploring it.
	// Zero means unbounded.
	MaxDisjunctionBranches int `yaml:"maxDisjunctionBranches"`

	// PreferFirstOnTie breaks a tie among equal-weight disjunction
	// choices by keeping the first rather than reporting ambiguity. The
	// spec's default behavior (§4.4.5) always reports ambiguity on a tie;
	// this exists only so a driver can opt into the relaxed mode for
	// exploratory tooling, and defaults to false.
	PreferFirstOnTie bool `yaml:"preferFirstOnTie"`
}

// DefaultSolverConfig matches spec §4.4 exactly: unbounded branching, ties
// always reported as ambiguous.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{MaxDisjunctionBranches: 0, PreferFirstOnTie: false}
}

// ParseSolverConfig parses a YAML document into a SolverConfig, starting
// from DefaultSolverConfig so a partial document only overrides the fields
// it mentions.
func ParseSolverConfig(doc []byte) (SolverConfig, error) {
	cfg := DefaultSolverConfig()
	if len(doc) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return SolverConfig{}, err
	}
	return cfg, nil
}
