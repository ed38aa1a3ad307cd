// Package symbols holds the shared declaration-context infrastructure used
// by the Name Binder, Type Realizer and Constraint Solver: the per-nominal-
// type member lookup table (spec §3.3) and its generation-based
// incremental refresh.
//
// This plays the role the teacher's internal/symbols package plays (a
// SymbolTable shared across passes), but the table here is keyed per
// nominal-type declaration rather than per lexical scope, because that is
// what spec §3.3 actually specifies: "Nominal-type declarations
// additionally own a member lookup table ... lazily built on first member
// lookup and incrementally updated when the current generation exceeds the
// table's."
package symbols

import "github.com/nomina-lang/nomina/internal/ast"

// MemberTable is the per-nominal-type cache of `name -> [named decl]`,
// stamped with the generation at which it was last refreshed (spec §3.3).
type MemberTable struct {
	entries    map[string][]ast.Decl
	generation int
	ownDecls   int // how many of the declaration's own members are in entries
}

// Cache owns one MemberTable per nominal-type declaration. It is held by
// the CompilerContext alongside the type interner.
type Cache struct {
	tables map[*ast.NominalTypeDecl]*MemberTable
}

func NewCache() *Cache {
	return &Cache{tables: make(map[*ast.NominalTypeDecl]*MemberTable)}
}

// ExtensionSource supplies every type-extension declaration loaded at or
// after a given generation; it is satisfied by *compiler.CompilerContext
// without symbols importing compiler.
type ExtensionSource interface {
	ExtensionsSince(generation int) []*ast.ExtensionDecl
	// ExtensionTarget resolves a type extension's extended-type signature
	// to the nominal declaration it extends, or nil if it extends a
	// different nominal type (or hasn't been bound yet).
	ExtensionTarget(ext *ast.ExtensionDecl) *ast.NominalTypeDecl
}

// Lookup returns the member-lookup table for decl, rebuilding or
// incrementally refreshing it against currentGen if stale (spec §3.3).
func (c *Cache) Lookup(decl *ast.NominalTypeDecl, currentGen int, src ExtensionSource) *MemberTable {
	table, ok := c.tables[decl]
	if !ok {
		table = &MemberTable{entries: make(map[string][]ast.Decl), generation: -1}
		c.tables[decl] = table
	}

	// Members added to decl since the last lookup (such as a synthesized
	// default constructor) are folded in whatever the generation.
	own := decl.Decls()
	for _, d := range own[table.ownDecls:] {
		table.entries[d.DeclName()] = append(table.entries[d.DeclName()], d)
	}
	table.ownDecls = len(own)

	if table.generation >= currentGen {
		return table
	}
	if table.generation < 0 {
		table.generation = 0
	}

	for _, ext := range src.ExtensionsSince(table.generation) {
		if src.ExtensionTarget(ext) != decl {
			continue
		}
		for _, d := range ext.Decls() {
			table.entries[d.DeclName()] = append(table.entries[d.DeclName()], d)
		}
	}
	table.generation = currentGen
	return table
}

// Find returns every declaration named name in the table.
func (t *MemberTable) Find(name string) []ast.Decl {
	return t.entries[name]
}
