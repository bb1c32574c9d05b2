package cython

import "sort"

// Import is one symbol a generated file pulls in from another module.
type Import struct {
	// Library is the dotted path of a hand-written module, such as
	// "libcpp.string". It is empty for generated symbols.
	Library string
	// Module identifies the generated module the symbol lives in. It is
	// the zero value for library imports.
	Module ModuleIdentity
	// Symbol is the imported name.
	Symbol string
	// File is the schema file defining the symbol. It is empty for library
	// imports.
	File string
}

// IsLibrary reports whether the import refers to a hand-written module rather
// than to code generated from a schema file.
func (i Import) IsLibrary() bool {
	return i.Library != ""
}

// Imports accumulates the imports needed by one generated file. Importing a
// symbol defined by the file itself does nothing, so callers may register
// every reference without checking where it lives.
//
// Imports is not thread-safe. Each file being assembled gets its own.
type Imports struct {
	self ModuleIdentity
	set  map[Import]struct{}
}

// NewImportsFor returns an empty accumulator for the file with the given
// identity.
func NewImportsFor(self ModuleIdentity) *Imports {
	return &Imports{self: self.FileIdentity(), set: map[Import]struct{}{}}
}

// AddLibrary registers an import of symbol from a hand-written module.
func (i *Imports) AddLibrary(module, symbol string) {
	i.set[Import{Library: module, Symbol: symbol}] = struct{}{}
}

// AddSymbol registers an import of the given generated type. It returns false,
// and records nothing, when the symbol is defined in the accumulator's own
// file.
func (i *Imports) AddSymbol(sym *Symbol) bool {
	if sym.FileModule() == i.self {
		return false
	}
	i.set[Import{Module: sym.Module, Symbol: sym.Name.String(), File: sym.File}] = struct{}{}
	return true
}

// Specs returns the accumulated imports, library imports first, each group
// sorted by module and then symbol.
func (i *Imports) Specs() []Import {
	specs := make([]Import, 0, len(i.set))
	for imp := range i.set {
		specs = append(specs, imp)
	}
	sort.Slice(specs, func(a, b int) bool {
		return importLess(specs[a], specs[b])
	})
	return specs
}

// Dependency is another schema file whose generated modules a file imports
// from.
type Dependency struct {
	Module ModuleIdentity
	File   string
}

// Dependencies returns the distinct files whose symbols have been imported,
// sorted by module identity.
func (i *Imports) Dependencies() []Dependency {
	seen := map[ModuleIdentity]struct{}{}
	var deps []Dependency
	for imp := range i.set {
		if imp.IsLibrary() {
			continue
		}
		fm := imp.Module.FileIdentity()
		if _, ok := seen[fm]; ok {
			continue
		}
		seen[fm] = struct{}{}
		deps = append(deps, Dependency{Module: fm, File: imp.File})
	}
	sort.Slice(deps, func(a, b int) bool {
		return identityLess(deps[a].Module, deps[b].Module)
	})
	return deps
}

func importLess(a, b Import) bool {
	if a.IsLibrary() != b.IsLibrary() {
		return a.IsLibrary()
	}
	if a.Library != b.Library {
		return a.Library < b.Library
	}
	if a.Module != b.Module {
		return identityLess(a.Module, b.Module)
	}
	return a.Symbol < b.Symbol
}

func identityLess(a, b ModuleIdentity) bool {
	switch {
	case a.Prefix != b.Prefix:
		return a.Prefix < b.Prefix
	case a.Package != b.Package:
		return a.Package < b.Package
	case a.Base != b.Base:
		return a.Base < b.Base
	default:
		return a.Enum < b.Enum
	}
}
