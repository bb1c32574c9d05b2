package cython

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// SymbolKind distinguishes message symbols from enum symbols.
type SymbolKind int

const (
	SymbolMessage SymbolKind = iota
	SymbolEnum
)

func (k SymbolKind) String() string {
	if k == SymbolEnum {
		return "enum"
	}
	return "message"
}

// SymbolID is a handle into a SymbolTable.
type SymbolID int

// Symbol is the canonical identity of one message or enum across the whole
// request. Fields resolve against symbols, never against descriptors.
type Symbol struct {
	ID       SymbolID
	Kind     SymbolKind
	FullName string
	Package  string
	File     string
	Name     Name
	// MapEntry is set for the synthetic key/value messages behind map
	// fields.
	MapEntry bool
	// Module is the module a referrer imports this symbol from: the file
	// identity for messages and the enum sidecar identity for enums.
	Module ModuleIdentity
	// Descriptor is the message's descriptor. It is nil for enums.
	Descriptor *descriptorpb.DescriptorProto
}

// FileModule is the identity of the file that defines the symbol.
func (s *Symbol) FileModule() ModuleIdentity {
	return s.Module.FileIdentity()
}

// SymbolTable maps fully-qualified schema names (".pkg.Outer.Inner") to
// symbols. It is immutable once built and safe for concurrent reads.
type SymbolTable struct {
	symbols []*Symbol
	byName  map[string]SymbolID
	// names of types left out because their name is reserved, and all types
	// nested inside them
	dropped map[string]struct{}
}

// BuildSymbolTable walks every message and enum of every file, nested types
// included, and assigns each a symbol. Types whose own name is reserved in the
// dynamic layer are left out together with everything nested inside them.
//
// Every file and every enum sidecar must map to modules of its own, and types
// from different files may not flatten to the same generated name. Either
// clash is reported as an error.
func BuildSymbolTable(files []*descriptorpb.FileDescriptorProto, prefix string, policy *KeywordPolicy) (*SymbolTable, error) {
	t := &SymbolTable{
		byName:  map[string]SymbolID{},
		dropped: map[string]struct{}{},
	}
	w := symbolWalker{
		table:   t,
		policy:  policy,
		prefix:  prefix,
		modules: map[string]string{},
		names:   map[string]string{},
	}
	for _, fd := range files {
		if err := w.walkFile(fd); err != nil {
			return nil, err
		}
	}
	return t, nil
}

type symbolWalker struct {
	table  *SymbolTable
	policy *KeywordPolicy
	prefix string
	// file that owns each generated module
	modules map[string]string
	// file that owns each generated type name
	names map[string]string
	// count of symbols per generated name within the current file, for the
	// collision discriminator
	used map[string]int
}

func (w *symbolWalker) walkFile(fd *descriptorpb.FileDescriptorProto) error {
	module := NewModuleIdentity(w.prefix, fd.GetPackage(), fd.GetName())
	for _, m := range []string{module.NativeModule(), module.ExternsModule(), module.PythonModule()} {
		if err := w.claimModule(m, fd.GetName()); err != nil {
			return err
		}
	}
	w.used = map[string]int{}
	for _, md := range fd.GetMessageType() {
		if err := w.walkMessage(fd, module, md, nil, false); err != nil {
			return err
		}
	}
	for _, ed := range fd.GetEnumType() {
		if err := w.addEnum(fd, module, ed, nil, false); err != nil {
			return err
		}
	}
	return nil
}

func (w *symbolWalker) walkMessage(fd *descriptorpb.FileDescriptorProto, module ModuleIdentity, md *descriptorpb.DescriptorProto, path []string, dropped bool) error {
	fqn := qualifiedName(fd.GetPackage(), path, md.GetName())
	dropped = dropped || w.policy.IsReserved(LayerDynamic, md.GetName())
	if dropped {
		w.table.dropped[fqn] = struct{}{}
	} else {
		if err := w.table.checkUnique(SymbolMessage, fqn, fd.GetName()); err != nil {
			return err
		}
		name, err := w.nameFor(fd, path, md.GetName(), md.GetOptions().GetMapEntry())
		if err != nil {
			return err
		}
		sym := &Symbol{
			Kind:       SymbolMessage,
			FullName:   fqn,
			Package:    fd.GetPackage(),
			File:       fd.GetName(),
			Name:       name,
			MapEntry:   md.GetOptions().GetMapEntry(),
			Module:     module,
			Descriptor: md,
		}
		if err := w.table.add(sym); err != nil {
			return err
		}
	}

	nested := append(append([]string(nil), path...), md.GetName())
	for _, child := range md.GetNestedType() {
		if err := w.walkMessage(fd, module, child, nested, dropped); err != nil {
			return err
		}
	}
	for _, ed := range md.GetEnumType() {
		if err := w.addEnum(fd, module, ed, nested, dropped); err != nil {
			return err
		}
	}
	return nil
}

func (w *symbolWalker) addEnum(fd *descriptorpb.FileDescriptorProto, module ModuleIdentity, ed *descriptorpb.EnumDescriptorProto, path []string, dropped bool) error {
	fqn := qualifiedName(fd.GetPackage(), path, ed.GetName())
	if dropped || w.policy.IsReserved(LayerDynamic, ed.GetName()) {
		w.table.dropped[fqn] = struct{}{}
		return nil
	}
	if err := w.table.checkUnique(SymbolEnum, fqn, fd.GetName()); err != nil {
		return err
	}
	name, err := w.nameFor(fd, path, ed.GetName(), false)
	if err != nil {
		return err
	}
	sidecar := module.EnumIdentity(name.Local())
	if err := w.claimModule(sidecar.PythonModule(), fd.GetName()); err != nil {
		return err
	}
	return w.table.add(&Symbol{
		Kind:     SymbolEnum,
		FullName: fqn,
		Package:  fd.GetPackage(),
		File:     fd.GetName(),
		Name:     name,
		Module:   sidecar,
	})
}

func (w *symbolWalker) claimModule(module, file string) error {
	if prev, ok := w.modules[module]; ok {
		return &ModuleCollisionError{Module: module, Files: []string{prev, file}}
	}
	w.modules[module] = file
	return nil
}

// nameFor picks the generated name of a type. Within one file, a type that
// flattens to the name of a type walked before it gets a numeric suffix, so
// the result depends only on the defining file. A clash with a type from
// another file is an error.
func (w *symbolWalker) nameFor(fd *descriptorpb.FileDescriptorProto, path []string, base string, mapEntry bool) (Name, error) {
	n := Name{
		Scope: scopeForPackage(fd.GetPackage()),
		Path:  append([]string(nil), path...),
		Base:  base,
	}
	if mapEntry {
		// never rendered, so never competes for a name
		return n, nil
	}
	key := n.String()
	if owner, ok := w.names[key]; ok && owner != fd.GetName() {
		return Name{}, &NameCollisionError{Name: key, Files: []string{owner, fd.GetName()}}
	}
	w.names[key] = fd.GetName()
	w.used[key]++
	if c := w.used[key]; c > 1 {
		n.Suffix = c
	}
	return n, nil
}

func (t *SymbolTable) checkUnique(kind SymbolKind, fqn, file string) error {
	if prev, ok := t.byName[fqn]; ok {
		return fmt.Errorf("%s: %s %q already defined in %s", file, kind, fqn, t.symbols[prev].File)
	}
	return nil
}

func (t *SymbolTable) add(sym *Symbol) error {
	if err := t.checkUnique(sym.Kind, sym.FullName, sym.File); err != nil {
		return err
	}
	sym.ID = SymbolID(len(t.symbols))
	t.symbols = append(t.symbols, sym)
	t.byName[sym.FullName] = sym.ID
	return nil
}

func qualifiedName(pkg string, path []string, name string) string {
	var sb strings.Builder
	if pkg != "" {
		sb.WriteByte('.')
		sb.WriteString(pkg)
	}
	for _, p := range path {
		sb.WriteByte('.')
		sb.WriteString(p)
	}
	sb.WriteByte('.')
	sb.WriteString(name)
	return sb.String()
}

// Lookup returns the symbol for the given fully-qualified name. The name must
// have a leading dot, as type names in descriptors do.
func (t *SymbolTable) Lookup(fqn string) (*Symbol, bool) {
	id, ok := t.byName[fqn]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// Symbol returns the symbol with the given handle.
func (t *SymbolTable) Symbol(id SymbolID) *Symbol {
	return t.symbols[id]
}

// IsDropped reports whether the named type was left out of the table because
// it, or a type enclosing it, has a reserved name.
func (t *SymbolTable) IsDropped(fqn string) bool {
	_, ok := t.dropped[fqn]
	return ok
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Symbols returns all symbols in walk order.
func (t *SymbolTable) Symbols() []*Symbol {
	return append([]*Symbol(nil), t.symbols...)
}
