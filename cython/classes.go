package cython

import (
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ClassModel is one emittable message type.
type ClassModel struct {
	Symbol *Symbol
	// Fields in declaration order, minus fields dropped for name
	// collisions, unsupported types, or references to reserved types.
	Fields []FieldModel
	// NestedNames are the names of the messages and enums declared inside
	// this one, re-exported as attributes of the wrapper class.
	NestedNames []Name
	// Exported is set for top-level messages.
	Exported bool
}

// Name returns the class's generated name.
func (c *ClassModel) Name() Name {
	return c.Symbol.Name
}

// EnumValue is one member of a generated enum.
type EnumValue struct {
	// Name is the member name as visible from Python, escaped if reserved.
	Name string
	// NativeName is the constant protoc's C++ generator emits.
	NativeName string
	Number     int32
}

// EnumModel is one emittable enum.
type EnumModel struct {
	Symbol   *Symbol
	Values   []EnumValue
	Exported bool
}

// Name returns the enum's generated name.
func (e *EnumModel) Name() Name {
	return e.Symbol.Name
}

// Module is the enum's sidecar identity.
func (e *EnumModel) Module() ModuleIdentity {
	return e.Symbol.Module
}

// File is the intermediate representation of one schema file: everything a
// renderer needs to produce its artifacts.
type File struct {
	// Name is the schema file name, e.g. "foo/bar/baz.proto".
	Name    string
	Package string
	Module  ModuleIdentity
	// Namespace is the package split on dots, the C++ namespace path.
	Namespace []string
	// Classes in depth-first order: nested messages precede the message
	// that declares them.
	Classes []*ClassModel
	// Enums owned by the file, top-level first and then nested ones in
	// declaration order.
	Enums []*EnumModel
	// Imports of symbols from other files and from library modules.
	Imports []Import
	// Dependencies are the other schema files this one imports from.
	Dependencies []Dependency
}

// CppHeader is the C++ header protoc generates for this file.
func (f *File) CppHeader() string {
	return CppHeader(f.Name)
}

// CppSource is the C++ source protoc generates for this file.
func (f *File) CppSource() string {
	return CppSource(f.Name)
}

// Identities returns the file's own module identity followed by the sidecar
// identity of each of its enums.
func (f *File) Identities() []ModuleIdentity {
	ids := make([]ModuleIdentity, 0, len(f.Enums)+1)
	ids = append(ids, f.Module)
	for _, e := range f.Enums {
		ids = append(ids, e.Module())
	}
	return ids
}

// AssembleFile builds the intermediate representation of one schema file.
// The symbol table must have been built from a file set including fd and all
// of its dependencies, with the same prefix.
func AssembleFile(fd *descriptorpb.FileDescriptorProto, table *SymbolTable, prefix string, policy *KeywordPolicy, log logrus.FieldLogger) (*File, error) {
	if log == nil {
		log = discardLogger()
	}
	module := NewModuleIdentity(prefix, fd.GetPackage(), fd.GetName())
	imports := NewImportsFor(module)
	imports.AddLibrary("libcpp.string", "string")

	a := &assembler{
		table:  table,
		policy: policy,
		log:    log.WithField("file", fd.GetName()),
		fields: fieldSynthesizer{
			table:   table,
			policy:  policy,
			imports: imports,
			log:     log,
		},
	}

	for _, ed := range fd.GetEnumType() {
		fqn := qualifiedName(fd.GetPackage(), nil, ed.GetName())
		if sym, ok := a.lookupType(fqn); ok {
			a.enums = append(a.enums, a.enumModel(ed, sym, nil))
		}
	}
	for _, md := range fd.GetMessageType() {
		fqn := qualifiedName(fd.GetPackage(), nil, md.GetName())
		if _, ok := a.lookupType(fqn); !ok {
			continue
		}
		if _, err := a.assembleMessage(fd.GetPackage(), md, nil); err != nil {
			return nil, err
		}
	}

	var namespace []string
	if fd.GetPackage() != "" {
		namespace = strings.Split(fd.GetPackage(), ".")
	}
	return &File{
		Name:         fd.GetName(),
		Package:      fd.GetPackage(),
		Module:       module,
		Namespace:    namespace,
		Classes:      a.classes,
		Enums:        a.enums,
		Imports:      imports.Specs(),
		Dependencies: imports.Dependencies(),
	}, nil
}

type assembler struct {
	table   *SymbolTable
	policy  *KeywordPolicy
	log     logrus.FieldLogger
	fields  fieldSynthesizer
	classes []*ClassModel
	enums   []*EnumModel
}

// lookupType finds the symbol of a type declared in the file being assembled.
// Types dropped from the table for their names are reported as absent.
func (a *assembler) lookupType(fqn string) (*Symbol, bool) {
	sym, ok := a.table.Lookup(fqn)
	if !ok && a.table.IsDropped(fqn) {
		a.log.WithField("type", fqn).Debug("type name is reserved; not generating it")
	}
	return sym, ok
}

func (a *assembler) assembleMessage(pkg string, md *descriptorpb.DescriptorProto, path []string) (*ClassModel, error) {
	sym, _ := a.table.Lookup(qualifiedName(pkg, path, md.GetName()))
	embedded := append(append([]string(nil), path...), md.GetName())

	var nested []Name
	for _, child := range md.GetNestedType() {
		if child.GetOptions().GetMapEntry() {
			continue
		}
		if _, ok := a.lookupType(qualifiedName(pkg, embedded, child.GetName())); !ok {
			continue
		}
		cm, err := a.assembleMessage(pkg, child, embedded)
		if err != nil {
			return nil, err
		}
		nested = append(nested, cm.Name())
	}
	for _, ed := range md.GetEnumType() {
		esym, ok := a.lookupType(qualifiedName(pkg, embedded, ed.GetName()))
		if !ok {
			continue
		}
		em := a.enumModel(ed, esym, embedded)
		a.enums = append(a.enums, em)
		nested = append(nested, em.Name())
	}

	forbidden := forbiddenFieldNames(md, a.policy)
	var fields []FieldModel
	for _, fld := range md.GetField() {
		flog := a.log.WithField("field", sym.FullName+"."+fld.GetName())
		if _, ok := forbidden[fld.GetName()]; ok {
			flog.Debug("field name collides with a generated name; dropping it")
			continue
		}
		if a.referencesDropped(fld) {
			flog.Debug("field refers to a type with a reserved name; dropping it")
			continue
		}
		fm, err := a.fields.synthesize(sym.FullName, fld)
		if err != nil {
			return nil, err
		}
		if fm != nil {
			fields = append(fields, fm)
		}
	}

	cm := &ClassModel{
		Symbol:      sym,
		Fields:      fields,
		NestedNames: nested,
		Exported:    len(path) == 0,
	}
	a.classes = append(a.classes, cm)
	return cm, nil
}

// referencesDropped reports whether the field's type, or the value type of a
// map field, was left out of the symbol table for its name.
func (a *assembler) referencesDropped(fld *descriptorpb.FieldDescriptorProto) bool {
	if fld.GetTypeName() == "" {
		return false
	}
	if a.table.IsDropped(fld.GetTypeName()) {
		return true
	}
	entry, ok := a.table.Lookup(fld.GetTypeName())
	if !ok || !entry.MapEntry {
		return false
	}
	for _, f := range entry.Descriptor.GetField() {
		if f.GetTypeName() != "" && a.table.IsDropped(f.GetTypeName()) {
			return true
		}
	}
	return false
}

func (a *assembler) enumModel(ed *descriptorpb.EnumDescriptorProto, sym *Symbol, path []string) *EnumModel {
	var valuePrefix string
	if len(path) > 0 {
		valuePrefix = sym.Name.Native() + "_"
	}
	values := make([]EnumValue, len(ed.GetValue()))
	for i, v := range ed.GetValue() {
		values[i] = EnumValue{
			Name:       a.policy.Escape(LayerDynamic, v.GetName()),
			NativeName: valuePrefix + v.GetName(),
			Number:     v.GetNumber(),
		}
	}
	return &EnumModel{
		Symbol:   sym,
		Values:   values,
		Exported: len(path) == 0,
	}
}

// forbiddenFieldNames returns the names no field of md may have: the reserved
// words of the dynamic layer plus every accessor name generated for md's
// fields.
func forbiddenFieldNames(md *descriptorpb.DescriptorProto, policy *KeywordPolicy) map[string]struct{} {
	forbidden := map[string]struct{}{}
	for _, w := range policy.Reserved(LayerDynamic) {
		forbidden[w] = struct{}{}
	}
	for _, fld := range md.GetField() {
		name := fld.GetName()
		forbidden["clear_"+name] = struct{}{}
		forbidden["set_"+name] = struct{}{}
		if fld.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
			forbidden[name+"_size"] = struct{}{}
			forbidden["add_"+name] = struct{}{}
		} else if fld.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
			forbidden["has_"+name] = struct{}{}
		}
	}
	return forbidden
}
