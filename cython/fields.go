package cython

import (
	dpb "github.com/golang/protobuf/protoc-gen-go/descriptor"
	"github.com/sirupsen/logrus"
)

// FieldKind discriminates the variants of FieldModel.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldEnum
	FieldMessage
	FieldMap
)

func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldEnum:
		return "enum"
	case FieldMessage:
		return "message"
	case FieldMap:
		return "map"
	default:
		return "unknown"
	}
}

// FieldModel is one emittable field. The concrete type is one of
// *ScalarField, *EnumField, *MessageField, or *MapField; the set is closed.
type FieldModel interface {
	Kind() FieldKind
	// Name is the field's name as declared in the schema.
	Name() string
	// NativeName is the name used for C++ accessors, escaped if it is a
	// C++ keyword.
	NativeName() string
	Repeated() bool
	// Settable reports whether the field can be assigned directly. Message
	// and map fields can only be mutated in place.
	Settable() bool
	// Reference reports whether the native accessor returns a const
	// reference rather than a value.
	Reference() bool

	isFieldModel()
}

type fieldBase struct {
	name       string
	nativeName string
	repeated   bool
}

func (f *fieldBase) Name() string       { return f.name }
func (f *fieldBase) NativeName() string { return f.nativeName }
func (f *fieldBase) Repeated() bool     { return f.repeated }
func (f *fieldBase) isFieldModel()      {}

// ScalarKind is the native representation of a scalar field.
type ScalarKind int

const (
	ScalarInt ScalarKind = iota
	ScalarLong
	ScalarFloat
	ScalarDouble
	ScalarBool
	ScalarString
	ScalarBytes
)

// ScalarField is a numeric, boolean, string, or bytes field.
type ScalarField struct {
	fieldBase
	Scalar   ScalarKind
	Unsigned bool
}

func (*ScalarField) Kind() FieldKind { return FieldScalar }
func (*ScalarField) Settable() bool  { return true }

func (f *ScalarField) Reference() bool {
	return f.Scalar == ScalarString || f.Scalar == ScalarBytes
}

// Width is the bit width of the native numeric type, or 0 for non-numeric
// scalars.
func (f *ScalarField) Width() int {
	switch f.Scalar {
	case ScalarInt, ScalarFloat:
		return 32
	case ScalarLong, ScalarDouble:
		return 64
	default:
		return 0
	}
}

// NativeType is the Cython spelling of the native type.
func (f *ScalarField) NativeType() string {
	var unsigned string
	if f.Unsigned {
		unsigned = "unsigned "
	}
	switch f.Scalar {
	case ScalarInt:
		return unsigned + "int"
	case ScalarLong:
		return unsigned + "long long"
	case ScalarFloat:
		return "float"
	case ScalarDouble:
		return "double"
	case ScalarBool:
		return "bint"
	default:
		return "string"
	}
}

// PythonType is the Python type values of this field take.
func (f *ScalarField) PythonType() string {
	switch f.Scalar {
	case ScalarInt, ScalarLong:
		return "int"
	case ScalarFloat, ScalarDouble:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarString:
		return "str"
	default:
		return "bytes"
	}
}

// TextEncoding is the codec used to convert between Python text and native
// bytes. It is empty for everything except string fields.
func (f *ScalarField) TextEncoding() string {
	if f.Scalar == ScalarString {
		return "utf-8"
	}
	return ""
}

// EnumField is a field whose values are members of a generated enum.
type EnumField struct {
	fieldBase
	Symbol *Symbol
}

func (*EnumField) Kind() FieldKind { return FieldEnum }
func (*EnumField) Settable() bool  { return true }
func (*EnumField) Reference() bool { return false }

// MessageField is a field holding another generated message.
type MessageField struct {
	fieldBase
	Symbol *Symbol
}

func (*MessageField) Kind() FieldKind { return FieldMessage }
func (*MessageField) Settable() bool  { return false }
func (*MessageField) Reference() bool { return true }

// MapField is a map field. Its synthetic entry message is not part of the IR;
// only the key and value models remain.
type MapField struct {
	fieldBase
	Key   FieldModel
	Value FieldModel
}

func (*MapField) Kind() FieldKind { return FieldMap }
func (*MapField) Settable() bool  { return false }
func (*MapField) Reference() bool { return true }

// libraries referenced by generated code for map fields
const (
	commonModule   = "cytobuf.protobuf.common"
	operatorModule = "cython.operator"
)

// fieldSynthesizer turns field descriptors into field models for one file. It
// only reads the symbol table, and it writes to the file's own imports.
type fieldSynthesizer struct {
	table   *SymbolTable
	policy  *KeywordPolicy
	imports *Imports
	log     logrus.FieldLogger
}

// synthesize classifies one field. It returns nil and no error for fields of
// a wire type it does not recognize.
func (s *fieldSynthesizer) synthesize(owner string, fd *dpb.FieldDescriptorProto) (FieldModel, error) {
	base := fieldBase{
		name:       fd.GetName(),
		nativeName: s.policy.Escape(LayerNative, fd.GetName()),
		repeated:   fd.GetLabel() == dpb.FieldDescriptorProto_LABEL_REPEATED,
	}

	if base.repeated && fd.GetType() == dpb.FieldDescriptorProto_TYPE_MESSAGE {
		sym, err := s.resolve(owner, fd)
		if err != nil {
			return nil, err
		}
		if sym.MapEntry {
			return s.synthesizeMap(owner, base, sym)
		}
	}

	switch fd.GetType() {
	case dpb.FieldDescriptorProto_TYPE_INT32,
		dpb.FieldDescriptorProto_TYPE_SINT32,
		dpb.FieldDescriptorProto_TYPE_SFIXED32:
		return &ScalarField{fieldBase: base, Scalar: ScalarInt}, nil
	case dpb.FieldDescriptorProto_TYPE_UINT32,
		dpb.FieldDescriptorProto_TYPE_FIXED32:
		return &ScalarField{fieldBase: base, Scalar: ScalarInt, Unsigned: true}, nil
	case dpb.FieldDescriptorProto_TYPE_INT64,
		dpb.FieldDescriptorProto_TYPE_SINT64,
		dpb.FieldDescriptorProto_TYPE_SFIXED64:
		return &ScalarField{fieldBase: base, Scalar: ScalarLong}, nil
	case dpb.FieldDescriptorProto_TYPE_UINT64,
		dpb.FieldDescriptorProto_TYPE_FIXED64:
		return &ScalarField{fieldBase: base, Scalar: ScalarLong, Unsigned: true}, nil
	case dpb.FieldDescriptorProto_TYPE_FLOAT:
		return &ScalarField{fieldBase: base, Scalar: ScalarFloat}, nil
	case dpb.FieldDescriptorProto_TYPE_DOUBLE:
		return &ScalarField{fieldBase: base, Scalar: ScalarDouble}, nil
	case dpb.FieldDescriptorProto_TYPE_BOOL:
		return &ScalarField{fieldBase: base, Scalar: ScalarBool}, nil
	case dpb.FieldDescriptorProto_TYPE_STRING:
		return &ScalarField{fieldBase: base, Scalar: ScalarString}, nil
	case dpb.FieldDescriptorProto_TYPE_BYTES:
		return &ScalarField{fieldBase: base, Scalar: ScalarBytes}, nil
	case dpb.FieldDescriptorProto_TYPE_ENUM:
		sym, err := s.resolve(owner, fd)
		if err != nil {
			return nil, err
		}
		s.imports.AddSymbol(sym)
		return &EnumField{fieldBase: base, Symbol: sym}, nil
	case dpb.FieldDescriptorProto_TYPE_MESSAGE:
		sym, err := s.resolve(owner, fd)
		if err != nil {
			return nil, err
		}
		s.imports.AddSymbol(sym)
		return &MessageField{fieldBase: base, Symbol: sym}, nil
	default:
		s.log.WithFields(logrus.Fields{
			"field": owner + "." + fd.GetName(),
			"type":  fd.GetType().String(),
		}).Debug("skipping field of unsupported type")
		return nil, nil
	}
}

func (s *fieldSynthesizer) synthesizeMap(owner string, base fieldBase, entry *Symbol) (FieldModel, error) {
	s.imports.AddLibrary(commonModule, "Map")
	s.imports.AddLibrary(operatorModule, "dereference")
	s.imports.AddLibrary(operatorModule, "postincrement")

	key, err := s.entryField(entry, "key")
	if err != nil || key == nil {
		return nil, err
	}
	value, err := s.entryField(entry, "value")
	if err != nil || value == nil {
		return nil, err
	}
	base.repeated = false
	return &MapField{fieldBase: base, Key: key, Value: value}, nil
}

func (s *fieldSynthesizer) entryField(entry *Symbol, name string) (FieldModel, error) {
	for _, fd := range entry.Descriptor.GetField() {
		if fd.GetName() == name {
			return s.synthesize(entry.FullName, fd)
		}
	}
	return nil, &MalformedMapEntryError{Entry: entry.FullName, Field: name}
}

func (s *fieldSynthesizer) resolve(owner string, fd *dpb.FieldDescriptorProto) (*Symbol, error) {
	sym, ok := s.table.Lookup(fd.GetTypeName())
	if !ok {
		return nil, errUnresolved(fd.GetTypeName(), owner+"."+fd.GetName())
	}
	return sym, nil
}
