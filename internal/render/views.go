package render

import (
	"fmt"
	"strings"

	"github.com/cytobuf/protoc-gen-cython/cython"
)

// The views flatten the IR into plain fields so that templates never call
// methods or switch on Go types.

type fileView struct {
	Name          string
	CppHeader     string
	CppSource     string
	Namespace     string
	NativeModule  string
	ExternsModule string
	Libraries     []importView
	Imports       []importView
	PythonDeps    []string
	Enums         []*enumView
	Classes       []*classView
	Empty         bool
}

type importView struct {
	Module        string
	ExternsModule string
	NativeModule  string
	Symbol        string
}

type enumView struct {
	Name         string
	Local        string
	Native       string
	NativeModule string
	Values       []cython.EnumValue
	Exported     bool
}

type classView struct {
	Name       string
	Local      string
	Native     string
	Fields     []*fieldView
	Containers []*fieldView
	Properties []*fieldView
	Nested     []nestedView
	Exported   bool
}

type nestedView struct {
	Attr  string
	Value string
}

type fieldView struct {
	Name       string
	Native     string
	Kind       string
	Repeated   bool
	Settable   bool
	IsMap      bool
	IsMessage  bool
	CppType    string
	ConstRef   string
	PythonType string
	CythonType string
	Encode     string
	Decode     string
	Key        *fieldView
	Value      *fieldView
}

func newFileView(f *cython.File) (*fileView, error) {
	v := &fileView{
		Name:          f.Name,
		CppHeader:     f.CppHeader(),
		CppSource:     f.CppSource(),
		Namespace:     strings.Join(f.Namespace, "::"),
		NativeModule:  f.Module.NativeModule(),
		ExternsModule: f.Module.ExternsModule(),
		Empty:         len(f.Enums) == 0 && len(f.Classes) == 0,
	}

	seen := map[string]struct{}{}
	for _, imp := range f.Imports {
		if imp.IsLibrary() {
			v.Libraries = append(v.Libraries, importView{Module: imp.Library, Symbol: imp.Symbol})
			continue
		}
		v.Imports = append(v.Imports, importView{
			Module:        imp.Module.PythonModule(),
			ExternsModule: imp.Module.ExternsModule(),
			NativeModule:  imp.Module.NativeModule(),
			Symbol:        imp.Symbol,
		})
		if _, ok := seen[imp.Module.PythonModule()]; !ok {
			seen[imp.Module.PythonModule()] = struct{}{}
			v.PythonDeps = append(v.PythonDeps, imp.Module.PythonModule())
		}
	}

	for _, e := range f.Enums {
		v.Enums = append(v.Enums, &enumView{
			Name:         e.Name().String(),
			Local:        e.Name().Local(),
			Native:       e.Name().Native(),
			NativeModule: e.Module().NativeModule(),
			Values:       e.Values,
			Exported:     e.Exported,
		})
	}

	for _, c := range f.Classes {
		cv := &classView{
			Name:     c.Name().String(),
			Local:    c.Name().Local(),
			Native:   c.Name().Native(),
			Exported: c.Exported,
		}
		for _, n := range c.NestedNames {
			cv.Nested = append(cv.Nested, nestedView{Attr: n.Base, Value: n.Local()})
		}
		for _, fm := range c.Fields {
			fv, err := newFieldView(fm)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.Symbol.FullName, err)
			}
			cv.Fields = append(cv.Fields, fv)
			if fv.Repeated || fv.IsMap {
				cv.Containers = append(cv.Containers, fv)
			} else {
				cv.Properties = append(cv.Properties, fv)
			}
		}
		v.Classes = append(v.Classes, cv)
	}
	return v, nil
}

func newFieldView(fm cython.FieldModel) (*fieldView, error) {
	v := &fieldView{
		Name:     fm.Name(),
		Native:   fm.NativeName(),
		Kind:     fm.Kind().String(),
		Repeated: fm.Repeated(),
		Settable: fm.Settable(),
	}
	switch f := fm.(type) {
	case *cython.ScalarField:
		v.CppType = f.NativeType()
		v.PythonType = f.PythonType()
		v.CythonType = f.NativeType()
		if f.Scalar == cython.ScalarString || f.Scalar == cython.ScalarBytes {
			v.CythonType = f.PythonType()
		}
		if enc := f.TextEncoding(); enc != "" {
			v.Encode = ".encode('" + enc + "')"
			v.Decode = ".decode('" + enc + "')"
		}
	case *cython.EnumField:
		v.CppType = f.Symbol.Name.String()
		v.PythonType = "int"
		v.CythonType = "int"
	case *cython.MessageField:
		v.IsMessage = true
		v.CppType = f.Symbol.Name.String()
		v.PythonType = v.CppType
		v.CythonType = v.CppType
	case *cython.MapField:
		key, err := newFieldView(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := newFieldView(f.Value)
		if err != nil {
			return nil, err
		}
		v.IsMap = true
		v.Key, v.Value = key, value
		v.CppType = fmt.Sprintf("Map[%s, %s]", key.CppType, value.CppType)
		v.PythonType = "dict"
		v.CythonType = v.CppType
	default:
		return nil, fmt.Errorf("field %s: unknown field model %T", fm.Name(), fm)
	}
	v.ConstRef = v.CppType
	if fm.Reference() {
		v.ConstRef = "const " + v.CppType + "&"
	}
	return v, nil
}
