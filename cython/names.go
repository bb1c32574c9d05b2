package cython

import (
	"path"
	"strconv"
	"strings"
)

// Name is a generated identifier for a message or enum. The rendered form
// joins the package scope, the enclosing message path, and the type's own
// name with underscores:
//
//	.foo.bar.Outer.Inner  ->  foo_bar_Outer_Inner
//
// Suffix is non-zero only when two types in the same scope would otherwise
// flatten to the same name.
type Name struct {
	Scope  string
	Path   []string
	Base   string
	Suffix int
}

// String returns the fully scoped wrapper name.
func (n Name) String() string {
	return joinNonEmpty(n.Scope, n.Local())
}

// Local returns the name without the package scope, including any
// discriminator suffix.
func (n Name) Local() string {
	s := n.Native()
	if n.Suffix > 0 {
		s += "_" + strconv.Itoa(n.Suffix)
	}
	return s
}

// Native returns the name the C++ code generator gives this type inside its
// namespace: enclosing messages and the type name joined with underscores.
func (n Name) Native() string {
	return joinNonEmpty(append(append([]string(nil), n.Path...), n.Base)...)
}

func joinNonEmpty(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('_')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func scopeForPackage(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "_")
}

// ModuleIdentity identifies the set of generated modules for one schema file.
// It is a plain comparable value: two identities are equal exactly when their
// prefix, package, and file base name (and enum, for sidecar identities) are
// equal. All module paths and file names are derived from it on demand.
type ModuleIdentity struct {
	Prefix  string
	Package string
	Base    string
	// Enum is non-empty for the sidecar identity of one enum the file owns.
	// It holds the enum's generated name.
	Enum string
}

// NewModuleIdentity computes the identity of the modules generated for the
// given schema file. The prefix, if not empty, is normalized to end in a dot.
// The file name may use either slash or backslash separators; only its base
// name contributes.
func NewModuleIdentity(prefix, pkg, filename string) ModuleIdentity {
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return ModuleIdentity{
		Prefix:  prefix,
		Package: pkg,
		Base:    moduleBase(filename),
	}
}

func moduleBase(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if ext := path.Ext(name); ext == ".proto" || ext == ".protodevel" {
		name = name[:len(name)-len(ext)]
	}
	return sanitize(name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, name)
}

// EnumIdentity returns the sidecar identity for the named enum owned by the
// file m identifies.
func (m ModuleIdentity) EnumIdentity(enumName string) ModuleIdentity {
	m.Enum = enumName
	return m
}

// FileIdentity strips any enum component, yielding the identity of the owning
// file.
func (m ModuleIdentity) FileIdentity() ModuleIdentity {
	m.Enum = ""
	return m
}

// IsEnum reports whether m is an enum sidecar identity.
func (m ModuleIdentity) IsEnum() bool {
	return m.Enum != ""
}

// Scope is the dotted module prefix shared by all modules of this identity:
// the output prefix followed by the schema package.
func (m ModuleIdentity) Scope() string {
	if m.Package == "" {
		return m.Prefix
	}
	return m.Prefix + m.Package + "."
}

// NativeModule is the compiled wrapper module. For enum sidecar identities
// this is the owning file's compiled module, where the enum is defined.
func (m ModuleIdentity) NativeModule() string {
	return m.Scope() + "_" + m.Base + "__cy_pb2"
}

// ExternsModule is the module holding the C++ extern declarations.
func (m ModuleIdentity) ExternsModule() string {
	return m.NativeModule() + "_externs"
}

// PythonModule is the pure re-export module user code imports. For enum
// sidecar identities it is the sidecar module.
func (m ModuleIdentity) PythonModule() string {
	if m.IsEnum() {
		return m.Scope() + "_cy_enums." + m.Base + "_" + m.Enum
	}
	return m.Scope() + m.Base + "_pb2"
}

// ExternsPxdFilename is the output path of the extern declaration file.
func (m ModuleIdentity) ExternsPxdFilename() string {
	return modulePath(m.ExternsModule()) + ".pxd"
}

// PxdFilename is the output path of the compiled module's declaration file.
func (m ModuleIdentity) PxdFilename() string {
	return modulePath(m.NativeModule()) + ".pxd"
}

// PyxFilename is the output path of the compiled module's implementation.
func (m ModuleIdentity) PyxFilename() string {
	return modulePath(m.NativeModule()) + ".pyx"
}

// PyFilename is the output path of the pure module (or enum sidecar).
func (m ModuleIdentity) PyFilename() string {
	return modulePath(m.PythonModule()) + ".py"
}

func modulePath(module string) string {
	return strings.ReplaceAll(module, ".", "/")
}

// CppHeader returns the header protoc's C++ generator writes for the given
// schema file.
func CppHeader(filename string) string {
	return trimProtoExt(filename) + ".pb.h"
}

// CppSource returns the source file protoc's C++ generator writes for the
// given schema file.
func CppSource(filename string) string {
	return trimProtoExt(filename) + ".pb.cc"
}

func trimProtoExt(filename string) string {
	return strings.TrimSuffix(strings.ReplaceAll(filename, `\`, "/"), ".proto")
}
