package cython

import (
	"testing"

	"github.com/jhump/protoreflect/desc/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"
)

const outerProto = `syntax = "proto3";
package foo.bar;

message Outer {
  message Inner {
    int32 x = 1;
  }
  enum Color {
    RED = 0;
    BLUE = 1;
  }
  Inner inner = 1;
  Color color = 2;
  map<string, Inner> items = 3;
}

enum Top {
  TOP_ZERO = 0;
}
`

func TestBuildSymbolTable(t *testing.T) {
	protos := compileProtos(t, map[string]string{"foo/bar/test.proto": outerProto})
	table, err := BuildSymbolTable(protos, "gen", NewKeywordPolicy())
	require.NoError(t, err)

	var names []string
	for _, sym := range table.Symbols() {
		names = append(names, sym.FullName)
		assert.Equal(t, sym, table.Symbol(sym.ID))
	}
	assert.Equal(t, []string{
		".foo.bar.Outer",
		".foo.bar.Outer.Inner",
		".foo.bar.Outer.ItemsEntry",
		".foo.bar.Outer.Color",
		".foo.bar.Top",
	}, names)
	assert.Equal(t, 5, table.Len())

	file := NewModuleIdentity("gen", "foo.bar", "foo/bar/test.proto")

	outer, ok := table.Lookup(".foo.bar.Outer")
	require.True(t, ok)
	assert.Equal(t, SymbolMessage, outer.Kind)
	assert.Equal(t, "foo.bar", outer.Package)
	assert.Equal(t, "foo/bar/test.proto", outer.File)
	assert.Equal(t, "foo_bar_Outer", outer.Name.String())
	assert.Equal(t, file, outer.Module)
	assert.False(t, outer.MapEntry)
	require.NotNil(t, outer.Descriptor)
	assert.Equal(t, "Outer", outer.Descriptor.GetName())

	inner, ok := table.Lookup(".foo.bar.Outer.Inner")
	require.True(t, ok)
	assert.Equal(t, "foo_bar_Outer_Inner", inner.Name.String())
	assert.Equal(t, "Outer_Inner", inner.Name.Native())

	entry, ok := table.Lookup(".foo.bar.Outer.ItemsEntry")
	require.True(t, ok)
	assert.True(t, entry.MapEntry)

	color, ok := table.Lookup(".foo.bar.Outer.Color")
	require.True(t, ok)
	assert.Equal(t, SymbolEnum, color.Kind)
	assert.Nil(t, color.Descriptor)
	assert.Equal(t, file.EnumIdentity("Outer_Color"), color.Module)
	assert.Equal(t, file, color.FileModule())
	assert.Equal(t, "gen.foo.bar._cy_enums.test_Outer_Color", color.Module.PythonModule())

	_, ok = table.Lookup("foo.bar.Outer")
	assert.False(t, ok, "names without a leading dot do not resolve")
}

func TestBuildSymbolTable_ReservedNames(t *testing.T) {
	protos := compileProtos(t, map[string]string{"test.proto": `syntax = "proto3";
package p;

message None {
  message Child {}
  enum Kind {
    KIND_ZERO = 0;
  }
}

message Holder {
  message self {}
}

enum True {
  TRUE_ZERO = 0;
}
`})
	table, err := BuildSymbolTable(protos, "", NewKeywordPolicy("self"))
	require.NoError(t, err)

	for _, fqn := range []string{".p.None", ".p.None.Child", ".p.None.Kind", ".p.Holder.self", ".p.True"} {
		_, ok := table.Lookup(fqn)
		assert.False(t, ok, fqn)
		assert.True(t, table.IsDropped(fqn), fqn)
	}
	_, ok := table.Lookup(".p.Holder")
	assert.True(t, ok)
	assert.False(t, table.IsDropped(".p.Holder"))
	assert.Equal(t, 1, table.Len())
}

func TestBuildSymbolTable_Collisions(t *testing.T) {
	protos := compileProtos(t, map[string]string{"test.proto": `syntax = "proto3";
package foo;

message Outer {
  message Inner {}
}

message Outer_Inner {}
`})
	table, err := BuildSymbolTable(protos, "", NewKeywordPolicy())
	require.NoError(t, err)

	nested, ok := table.Lookup(".foo.Outer.Inner")
	require.True(t, ok)
	flat, ok := table.Lookup(".foo.Outer_Inner")
	require.True(t, ok)

	assert.Equal(t, "foo_Outer_Inner", nested.Name.String())
	assert.Equal(t, "foo_Outer_Inner_2", flat.Name.String())
	// the native name is what protoc generates, so it is never changed
	assert.Equal(t, "Outer_Inner", flat.Name.Native())
}

func TestBuildSymbolTable_NoPackage(t *testing.T) {
	fd := mustBuildFile(builder.NewFile("plain.proto").
		AddMessage(builder.NewMessage("M").
			AddNestedEnum(builder.NewEnum("E").AddValue(builder.NewEnumValue("E_ZERO")))))
	table, err := BuildSymbolTable([]*descriptorpb.FileDescriptorProto{fd}, "", NewKeywordPolicy())
	require.NoError(t, err)

	m, ok := table.Lookup(".M")
	require.True(t, ok)
	assert.Equal(t, "M", m.Name.String())
	e, ok := table.Lookup(".M.E")
	require.True(t, ok)
	assert.Equal(t, "M_E", e.Name.String())
	assert.Equal(t, "_cy_enums.plain_M_E", e.Module.PythonModule())
}

func TestBuildSymbolTable_Duplicate(t *testing.T) {
	a := mustBuildFile(builder.NewFile("a.proto").SetPackageName("p").AddMessage(builder.NewMessage("M")))
	b := mustBuildFile(builder.NewFile("b.proto").SetPackageName("p").AddMessage(builder.NewMessage("M")))
	_, err := BuildSymbolTable([]*descriptorpb.FileDescriptorProto{a, b}, "", NewKeywordPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `".p.M"`)
	assert.Contains(t, err.Error(), "a.proto")
}

func TestBuildSymbolTable_ModuleCollisions(t *testing.T) {
	testCases := []struct {
		name    string
		sources map[string]string
		module  string
		files   []string
	}{
		{
			name: "same base name in different directories",
			sources: map[string]string{
				"a/x.proto": "syntax = \"proto3\";\npackage p;\nmessage A {}\n",
				"b/x.proto": "syntax = \"proto3\";\npackage p;\nimport \"a/x.proto\";\nmessage B { A a = 1; }\n",
			},
			module: "p._x__cy_pb2",
			files:  []string{"a/x.proto", "b/x.proto"},
		},
		{
			name: "nested enum sidecar against top-level enum sidecar",
			sources: map[string]string{
				"a.proto":   "syntax = \"proto3\";\npackage p;\nmessage b { enum C { B_C_ZERO = 0; } }\n",
				"a_b.proto": "syntax = \"proto3\";\npackage p;\nenum C { C_ZERO = 0; }\n",
			},
			module: "p._cy_enums.a_b_C",
			files:  []string{"a.proto", "a_b.proto"},
		},
		{
			name: "compiled module against pure module",
			sources: map[string]string{
				"_x__cy.proto": "syntax = \"proto3\";\npackage p;\nmessage M {}\n",
				"x.proto":      "syntax = \"proto3\";\npackage p;\nmessage N {}\n",
			},
			module: "p._x__cy_pb2",
			files:  []string{"_x__cy.proto", "x.proto"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildSymbolTable(compileProtos(t, tc.sources), "", NewKeywordPolicy())
			var collision *ModuleCollisionError
			require.ErrorAs(t, err, &collision)
			assert.Equal(t, tc.module, collision.Module)
			assert.Equal(t, tc.files, collision.Files)
		})
	}
}

func TestBuildSymbolTable_CrossFileNameCollision(t *testing.T) {
	protos := compileProtos(t, map[string]string{
		"a.proto": "syntax = \"proto3\";\npackage p;\nmessage Outer_Inner {}\n",
		"b.proto": "syntax = \"proto3\";\npackage p;\nmessage Outer { message Inner {} }\n",
	})
	_, err := BuildSymbolTable(protos, "", NewKeywordPolicy())
	var collision *NameCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "p_Outer_Inner", collision.Name)
	assert.Equal(t, []string{"a.proto", "b.proto"}, collision.Files)
	assert.EqualError(t, err, "a.proto and b.proto both define types named p_Outer_Inner")
}

func TestBuildSymbolTable_NamesIndependentOfOtherFiles(t *testing.T) {
	const local = "syntax = \"proto3\";\npackage p;\nmessage Outer { message Inner {} }\nmessage Outer_Inner {}\n"
	names := func(sources map[string]string) map[string]string {
		table, err := BuildSymbolTable(compileProtos(t, sources), "", NewKeywordPolicy())
		require.NoError(t, err)
		out := map[string]string{}
		for _, sym := range table.Symbols() {
			if sym.File == "m.proto" {
				out[sym.FullName] = sym.Name.String()
			}
		}
		return out
	}

	alone := names(map[string]string{"m.proto": local})
	assert.Equal(t, map[string]string{
		".p.Outer":       "p_Outer",
		".p.Outer.Inner": "p_Outer_Inner",
		".p.Outer_Inner": "p_Outer_Inner_2",
	}, alone)

	// files walked before and after it, in the same package and in another
	// one that reuses the flattened name
	withOthers := names(map[string]string{
		"a.proto": "syntax = \"proto3\";\npackage p;\nmessage Other {}\n",
		"m.proto": local,
		"z.proto": "syntax = \"proto3\";\npackage q;\nmessage Outer_Inner {}\n",
	})
	assert.Equal(t, alone, withOthers)
}
