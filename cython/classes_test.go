package cython

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleFile_Nested(t *testing.T) {
	protos := compileProtos(t, map[string]string{"foo/bar/test.proto": outerProto})
	f := assemble(t, protos, "foo/bar/test.proto")

	assert.Equal(t, "foo/bar/test.proto", f.Name)
	assert.Equal(t, "foo.bar", f.Package)
	assert.Equal(t, []string{"foo", "bar"}, f.Namespace)
	assert.Equal(t, "foo/bar/test.pb.h", f.CppHeader())
	assert.Equal(t, "foo/bar/test.pb.cc", f.CppSource())

	// nested messages come before the message declaring them
	require.Len(t, f.Classes, 2)
	inner, outer := f.Classes[0], f.Classes[1]
	assert.Equal(t, "Outer_Inner", inner.Name().Local())
	assert.False(t, inner.Exported)
	assert.Equal(t, "Outer", outer.Name().Local())
	assert.True(t, outer.Exported)

	var nested []string
	for _, n := range outer.NestedNames {
		nested = append(nested, n.Base)
	}
	assert.Equal(t, []string{"Inner", "Color"}, nested)
	assert.Equal(t, []string{"inner", "color", "items"}, fieldNames(outer))

	// top-level enums first, then nested ones
	require.Len(t, f.Enums, 2)
	top, color := f.Enums[0], f.Enums[1]
	assert.Equal(t, "Top", top.Name().Local())
	assert.True(t, top.Exported)
	assert.Equal(t, []EnumValue{{Name: "TOP_ZERO", NativeName: "TOP_ZERO", Number: 0}}, top.Values)

	assert.Equal(t, "Outer_Color", color.Name().Local())
	assert.False(t, color.Exported)
	assert.Equal(t, []EnumValue{
		{Name: "RED", NativeName: "Outer_Color_RED", Number: 0},
		{Name: "BLUE", NativeName: "Outer_Color_BLUE", Number: 1},
	}, color.Values)

	assert.Equal(t, []ModuleIdentity{
		f.Module,
		f.Module.EnumIdentity("Top"),
		f.Module.EnumIdentity("Outer_Color"),
	}, f.Identities())

	// everything referenced lives in this file
	assert.Empty(t, f.Dependencies)
}

func TestAssembleFile_ForbiddenFieldNames(t *testing.T) {
	protos := compileProtos(t, map[string]string{"test.proto": `syntax = "proto3";
package p;

message Sub {}

message Msg {
  string type = 1;
  Sub foo = 2;
  int32 has_foo = 3;
  repeated int32 bar = 4;
  int32 bar_size = 5;
  int32 add_bar = 6;
  int32 clear_type = 7;
  int32 set_bar = 8;
  int32 from = 9;
  int32 has_bar = 10;
}
`})
	f := assemble(t, protos, "test.proto")
	assert.Equal(t, []string{"type", "foo", "bar", "has_bar"}, fieldNames(findClass(t, f, "Msg")))
}

func TestAssembleFile_Idempotent(t *testing.T) {
	protos := compileProtos(t, fieldSources)
	policy := NewKeywordPolicy()
	table, err := BuildSymbolTable(protos, "gen", policy)
	require.NoError(t, err)

	for _, fd := range protos {
		first, err := AssembleFile(fd, table, "gen", policy, nil)
		require.NoError(t, err)
		second, err := AssembleFile(fd, table, "gen", policy, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second, fd.GetName())
	}
}

func TestAssembleFile_ReservedTypes(t *testing.T) {
	protos := compileProtos(t, map[string]string{"test.proto": `syntax = "proto3";
package p;

message None {
  int32 x = 1;
}

message Holder {
  None gone = 1;
  int32 kept = 2;
  map<string, None> also_gone = 3;
  map<string, int32> counts = 4;
}
`})
	f := assemble(t, protos, "test.proto")
	require.Len(t, f.Classes, 1)
	holder := f.Classes[0]
	assert.Equal(t, "Holder", holder.Name().Local())
	assert.Equal(t, []string{"kept", "counts"}, fieldNames(holder))
}

func TestAssembleFile_EscapedEnumValues(t *testing.T) {
	protos := compileProtos(t, map[string]string{"test.proto": `syntax = "proto2";
package p;

enum Answer {
  None = 0;
  yes = 1;
}
`})
	f := assemble(t, protos, "test.proto")
	require.Len(t, f.Enums, 1)
	assert.Equal(t, []EnumValue{
		{Name: "None_", NativeName: "None", Number: 0},
		{Name: "yes", NativeName: "yes", Number: 1},
	}, f.Enums[0].Values)
}
