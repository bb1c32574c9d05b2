package cython

import (
	"context"
	"sort"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/jhump/protoreflect/desc/builder"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
)

// compileProtos compiles the given in-memory sources, returning every file's
// descriptor in name order.
func compileProtos(t *testing.T, sources map[string]string) []*descriptorpb.FileDescriptorProto {
	t.Helper()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		},
	}
	files, err := compiler.Compile(context.Background(), names...)
	require.NoError(t, err)

	protos := make([]*descriptorpb.FileDescriptorProto, len(files))
	for i, f := range files {
		protos[i] = protodesc.ToFileDescriptorProto(f)
	}
	return protos
}

func mustBuildFile(f *builder.FileBuilder) *descriptorpb.FileDescriptorProto {
	fd, err := f.Build()
	if err != nil {
		panic(err)
	}
	return fd.AsFileDescriptorProto()
}

// assemble builds the symbol table for all protos and assembles the named
// one, with no prefix.
func assemble(t *testing.T, protos []*descriptorpb.FileDescriptorProto, name string) *File {
	t.Helper()
	policy := NewKeywordPolicy()
	table, err := BuildSymbolTable(protos, "", policy)
	require.NoError(t, err)
	for _, fd := range protos {
		if fd.GetName() == name {
			f, err := AssembleFile(fd, table, "", policy, nil)
			require.NoError(t, err)
			return f
		}
	}
	t.Fatalf("no file named %s", name)
	return nil
}

func findClass(t *testing.T, f *File, local string) *ClassModel {
	t.Helper()
	for _, c := range f.Classes {
		if c.Name().Local() == local {
			return c
		}
	}
	t.Fatalf("%s: no class named %s", f.Name, local)
	return nil
}

func fieldNames(c *ClassModel) []string {
	names := make([]string, len(c.Fields))
	for i, fm := range c.Fields {
		names[i] = fm.Name()
	}
	return names
}

func fieldByName(t *testing.T, c *ClassModel, name string) FieldModel {
	t.Helper()
	for _, fm := range c.Fields {
		if fm.Name() == name {
			return fm
		}
	}
	t.Fatalf("%s: no field named %s", c.Symbol.FullName, name)
	return nil
}
