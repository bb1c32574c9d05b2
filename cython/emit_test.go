package cython

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFile returns a file with no types that depends on the named files.
func testFile(name string, deps ...string) *File {
	f := &File{Name: name, Module: NewModuleIdentity("", "", name)}
	for _, dep := range deps {
		f.Dependencies = append(f.Dependencies, Dependency{
			Module: NewModuleIdentity("", "", dep),
			File:   dep,
		})
	}
	return f
}

func emittedNames(files []*File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func TestSelectEmission(t *testing.T) {
	testCases := []struct {
		name      string
		files     []*File
		requested []string
		expected  []string
	}{
		{
			name:      "single file",
			files:     []*File{testFile("x.proto"), testFile("y.proto")},
			requested: []string{"x.proto"},
			expected:  []string{"x.proto"},
		},
		{
			name: "transitive closure",
			files: []*File{
				testFile("a.proto", "b.proto"),
				testFile("b.proto", "c.proto"),
				testFile("c.proto"),
			},
			requested: []string{"a.proto"},
			expected:  []string{"c.proto", "b.proto", "a.proto"},
		},
		{
			name: "requested dependencies are emitted once",
			files: []*File{
				testFile("a.proto", "b.proto"),
				testFile("b.proto", "c.proto"),
				testFile("c.proto"),
			},
			requested: []string{"c.proto", "a.proto", "b.proto", "a.proto"},
			expected:  []string{"c.proto", "b.proto", "a.proto"},
		},
		{
			name: "diamond",
			files: []*File{
				testFile("a.proto", "b.proto", "c.proto"),
				testFile("b.proto", "d.proto"),
				testFile("c.proto", "d.proto"),
				testFile("d.proto"),
			},
			requested: []string{"a.proto"},
			expected:  []string{"d.proto", "c.proto", "b.proto", "a.proto"},
		},
		{
			name:      "nothing requested",
			files:     []*File{testFile("a.proto")},
			requested: nil,
			expected:  []string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			emitted, err := SelectEmission(tc.files, tc.requested, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, emittedNames(emitted))
			assertClosed(t, emitted)
		})
	}
}

// assertClosed checks that every file's dependencies precede it.
func assertClosed(t *testing.T, emitted []*File) {
	t.Helper()
	seen := map[ModuleIdentity]bool{}
	for _, f := range emitted {
		for _, dep := range f.Dependencies {
			assert.True(t, seen[dep.Module], "%s emitted before its dependency %s", f.Name, dep.File)
		}
		for _, id := range f.Identities() {
			seen[id] = true
		}
	}
}

func TestSelectEmission_EnumIdentities(t *testing.T) {
	protos := compileProtos(t, map[string]string{
		"colors.proto": `syntax = "proto3";
package colors;

enum Color {
  RED = 0;
}

message Palette {
  repeated Color colors = 1;
}
`,
		"paint.proto": `syntax = "proto3";
package paint;

import "colors.proto";

message Paint {
  colors.Color color = 1;
}
`,
	})
	result, err := Compile(context.Background(), protos, []string{"paint.proto", "colors.proto"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"colors.proto", "paint.proto"}, emittedNames(result.Emit))
	assertClosed(t, result.Emit)
}

func TestSelectEmission_MissingFile(t *testing.T) {
	files := []*File{testFile("a.proto", "z.proto")}

	_, err := SelectEmission(files, []string{"a.proto"}, nil)
	var missing *MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "z.proto", missing.File)
	assert.Equal(t, "a.proto", missing.Referrer)
	assert.Contains(t, err.Error(), "z.proto")

	_, err = SelectEmission(files, []string{"nope.proto"}, nil)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope.proto", missing.File)
	assert.Empty(t, missing.Referrer)
}

func TestSelectEmission_Cycle(t *testing.T) {
	testCases := []struct {
		name     string
		files    []*File
		expected []string
	}{
		{
			name: "direct",
			files: []*File{
				testFile("a.proto", "b.proto"),
				testFile("b.proto", "a.proto"),
			},
			expected: []string{"a.proto", "b.proto", "a.proto"},
		},
		{
			name: "transitive",
			files: []*File{
				testFile("a.proto", "b.proto"),
				testFile("b.proto", "c.proto"),
				testFile("c.proto", "a.proto"),
			},
			expected: []string{"a.proto", "b.proto", "c.proto", "a.proto"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SelectEmission(tc.files, []string{"a.proto"}, nil)
			var cycle *CycleError
			require.ErrorAs(t, err, &cycle)
			assert.Equal(t, tc.expected, cycle.Files)
		})
	}
}
