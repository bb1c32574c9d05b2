// Package render turns the intermediate representation built by package
// cython into the text of the generated Cython and Python sources.
package render

import (
	"fmt"
	"path"
	"sort"

	"github.com/flosch/pongo2/v4"

	"github.com/cytobuf/protoc-gen-cython/cython"
)

// MergedPyx is the name of the file that includes every generated .pyx file.
const MergedPyx = "_merged_cython_protos.pyx"

// OutputFile is one generated file.
type OutputFile struct {
	Name    string
	Content string
}

// Options control what Render produces beyond the per-file artifacts.
type Options struct {
	// Manifest adds a JSON description of the emitted files.
	Manifest bool
}

// Render produces the full output for the given files, which must be in
// emission order. For each file, in order, it yields the extern declarations,
// the compiled module's .pxd and .pyx, the pure module, and one sidecar module
// per enum. These are followed by the package __init__ files, setup.py, the
// merged .pyx, and, if requested, the manifest. Two outputs with the same
// name are an error.
func Render(files []*cython.File, opts Options) ([]OutputFile, error) {
	var out []OutputFile
	var pyx []string
	for _, f := range files {
		rendered, err := RenderFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
		pyx = append(pyx, f.Module.PyxFilename())
	}
	out = append(out, packageFiles(out)...)

	pyx = append(pyx, MergedPyx)
	setup, err := execute(setupTemplate, "setup.py", pongo2.Context{"pyx": pyx})
	if err != nil {
		return nil, err
	}
	merged, err := execute(mergedTemplate, MergedPyx, pongo2.Context{"pyx": pyx[:len(pyx)-1]})
	if err != nil {
		return nil, err
	}
	out = append(out, setup, merged)

	if opts.Manifest {
		m, err := Manifest(files)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := checkUnique(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkUnique reports an error if two outputs share a name. protoc only
// accepts one file per name in a response.
func checkUnique(files []OutputFile) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("more than one generated file named %s", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// RenderFile produces the artifacts of a single schema file.
func RenderFile(f *cython.File) ([]OutputFile, error) {
	view, err := newFileView(f)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{"f": view}
	steps := []struct {
		tpl  *pongo2.Template
		name string
	}{
		{externsPxdTemplate, f.Module.ExternsPxdFilename()},
		{pxdTemplate, f.Module.PxdFilename()},
		{pyxTemplate, f.Module.PyxFilename()},
		{pyTemplate, f.Module.PyFilename()},
	}
	out := make([]OutputFile, 0, len(steps)+len(f.Enums))
	for _, s := range steps {
		o, err := execute(s.tpl, s.name, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out = append(out, o)
	}
	for i, e := range f.Enums {
		o, err := execute(enumTemplate, e.Module().PyFilename(), pongo2.Context{"e": view.Enums[i]})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func execute(tpl *pongo2.Template, name string, ctx pongo2.Context) (OutputFile, error) {
	content, err := tpl.Execute(ctx)
	if err != nil {
		return OutputFile{}, fmt.Errorf("rendering %s: %w", name, err)
	}
	return OutputFile{Name: name, Content: content}, nil
}

// packageFiles returns an empty __init__.py and __init__.pxd for every
// directory holding one of the given files, and for all of their parents.
func packageFiles(files []OutputFile) []OutputFile {
	dirs := map[string]struct{}{}
	for _, f := range files {
		for dir := path.Dir(f.Name); dir != "." && dir != "/"; dir = path.Dir(dir) {
			dirs[dir] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)

	out := make([]OutputFile, 0, 2*len(sorted))
	for _, dir := range sorted {
		out = append(out,
			OutputFile{Name: path.Join(dir, "__init__.pxd")},
			OutputFile{Name: path.Join(dir, "__init__.py")},
		)
	}
	return out
}
