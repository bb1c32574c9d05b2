package render

import (
	"github.com/goccy/go-json"

	"github.com/cytobuf/protoc-gen-cython/cython"
)

// ManifestName is the name of the JSON manifest.
const ManifestName = "cytobuf_manifest.json"

type manifest struct {
	Files []manifestFile `json:"files"`
}

type manifestFile struct {
	Name         string         `json:"name"`
	Package      string         `json:"package,omitempty"`
	Modules      manifestModule `json:"modules"`
	Enums        []manifestEnum `json:"enums,omitempty"`
	Classes      []string       `json:"classes,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Outputs      []string       `json:"outputs"`
}

type manifestModule struct {
	Native  string `json:"native"`
	Externs string `json:"externs"`
	Python  string `json:"python"`
}

type manifestEnum struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// Manifest describes the emitted files, in emission order: their modules,
// the types they define, and the files generated for them.
func Manifest(files []*cython.File) (OutputFile, error) {
	m := manifest{Files: make([]manifestFile, 0, len(files))}
	for _, f := range files {
		mf := manifestFile{
			Name:    f.Name,
			Package: f.Package,
			Modules: manifestModule{
				Native:  f.Module.NativeModule(),
				Externs: f.Module.ExternsModule(),
				Python:  f.Module.PythonModule(),
			},
			Outputs: []string{
				f.Module.ExternsPxdFilename(),
				f.Module.PxdFilename(),
				f.Module.PyxFilename(),
				f.Module.PyFilename(),
			},
		}
		for _, e := range f.Enums {
			mf.Enums = append(mf.Enums, manifestEnum{
				Name:   e.Name().String(),
				Module: e.Module().PythonModule(),
			})
			mf.Outputs = append(mf.Outputs, e.Module().PyFilename())
		}
		for _, c := range f.Classes {
			mf.Classes = append(mf.Classes, c.Name().String())
		}
		for _, d := range f.Dependencies {
			mf.Dependencies = append(mf.Dependencies, d.File)
		}
		m.Files = append(m.Files, mf)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return OutputFile{}, err
	}
	return OutputFile{Name: ManifestName, Content: string(b) + "\n"}, nil
}
