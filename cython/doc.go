// Package cython builds the language-neutral model behind generated Cython
// wrappers for protobuf files.
//
// Compile runs the whole pipeline: it indexes every message and enum into a
// symbol table keyed by fully-qualified name, assembles per-file class and
// enum representations in parallel, and selects the files to emit in
// dependency order. Names that collide with Python or Cython keywords are
// renamed or dropped according to a KeywordPolicy.
package cython
