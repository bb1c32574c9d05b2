package cython

import (
	"fmt"
	"strings"
)

// UnresolvedReferenceError is returned when a field or map entry refers to a
// type that is not defined by any supplied file.
type UnresolvedReferenceError struct {
	// Name is the fully-qualified name that could not be resolved.
	Name string
	// Referrer is the fully-qualified name of the referring field.
	Referrer string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: unresolved type reference %q", e.Referrer, e.Name)
}

// MissingFileError is returned when a requested or required file is not among
// the supplied descriptors.
type MissingFileError struct {
	File string
	// Referrer is the file that needed File. It is empty when File was
	// requested directly.
	Referrer string
}

func (e *MissingFileError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("requested file %q was not supplied", e.File)
	}
	return fmt.Sprintf("%s: dependency %q was not supplied", e.Referrer, e.File)
}

// CycleError is returned when files depend on each other, directly or
// transitively, so that no emission order exists.
type CycleError struct {
	Files []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between files: %s", strings.Join(e.Files, " -> "))
}

// MalformedMapEntryError is returned when a map-entry message lacks one of
// its key or value fields.
type MalformedMapEntryError struct {
	Entry string
	Field string
}

func (e *MalformedMapEntryError) Error() string {
	return fmt.Sprintf("map entry %s has no %q field", e.Entry, e.Field)
}

// ModuleCollisionError is returned when two schema files, or enums of them,
// would be generated into the same module.
type ModuleCollisionError struct {
	Module string
	// Files are the files claiming Module, first claimant first.
	Files []string
}

func (e *ModuleCollisionError) Error() string {
	return fmt.Sprintf("%s and %s both generate module %s", e.Files[0], e.Files[1], e.Module)
}

// NameCollisionError is returned when types from two files of one package
// flatten to the same generated name, such as a top-level Outer_Inner in one
// file and a nested Outer.Inner in another.
type NameCollisionError struct {
	Name  string
	Files []string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%s and %s both define types named %s", e.Files[0], e.Files[1], e.Name)
}

func errUnresolved(name, referrer string) error {
	return &UnresolvedReferenceError{Name: name, Referrer: referrer}
}

func errMissingFile(file, referrer string) error {
	return &MissingFileError{File: file, Referrer: referrer}
}
