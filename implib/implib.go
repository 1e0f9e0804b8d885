// Package implib orchestrates the coff and impsec packages into the
// public import-library build sequence: a head descriptor and null
// descriptor at construction, one thunk member per imported function, and
// a null thunk appended once the caller calls Build, after which the
// finished archive's bytes are available.
package implib

import (
	"fmt"

	"sora.dev/implib/archive"
	"sora.dev/implib/impsec"
)

// A Builder accumulates imported functions for a single DLL and, once
// Build is called, produces the bytes of a complete import library
// archive. Every archive member it adds carries the DLL's name, matching
// how LIB.EXE names members within a generated import library.
type Builder struct {
	dllName string
	arch    impsec.Arch
	ar      *archive.Emitter
	built   bool
}

// New starts a builder for dllName targeting arch. It immediately builds
// and adds the head descriptor and null descriptor objects: every import
// library needs exactly one of each, regardless of how many functions are
// imported.
func New(dllName string, arch impsec.Arch) (*Builder, error) {
	b := &Builder{
		dllName: dllName,
		arch:    arch,
		ar:      archive.NewEmitter(),
	}

	head, err := impsec.BuildImportDescriptor(dllName, arch)
	if err != nil {
		return nil, fmt.Errorf("building import descriptor for %q: %w", dllName, err)
	}
	if err := b.ar.AddMember(dllName, head); err != nil {
		return nil, err
	}

	null, err := impsec.BuildNullDescriptor(arch)
	if err != nil {
		return nil, fmt.Errorf("building null descriptor for %q: %w", dllName, err)
	}
	if err := b.ar.AddMember(dllName, null); err != nil {
		return nil, err
	}

	return b, nil
}

// AddByName imports exportName by name, with hint 0. pubName is the
// __imp_-style symbol other objects link against; thunkName, if
// non-empty, names a callable jump-stub symbol.
func (b *Builder) AddByName(pubName, thunkName, exportName string) error {
	if b.built {
		return fmt.Errorf("implib: cannot add imports after Build")
	}
	obj, err := impsec.BuildImportByNameThunk(pubName, thunkName, exportName, b.arch)
	if err != nil {
		return fmt.Errorf("building by-name thunk for %q: %w", exportName, err)
	}
	return b.ar.AddMember(b.dllName, obj)
}

// AddByNameWithHint is AddByName with an explicit export-table hint.
func (b *Builder) AddByNameWithHint(pubName, thunkName, exportName string, hint uint16) error {
	if b.built {
		return fmt.Errorf("implib: cannot add imports after Build")
	}
	obj, err := impsec.BuildImportThunkWithHint(pubName, thunkName, exportName, hint, b.arch)
	if err != nil {
		return fmt.Errorf("building hinted thunk for %q: %w", exportName, err)
	}
	return b.ar.AddMember(b.dllName, obj)
}

// AddByOrdinal imports the export at ordinal, with no name at all.
func (b *Builder) AddByOrdinal(pubName, thunkName string, ordinal uint16) error {
	if b.built {
		return fmt.Errorf("implib: cannot add imports after Build")
	}
	obj, err := impsec.BuildImportByOrdinalThunk(pubName, thunkName, ordinal, b.arch)
	if err != nil {
		return fmt.Errorf("building ordinal %d thunk: %w", ordinal, err)
	}
	return b.ar.AddMember(b.dllName, obj)
}

// Build appends the null thunk that terminates the DLL's import address
// and lookup tables and fixes every archive member's final offset. No
// further imports can be added afterward.
func (b *Builder) Build() error {
	if b.built {
		return nil
	}
	nullThunk, err := impsec.BuildNullThunk(b.dllName, b.arch)
	if err != nil {
		return fmt.Errorf("building null thunk for %q: %w", b.dllName, err)
	}
	if err := b.ar.AddMember(b.dllName, nullThunk); err != nil {
		return err
	}
	if err := b.ar.FillOffsets(); err != nil {
		return err
	}
	b.built = true
	return nil
}

// RawBytes returns the finished archive's bytes. Build must be called
// first.
func (b *Builder) RawBytes() ([]byte, error) {
	if !b.built {
		return nil, fmt.Errorf("implib: Build must be called before RawBytes")
	}
	return b.ar.RawBytes()
}

// Len returns the size in bytes of the finished archive, matching
// RawBytes without serializing it: the Go analogue of the original's
// GetDataLength(), used to size a file before writing RawBytes into it.
// Build must be called first.
func (b *Builder) Len() (int, error) {
	if !b.built {
		return 0, fmt.Errorf("implib: Build must be called before Len")
	}
	return b.ar.Len()
}
