package coff

import (
	"encoding/binary"
	"fmt"
)

const fileHeaderLen = 20
const sectionHeaderLen = 40

// An Object is a single COFF object file under construction: a list of
// sections, a symbol table, and a string table, all empty until sections
// are appended and symbols added.
type Object struct {
	machine Machine
	strtab  *stringTable
	symtab  *symbolTable

	sections []*Section
	pushed   bool
}

// NewObject returns an empty object for the given machine, with an empty
// section list, an empty symbol table, and a string table initialized to
// its 4-byte length header.
func NewObject(machine Machine) *Object {
	strtab := newStringTable()
	return &Object{
		machine: machine,
		strtab:  strtab,
		symtab:  newSymbolTable(strtab),
	}
}

// Machine returns the object's target machine.
func (o *Object) Machine() Machine { return o.machine }

// AppendSection transfers ownership of s into the object, assigns it the
// next 1-based section index, and returns that index.
func (o *Object) AppendSection(s *Section) int {
	o.sections = append(o.sections, s)
	s.index = len(o.sections)
	return s.index
}

// Section returns the 1-based indexed section, or nil if idx is out of
// range.
func (o *Object) Section(idx int) *Section {
	if idx < 1 || idx > len(o.sections) {
		return nil
	}
	return o.sections[idx-1]
}

// AddSymbol appends a primary symbol record to the object's symbol table
// and reserves auxCount auxiliary slots after it. It returns the symbol's
// 0-based symbol-table index. If section is nil the symbol is recorded as
// SECTION_UNDEFINED (external reference, not a definition).
func (o *Object) AddSymbol(section *Section, value uint32, name string, storage StorageClass, auxCount int) int {
	return o.symtab.AddSymbol(section, value, name, storage, auxCount)
}

// AddAuxData fills the next reserved auxiliary symbol slot with an
// 18-byte record, such as one returned by Section.AuxSymbolData.
func (o *Object) AddAuxData(data []byte) (int, error) {
	return o.symtab.AddAuxData(data)
}

// PublicSymbolNames returns the names of every symbol defined in this
// object with external storage class, the set the archive emitter maps
// to this object's member offset in both linker members.
func (o *Object) PublicSymbolNames() []string {
	return o.symtab.PublicSymbolNames()
}

// PushRelocs walks every section in order and, for each pending
// relocation, ensures the target symbol exists in the symbol table
// (adding it as an undefined external reference if it is neither defined
// nor already referenced), then records the relocation against that
// symbol's table index. Callers must add every user-visible symbol before
// calling PushRelocs: relocations created afterward, or linking against a
// symbol not yet added, resolve to the wrong index or fail.
func (o *Object) PushRelocs() error {
	for _, s := range o.sections {
		for _, r := range s.pending {
			idx := o.symtab.find(r.Symbol)
			if idx < 0 {
				idx = o.symtab.AddSymbol(nil, 0, r.Symbol, StorageExternal, 0)
			}
			s.resolved = append(s.resolved, resolvedRelocation{
				offset:    r.Offset,
				symbolIdx: uint32(idx),
				typ:       r.Type,
			})
		}
		s.pending = nil
	}
	o.pushed = true
	return nil
}

// datawriter assembles a byte slice out of independently-sized pieces,
// tracking the running offset so each piece can be told where it landed.
type datawriter struct {
	pos  uint32
	data [][]byte
}

func (w *datawriter) write(d []byte) uint32 {
	off := w.pos
	w.pos += uint32(len(d))
	w.data = append(w.data, d)
	return off
}

func (w *datawriter) bytes() []byte {
	buf := make([]byte, w.pos)
	var n int
	for _, d := range w.data {
		n += copy(buf[n:], d)
	}
	return buf
}

// RawBytes serializes the object: file header, section headers, section
// data in section order, each section's relocation table immediately
// after all section data (in section order), then the symbol table, then
// the string table. PushRelocs must be called first.
func (o *Object) RawBytes() ([]byte, error) {
	if !o.pushed {
		return nil, fmt.Errorf("PushRelocs must be called before RawBytes")
	}
	for _, s := range o.sections {
		if len(s.pending) != 0 {
			return nil, fmt.Errorf("section %q has unresolved relocations", s.name)
		}
	}

	// Serialize the symbol table first: encoding long symbol names
	// appends them to the string table, so the string table's final
	// content and size aren't known until this has run.
	symBytes, err := o.symtab.RawBytes()
	if err != nil {
		return nil, err
	}
	strBytes := o.strtab.RawBytes()

	n := len(o.sections)
	dataBase := uint32(fileHeaderLen + sectionHeaderLen*n)
	dataOffsets := make([]uint32, n)
	cur := dataBase
	for i, s := range o.sections {
		dataOffsets[i] = cur
		cur += uint32(s.Len())
	}
	relocOffsets := make([]uint32, n)
	for i, s := range o.sections {
		relocOffsets[i] = cur
		cur += uint32(10 * s.RelocationCount())
	}
	symOffset := cur

	var header [fileHeaderLen]byte
	binary.LittleEndian.PutUint16(header[0:2], uint16(o.machine))
	binary.LittleEndian.PutUint16(header[2:4], uint16(n))
	// header[4:8] TimeDateStamp: always 0, so that building twice yields
	// byte-identical output.
	binary.LittleEndian.PutUint32(header[8:12], symOffset)
	binary.LittleEndian.PutUint32(header[12:16], uint32(o.symtab.RowCount()))
	// header[16:18] SizeOfOptionalHeader, header[18:20] Characteristics: always 0.

	var w datawriter
	w.write(header[:])
	for i, s := range o.sections {
		h, err := s.rawHeader(dataOffsets[i], relocOffsets[i])
		if err != nil {
			return nil, wrapErrorf(err, "object for machine %#x", o.machine)
		}
		w.write(h)
	}
	for _, s := range o.sections {
		w.write(s.data)
	}
	for _, s := range o.sections {
		w.write(s.rawRelocations())
	}
	w.write(symBytes)
	w.write(strBytes)

	return w.bytes(), nil
}
