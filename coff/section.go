package coff

import "encoding/binary"

// Relocation is a pending patch within a section's data: at link time the
// linker must locate symbol, compute its address per Type, and write the
// result at Offset bytes into the section.
type Relocation struct {
	Symbol string
	Offset uint32
	Type   RelocType
}

// resolvedRelocation is a Relocation once its symbol has been assigned a
// symbol-table index, ready to serialize as a 10-byte relocation entry.
type resolvedRelocation struct {
	offset    uint32
	symbolIdx uint32
	typ       RelocType
}

// A Section holds one section's raw data and the relocations pending
// against it. Sections are created independently and transferred into an
// Object with AppendSection, which assigns the 1-based index a section
// needs before it can be the target of a symbol or a relocation.
type Section struct {
	name    string
	flags   SectionFlag
	align   Align
	data    []byte
	pending []Relocation
	index   int // 0 until appended to an Object

	resolved []resolvedRelocation
}

// NewSection creates an empty section named name, which must be 8 bytes
// or fewer (longer names would require a string-table reference, which
// this builder does not support).
func NewSection(name string) (*Section, error) {
	if len(name) > maxSectionNameLen {
		return nil, wrapErrorf(errNameTooLong, "section %q", name)
	}
	return &Section{name: name}, nil
}

// SetCharacteristics sets the section's characteristics flags and data
// alignment.
func (s *Section) SetCharacteristics(flags SectionFlag, align Align) {
	s.flags = flags
	s.align = align
}

// AppendData appends data to the section along with any relocations that
// patch it. Each relocation's Offset is relative to the start of data
// being appended here; AppendData rebases it to be relative to the start
// of the section before storing it. Ownership of relocs transfers to the
// section.
func (s *Section) AppendData(data []byte, relocs []Relocation) {
	base := uint32(len(s.data))
	s.data = append(s.data, data...)
	for _, r := range relocs {
		r.Offset += base
		s.pending = append(s.pending, r)
	}
}

// Name returns the section's name.
func (s *Section) Name() string { return s.name }

// Index returns the section's 1-based index, or 0 if it has not yet been
// appended to an Object.
func (s *Section) Index() int { return s.index }

// Len returns the length of the section's raw data, excluding its header
// and relocation table.
func (s *Section) Len() int { return len(s.data) }

// RelocationCount returns the number of relocations pending or resolved
// against this section.
func (s *Section) RelocationCount() int { return len(s.pending) + len(s.resolved) }

// RawCharacteristics returns the raw COFF section characteristics bitmask
// for this section's flags and alignment.
func (s *Section) RawCharacteristics() (uint32, error) {
	var c uint32
	if s.flags&SectionRead != 0 {
		c |= rawSectionRead
	}
	if s.flags&SectionWrite != 0 {
		c |= rawSectionWrite
	}
	if s.flags&SectionExecute != 0 {
		c |= rawSectionExecute
	}
	if s.flags&SectionCode != 0 {
		c |= rawSectionCode
	}
	if s.flags&SectionUninitialized != 0 {
		c |= rawSectionUninitialized
	}
	if s.flags&SectionComdat != 0 {
		c |= rawSectionComdat
	}
	exp, err := alignExponent(s.align)
	if err != nil {
		return 0, wrapErrorf(err, "section %q", s.name)
	}
	c |= exp << rawAlignShift
	return c, nil
}

// AuxSymbolData builds the 18-byte auxiliary symbol record describing
// this section: its data length, relocation count, and (for COMDAT
// sections) the associated section and selection rule. No checksum is
// generated.
func (s *Section) AuxSymbolData(associated *Section, selection ComdatSelection) []byte {
	buf := make([]byte, 18)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(s.data)))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(s.pending)))
	// buf[6:8] NumberOfLineNumbers, buf[8:12] CheckSum: always 0.
	if associated != nil {
		binary.LittleEndian.PutUint16(buf[12:14], uint16(associated.Index()))
	}
	buf[14] = byte(selection)
	return buf
}

// rawHeader serializes this section's 40-byte section header. dataOffset
// and relocOffset are this section's absolute offsets into the object
// file for its raw data and relocation table, respectively; relocOffset
// is ignored (and the field left 0) when the section has no relocations.
func (s *Section) rawHeader(dataOffset, relocOffset uint32) ([]byte, error) {
	buf := make([]byte, 40)
	copy(buf[0:8], s.name)
	// buf[8:12] VirtualSize, buf[12:16] VirtualAddress: unused in object files.
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(s.data)))
	binary.LittleEndian.PutUint32(buf[20:24], dataOffset)
	nRelocs := s.RelocationCount()
	if nRelocs > 0 {
		binary.LittleEndian.PutUint32(buf[24:28], relocOffset)
	}
	// buf[28:32] PointerToLinenumbers: always 0.
	binary.LittleEndian.PutUint16(buf[32:34], uint16(nRelocs))
	// buf[34:36] NumberOfLinenumbers: always 0.
	c, err := s.RawCharacteristics()
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[36:40], c)
	return buf, nil
}

// rawRelocations serializes this section's resolved relocation table (10
// bytes per entry). PushRelocs must have run first.
func (s *Section) rawRelocations() []byte {
	buf := make([]byte, 10*len(s.resolved))
	for i, r := range s.resolved {
		e := buf[i*10 : i*10+10]
		binary.LittleEndian.PutUint32(e[0:4], r.offset)
		binary.LittleEndian.PutUint32(e[4:8], r.symbolIdx)
		binary.LittleEndian.PutUint16(e[8:10], uint16(r.typ))
	}
	return buf
}
