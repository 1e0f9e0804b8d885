package coff

import (
	"encoding/binary"
	"fmt"
)

// symRow is one 18-byte row of the symbol table: either a primary symbol
// record or an auxiliary record belonging to the symbol immediately
// preceding it.
type symRow struct {
	aux bool

	// primary fields
	name         string
	value        uint32
	sectionIndex int16
	storage      StorageClass

	// aux fields
	auxData [18]byte
}

// symbolTable is a COFF symbol table: primary symbol records, each
// optionally followed by a fixed number of auxiliary records. Row
// position (0-based, counting aux rows) is the symbol-table index used by
// relocations and returned by AddSymbol.
type symbolTable struct {
	strtab     *stringTable
	rows       []symRow
	pendingAux []int // row indices of unfilled aux slots, oldest first
}

func newSymbolTable(strtab *stringTable) *symbolTable {
	return &symbolTable{strtab: strtab}
}

// AddSymbol appends a primary symbol record and reserves auxCount
// auxiliary rows immediately after it. It returns the symbol's 0-based
// row index, which is also its symbol-table index for relocation
// purposes. If section is nil the record is undefined (SECTION_UNDEFINED).
func (t *symbolTable) AddSymbol(section *Section, value uint32, name string, storage StorageClass, auxCount int) int {
	idx := len(t.rows)
	sectionIndex := sectionUndefined
	if section != nil {
		sectionIndex = int16(section.Index())
	}
	t.rows = append(t.rows, symRow{
		name:         name,
		value:        value,
		sectionIndex: sectionIndex,
		storage:      storage,
	})
	for i := 0; i < auxCount; i++ {
		t.pendingAux = append(t.pendingAux, len(t.rows))
		t.rows = append(t.rows, symRow{aux: true})
	}
	return idx
}

// AddAuxData fills the next reserved auxiliary row in FIFO order with
// data, which must be exactly 18 bytes.
func (t *symbolTable) AddAuxData(data []byte) (int, error) {
	if len(data) != 18 {
		return 0, fmt.Errorf("aux symbol record must be 18 bytes, got %d", len(data))
	}
	if len(t.pendingAux) == 0 {
		return 0, fmt.Errorf("no reserved auxiliary symbol slot to fill")
	}
	idx := t.pendingAux[0]
	t.pendingAux = t.pendingAux[1:]
	var d [18]byte
	copy(d[:], data)
	t.rows[idx].auxData = d
	return idx, nil
}

// RowCount returns the total number of symbol table rows, including
// auxiliary records. This is the value stored in the COFF file header's
// NumberOfSymbols field.
func (t *symbolTable) RowCount() int {
	return len(t.rows)
}

// PublicSymbolNames returns the names of every symbol defined (not merely
// referenced) in this table with external storage class, in insertion
// order. These are the names the archive emitter's linker members must
// map to this object's member offset.
func (t *symbolTable) PublicSymbolNames() []string {
	var names []string
	for _, r := range t.rows {
		if r.aux {
			continue
		}
		if r.storage == StorageExternal && r.sectionIndex > 0 {
			names = append(names, r.name)
		}
	}
	return names
}

// find returns the row index of a previously defined or referenced symbol
// named name, or -1 if none exists yet.
func (t *symbolTable) find(name string) int {
	for i, r := range t.rows {
		if !r.aux && r.name == name {
			return i
		}
	}
	return -1
}

func (t *symbolTable) Len() int {
	return len(t.rows) * 18
}

// RawBytes serializes the symbol table. Every pending auxiliary slot must
// already be filled.
func (t *symbolTable) RawBytes() ([]byte, error) {
	if len(t.pendingAux) != 0 {
		return nil, fmt.Errorf("%d auxiliary symbol slots were never filled", len(t.pendingAux))
	}
	buf := make([]byte, t.Len())
	for i, r := range t.rows {
		row := buf[i*18 : i*18+18]
		if r.aux {
			copy(row, r.auxData[:])
			continue
		}
		if err := encodeSymbolName(row[:8], t.strtab, r.name); err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(row[8:12], r.value)
		binary.LittleEndian.PutUint16(row[12:14], uint16(r.sectionIndex))
		// row[14:16] Type, always 0: this builder never emits function/
		// derived-type symbol typing, only plain data and function labels.
		row[16] = byte(r.storage)
		row[17] = byte(auxCountAfter(t.rows, i))
	}
	return buf, nil
}

// auxCountAfter counts the auxiliary rows immediately following row i.
func auxCountAfter(rows []symRow, i int) int {
	n := 0
	for j := i + 1; j < len(rows) && rows[j].aux; j++ {
		n++
	}
	return n
}

// encodeSymbolName writes a symbol's 8-byte name field: inline if the name
// is 8 bytes or fewer, otherwise a {0, string-table-offset} pair.
func encodeSymbolName(dst []byte, strtab *stringTable, name string) error {
	if len(name) <= maxInlineSymbolNameLen {
		copy(dst, name)
		return nil
	}
	off := strtab.AppendString(name)
	binary.LittleEndian.PutUint32(dst[0:4], 0)
	binary.LittleEndian.PutUint32(dst[4:8], off)
	return nil
}
