package coff

import "encoding/binary"

// A stringTable is a COFF long-name string table: a 4-byte little-endian
// length (covering the length field itself) followed by NUL-terminated
// strings. Offsets into it are always >= 4.
type stringTable struct {
	data []byte // strings only; the 4-byte length prefix is added at RawBytes time
}

func newStringTable() *stringTable {
	return &stringTable{}
}

// AppendString appends s (NUL-terminated) and returns its offset from the
// start of the serialized string table, including the 4-byte length
// header that precedes it.
func (t *stringTable) AppendString(s string) uint32 {
	off := uint32(len(t.data)) + 4
	t.data = append(t.data, s...)
	t.data = append(t.data, 0)
	return off
}

// Len returns the serialized size of the string table, including its
// 4-byte length header.
func (t *stringTable) Len() int {
	return len(t.data) + 4
}

// RawBytes returns the serialized string table.
func (t *stringTable) RawBytes() []byte {
	buf := make([]byte, t.Len())
	binary.LittleEndian.PutUint32(buf, uint32(t.Len()))
	copy(buf[4:], t.data)
	return buf
}
