package archive

import (
	"encoding/binary"
	"sort"
	"strings"
)

// symbolRef is one public symbol discovered in a user member, tagged with
// that member's 0-based index.
type symbolRef struct {
	name      string
	memberIdx int
}

// nameBlobLen returns the total size, in bytes, of refs' names written
// NUL-terminated and concatenated. It does not depend on ordering, so it
// is the same whether refs is in discovery order or sorted order.
func nameBlobLen(refs []symbolRef) int {
	n := 0
	for _, r := range refs {
		n += len(r.name) + 1
	}
	return n
}

// firstLinkerMemberSize returns the exact size of the first linker
// member's payload for K symbols whose concatenated NUL-terminated names
// occupy nameBytes bytes: a 4-byte count, K 4-byte offsets, then the
// names.
func firstLinkerMemberSize(k, nameBytes int) int {
	return 4 + 4*k + nameBytes
}

// secondLinkerMemberSize returns the exact size of the second linker
// member's payload for m members and k symbols.
func secondLinkerMemberSize(m, k, nameBytes int) int {
	return 4 + 4*m + 4 + 2*k + nameBytes
}

// buildFirstLinkerMember serializes the first linker member: symbol count
// and per-symbol offsets in big-endian, in discovery order, followed by
// the NUL-terminated names in that same order.
func buildFirstLinkerMember(refs []symbolRef, memberOffsets []uint32) []byte {
	k := len(refs)
	buf := make([]byte, firstLinkerMemberSize(k, nameBlobLen(refs)))
	binary.BigEndian.PutUint32(buf[0:4], uint32(k))
	pos := 4
	for _, r := range refs {
		binary.BigEndian.PutUint32(buf[pos:pos+4], memberOffsets[r.memberIdx])
		pos += 4
	}
	for _, r := range refs {
		copy(buf[pos:], r.name)
		pos += len(r.name) + 1 // +1 leaves the NUL terminator zero-valued
	}
	return buf
}

// sortedSymbolRefs returns refs sorted case-insensitively by name, stable
// so that symbols sharing a case-folded name keep their discovery order.
func sortedSymbolRefs(refs []symbolRef) []symbolRef {
	sorted := make([]symbolRef, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].name) < strings.ToLower(sorted[j].name)
	})
	return sorted
}

// buildSecondLinkerMember serializes the second linker member: member
// count, member offset array, symbol count, and a 1-based member index
// per symbol (symbols sorted case-insensitively), all little-endian,
// followed by the NUL-terminated sorted names.
func buildSecondLinkerMember(memberOffsets []uint32, sorted []symbolRef) []byte {
	m := len(memberOffsets)
	k := len(sorted)
	buf := make([]byte, secondLinkerMemberSize(m, k, nameBlobLen(sorted)))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m))
	pos := 4
	for _, off := range memberOffsets {
		binary.LittleEndian.PutUint32(buf[pos:pos+4], off)
		pos += 4
	}
	binary.LittleEndian.PutUint32(buf[pos:pos+4], uint32(k))
	pos += 4
	for _, r := range sorted {
		binary.LittleEndian.PutUint16(buf[pos:pos+2], uint16(r.memberIdx+1))
		pos += 2
	}
	for _, r := range sorted {
		copy(buf[pos:], r.name)
		pos += len(r.name) + 1
	}
	return buf
}
