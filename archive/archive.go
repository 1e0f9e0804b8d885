// Package archive assembles named COFF objects into a Microsoft-style
// "2-linker-member" archive: the 8-byte "!<arch>\n" signature, a first
// linker member (a big-endian symbol -> offset directory in discovery
// order) and a second linker member (a little-endian, per-member offset
// table plus a case-insensitively sorted symbol -> member-index
// directory), followed by the user-supplied COFF members themselves.
//
// Long-name members are not supported: member names are truncated to 15
// bytes, matching the short-name archive format LIB.EXE emits.
package archive

import (
	"fmt"

	"sora.dev/implib/coff"
)

const signature = "!<arch>\n"

// member is one user-supplied archive member: a named COFF object and
// the symbols it defines, captured once at AddMember time.
type member struct {
	name          string
	data          []byte
	publicSymbols []string
	offset        uint32
}

// Emitter accumulates a sequence of named COFF objects and, once told to
// FillOffsets, produces the bytes of a complete MS-format archive.
type Emitter struct {
	members []member

	filled        bool
	firstPayload  []byte
	secondPayload []byte
}

// NewEmitter returns an empty archive emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// AddMember serializes obj and appends it as a named archive member, in
// insertion order. name is truncated to 15 bytes if longer.
func (e *Emitter) AddMember(name string, obj *coff.Object) error {
	data, err := obj.RawBytes()
	if err != nil {
		return fmt.Errorf("archive member %q: %w", name, err)
	}
	e.members = append(e.members, member{
		name:          truncateMemberName(name),
		data:          data,
		publicSymbols: obj.PublicSymbolNames(),
	})
	e.filled = false
	return nil
}

// discoveryOrder returns every public symbol across every member, tagged
// with its 0-based member index, in the order they were discovered:
// member by member, and within a member, in that member's own symbol
// insertion order.
func (e *Emitter) discoveryOrder() []symbolRef {
	var refs []symbolRef
	for i, m := range e.members {
		for _, name := range m.publicSymbols {
			refs = append(refs, symbolRef{name: name, memberIdx: i})
		}
	}
	return refs
}

// FillOffsets computes the archive-relative file offset of every user
// member and builds the two linker members against those offsets. This
// is a fix-point: the linker members' sizes depend only on the symbol
// count and total name-string length (known once every member has been
// added), but the user members' offsets depend on the linker members'
// sizes, so sizes must be computed before any offset is assigned.
func (e *Emitter) FillOffsets() error {
	refs := e.discoveryOrder()
	k := len(refs)
	nameBytes := nameBlobLen(refs)
	m := len(e.members)

	firstSize := firstLinkerMemberSize(k, nameBytes)
	secondSize := secondLinkerMemberSize(m, k, nameBytes)

	cur := uint32(len(signature))
	cur += uint32(memberHeaderLen + firstSize + len(pad(firstSize)))
	cur += uint32(memberHeaderLen + secondSize + len(pad(secondSize)))

	memberOffsets := make([]uint32, m)
	for i := range e.members {
		memberOffsets[i] = cur
		e.members[i].offset = cur
		cur += uint32(memberHeaderLen + len(e.members[i].data) + len(pad(len(e.members[i].data))))
	}

	e.firstPayload = buildFirstLinkerMember(refs, memberOffsets)
	e.secondPayload = buildSecondLinkerMember(memberOffsets, sortedSymbolRefs(refs))
	e.filled = true
	return nil
}

// Len returns the total size of the serialized archive. FillOffsets must
// be called first.
func (e *Emitter) Len() (int, error) {
	if !e.filled {
		return 0, fmt.Errorf("FillOffsets must be called before Len")
	}
	n := len(signature)
	n += memberHeaderLen + len(e.firstPayload) + len(pad(len(e.firstPayload)))
	n += memberHeaderLen + len(e.secondPayload) + len(pad(len(e.secondPayload)))
	for _, mem := range e.members {
		n += memberHeaderLen + len(mem.data) + len(pad(len(mem.data)))
	}
	return n, nil
}

// RawBytes serializes the complete archive. FillOffsets must be called
// first.
func (e *Emitter) RawBytes() ([]byte, error) {
	if !e.filled {
		return nil, fmt.Errorf("FillOffsets must be called before RawBytes")
	}
	n, err := e.Len()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, n)
	buf = append(buf, signature...)
	buf = appendMember(buf, "", e.firstPayload)
	buf = appendMember(buf, "", e.secondPayload)
	for _, mem := range e.members {
		buf = appendMember(buf, mem.name, mem.data)
	}
	return buf, nil
}

func appendMember(buf []byte, name string, payload []byte) []byte {
	buf = append(buf, memberHeader(name, len(payload))...)
	buf = append(buf, payload...)
	buf = append(buf, pad(len(payload))...)
	return buf
}
