// Package impsec builds the COFF objects that make up an import library:
// the import descriptor ("head"), the null descriptor, one thunk member
// per imported function, and the null thunk that terminates a DLL's
// import address table and import lookup table chains.
//
// Architecture differences (pointer width, stub opcodes, relocation
// types) are expressed as a single Arch value rather than as separate
// per-architecture types, per the spec's preference for parameterizing
// over an architecture descriptor instead of subclassing.
package impsec

import "sora.dev/implib/coff"

// Raw COFF relocation type codes. Values come from the Microsoft PE/COFF
// specification; which ones apply to a given Arch is fixed below.
const (
	relocI386DIR32     coff.RelocType = 0x0006 // IMAGE_REL_I386_DIR32 (absolute VA)
	relocI386DIR32NB   coff.RelocType = 0x0007 // IMAGE_REL_I386_DIR32NB (RVA, no base)
	relocAMD64ADDR64   coff.RelocType = 0x0001 // IMAGE_REL_AMD64_ADDR64 (absolute VA)
	relocAMD64ADDR32NB coff.RelocType = 0x0003 // IMAGE_REL_AMD64_ADDR32NB (RVA, no base)
	relocAMD64REL32    coff.RelocType = 0x0004 // IMAGE_REL_AMD64_REL32 (rip-relative)
)

// An Arch collects the architecture-specific details the synthesizer
// needs: the COFF machine type, pointer width, the jump-stub's opcode
// bytes, which raw relocation type patches the stub's operand, which
// patches an absolute pointer-width value, which patches an RVA, and the
// bit that marks an IAT/ILT entry as an ordinal rather than a name RVA.
type Arch struct {
	Machine        coff.Machine
	PtrWidth       int
	StubBytes      []byte
	StubReloc      coff.RelocType
	AbsReloc       coff.RelocType
	RVAReloc       coff.RelocType
	OrdinalHighBit uint64
}

// stubBytes is "FF 25 00 00 00 00": an indirect jump through a 32-bit
// operand, absolute on x86, rip-relative on x64. Both architectures patch
// the same two-byte-offset operand, just with a different relocation type.
var stubBytes = []byte{0xFF, 0x25, 0x00, 0x00, 0x00, 0x00}

// X86 is the i386 architecture descriptor.
var X86 = Arch{
	Machine:        coff.MachineI386,
	PtrWidth:       4,
	StubBytes:      stubBytes,
	StubReloc:      relocI386DIR32,
	AbsReloc:       relocI386DIR32,
	RVAReloc:       relocI386DIR32NB,
	OrdinalHighBit: 0x80000000,
}

// X64 is the amd64 architecture descriptor.
var X64 = Arch{
	Machine:        coff.MachineAMD64,
	PtrWidth:       8,
	StubBytes:      stubBytes,
	StubReloc:      relocAMD64REL32,
	AbsReloc:       relocAMD64ADDR64,
	RVAReloc:       relocAMD64ADDR32NB,
	OrdinalHighBit: 0x8000000000000000,
}

// ptrAlign returns the section alignment idata sections use: the
// architecture's pointer width.
func (a Arch) ptrAlign() coff.Align {
	if a.PtrWidth == 8 {
		return coff.Align8
	}
	return coff.Align4
}
