package impsec

import (
	"encoding/binary"

	"sora.dev/implib/coff"
)

// ptrValue encodes value as a little-endian, pointer-width-byte word.
func ptrValue(width int, value uint64) []byte {
	buf := make([]byte, width)
	if width == 8 {
		binary.LittleEndian.PutUint64(buf, value)
	} else {
		binary.LittleEndian.PutUint32(buf, uint32(value))
	}
	return buf
}

// hintNameBytes encodes a .idata$6 hint/name entry: a 2-byte hint followed
// by the NUL-terminated export name, padded with one more zero byte if the
// total length would be odd.
func hintNameBytes(hint uint16, exportName string) []byte {
	n := 2 + len(exportName) + 1
	if n%2 != 0 {
		n++
	}
	buf := make([]byte, n)
	binary.LittleEndian.PutUint16(buf[0:2], hint)
	copy(buf[2:], exportName)
	return buf
}

// buildThunk assembles one import thunk member: an optional .text jump
// stub (whose thunkName symbol is public), an IAT entry (.idata$5,
// carrying the public pubName symbol),
// an ILT entry (.idata$4), and, for a by-name import, the hint/name pair
// (.idata$6) both entries relocate against.
func buildThunk(pubName, thunkName string, named bool, exportName string, hint, ordinal uint16, arch Arch) (*coff.Object, error) {
	obj := coff.NewObject(arch.Machine)

	if thunkName != "" {
		secText, err := coff.NewSection(".text")
		if err != nil {
			return nil, err
		}
		secText.SetCharacteristics(coff.SectionRead|coff.SectionExecute|coff.SectionCode, coff.Align16)
		obj.AppendSection(secText)
		stub := make([]byte, len(arch.StubBytes))
		copy(stub, arch.StubBytes)
		secText.AppendData(stub, []coff.Relocation{
			{Symbol: pubName, Offset: 2, Type: arch.StubReloc},
		})
		obj.AddSymbol(secText, 0, thunkName, coff.StorageExternal, 0)
		defineSectionSymbol(obj, secText)
	}

	var sec6 *coff.Section
	if named {
		var err error
		sec6, err = coff.NewSection(".idata$6")
		if err != nil {
			return nil, err
		}
		sec6.SetCharacteristics(idataFlags, coff.Align2)
		obj.AppendSection(sec6)
		sec6.AppendData(hintNameBytes(hint, exportName), nil)
		defineSectionSymbol(obj, sec6)
	}

	var value uint64
	var nameReloc []coff.Relocation
	if named {
		nameReloc = []coff.Relocation{{Symbol: sec6.Name(), Offset: 0, Type: arch.RVAReloc}}
	} else {
		value = uint64(ordinal) | arch.OrdinalHighBit
	}

	sec5, err := coff.NewSection(".idata$5")
	if err != nil {
		return nil, err
	}
	sec5.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec5)
	sec5.AppendData(ptrValue(arch.PtrWidth, value), nameReloc)
	obj.AddSymbol(sec5, 0, pubName, coff.StorageExternal, 0)
	defineSectionSymbol(obj, sec5)

	sec4, err := coff.NewSection(".idata$4")
	if err != nil {
		return nil, err
	}
	sec4.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec4)
	sec4.AppendData(ptrValue(arch.PtrWidth, value), nameReloc)
	defineSectionSymbol(obj, sec4)

	if err := obj.PushRelocs(); err != nil {
		return nil, err
	}
	return obj, nil
}

// BuildImportByNameThunk builds a thunk that imports exportName by name,
// with hint 0. pubName is the __imp_ symbol defined at offset 0 of
// .idata$5; thunkName, if non-empty, names the callable .text jump stub.
func BuildImportByNameThunk(pubName, thunkName, exportName string, arch Arch) (*coff.Object, error) {
	return buildThunk(pubName, thunkName, true, exportName, 0, 0, arch)
}

// BuildImportThunkWithHint is BuildImportByNameThunk with an explicit
// ordinal hint, used when the caller already knows the export's position
// in the DLL's export table and wants to save the loader a binary search.
func BuildImportThunkWithHint(pubName, thunkName, exportName string, hint uint16, arch Arch) (*coff.Object, error) {
	return buildThunk(pubName, thunkName, true, exportName, hint, 0, arch)
}

// BuildImportByOrdinalThunk builds a thunk that imports an export by
// ordinal rather than by name: the IAT/ILT entry is the ordinal with the
// architecture's high bit set, and no .idata$6 hint/name pair is emitted.
func BuildImportByOrdinalThunk(pubName, thunkName string, ordinal uint16, arch Arch) (*coff.Object, error) {
	return buildThunk(pubName, thunkName, false, "", 0, ordinal, arch)
}
