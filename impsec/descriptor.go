package impsec

import "sora.dev/implib/coff"

// BuildImportDescriptor builds the "head" object for a DLL: the
// IMAGE_IMPORT_DESCRIPTOR record that a consuming image's loader walks to
// locate the DLL's name and its import address table.
//
// The descriptor is 20 bytes, laid out exactly as IMAGE_IMPORT_DESCRIPTOR:
// OriginalFirstThunk at offset 0, TimeDateStamp at 4, ForwarderChain at 8,
// Name at 12, FirstThunk at 16. TimeDateStamp and ForwarderChain are left
// zero. OriginalFirstThunk and FirstThunk both relocate against
// <dll>_NULL_THUNK_DATA: this builder does not populate a distinct
// lookup-table chain, so both the ILT and IAT start (and, for a DLL with
// no imports yet added, immediately end) at the null thunk. Name relocates
// against this object's own .idata$6 section, which holds the DLL's name
// as a NUL-terminated string.
//
// The object also defines __IMPORT_DESCRIPTOR_<dll> as a public symbol at
// offset 0 of .idata$2: the name by which a CRT's DLL initialization code
// locates this descriptor once every import library is linked together.
func BuildImportDescriptor(dllName string, arch Arch) (*coff.Object, error) {
	obj := coff.NewObject(arch.Machine)

	sec2, err := coff.NewSection(".idata$2")
	if err != nil {
		return nil, err
	}
	sec2.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec2)

	sec6, err := coff.NewSection(".idata$6")
	if err != nil {
		return nil, err
	}
	sec6.SetCharacteristics(idataFlags, coff.Align2)
	obj.AppendSection(sec6)

	nameBytes := append([]byte(dllName), 0)
	sec6.AppendData(nameBytes, nil)

	nullThunkSym := dllName + "_NULL_THUNK_DATA"
	data := zero(20)
	relocs := []coff.Relocation{
		{Symbol: nullThunkSym, Offset: 0, Type: arch.RVAReloc},  // OriginalFirstThunk
		{Symbol: sec6.Name(), Offset: 12, Type: arch.RVAReloc},  // Name
		{Symbol: nullThunkSym, Offset: 16, Type: arch.RVAReloc}, // FirstThunk
	}
	sec2.AppendData(data, relocs)

	obj.AddSymbol(sec2, 0, "__IMPORT_DESCRIPTOR_"+dllName, coff.StorageExternal, 0)
	defineSectionSymbol(obj, sec2)
	defineSectionSymbol(obj, sec6)

	if err := obj.PushRelocs(); err != nil {
		return nil, err
	}
	return obj, nil
}

// BuildNullDescriptor builds the sentinel object that terminates the
// image's array of IMAGE_IMPORT_DESCRIPTOR records: a single .idata$3
// section holding 20 zero bytes and carrying no relocations.
func BuildNullDescriptor(arch Arch) (*coff.Object, error) {
	obj := coff.NewObject(arch.Machine)

	sec3, err := coff.NewSection(".idata$3")
	if err != nil {
		return nil, err
	}
	sec3.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec3)
	sec3.AppendData(zero(20), nil)
	defineSectionSymbol(obj, sec3)

	if err := obj.PushRelocs(); err != nil {
		return nil, err
	}
	return obj, nil
}
