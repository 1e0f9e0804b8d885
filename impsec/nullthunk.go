package impsec

import "sora.dev/implib/coff"

// BuildNullThunk builds the object that terminates a DLL's import address
// table and import lookup table: a single zero pointer-width word in each
// of .idata$5 and .idata$4. Because the linker concatenates every member's
// .idata$5 sections into one IAT (and likewise for .idata$4 into one ILT),
// appending this member last for a DLL places its zero word immediately
// after every thunk the builder has added for that DLL, terminating both
// chains.
//
// <dll>_NULL_THUNK_DATA is defined public at offset 0 of .idata$5; the
// head descriptor's OriginalFirstThunk and FirstThunk fields both relocate
// against it.
func BuildNullThunk(dllName string, arch Arch) (*coff.Object, error) {
	obj := coff.NewObject(arch.Machine)

	sec5, err := coff.NewSection(".idata$5")
	if err != nil {
		return nil, err
	}
	sec5.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec5)
	sec5.AppendData(zero(arch.PtrWidth), nil)
	obj.AddSymbol(sec5, 0, dllName+"_NULL_THUNK_DATA", coff.StorageExternal, 0)
	defineSectionSymbol(obj, sec5)

	sec4, err := coff.NewSection(".idata$4")
	if err != nil {
		return nil, err
	}
	sec4.SetCharacteristics(idataFlags, arch.ptrAlign())
	obj.AppendSection(sec4)
	sec4.AppendData(zero(arch.PtrWidth), nil)
	defineSectionSymbol(obj, sec4)

	if err := obj.PushRelocs(); err != nil {
		return nil, err
	}
	return obj, nil
}
