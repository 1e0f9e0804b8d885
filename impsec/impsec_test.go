package impsec_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"sora.dev/implib/impsec"
)

func hasPublic(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestBuildImportDescriptor(t *testing.T) {
	obj, err := impsec.BuildImportDescriptor("KERNEL32.dll", impsec.X86)
	if err != nil {
		t.Fatal(err)
	}
	if !hasPublic(obj.PublicSymbolNames(), "__IMPORT_DESCRIPTOR_KERNEL32.dll") {
		t.Error("expected __IMPORT_DESCRIPTOR_KERNEL32.dll to be public")
	}
	if _, err := obj.RawBytes(); err != nil {
		t.Errorf("RawBytes: %v", err)
	}
}

func TestBuildNullDescriptor(t *testing.T) {
	obj, err := impsec.BuildNullDescriptor(impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	if names := obj.PublicSymbolNames(); len(names) != 0 {
		t.Errorf("expected no public symbols, got %v", names)
	}
	if _, err := obj.RawBytes(); err != nil {
		t.Errorf("RawBytes: %v", err)
	}
}

func TestBuildNullThunk(t *testing.T) {
	obj, err := impsec.BuildNullThunk("KERNEL32.dll", impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	if !hasPublic(obj.PublicSymbolNames(), "KERNEL32.dll_NULL_THUNK_DATA") {
		t.Error("expected KERNEL32.dll_NULL_THUNK_DATA to be public")
	}
	raw, err := obj.RawBytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, make([]byte, 8)) {
		t.Error("expected an 8-byte zero word for the x64 null thunk")
	}
}

func TestBuildImportByNameThunk(t *testing.T) {
	obj, err := impsec.BuildImportByNameThunk("__imp__Sleep@4", "_Sleep@4", "Sleep", impsec.X86)
	if err != nil {
		t.Fatal(err)
	}
	names := obj.PublicSymbolNames()
	if !hasPublic(names, "__imp__Sleep@4") {
		t.Errorf("expected __imp__Sleep@4 to be public, got %v", names)
	}
	if !hasPublic(names, "_Sleep@4") {
		t.Errorf("expected _Sleep@4 (the jump stub) to be public, got %v", names)
	}
	if _, err := obj.RawBytes(); err != nil {
		t.Errorf("RawBytes: %v", err)
	}
}

func TestBuildImportByNameThunkNoStub(t *testing.T) {
	obj, err := impsec.BuildImportByNameThunk("__imp_Sleep", "", "Sleep", impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	names := obj.PublicSymbolNames()
	if len(names) != 1 || names[0] != "__imp_Sleep" {
		t.Errorf("expected exactly [__imp_Sleep] public, got %v", names)
	}
}

func TestBuildImportByOrdinalThunk(t *testing.T) {
	obj, err := impsec.BuildImportByOrdinalThunk("__imp_Foo", "", 42, impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	names := obj.PublicSymbolNames()
	if len(names) != 1 || names[0] != "__imp_Foo" {
		t.Errorf("expected exactly [__imp_Foo] public, got %v", names)
	}
	raw, err := obj.RawBytes()
	if err != nil {
		t.Fatal(err)
	}

	want := make([]byte, 8)
	binary.LittleEndian.PutUint64(want, 42|impsec.X64.OrdinalHighBit)
	if !bytes.Contains(raw, want) {
		t.Error("expected the ordinal-with-high-bit pointer word in the IAT/ILT entries")
	}
}
