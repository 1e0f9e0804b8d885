package coff_test

import (
	"encoding/binary"
	"testing"

	"sora.dev/implib/coff"
)

func TestNewSectionNameTooLong(t *testing.T) {
	if _, err := coff.NewSection("toolongname"); err == nil {
		t.Error("expected an error for a section name longer than 8 bytes")
	}
}

func TestObjectRawBytesMinimal(t *testing.T) {
	obj := coff.NewObject(coff.MachineI386)
	sec, err := coff.NewSection(".text")
	if err != nil {
		t.Fatal(err)
	}
	sec.SetCharacteristics(coff.SectionRead|coff.SectionExecute|coff.SectionCode, coff.Align4)
	obj.AppendSection(sec)
	sec.AppendData([]byte{0x90, 0x90, 0x90, 0x90}, nil)

	if err := obj.PushRelocs(); err != nil {
		t.Fatal(err)
	}
	raw, err := obj.RawBytes()
	if err != nil {
		t.Fatal(err)
	}

	const want = 20 + 40 + 4 + 4 // file header + one section header + 4 bytes data + empty string table
	if len(raw) != want {
		t.Fatalf("got %d bytes, expected %d", len(raw), want)
	}
	if m := binary.LittleEndian.Uint16(raw[0:2]); m != uint16(coff.MachineI386) {
		t.Errorf("Machine: got %#x, expected %#x", m, coff.MachineI386)
	}
	if n := binary.LittleEndian.Uint16(raw[2:4]); n != 1 {
		t.Errorf("NumberOfSections: got %d, expected 1", n)
	}
	if symOff := binary.LittleEndian.Uint32(raw[8:12]); symOff != 64 {
		t.Errorf("PointerToSymbolTable: got %d, expected 64", symOff)
	}
	if numSym := binary.LittleEndian.Uint32(raw[12:16]); numSym != 0 {
		t.Errorf("NumberOfSymbols: got %d, expected 0", numSym)
	}
	if strtabLen := binary.LittleEndian.Uint32(raw[64:68]); strtabLen != 4 {
		t.Errorf("trailing string table length: got %d, expected 4", strtabLen)
	}
}

func TestObjectRawBytesRelocationAndSymbol(t *testing.T) {
	obj := coff.NewObject(coff.MachineAMD64)
	sec, err := coff.NewSection(".data")
	if err != nil {
		t.Fatal(err)
	}
	sec.SetCharacteristics(coff.SectionRead|coff.SectionWrite, coff.Align4)
	obj.AppendSection(sec)
	sec.AppendData([]byte{0, 0, 0, 0}, []coff.Relocation{
		{Symbol: "foo", Offset: 0, Type: coff.RelocType(1)},
	})

	if err := obj.PushRelocs(); err != nil {
		t.Fatal(err)
	}
	raw, err := obj.RawBytes()
	if err != nil {
		t.Fatal(err)
	}

	const want = 20 + 40 + 4 + 10 + 18 + 4
	if len(raw) != want {
		t.Fatalf("got %d bytes, expected %d", len(raw), want)
	}

	// Section header characteristics: read | write, align 4.
	wantChar := uint32(0x40000000) | uint32(0x80000000) | uint32(3)<<20
	if c := binary.LittleEndian.Uint32(raw[56:60]); c != wantChar {
		t.Errorf("section characteristics: got %#x, expected %#x", c, wantChar)
	}
	if sz := binary.LittleEndian.Uint32(raw[36:40]); sz != 4 {
		t.Errorf("SizeOfRawData: got %d, expected 4", sz)
	}
	if ptr := binary.LittleEndian.Uint32(raw[40:44]); ptr != 60 {
		t.Errorf("PointerToRawData: got %d, expected 60", ptr)
	}
	if relocPtr := binary.LittleEndian.Uint32(raw[44:48]); relocPtr != 64 {
		t.Errorf("PointerToRelocations: got %d, expected 64", relocPtr)
	}
	if nReloc := binary.LittleEndian.Uint16(raw[52:54]); nReloc != 1 {
		t.Errorf("NumberOfRelocations: got %d, expected 1", nReloc)
	}

	// Relocation entry at file offset 64: VirtualAddress 0, SymbolTableIndex
	// 0 (the only symbol, "foo"), Type 1.
	if va := binary.LittleEndian.Uint32(raw[64:68]); va != 0 {
		t.Errorf("relocation VirtualAddress: got %d, expected 0", va)
	}
	if symIdx := binary.LittleEndian.Uint32(raw[68:72]); symIdx != 0 {
		t.Errorf("relocation SymbolTableIndex: got %d, expected 0", symIdx)
	}
	if typ := binary.LittleEndian.Uint16(raw[72:74]); typ != 1 {
		t.Errorf("relocation Type: got %d, expected 1", typ)
	}

	// Symbol table row at file offset 74: name "foo" inline, undefined
	// section, external storage (2), no aux records.
	if name := raw[74:78]; string(name) != "foo\x00" {
		t.Errorf("symbol name: got %q, expected %q", name, "foo\x00")
	}
	if sect := binary.LittleEndian.Uint16(raw[86:88]); sect != 0 {
		t.Errorf("symbol section number: got %d, expected 0 (undefined)", sect)
	}
	if storage := raw[90]; storage != 2 {
		t.Errorf("symbol storage class: got %d, expected 2", storage)
	}
	if numSym := binary.LittleEndian.Uint32(raw[12:16]); numSym != 1 {
		t.Errorf("NumberOfSymbols: got %d, expected 1", numSym)
	}
}

func TestObjectRawBytesBeforePushRelocs(t *testing.T) {
	obj := coff.NewObject(coff.MachineI386)
	if _, err := obj.RawBytes(); err == nil {
		t.Error("expected an error calling RawBytes before PushRelocs")
	}
}
