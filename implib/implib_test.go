package implib_test

import (
	"testing"

	"sora.dev/implib/implib"
	"sora.dev/implib/impsec"
)

func TestBuilderRoundTrip(t *testing.T) {
	b, err := implib.New("KERNEL32.dll", impsec.X86)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddByName("__imp__Sleep@4", "_Sleep@4", "Sleep"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddByNameWithHint("__imp__GetLastError@0", "_GetLastError@0", "GetLastError", 7); err != nil {
		t.Fatal(err)
	}
	if err := b.AddByOrdinal("__imp_Foo", "", 99); err != nil {
		t.Fatal(err)
	}
	if err := b.Build(); err != nil {
		t.Fatal(err)
	}

	raw, err := b.RawBytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[:8]) != "!<arch>\n" {
		t.Errorf("signature: got %q, expected %q", raw[:8], "!<arch>\n")
	}

	n, err := b.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(raw) {
		t.Errorf("Len() = %d, len(RawBytes()) = %d", n, len(raw))
	}

	if err := b.AddByName("__imp_Bar", "", "Bar"); err == nil {
		t.Error("expected an error adding an import after Build")
	}
}

func TestRawBytesBeforeBuild(t *testing.T) {
	b, err := implib.New("USER32.dll", impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.RawBytes(); err == nil {
		t.Error("expected an error calling RawBytes before Build")
	}
	if _, err := b.Len(); err == nil {
		t.Error("expected an error calling Len before Build")
	}
}

func TestBuilderWithNoImports(t *testing.T) {
	b, err := implib.New("NTDLL.dll", impsec.X64)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Build(); err != nil {
		t.Fatal(err)
	}
	raw, err := b.RawBytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[:8]) != "!<arch>\n" {
		t.Errorf("signature: got %q, expected %q", raw[:8], "!<arch>\n")
	}
}
