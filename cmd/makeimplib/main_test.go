package main

import (
	"encoding/json"
	"testing"

	"sora.dev/implib/impsec"
)

func TestArchFieldUnmarshalJSON(t *testing.T) {
	cases := []struct {
		json string
		want impsec.Arch
	}{
		{`{"arch": 64}`, impsec.X64},
		{`{"arch": 32}`, impsec.X86},
		{`{"arch": "x64"}`, impsec.X64},
		{`{"arch": "x86"}`, impsec.X86},
	}
	for _, c := range cases {
		var rec inputRecord
		if err := json.Unmarshal([]byte(c.json), &rec); err != nil {
			t.Fatalf("%s: %v", c.json, err)
		}
		got, err := resolveArch(rec.Arch)
		if err != nil {
			t.Fatalf("%s: %v", c.json, err)
		}
		if got.Machine != c.want.Machine {
			t.Errorf("%s: got machine %#x, expected %#x", c.json, got.Machine, c.want.Machine)
		}
	}
}

func TestResolveArchUnknownString(t *testing.T) {
	var rec inputRecord
	if err := json.Unmarshal([]byte(`{"arch": "sparc"}`), &rec); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveArch(rec.Arch); err == nil {
		t.Error("expected an error for an unknown architecture string")
	}
}

func TestAddSymbolMissingNameAndOrdinal(t *testing.T) {
	sym := symbolRecord{PubName: "__imp_Foo"}
	if err := addSymbol(nil, sym); err == nil {
		t.Error("expected an error when a symbol has neither name nor ordinal")
	}
}
