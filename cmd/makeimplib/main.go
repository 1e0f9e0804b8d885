// Command makeimplib builds a Windows import library from a JSON
// description of a DLL's exports: a target architecture, the DLL's name,
// and the list of symbols to import by name, by name with an export-table
// hint, or by ordinal.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"sora.dev/implib/implib"
	"sora.dev/implib/impsec"
)

// symbolRecord is one entry of the input JSON's "symbols" array.
type symbolRecord struct {
	PubName string  `json:"pubname"`
	Thunk   string  `json:"thunk,omitempty"`
	Name    string  `json:"name,omitempty"`
	Ord     *uint16 `json:"ord,omitempty"`
	Hint    *uint16 `json:"hint,omitempty"`
	CConv   string  `json:"cconv,omitempty"`
}

// archField holds the input JSON's "arch" field, which the original
// MakeImpLib tool reads as the number 32 or 64 (`int arch = j["arch"]`).
// This accepts that numeric form directly, plus a few string aliases as a
// convenience on top of it.
type archField struct {
	num    int
	str    string
	numSet bool
}

func (a *archField) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.num); err == nil {
		a.numSet = true
		return nil
	}
	return json.Unmarshal(data, &a.str)
}

// inputRecord is the top-level shape of the input JSON document.
type inputRecord struct {
	DLLName string         `json:"dllname"`
	Arch    archField      `json:"arch"`
	Symbols []symbolRecord `json:"symbols"`
}

// resolveArch matches the original's dispatch exactly: arch 64 selects
// x64, anything else (including the documented 32) selects x86. The
// string aliases are an addition on top of that numeric contract.
func resolveArch(a archField) (impsec.Arch, error) {
	if a.numSet {
		if a.num == 64 {
			return impsec.X64, nil
		}
		return impsec.X86, nil
	}
	switch strings.ToLower(a.str) {
	case "x86", "i386", "386":
		return impsec.X86, nil
	case "x64", "amd64", "x86_64":
		return impsec.X64, nil
	default:
		return impsec.Arch{}, fmt.Errorf("unknown architecture %q", a.str)
	}
}

// addSymbol dispatches one symbol record to the builder method matching
// the fields it set: ord takes precedence over hint, hint over a plain
// by-name import. CConv is accepted (matching the input contract) but not
// otherwise used: the jump stub's shape does not depend on it.
func addSymbol(b *implib.Builder, sym symbolRecord) error {
	if sym.Ord == nil && sym.Name == "" {
		return errors.New("missing both name and ordinal")
	}
	switch {
	case sym.Ord != nil:
		return b.AddByOrdinal(sym.PubName, sym.Thunk, *sym.Ord)
	case sym.Hint != nil:
		return b.AddByNameWithHint(sym.PubName, sym.Thunk, sym.Name, *sym.Hint)
	default:
		return b.AddByName(sym.PubName, sym.Thunk, sym.Name)
	}
}

func mainE() error {
	var output string
	flag.StringVar(&output, "output", "", "Output import library file")
	flag.Parse()
	if output == "" {
		return errors.New("flag -output is required")
	}
	args := flag.Args()
	if len(args) != 1 {
		return fmt.Errorf("got %d arguments, expected 1", len(args))
	}
	input := args[0]

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	var rec inputRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if rec.DLLName == "" {
		return fmt.Errorf("%s: dllname is required", input)
	}

	arch, err := resolveArch(rec.Arch)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	b, err := implib.New(rec.DLLName, arch)
	if err != nil {
		return err
	}
	for _, sym := range rec.Symbols {
		if err := addSymbol(b, sym); err != nil {
			return fmt.Errorf("%s: symbol %q: %w", input, sym.PubName, err)
		}
	}
	if err := b.Build(); err != nil {
		return err
	}
	raw, err := b.RawBytes()
	if err != nil {
		return err
	}

	fp, err := os.Create(output)
	if err != nil {
		return err
	}
	defer fp.Close()
	if _, err := fp.Write(raw); err != nil {
		return err
	}
	return fp.Close() // Double-close is OK
}

func main() {
	if err := mainE(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
