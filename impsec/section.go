package impsec

import "sora.dev/implib/coff"

// idataFlags is the characteristics every .idata$N data section shares:
// readable and writable, since the loader patches these in place.
const idataFlags = coff.SectionRead | coff.SectionWrite

// defineSectionSymbol registers the static symbol every section in this
// package's output carries to describe itself: name equal to the section
// name, value 0, one auxiliary record built by Section.AuxSymbolData. It
// is both documentation (dumping the object shows a symbol per section,
// matching what a real COFF object looks like) and a relocation target:
// relocations that need to address "the start of this section" within the
// same object use the section's own name as the symbol.
func defineSectionSymbol(obj *coff.Object, s *coff.Section) {
	obj.AddSymbol(s, 0, s.Name(), coff.StorageStatic, 1)
	obj.AddAuxData(s.AuxSymbolData(nil, 0))
}

func zero(n int) []byte { return make([]byte, n) }
