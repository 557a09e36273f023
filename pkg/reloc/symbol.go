package reloc

import "debug/elf"

// elfSymbol is the parsed, read-only view of one entry in an object's
// symbol table (spec.md §3), addressable by its original symtab index —
// relocation entries reference symbols this way, including local and
// STT_SECTION symbols that never get a RelocatorSymbol record.
type elfSymbol struct {
	name         string // ASCII-lowercased (spec.md §3, §9 "Case folding")
	value        uint64
	size         uint64
	bind         uint8
	typ          SymbolType
	shndx        uint16
	sectionIndex int // meaningful only when shndx is not ABS/COMMON/UNDEF
}

func (s *elfSymbol) isAbs() bool    { return s.shndx == uint16(elf.SHN_ABS) }
func (s *elfSymbol) isCommon() bool { return s.shndx == uint16(elf.SHN_COMMON) }
func (s *elfSymbol) isUndef() bool  { return s.shndx == uint16(elf.SHN_UNDEF) }

// isExternal matches spec.md §4.5 step 5: a symbol is external when it is
// both untyped and undefined.
func (s *elfSymbol) isExternal() bool {
	return s.typ == SymNotype && s.isUndef()
}

// exportable matches spec.md §3: "core treats all global OBJECT and FUNC
// symbols as exportable".
func (s *elfSymbol) exportable() bool {
	return s.bind == uint8(elf.STB_GLOBAL) && (s.typ == SymObject || s.typ == SymFunc)
}

// lowercaseASCII folds A-Z to a-z byte-wise; every other byte, including
// non-ASCII ones, is left unchanged.
func lowercaseASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// RelocatorSymbol is the core's own per-symbol bookkeeping (spec.md §3),
// one per exportable ELF symbol.
type RelocatorSymbol struct {
	Name  string // lowercased
	Shndx uint16
	// SectionIndex is meaningful only when Shndx is not ABS/COMMON.
	SectionIndex int
	// PreLayoutValue is the symbol's raw ELF value: a section-relative
	// offset, an absolute address (ABS), or the required alignment
	// (COMMON).
	PreLayoutValue uint64
	// PostLayoutValue is the address computed by the most recent
	// finalisation pass (spec.md §4.6); zero before the first pass.
	PostLayoutValue uint64
	Size            uint64
	Type            SymbolType

	// Label is the bound global-label handle, nil until the binder
	// successfully claims it (spec.md §4.3).
	Label SymbolLabel
	// Info mirrors the backend-supplied TargetSymbolInfo recorded at
	// bind time, kept here for diagnostics/tests independent of Label.
	Info any
}
