package reloc

import (
	"debug/elf"

	"github.com/haldor-asm/relocore/pkg/utils"
)

// relocateObject implements the Relocator (spec.md §4.5) for a single
// object: every PROGBITS section with a companion REL section gets its
// opcodes patched against a fresh copy of its pristine payload (spec.md §5
// "Mutation discipline"), which is then copied into the output buffer at
// the section's address for this pass.
func relocateObject(e *Engine, obj *Object) {
	for _, sec := range obj.sections {
		if sec == nil {
			continue
		}
		relSec, ok := obj.relSectionOf[sec.index]
		if !ok || sec.Type != uint32(elf.SHT_PROGBITS) {
			continue
		}

		finalAddr := obj.relocationOffsets[sec.index]
		patched := append([]byte(nil), sec.Payload...)

		for _, rel := range relSec.relocs {
			symIndex := rel.symIndex()
			if symIndex < 1 {
				e.diag.warnf("%s: %s: relocation entry has invalid symbol index %d", obj.Name, sec.Name, symIndex)
				continue
			}
			if int(symIndex) >= len(obj.symbols) {
				e.diag.warnf("%s: %s: relocation entry references out-of-range symbol index %d", obj.Name, sec.Name, symIndex)
				continue
			}
			offset := uint64(rel.Offset)
			if offset+4 > uint64(len(patched)) {
				e.diag.warnf("%s: %s: relocation offset %#x out of range", obj.Name, sec.Name, offset)
				continue
			}

			s := &obj.symbols[symIndex]

			data := &RelocationData{
				Opcode:       utils.Read[uint32](patched[offset:]),
				OpcodeOffset: offset + finalAddr,
			}
			e.Backend.SetSymbolAddress(data, s.value, s.typ)

			if s.isExternal() {
				label, err := e.SymTable.Lookup(s.name)
				if err != nil {
					e.diag.errorf("%s: %s: invalid external symbol %q: %v", obj.Name, sec.Name, s.name, err)
					continue
				}
				if !label.IsDefined() {
					e.diag.errorf("%s: %s: undefined external symbol %q", obj.Name, sec.Name, s.name)
					continue
				}
				data.RelocationBase = label.Value()
				if label.IsData() {
					data.TargetSymbolType = SymObject
				} else if label.IsFunction() {
					data.TargetSymbolType = SymFunc
				}
				data.TargetSymbolInfo = label.Info()
			} else if s.isAbs() {
				// An ABS symbol's value is already a final address, not a
				// section-relative offset; there is no relocationOffsets
				// entry for SHN_ABS to index.
				data.RelocationBase = data.SymbolAddress
			} else if s.sectionIndex < 0 || s.sectionIndex >= len(obj.relocationOffsets) {
				// SHN_COMMON and any other non-ABS, non-external shndx
				// this core doesn't lay out a section for (spec.md §5
				// "Failure isolation": one bad relocation must not abort
				// the whole object).
				e.diag.warnf("%s: %s: relocation entry references symbol %q with no laid-out section (shndx %#x)", obj.Name, sec.Name, s.name, s.shndx)
				continue
			} else {
				data.RelocationBase = obj.relocationOffsets[s.sectionIndex] + data.SymbolAddress
			}

			if !e.Backend.RelocateOpcode(rel.relocType(), data) {
				e.diag.errorf("%s: %s: %s", obj.Name, sec.Name, data.ErrorMessage)
				continue
			}

			utils.Write(patched[offset:], data.Opcode)
		}

		base := finalAddr - e.baseAddress
		copy(e.output[base:base+sec.Size], patched)
	}
}
