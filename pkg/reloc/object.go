package reloc

import (
	"debug/elf"
	"fmt"
	"sort"
	"unsafe"

	"github.com/haldor-asm/relocore/pkg/utils"
)

// Object is the parsed, read-only view of one ELF32 relocatable member
// (spec.md §3 "ELF Object"). It exclusively owns its parsed tables;
// section payloads borrow slices of the member's backing buffer.
type Object struct {
	Name string

	sections []*Section
	// relSectionOf maps a target section's index to the REL section that
	// relocates it, mirroring the teacher's RelsecIdx bookkeeping.
	relSectionOf map[int]*Section

	symbols    []elfSymbol       // full symtab, index-addressable
	exportable []*RelocatorSymbol // subset: global OBJECT/FUNC symbols

	// relocationOffsets holds each section's laid-out address for the
	// current pass, indexed by section index (spec.md §4.4).
	relocationOffsets []uint64
}

// parseObject implements the ELF Object Model (spec.md §4.2): a
// structural failure here is an "Input structural" error (spec.md §7),
// returned rather than panicking, since the host assembler must be able
// to reject one bad input file without aborting the whole run.
func parseObject(name string, contents []byte) (*Object, error) {
	if len(contents) < int(unsafe.Sizeof(ehdr32{})) {
		return nil, fmt.Errorf("%s: file too small to be an ELF32 object", name)
	}
	if !hasELFMagic(contents) {
		return nil, fmt.Errorf("%s: not an ELF file", name)
	}
	if contents[elf.EI_CLASS] != uint8(elf.ELFCLASS32) {
		return nil, fmt.Errorf("%s: not ELF32", name)
	}

	ehdr := utils.Read[ehdr32](contents)
	if elf.Type(ehdr.Type) != elf.ET_REL {
		return nil, fmt.Errorf("%s: not a relocatable object (ET_REL)", name)
	}
	if ehdr.PhNum != 0 {
		return nil, fmt.Errorf("%s: relocatable object has program segments", name)
	}

	if int(ehdr.ShOff) >= len(contents) {
		return nil, fmt.Errorf("%s: section header offset out of range", name)
	}

	shdrBytes := contents[ehdr.ShOff:]
	rawShdrs := make([]shdr32, 0, ehdr.ShNum)
	for i := 0; i < int(ehdr.ShNum); i++ {
		off := i * int(unsafe.Sizeof(shdr32{}))
		if off+int(unsafe.Sizeof(shdr32{})) > len(shdrBytes) {
			return nil, fmt.Errorf("%s: truncated section header table", name)
		}
		rawShdrs = append(rawShdrs, utils.Read[shdr32](shdrBytes[off:]))
	}

	bytesFromShdr := func(s *shdr32) ([]byte, error) {
		end := uint64(s.Offset) + uint64(s.Size)
		if end > uint64(len(contents)) {
			return nil, fmt.Errorf("%s: section out of range (offset %d size %d)", name, s.Offset, s.Size)
		}
		return contents[s.Offset:end], nil
	}

	var shstrtab []byte
	if int(ehdr.ShStrndx) < len(rawShdrs) {
		var err error
		shstrtab, err = bytesFromShdr(&rawShdrs[ehdr.ShStrndx])
		if err != nil {
			return nil, err
		}
	}

	obj := &Object{
		Name:              name,
		relSectionOf:      make(map[int]*Section),
		relocationOffsets: make([]uint64, len(rawShdrs)),
	}

	obj.sections = make([]*Section, len(rawShdrs))
	var symtabIdx = -1
	for i := range rawShdrs {
		raw := &rawShdrs[i]
		switch elf.SectionType(raw.Type) {
		case elf.SHT_SYMTAB:
			symtabIdx = i
			continue
		case elf.SHT_STRTAB, elf.SHT_NULL:
			continue
		}

		sec := &Section{
			index: i,
			Name:  getStrtabName(shstrtab, raw.Name),
			Type:  raw.Type,
			Flags: raw.Flags,
			Align: uint64(raw.AddrAlign),
			Size:  uint64(raw.Size),
			Info:  raw.Info,
		}

		if raw.Type == uint32(elf.SHT_PROGBITS) {
			payload, err := bytesFromShdr(raw)
			if err != nil {
				return nil, err
			}
			sec.Payload = payload
		}

		obj.sections[i] = sec
	}

	for i := range rawShdrs {
		raw := &rawShdrs[i]
		if raw.Type != uint32(elf.SHT_REL) {
			continue
		}
		target := int(raw.Info)
		if target < 0 || target >= len(obj.sections) || obj.sections[target] == nil {
			return nil, fmt.Errorf("%s: relocation section references invalid target section %d", name, target)
		}
		relBytes, err := bytesFromShdr(raw)
		if err != nil {
			return nil, err
		}
		relSec := &Section{index: i, Type: raw.Type, Info: raw.Info}
		relSec.relocs = decodeRels(relBytes)
		// Sorted by offset so relocateObject's output is deterministic
		// regardless of the emitting assembler's REL table order,
		// mirroring the teacher's sortRelocations.
		sort.SliceStable(relSec.relocs, func(i, j int) bool {
			return relSec.relocs[i].Offset < relSec.relocs[j].Offset
		})
		obj.relSectionOf[target] = relSec
	}

	if symtabIdx >= 0 {
		symtab := &rawShdrs[symtabIdx]
		symBytes, err := bytesFromShdr(symtab)
		if err != nil {
			return nil, err
		}
		var strtab []byte
		if int(symtab.Link) < len(rawShdrs) {
			strtab, err = bytesFromShdr(&rawShdrs[symtab.Link])
			if err != nil {
				return nil, err
			}
		}

		count := len(symBytes) / int(unsafe.Sizeof(sym32{}))
		obj.symbols = make([]elfSymbol, count)
		for i := 0; i < count; i++ {
			off := i * int(unsafe.Sizeof(sym32{}))
			raw := utils.Read[sym32](symBytes[off:])

			sym := elfSymbol{
				name:         lowercaseASCII(getStrtabName(strtab, raw.Name)),
				value:        uint64(raw.Value),
				size:         uint64(raw.Size),
				bind:         raw.bind(),
				shndx:        raw.Shndx,
				sectionIndex: int(raw.Shndx),
			}
			switch elf.SymType(raw.typ()) {
			case elf.STT_OBJECT:
				sym.typ = SymObject
			case elf.STT_FUNC:
				sym.typ = SymFunc
			default:
				sym.typ = SymNotype
			}
			obj.symbols[i] = sym

			if sym.exportable() {
				obj.exportable = append(obj.exportable, &RelocatorSymbol{
					Name:            sym.name,
					Shndx:           sym.shndx,
					SectionIndex:    sym.sectionIndex,
					PreLayoutValue:  sym.value,
					PostLayoutValue: 0,
					Size:            sym.size,
					Type:            sym.typ,
				})
			}
		}
	}

	return obj, nil
}

func decodeRels(data []byte) []rel32 {
	count := len(data) / int(unsafe.Sizeof(rel32{}))
	out := make([]rel32, count)
	for i := 0; i < count; i++ {
		off := i * int(unsafe.Sizeof(rel32{}))
		out[i] = utils.Read[rel32](data[off:])
	}
	return out
}
