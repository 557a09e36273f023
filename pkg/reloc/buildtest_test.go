package reloc

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"unsafe"
)

// objectBuilder assembles a minimal, valid ELF32 ET_REL byte image for
// tests, so the scenarios in spec.md §8 can be exercised against real
// parseObject/parseArchive code paths instead of hand-built Object structs.
type objectBuilder struct {
	sections []builtSection
	symbols  []sym32
	symNames []string
	rels     map[int][]rel32
}

type builtSection struct {
	name    string
	typ     uint32
	flags   uint32
	align   uint32
	payload []byte
	size    uint32
}

func newObjectBuilder() *objectBuilder {
	return &objectBuilder{rels: make(map[int][]rel32)}
}

func (b *objectBuilder) addProgbits(name string, align uint32, payload []byte) int {
	b.sections = append(b.sections, builtSection{
		name: name, typ: uint32(elf.SHT_PROGBITS), flags: uint32(elf.SHF_ALLOC),
		align: align, payload: payload, size: uint32(len(payload)),
	})
	return len(b.sections) - 1
}

func (b *objectBuilder) addNobits(name string, align uint32, size uint32) int {
	b.sections = append(b.sections, builtSection{
		name: name, typ: uint32(elf.SHT_NOBITS), flags: uint32(elf.SHF_ALLOC),
		align: align, size: size,
	})
	return len(b.sections) - 1
}

// addGlobalSymbol returns the 1-based symtab index (symtab[0] is always
// the reserved null entry) to pass to addRel.
func (b *objectBuilder) addGlobalSymbol(name string, value, size uint32, typ uint8, shndx uint16) uint32 {
	b.symNames = append(b.symNames, name)
	b.symbols = append(b.symbols, sym32{
		Value: value,
		Size:  size,
		Info:  (uint8(elf.STB_GLOBAL) << 4) | typ,
		Shndx: shndx,
	})
	return uint32(len(b.symbols))
}

// addUndefSymbol adds an STT_NOTYPE/SHN_UNDEF symtab entry for a
// relocation to reference by index; it is never exportable (spec.md §3),
// only resolvable by name through the global symbol table at relocation
// time (spec.md §4.5 step 5).
func (b *objectBuilder) addUndefSymbol(name string) uint32 {
	b.symNames = append(b.symNames, name)
	b.symbols = append(b.symbols, sym32{
		Info:  uint8(elf.STB_GLOBAL) << 4,
		Shndx: uint16(elf.SHN_UNDEF),
	})
	return uint32(len(b.symbols))
}

// addAbsSymbol adds an SHN_ABS symtab entry (a relocation target whose
// value is already a final address, never section-relative).
func (b *objectBuilder) addAbsSymbol(name string, value uint32) uint32 {
	b.symNames = append(b.symNames, name)
	b.symbols = append(b.symbols, sym32{
		Value: value,
		Info:  (uint8(elf.STB_GLOBAL) << 4) | uint8(elf.STT_OBJECT),
		Shndx: uint16(elf.SHN_ABS),
	})
	return uint32(len(b.symbols))
}

func (b *objectBuilder) addRel(targetSectionIdx int, offset uint32, symIndex uint32, relType uint32) {
	b.rels[targetSectionIdx] = append(b.rels[targetSectionIdx], rel32{
		Offset: offset,
		Info:   (symIndex << 8) | (relType & 0xff),
	})
}

func (b *objectBuilder) bytes() []byte {
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	nameOff := func(buf *bytes.Buffer, s string) uint32 {
		off := uint32(buf.Len())
		buf.WriteString(s)
		buf.WriteByte(0)
		return off
	}

	shstrtabName := nameOff(&shstrtab, ".shstrtab")
	secNameOffsets := make([]uint32, len(b.sections))
	for i, s := range b.sections {
		secNameOffsets[i] = nameOff(&shstrtab, s.name)
	}

	var relTargets []int
	var relNameOffsets []uint32
	for secIdx := range b.sections {
		if relocs, ok := b.rels[secIdx]; ok && len(relocs) > 0 {
			relTargets = append(relTargets, secIdx)
			relNameOffsets = append(relNameOffsets, nameOff(&shstrtab, ".rel"+b.sections[secIdx].name))
		}
	}

	symtabName := nameOff(&shstrtab, ".symtab")
	strtabName := nameOff(&shstrtab, ".strtab")

	var strtab bytes.Buffer
	strtab.WriteByte(0)
	symNameOffsets := make([]uint32, len(b.symNames))
	for i, n := range b.symNames {
		symNameOffsets[i] = nameOff(&strtab, n)
	}

	numUser := len(b.sections)
	symtabIdx := 2 + numUser + len(relTargets)
	strtabIdx := symtabIdx + 1
	totalSections := strtabIdx + 1

	type hdr struct {
		name, typ, flags, offset, size, link, info, align, entsize uint32
	}
	hdrs := make([]hdr, totalSections)

	ehdrSize := uint32(unsafe.Sizeof(ehdr32{}))

	var data bytes.Buffer
	place := func(payload []byte) uint32 {
		off := ehdrSize + uint32(data.Len())
		data.Write(payload)
		return off
	}

	hdrs[1] = hdr{name: shstrtabName, typ: uint32(elf.SHT_STRTAB), offset: place(shstrtab.Bytes()), size: uint32(shstrtab.Len()), align: 1}

	for i, s := range b.sections {
		idx := 2 + i
		var off uint32
		if s.typ == uint32(elf.SHT_PROGBITS) {
			off = place(s.payload)
		}
		align := s.align
		if align == 0 {
			align = 1
		}
		hdrs[idx] = hdr{name: secNameOffsets[i], typ: s.typ, flags: s.flags, offset: off, size: s.size, align: align}
	}

	for i, secIdx := range relTargets {
		idx := 2 + numUser + i
		relocs := b.rels[secIdx]
		buf := make([]byte, 0, len(relocs)*8)
		for _, r := range relocs {
			var tmp [8]byte
			binary.LittleEndian.PutUint32(tmp[0:4], r.Offset)
			binary.LittleEndian.PutUint32(tmp[4:8], r.Info)
			buf = append(buf, tmp[:]...)
		}
		off := place(buf)
		hdrs[idx] = hdr{
			name: relNameOffsets[i], typ: uint32(elf.SHT_REL),
			offset: off, size: uint32(len(buf)),
			link: uint32(symtabIdx), info: uint32(2 + secIdx), align: 4, entsize: 8,
		}
	}

	var symBuf bytes.Buffer
	writeSym := func(s sym32) {
		var tmp [16]byte
		binary.LittleEndian.PutUint32(tmp[0:4], s.Name)
		binary.LittleEndian.PutUint32(tmp[4:8], s.Value)
		binary.LittleEndian.PutUint32(tmp[8:12], s.Size)
		tmp[12] = s.Info
		tmp[13] = s.Other
		binary.LittleEndian.PutUint16(tmp[14:16], s.Shndx)
		symBuf.Write(tmp[:])
	}
	writeSym(sym32{})
	for i, s := range b.symbols {
		s.Name = symNameOffsets[i]
		writeSym(s)
	}
	symOff := place(symBuf.Bytes())
	hdrs[symtabIdx] = hdr{name: symtabName, typ: uint32(elf.SHT_SYMTAB), offset: symOff, size: uint32(symBuf.Len()), link: uint32(strtabIdx), info: 1, align: 4, entsize: 16}

	strOff := place(strtab.Bytes())
	hdrs[strtabIdx] = hdr{name: strtabName, typ: uint32(elf.SHT_STRTAB), offset: strOff, size: uint32(strtab.Len()), align: 1}

	shOff := ehdrSize + uint32(data.Len())

	eh := ehdr32{
		Type:      uint16(elf.ET_REL),
		Version:   1,
		ShOff:     shOff,
		EhSize:    uint16(ehdrSize),
		ShEntSize: uint16(unsafe.Sizeof(shdr32{})),
		ShNum:     uint16(totalSections),
		ShStrndx:  1,
	}
	eh.Ident[0], eh.Ident[1], eh.Ident[2], eh.Ident[3] = elfMagic0, elfMagic1, elfMagic2, elfMagic3
	eh.Ident[4] = uint8(elf.ELFCLASS32)
	eh.Ident[5] = uint8(elf.ELFDATA2LSB)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, eh)
	out.Write(data.Bytes())
	for _, h := range hdrs {
		sh := shdr32{
			Name: h.name, Type: h.typ, Flags: h.flags,
			Offset: h.offset, Size: h.size, Link: h.link, Info: h.info,
			AddrAlign: h.align, EntSize: h.entsize,
		}
		binary.Write(&out, binary.LittleEndian, sh)
	}

	return out.Bytes()
}
