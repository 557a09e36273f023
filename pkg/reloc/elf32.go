package reloc

import "debug/elf"

// ELF32 wire structs, hand-rolled the way the teacher hand-rolls its ELF64
// ones (rather than reusing debug/elf's own Header32/Section32/Sym32/Rel32
// types), because the core needs field-level bit-twiddling helpers
// (sym32.typ/bind, rel32.symIndex/relocType) glued directly onto the record the
// way pkg/utils.Read/Write decode it.

const (
	elfMagic0 = 0x7f
	elfMagic1 = 'E'
	elfMagic2 = 'L'
	elfMagic3 = 'F'
)

func hasELFMagic(b []byte) bool {
	return len(b) >= 4 && b[0] == elfMagic0 && b[1] == elfMagic1 && b[2] == elfMagic2 && b[3] == elfMagic3
}

type ehdr32 struct {
	Ident     [16]uint8
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	PhOff     uint32
	ShOff     uint32
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrndx  uint16
}

type shdr32 struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Offset    uint32
	Size      uint32
	Link      uint32
	Info      uint32
	AddrAlign uint32
	EntSize   uint32
}

func (s *shdr32) alloc() bool {
	return s.Flags&uint32(elf.SHF_ALLOC) != 0
}

// sym32 fields follow the actual ELF32 st_* order, which — unlike ELF64 —
// places st_info/st_other/st_shndx after st_value/st_size.
type sym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

func (s *sym32) bind() uint8 { return s.Info >> 4 }
func (s *sym32) typ() uint8  { return s.Info & 0xf }

// rel32 is the ELF32 Rel record (spec.md §3): no addend, offset plus a
// combined symbol-index/type Info word.
type rel32 struct {
	Offset uint32
	Info   uint32
}

func (r *rel32) symIndex() uint32   { return r.Info >> 8 }
func (r *rel32) relocType() uint32  { return r.Info & 0xff }

func getStrtabName(strtab []byte, offset uint32) string {
	if int(offset) >= len(strtab) {
		return ""
	}
	end := offset
	for end < uint32(len(strtab)) && strtab[end] != 0 {
		end++
	}
	return string(strtab[offset:end])
}
