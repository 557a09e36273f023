// Package generic32 is a reference github.com/haldor-asm/relocore/pkg/reloc.ArchBackend
// implementation for a small fictional 32-bit ISA. It exists so the
// relocation engine is exercisable end-to-end without a real toolchain's
// opcode encoder; its bit-twiddling follows the teacher's writeUtype/
// writeItype mask-and-OR idiom (pkg/linker/inputsection.go in the rvld
// lineage), generalised from RISC-V's U-type/I-type split to this ISA's
// own (invented) encoding.
package generic32

import (
	"fmt"

	"github.com/haldor-asm/relocore/pkg/reloc"
)

// Relocation types this backend understands. Anything else is refused.
const (
	RelAbs32   = 1 // full 32-bit address, opcode word replaced outright
	RelPCRel32 = 2 // address relative to the opcode's own final location
	RelHi20    = 3 // upper 20 bits of an address, rounded for a paired RelLo12
	RelLo12    = 4 // low 12 bits of an address
)

// uMask keeps the low 12 bits of an instruction word (the immediate goes in
// the high 20) and iMask keeps the low 20 bits (the immediate goes in the
// high 12), the way the teacher's utype/itype masks preserve the
// non-immediate fields of a RISC-V U-type/I-type instruction.
const (
	uMask = 0x00000fff
	iMask = 0x000fffff
)

// Backend implements reloc.ArchBackend.
type Backend struct{}

// New returns a ready-to-use Backend. The type carries no state of its
// own; relocation context lives entirely in the reloc.RelocationData
// passed to each call.
func New() *Backend {
	return &Backend{}
}

// SetSymbolAddress implements reloc.ArchBackend. This ISA has no private
// low-bit convention (unlike, say, a Thumb interworking bit), so the raw
// address passes through unchanged; TargetSymbolInfo is set to the
// symbol's own type so a reference GlobalSymbolTable can classify a label
// as data or function purely from what it was bound with (spec.md §4.5
// step 5, §6).
func (b *Backend) SetSymbolAddress(data *reloc.RelocationData, rawAddress uint64, symbolType reloc.SymbolType) {
	data.SymbolAddress = rawAddress
	data.TargetSymbolType = symbolType
	data.TargetSymbolInfo = symbolType
}

// RelocateOpcode implements reloc.ArchBackend.
func (b *Backend) RelocateOpcode(relocationType uint32, data *reloc.RelocationData) bool {
	addr := data.RelocationBase

	switch relocationType {
	case RelAbs32:
		data.Opcode = uint32(addr)
	case RelPCRel32:
		data.Opcode = uint32(addr - data.OpcodeOffset)
	case RelHi20:
		hi := uint32((addr + 0x800) >> 12)
		data.Opcode = (data.Opcode & uMask) | (hi << 12)
	case RelLo12:
		lo := uint32(addr & 0xfff)
		data.Opcode = (data.Opcode & iMask) | (lo << 20)
	default:
		data.ErrorMessage = fmt.Sprintf("generic32: unsupported relocation type %d", relocationType)
		return false
	}

	return true
}
