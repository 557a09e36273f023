package reloc

// SymbolType mirrors the ELF STT_OBJECT/STT_FUNC/STT_NOTYPE distinction
// the core cares about (spec.md §3).
type SymbolType uint8

const (
	SymNotype SymbolType = iota
	SymObject
	SymFunc
)

func (t SymbolType) String() string {
	switch t {
	case SymObject:
		return "object"
	case SymFunc:
		return "func"
	default:
		return "notype"
	}
}

// RelocationData is the sole exchange record between the core and the
// architecture backend (spec.md §6). The core populates Opcode and
// OpcodeOffset before calling SetSymbolAddress, which writes SymbolAddress
// and may set TargetSymbolType and TargetSymbolInfo; the core then sets
// RelocationBase before calling RelocateOpcode, which must rewrite Opcode
// on success.
type RelocationData struct {
	// Opcode is the 32-bit instruction word being patched; read before
	// RelocateOpcode and overwritten with the result on success.
	Opcode uint32
	// OpcodeOffset is the opcode's final runtime address (section offset
	// plus the section's laid-out address).
	OpcodeOffset uint64
	// RelocationBase is the resolved address the relocation is relative
	// to: either a looked-up external label's value, or the referenced
	// section's laid-out address plus SymbolAddress.
	RelocationBase uint64
	// SymbolAddress starts as the symbol's raw (pre-layout) value and may
	// be adjusted by the backend in SetSymbolAddress (e.g. to fold in an
	// ISA-private low bit).
	SymbolAddress uint64
	// TargetSymbolType/TargetSymbolInfo are ISA-private fields the
	// backend may set; for external symbols the core refines
	// TargetSymbolType from the resolved label's data/function kind and
	// copies TargetSymbolInfo from the label before calling
	// RelocateOpcode.
	TargetSymbolType SymbolType
	TargetSymbolInfo any
	// ErrorMessage is set by RelocateOpcode on failure.
	ErrorMessage string
}

// ArchBackend is the architecture-specific collaborator named in spec.md
// §6. It is supplied externally by the host assembler's per-ISA opcode
// encoder; the core never inspects relocation type values itself beyond
// passing them through.
type ArchBackend interface {
	// SetSymbolAddress lets the backend rewrite a raw section-relative
	// (or absolute) address before it is used as a relocation base or
	// bound to a label. It writes data.SymbolAddress and may set
	// data.TargetSymbolType/TargetSymbolInfo.
	SetSymbolAddress(data *RelocationData, rawAddress uint64, symbolType SymbolType)
	// RelocateOpcode consumes data.Opcode, data.OpcodeOffset,
	// data.RelocationBase and data.SymbolAddress, and produces a new
	// data.Opcode. It returns false and sets data.ErrorMessage on
	// failure.
	RelocateOpcode(relocationType uint32, data *RelocationData) bool
}
